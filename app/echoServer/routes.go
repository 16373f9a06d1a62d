package echoServer

import (
	"net/http"

	"booklend/app/echoServer/controller/book"
	"booklend/app/echoServer/controller/rental"
	userrepo "booklend/repository/user"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Book   *book.Controller
	Rental *rental.Controller
	Users  userrepo.Repo

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	e.GET("/health", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	// Everything below requires a verified SSO token.
	auth := e.Group("")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return jwt.MapClaims{}
		},
		ErrorHandler: func(ctx echo.Context, err error) error {
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		},
	}))
	auth.Use(Identity(c.Users))

	// Books
	auth.GET("/books", c.Book.List)
	auth.POST("/books", c.Book.Create)
	auth.GET("/books/:id", c.Book.Detail)
	auth.DELETE("/books/:id", c.Book.Delete)

	// Rentals
	auth.POST("/books/:id/rent", c.Rental.Rent)
	auth.DELETE("/books/:id/rent", c.Rental.Return)
	auth.GET("/rentals/my", c.Rental.My)
}

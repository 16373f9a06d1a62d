// app/echoServer/jwtx/user.go
package jwtx

import (
	"errors"

	"booklend/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// IdentityFromContext reads the verified token stashed by echo-jwt and
// builds the caller's identity from its claims. The SSO provider sends
// sub (numeric user id), name and picture.
func IdentityFromContext(c echo.Context) (model.User, error) {
	tok, ok := c.Get("user").(*jwt.Token)
	if !ok || tok == nil {
		return model.User{}, errors.New("no jwt token in context")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return model.User{}, errors.New("invalid jwt claims")
	}

	sub, ok := claims["sub"].(float64)
	if !ok {
		return model.User{}, errors.New("sub missing in claims")
	}

	u := model.User{ID: int64(sub)}
	if s, ok := claims["name"].(string); ok {
		u.Name = s
	}
	if s, ok := claims["picture"].(string); ok {
		u.AvatarURL = s
	}
	return u, nil
}

// UserID returns the caller id set by the Identity middleware.
func UserID(c echo.Context) (int64, bool) {
	id, ok := c.Get("user_id").(int64)
	return id, ok
}

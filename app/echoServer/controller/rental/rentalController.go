package rental

import (
	"log/slog"
	"net/http"
	"strconv"

	"booklend/app/echoServer/jwtx"
	rs "booklend/service/rental"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc rs.Service
	Log *slog.Logger
}

// POST /books/:id/rent
func (h *Controller) Rent(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	uid, ok := jwtx.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	rent, err := h.Svc.Rent(c.Request().Context(), id, uid)
	if err != nil {
		switch rs.Code(err) {
		case rs.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "book not found"})
		case rs.ErrAlreadyRented:
			return c.JSON(http.StatusConflict, echo.Map{"error": "book is already rented"})
		default:
			h.Log.Error("rental rent", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, rent)
}

// DELETE /books/:id/rent
func (h *Controller) Return(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	uid, ok := jwtx.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	rent, err := h.Svc.Return(c.Request().Context(), id, uid)
	if err != nil {
		switch rs.Code(err) {
		case rs.ErrRentalNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no active rental for this book"})
		case rs.ErrNotRenter:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "only the renter can return a book"})
		default:
			h.Log.Error("rental return", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, rent)
}

// GET /rentals/my
func (h *Controller) My(c echo.Context) error {
	uid, ok := jwtx.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	rows, err := h.Svc.MyRentals(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("rental history", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, rows)
}

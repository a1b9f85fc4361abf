package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fullindescription/VL-rebrand/internal/middleware"
	"github.com/fullindescription/VL-rebrand/internal/session"
)

var errNoSession = errors.New("no browser session")

// currentState returns the browser session loaded by the auth middleware.
func currentState(c echo.Context) (*session.State, error) {
	st, ok := middleware.CurrentSession(c)
	if !ok {
		return nil, errNoSession
	}
	return st, nil
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

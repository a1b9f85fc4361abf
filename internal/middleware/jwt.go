package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fullindescription/VL-rebrand/internal/session"
	"github.com/fullindescription/VL-rebrand/internal/utils"
)

// SessionAuth validates the Bearer session token and loads the browser
// session it names from reg.  Handlers read it with CurrentSession.
func SessionAuth(secret string, reg *session.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			id, err := utils.ParseSessionToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			st, err := reg.Get(id)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid session"})
			}
			c.Set(sessionIDKey, id)
			c.Set(sessionStateKey, st)
			return next(c)
		}
	}
}

package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/fullindescription/VL-rebrand/internal/session"
)

const (
	sessionIDKey    = "session_id"
	sessionStateKey = "session_state"
)

// CurrentSession returns the browser session loaded by SessionAuth.
func CurrentSession(c echo.Context) (*session.State, bool) {
	st, ok := c.Get(sessionStateKey).(*session.State)
	return st, ok && st != nil
}

// sessionID returns the browser-session ID of the request, or "anon".
func sessionID(c echo.Context) string {
	if s, ok := c.Get(sessionIDKey).(string); ok && s != "" {
		return s
	}
	return "anon"
}

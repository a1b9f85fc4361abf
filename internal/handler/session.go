package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fullindescription/VL-rebrand/internal/session"
	"github.com/fullindescription/VL-rebrand/internal/utils"
)

// SessionHandler opens and closes browser sessions.
type SessionHandler struct {
	Registry *session.Registry
	Secret   string        // signs session tokens
	TTL      time.Duration // token lifetime
}

// Start handles POST /v1/sessions.  Every call opens a new session with
// an empty cart and returns its bearer token.
func (h *SessionHandler) Start(c echo.Context) error {
	st := h.Registry.Start()
	tok, err := utils.NewSessionToken(h.Secret, st.ID, h.TTL)
	if err != nil {
		h.Registry.Dispose(st.ID)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue token"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"session_id": st.ID,
		"token":      tok.Token,
		"expires_at": tok.Exp,
	})
}

// End handles DELETE /v1/sessions and drops the session's cart.
func (h *SessionHandler) End(c echo.Context) error {
	st, err := currentState(c)
	if err != nil {
		return unauthorized(c)
	}
	h.Registry.Dispose(st.ID)
	return c.NoContent(http.StatusNoContent)
}

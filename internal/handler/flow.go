package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fullindescription/VL-rebrand/internal/cart"
	"github.com/fullindescription/VL-rebrand/internal/model"
	"github.com/fullindescription/VL-rebrand/internal/reservation"
	"github.com/fullindescription/VL-rebrand/internal/seatgrid"
)

var errSessionNotListed = errors.New("session not found in listing")

// FlowHandler drives the reservation flow of the current browser session.
// With Listings set, a selected session is looked up in the listing and
// its title, time, price and availability replace what the client sent.
type FlowHandler struct {
	Listings ListingSource
}

// resolve returns the listing's copy of the session the client picked.
func (h *FlowHandler) resolve(c echo.Context, picked model.Session) (model.Session, error) {
	sessions, err := h.Listings.Sessions(c.Request().Context(), picked.Kind, picked.Date)
	if err != nil {
		return model.Session{}, err
	}
	for _, s := range sessions {
		if s.ID == picked.ID {
			s.Kind = picked.Kind
			if s.Date == "" {
				s.Date = picked.Date
			}
			return s, nil
		}
	}
	return model.Session{}, errSessionNotListed
}

// flowError maps flow errors to responses that carry the current view.
func flowError(c echo.Context, f *reservation.Flow, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, reservation.ErrInvalidTransition), errors.Is(err, cart.ErrFrozen):
		status = http.StatusConflict
	case errors.Is(err, seatgrid.ErrCapacityExceeded),
		errors.Is(err, seatgrid.ErrSeatUnavailable),
		errors.Is(err, reservation.ErrQuantityOutOfRange),
		errors.Is(err, reservation.ErrEmptySelection),
		errors.Is(err, cart.ErrQuantityOverflow):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, reservation.ErrUnknownKind):
		status = http.StatusBadRequest
	}
	return c.JSON(status, echo.Map{"error": err.Error(), "flow": f.View()})
}

// Get handles GET /v1/flow.
func (h *FlowHandler) Get(c echo.Context) error {
	st, err := currentState(c)
	if err != nil {
		return unauthorized(c)
	}
	return c.JSON(http.StatusOK, st.Flow.View())
}

// SelectSession handles POST /v1/flow/session.  The body is a session as
// returned by the listing; the matching picker is opened right away.
func (h *FlowHandler) SelectSession(c echo.Context) error {
	st, err := currentState(c)
	if err != nil {
		return unauthorized(c)
	}
	var s model.Session
	if err := c.Bind(&s); err != nil {
		return badRequest(c, "invalid body")
	}
	if s.ID == 0 || s.AvailableTickets < 0 || s.PriceCents < 0 {
		return badRequest(c, "invalid session")
	}
	if h.Listings != nil {
		if _, err := time.Parse(time.DateOnly, s.Date); err != nil || !s.Kind.Valid() {
			return badRequest(c, "kind and date are required")
		}
		listed, err := h.resolve(c, s)
		switch {
		case errors.Is(err, errSessionNotListed):
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		case err != nil:
			return listingError(c, err)
		}
		s = listed
	}
	if err := st.Flow.SelectSession(s); err != nil {
		return flowError(c, st.Flow, err)
	}
	if _, err := st.Flow.Open(); err != nil {
		st.Flow.Cancel()
		return flowError(c, st.Flow, err)
	}
	return c.JSON(http.StatusOK, st.Flow.View())
}

type toggleRequest struct {
	Row  int `json:"row"`
	Seat int `json:"seat"`
}

// Toggle handles POST /v1/flow/seats/toggle.
func (h *FlowHandler) Toggle(c echo.Context) error {
	st, err := currentState(c)
	if err != nil {
		return unauthorized(c)
	}
	var req toggleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := st.Flow.Toggle(req.Row, req.Seat); err != nil {
		return flowError(c, st.Flow, err)
	}
	return c.JSON(http.StatusOK, st.Flow.View())
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// SetQuantity handles PUT /v1/flow/quantity.
func (h *FlowHandler) SetQuantity(c echo.Context) error {
	st, err := currentState(c)
	if err != nil {
		return unauthorized(c)
	}
	var req quantityRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := st.Flow.SetQuantity(req.Quantity); err != nil {
		return flowError(c, st.Flow, err)
	}
	return c.JSON(http.StatusOK, st.Flow.View())
}

// Confirm handles POST /v1/flow/confirm and returns the outcome together
// with the updated cart.
func (h *FlowHandler) Confirm(c echo.Context) error {
	st, err := currentState(c)
	if err != nil {
		return unauthorized(c)
	}
	out, err := st.Flow.Confirm()
	if err != nil {
		return flowError(c, st.Flow, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"lines":    out.Lines,
		"redirect": out.Redirect,
		"cart":     renderCart(st.Cart),
	})
}

// Cancel handles POST /v1/flow/cancel.
func (h *FlowHandler) Cancel(c echo.Context) error {
	st, err := currentState(c)
	if err != nil {
		return unauthorized(c)
	}
	st.Flow.Cancel()
	return c.JSON(http.StatusOK, st.Flow.View())
}

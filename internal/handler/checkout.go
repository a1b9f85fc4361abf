package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fullindescription/VL-rebrand/internal/cart"
	"github.com/fullindescription/VL-rebrand/internal/checkout"
	"github.com/fullindescription/VL-rebrand/internal/model"
	"github.com/fullindescription/VL-rebrand/internal/repository"
)

// CheckoutSubmitter books a cart.
type CheckoutSubmitter interface {
	Submit(ctx context.Context, browserSession string, store *cart.Store) (checkout.Result, error)
}

// CheckoutHandler submits the cart of the current browser session.
type CheckoutHandler struct {
	Submitter CheckoutSubmitter
}

// Submit handles POST /v1/checkout.  A failed checkout keeps the cart
// and answers 502 with the message the cart now shows.
func (h *CheckoutHandler) Submit(c echo.Context) error {
	st, err := currentState(c)
	if err != nil {
		return unauthorized(c)
	}
	res, err := h.Submitter.Submit(c.Request().Context(), st.ID, st.Cart)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, res)
	case errors.Is(err, checkout.ErrEmptyCart):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "cart is empty"})
	case errors.Is(err, checkout.ErrInProgress):
		return c.JSON(http.StatusConflict, echo.Map{"error": "checkout in progress"})
	case errors.Is(err, checkout.ErrFailed):
		return c.JSON(http.StatusBadGateway, echo.Map{"error": checkout.FailureMessage, "cart": renderCart(st.Cart)})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "checkout error"})
}

// BookingReader loads a recorded booking.
type BookingReader interface {
	GetByRef(ctx context.Context, ref string) (*model.Booking, error)
}

// BookingHandler shows bookings recorded by the ledger.
type BookingHandler struct {
	Bookings BookingReader
}

// Get handles GET /v1/bookings/:ref.  Bookings of other browser
// sessions are reported as not found.
func (h *BookingHandler) Get(c echo.Context) error {
	st, err := currentState(c)
	if err != nil {
		return unauthorized(c)
	}
	b, err := h.Bookings.GetByRef(c.Request().Context(), c.Param("ref"))
	if errors.Is(err, repository.ErrBookingNotFound) || (err == nil && b.BrowserSession != st.ID) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, b)
}

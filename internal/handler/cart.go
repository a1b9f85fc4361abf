package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/fullindescription/VL-rebrand/internal/cart"
	"github.com/fullindescription/VL-rebrand/internal/model"
)

// CartLineView is a cart line with its subtotal.
type CartLineView struct {
	model.CartLine
	SubtotalCents int64 `json:"subtotal_cents"`
}

// CartView is the cart as rendered to the client.
type CartView struct {
	Lines      []CartLineView `json:"lines"`
	TotalCents int64          `json:"total_cents"`
	Error      string         `json:"error,omitempty"`
	Frozen     bool           `json:"checkout_in_progress"`
}

func renderCart(s *cart.Store) CartView {
	lines := s.Lines()
	v := CartView{
		Lines:      make([]CartLineView, 0, len(lines)),
		TotalCents: s.Total(),
		Error:      s.Error(),
		Frozen:     s.Frozen(),
	}
	for _, l := range lines {
		v.Lines = append(v.Lines, CartLineView{CartLine: l, SubtotalCents: l.Subtotal()})
	}
	return v
}

func cartConflict(c echo.Context) error {
	return c.JSON(http.StatusConflict, echo.Map{"error": "checkout in progress"})
}

// CartHandler serves the cart of the current browser session.
type CartHandler struct{}

// Get handles GET /v1/cart.
func (h *CartHandler) Get(c echo.Context) error {
	st, err := currentState(c)
	if err != nil {
		return unauthorized(c)
	}
	return c.JSON(http.StatusOK, renderCart(st.Cart))
}

// AddLine handles POST /v1/cart/lines.  The body is a cart line; seat
// lines need both row and seat, event lines a quantity (default 1) no
// larger than available_tickets.
func (h *CartHandler) AddLine(c echo.Context) error {
	st, err := currentState(c)
	if err != nil {
		return unauthorized(c)
	}
	var line model.CartLine
	if err := c.Bind(&line); err != nil {
		return badRequest(c, "invalid body")
	}
	if line.SessionID == 0 {
		return badRequest(c, "session_id is required")
	}
	if (line.Row == nil) != (line.Seat == nil) {
		return badRequest(c, "row and seat go together")
	}
	if ref, ok := line.SeatRef(); ok && !ref.Valid() {
		return badRequest(c, "row and seat must be positive")
	}
	if line.PriceCents < 0 {
		return badRequest(c, "price_cents must not be negative")
	}
	if !line.IsSeat() {
		qty := line.Quantity
		if qty == 0 {
			qty = 1
		}
		if qty < 1 || qty > line.AvailableTickets {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{
				"error": fmt.Sprintf("quantity must be between 1 and %d", line.AvailableTickets),
			})
		}
	}
	if err := st.Cart.AddLine(line); err != nil {
		switch {
		case errors.Is(err, cart.ErrFrozen):
			return cartConflict(c)
		case errors.Is(err, cart.ErrQuantityOverflow):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to add line"})
	}
	return c.JSON(http.StatusOK, renderCart(st.Cart))
}

type removeView struct {
	CartView
	Removed bool `json:"removed"`
}

// RemoveLine handles DELETE /v1/cart/lines?session_id=&row=&seat=.
// Without row and seat it targets the session's event line.  all=true
// drops the whole line instead of one ticket.  A request matching no
// line leaves the cart as it was and answers removed=false.
func (h *CartHandler) RemoveLine(c echo.Context) error {
	st, err := currentState(c)
	if err != nil {
		return unauthorized(c)
	}
	sessionID, err := strconv.ParseUint(c.QueryParam("session_id"), 10, 64)
	if err != nil || sessionID == 0 {
		return badRequest(c, "invalid session_id")
	}
	var seat *model.SeatRef
	if c.QueryParam("row") != "" || c.QueryParam("seat") != "" {
		row, errRow := strconv.Atoi(c.QueryParam("row"))
		num, errSeat := strconv.Atoi(c.QueryParam("seat"))
		ref := model.SeatRef{Row: row, Seat: num}
		if errRow != nil || errSeat != nil || !ref.Valid() {
			return badRequest(c, "invalid row or seat")
		}
		seat = &ref
	}
	remove := st.Cart.RemoveLine
	if all, _ := strconv.ParseBool(c.QueryParam("all")); all {
		remove = st.Cart.RemoveAll
	}
	found, err := remove(sessionID, seat)
	if errors.Is(err, cart.ErrFrozen) {
		return cartConflict(c)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to remove line"})
	}
	return c.JSON(http.StatusOK, removeView{CartView: renderCart(st.Cart), Removed: found})
}

// Clear handles DELETE /v1/cart.
func (h *CartHandler) Clear(c echo.Context) error {
	st, err := currentState(c)
	if err != nil {
		return unauthorized(c)
	}
	if err := st.Cart.Clear(); err != nil {
		return cartConflict(c)
	}
	return c.JSON(http.StatusOK, renderCart(st.Cart))
}

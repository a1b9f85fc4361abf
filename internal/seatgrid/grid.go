// Package seatgrid synthesises the seat layout of a screening from its
// remaining capacity and collects a bounded multi-selection of seats
// before they are pushed into the cart.
package seatgrid

import (
	"errors"
	"fmt"

	"github.com/fullindescription/VL-rebrand/internal/model"
)

const (
	// SeatsPerRow is fixed; the listing does not describe hall geometry.
	SeatsPerRow = 8
	// MaxSelection bounds the pending selection of one grid interaction.
	MaxSelection = 5
)

var (
	// ErrCapacityExceeded is returned when a sixth distinct seat is toggled.
	ErrCapacityExceeded = errors.New("seat selection limit reached")
	// ErrSeatUnavailable is returned for disabled or out-of-range seats.
	ErrSeatUnavailable = errors.New("seat is not selectable")
)

// PendingSeat is one selected seat together with what the cart needs
// to price it.
type PendingSeat struct {
	model.SeatRef
	SessionID  uint64 `json:"session_id"`
	PriceCents int64  `json:"price_cents"`
}

// Cell is one position of the rendered layout.
type Cell struct {
	model.SeatRef
	Selectable bool `json:"selectable"`
	Selected   bool `json:"selected"`
}

// Grid holds the layout of one session and the transient selection made
// on it.  A Grid is not safe for concurrent use; the owning flow
// serialises access.
type Grid struct {
	session model.Session
	pending []PendingSeat
	errMsg  string
}

// New builds the grid of a session.  Negative capacities are treated as
// zero, which yields an empty layout.
func New(s model.Session) *Grid {
	if s.AvailableTickets < 0 {
		s.AvailableTickets = 0
	}
	return &Grid{session: s}
}

// Session returns the session the grid was built for.
func (g *Grid) Session() model.Session { return g.session }

// Rows is ceil(available / SeatsPerRow).
func (g *Grid) Rows() int {
	return (g.session.AvailableTickets + SeatsPerRow - 1) / SeatsPerRow
}

// Selectable reports whether (row, seat) lies inside the capacity.  The
// trailing positions of the last row are not selectable.
func (g *Grid) Selectable(row, seat int) bool {
	if row < 1 || seat < 1 || seat > SeatsPerRow || row > g.Rows() {
		return false
	}
	return (row-1)*SeatsPerRow+seat <= g.session.AvailableTickets
}

// Toggle deselects a pending seat or selects a new one.  Selecting past
// MaxSelection fails with ErrCapacityExceeded and leaves the selection
// unchanged; the same message is kept for ErrorMessage.  Disabled seats
// are ignored.
func (g *Grid) Toggle(row, seat int) error {
	if !g.Selectable(row, seat) {
		return ErrSeatUnavailable
	}
	if i := g.indexOf(row, seat); i >= 0 {
		g.pending = append(g.pending[:i], g.pending[i+1:]...)
		g.errMsg = ""
		return nil
	}
	if len(g.pending) >= MaxSelection {
		g.errMsg = fmt.Sprintf("you cannot select more than %d seats", MaxSelection)
		return ErrCapacityExceeded
	}
	g.pending = append(g.pending, PendingSeat{
		SeatRef:    model.SeatRef{Row: row, Seat: seat},
		SessionID:  g.session.ID,
		PriceCents: g.session.PriceCents,
	})
	g.errMsg = ""
	return nil
}

// IsSelected reports whether (row, seat) is pending.
func (g *Grid) IsSelected(row, seat int) bool { return g.indexOf(row, seat) >= 0 }

// Selected returns a copy of the pending selection in selection order.
func (g *Grid) Selected() []PendingSeat {
	out := make([]PendingSeat, len(g.pending))
	copy(out, g.pending)
	return out
}

// ErrorMessage is the last capacity message, cleared by any successful
// toggle or confirm.
func (g *Grid) ErrorMessage() string { return g.errMsg }

// Confirm hands over the pending selection and clears it.  Calling it
// with nothing selected returns an empty slice.
func (g *Grid) Confirm() []PendingSeat {
	out := g.Selected()
	g.pending = nil
	g.errMsg = ""
	return out
}

// Layout renders every position of the grid row by row.
func (g *Grid) Layout() [][]Cell {
	rows := make([][]Cell, 0, g.Rows())
	for r := 1; r <= g.Rows(); r++ {
		line := make([]Cell, 0, SeatsPerRow)
		for s := 1; s <= SeatsPerRow; s++ {
			line = append(line, Cell{
				SeatRef:    model.SeatRef{Row: r, Seat: s},
				Selectable: g.Selectable(r, s),
				Selected:   g.IsSelected(r, s),
			})
		}
		rows = append(rows, line)
	}
	return rows
}

func (g *Grid) indexOf(row, seat int) int {
	for i, p := range g.pending {
		if p.Row == row && p.Seat == seat {
			return i
		}
	}
	return -1
}

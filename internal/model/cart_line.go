package model

import "fmt"

// CartLine is one purchasable entry in a cart.  Two disjoint kinds
// exist: a seat line carries Row and Seat and always has Quantity 1; an
// event line carries neither and aggregates Quantity.  Lines with equal
// identity keys never coexist in a cart.
type CartLine struct {
	SessionID        uint64 `json:"session_id"`
	Title            string `json:"title"`
	Time             string `json:"time"`
	PriceCents       int64  `json:"price_cents"`
	AvailableTickets int    `json:"available_tickets"`
	Quantity         int    `json:"quantity"`
	Row              *int   `json:"row,omitempty"`
	Seat             *int   `json:"seat,omitempty"`
}

// LineKey is the identity of a cart line.  Seat lines key on
// (session, row, seat), event lines on (session, time).
type LineKey string

// IsSeat reports whether the line addresses a physical seat.
func (l CartLine) IsSeat() bool { return l.Row != nil && l.Seat != nil }

// SeatRef returns the seat coordinates of a seat line.
func (l CartLine) SeatRef() (SeatRef, bool) {
	if !l.IsSeat() {
		return SeatRef{}, false
	}
	return SeatRef{Row: *l.Row, Seat: *l.Seat}, true
}

// Key computes the identity key of the line.
func (l CartLine) Key() LineKey {
	if l.IsSeat() {
		return SeatKey(l.SessionID, SeatRef{Row: *l.Row, Seat: *l.Seat})
	}
	return EventKey(l.SessionID, l.Time)
}

// Subtotal is PriceCents × Quantity.
func (l CartLine) Subtotal() int64 { return l.PriceCents * int64(l.Quantity) }

// SeatKey builds the identity key of a seat line.
func SeatKey(sessionID uint64, s SeatRef) LineKey {
	return LineKey(fmt.Sprintf("seat:%d:%d:%d", sessionID, s.Row, s.Seat))
}

// EventKey builds the identity key of an event line.
func EventKey(sessionID uint64, time string) LineKey {
	return LineKey(fmt.Sprintf("event:%d:%s", sessionID, time))
}

// NewSeatLine builds a quantity-1 line for one seat of a session.
func NewSeatLine(s Session, seat SeatRef) CartLine {
	row, col := seat.Row, seat.Seat
	return CartLine{
		SessionID:        s.ID,
		Title:            s.Title,
		Time:             s.Time,
		PriceCents:       s.PriceCents,
		AvailableTickets: s.AvailableTickets,
		Quantity:         1,
		Row:              &row,
		Seat:             &col,
	}
}

// NewEventLine builds a quantity line for an event session.
func NewEventLine(s Session, quantity int) CartLine {
	return CartLine{
		SessionID:        s.ID,
		Title:            s.Title,
		Time:             s.Time,
		PriceCents:       s.PriceCents,
		AvailableTickets: s.AvailableTickets,
		Quantity:         quantity,
	}
}

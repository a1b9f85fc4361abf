package model

// Kind tells the reservation flow which purchase path a session uses.
type Kind string

const (
	// KindScreening sessions sell discrete numbered seats.
	KindScreening Kind = "screening"
	// KindEvent sessions sell quantity-only tickets.
	KindEvent Kind = "event"
)

// Valid reports whether k is one of the known session kinds.
func (k Kind) Valid() bool {
	return k == KindScreening || k == KindEvent
}

// Session represents a scheduled showing of a movie or event as
// returned by the listing collaborator.  A session is immutable once
// fetched; AvailableTickets is the remaining capacity at fetch time and
// drives the synthesised seat layout.
//
// Fields:
//  ID               – identifier of the showing (not of a seat).
//  Title            – movie or event title.
//  Time             – start time, "HH:mm:ss".
//  Date             – showing date, "YYYY-MM-DD".
//  PriceCents       – per-unit price in cents.
//  AvailableTickets – remaining capacity.
//  Kind             – screening (seats) or event (quantity).
type Session struct {
	ID               uint64 `json:"id"`
	Title            string `json:"title"`
	Time             string `json:"time"`
	Date             string `json:"date"`
	PriceCents       int64  `json:"price_cents"`
	AvailableTickets int    `json:"available_tickets"`
	Kind             Kind   `json:"kind"`
}

package model

import "time"

// Booking records an acknowledged checkout.  It aggregates every line
// that was in the cart at submission time and the total charged.
//
// Fields:
//  Ref            – booking reference returned to the client.
//  BrowserSession – browser session that submitted the cart.
//  TotalCents     – Σ price × quantity over all items.
//  Items          – one entry per submitted cart line.
//  CreatedAt      – acknowledgement timestamp (UTC).
type Booking struct {
	Ref            string        `json:"ref"`
	BrowserSession string        `json:"-"`
	TotalCents     int64         `json:"total_cents"`
	Items          []BookingItem `json:"items"`
	CreatedAt      time.Time     `json:"created_at"`
}

// BookingItem mirrors a cart line inside a booking.  Row and Seat are
// nil for quantity-only event tickets.
type BookingItem struct {
	SessionID  uint64 `json:"session_id"`
	Title      string `json:"title"`
	Time       string `json:"time"`
	Row        *int   `json:"row,omitempty"`
	Seat       *int   `json:"seat,omitempty"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"price_cents"`
}

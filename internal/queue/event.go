// Package queue carries booking events over RabbitMQ: the payload type,
// the publisher used after checkout and the consumer that writes the
// booking log.
package queue

// BookingQueue is the durable queue booking confirmations are sent to.
const BookingQueue = "booking.confirmed"

// BookingConfirmedEvent is published once a checkout succeeds.  It holds
// enough to log or notify without reading the ledger.
type BookingConfirmedEvent struct {
	Ref            string       `json:"ref"`
	BrowserSession string       `json:"browser_session"`
	Items          []BookedItem `json:"items"`
	TotalCents     int64        `json:"total_cents"`
	ConfirmedAt    string       `json:"confirmed_at"`
}

// BookedItem is one session of a confirmed booking.  Seats holds
// "R1-S2" style labels for screenings; Quantity counts event tickets.
type BookedItem struct {
	SessionID uint64   `json:"session_id"`
	Title     string   `json:"title"`
	Time      string   `json:"time"`
	Seats     []string `json:"seats,omitempty"`
	Quantity  int      `json:"quantity,omitempty"`
}

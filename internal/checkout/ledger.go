package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fullindescription/VL-rebrand/internal/model"
)

// BookingWriter persists a booking.
type BookingWriter interface {
	Create(ctx context.Context, b *model.Booking) error
}

// LedgerBooker acknowledges orders itself and records them, standing in
// for a payment backend.
type LedgerBooker struct {
	store BookingWriter
	now   func() time.Time
}

// NewLedgerBooker returns a booker recording into store.
func NewLedgerBooker(store BookingWriter) *LedgerBooker {
	return &LedgerBooker{store: store, now: time.Now}
}

// Book records every line of o under a fresh reference.
func (l *LedgerBooker) Book(ctx context.Context, o Order) (Receipt, error) {
	b := &model.Booking{
		Ref:            uuid.NewString(),
		BrowserSession: o.BrowserSession,
		CreatedAt:      l.now().UTC(),
		Items:          make([]model.BookingItem, 0, len(o.Lines)),
	}
	for _, line := range o.Lines {
		b.Items = append(b.Items, model.BookingItem{
			SessionID:  line.SessionID,
			Title:      line.Title,
			Time:       line.Time,
			Row:        line.Row,
			Seat:       line.Seat,
			Quantity:   line.Quantity,
			PriceCents: line.PriceCents,
		})
		b.TotalCents += line.Subtotal()
	}
	if err := l.store.Create(ctx, b); err != nil {
		return Receipt{}, fmt.Errorf("record booking: %w", err)
	}
	return Receipt{Ref: b.Ref}, nil
}

// Package checkout submits a cart to a booking backend.  The cart is
// frozen for the duration of the call, emptied on success and left
// untouched on failure.
package checkout

import (
	"context"

	"github.com/fullindescription/VL-rebrand/internal/model"
)

// Order is what a booker receives: the grouped request plus the lines it
// was built from.
type Order struct {
	BrowserSession string
	Lines          []model.CartLine
	Request        Request
}

// Receipt acknowledges a booking.  Ref is empty when the backend does not
// issue references.
type Receipt struct {
	Ref string `json:"ref,omitempty"`
}

// Booker places an order.  Any error means nothing was booked.
type Booker interface {
	Book(ctx context.Context, o Order) (Receipt, error)
}

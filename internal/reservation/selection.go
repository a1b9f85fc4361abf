package reservation

import (
	"fmt"

	"github.com/fullindescription/VL-rebrand/internal/model"
	"github.com/fullindescription/VL-rebrand/internal/seatgrid"
)

// Selection is the open picker of a session: a *SeatPicker for
// screenings or a *QuantityPicker for events.
type Selection interface {
	Kind() model.Kind
}

// SeatPicker wraps the seat grid of a screening.
type SeatPicker struct {
	grid *seatgrid.Grid
}

func (*SeatPicker) Kind() model.Kind { return model.KindScreening }

// Layout renders the grid.
func (p *SeatPicker) Layout() [][]seatgrid.Cell { return p.grid.Layout() }

// QuantityPicker holds the ticket count of an event.
type QuantityPicker struct {
	session  model.Session
	quantity int
	errMsg   string
}

func (*QuantityPicker) Kind() model.Kind { return model.KindEvent }

// Quantity returns the current count.
func (p *QuantityPicker) Quantity() int { return p.quantity }

func (p *QuantityPicker) set(n int) error {
	if n < 1 || n > p.session.AvailableTickets {
		p.errMsg = fmt.Sprintf("choose between 1 and %d tickets", p.session.AvailableTickets)
		return fmt.Errorf("%d tickets: %w", n, ErrQuantityOutOfRange)
	}
	p.quantity = n
	p.errMsg = ""
	return nil
}

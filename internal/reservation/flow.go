// Package reservation drives one browser session from picking a showing
// to pushing tickets into its cart.
//
// The flow is a small state machine:
//
//	Browsing -> SessionSelected -> SeatSelection | QuantitySelection -> Confirmed -> Browsing
//
// Screenings go through a seat grid, events through a ticket counter.
// Cancel returns to Browsing from anywhere without touching the cart.
package reservation

import (
	"errors"
	"fmt"
	"sync"

	"github.com/fullindescription/VL-rebrand/internal/model"
	"github.com/fullindescription/VL-rebrand/internal/seatgrid"
)

// State names a step of the flow.
type State int

const (
	Browsing State = iota
	SessionSelected
	SeatSelection
	QuantitySelection
	Confirmed
)

func (s State) String() string {
	switch s {
	case Browsing:
		return "browsing"
	case SessionSelected:
		return "session_selected"
	case SeatSelection:
		return "seat_selection"
	case QuantitySelection:
		return "quantity_selection"
	case Confirmed:
		return "confirmed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText renders the state by name in JSON payloads.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// CartPath is where the seat path sends the user after confirming.
const CartPath = "/cart"

var (
	ErrInvalidTransition  = errors.New("action not allowed in current state")
	ErrQuantityOutOfRange = errors.New("quantity out of range")
	ErrEmptySelection     = errors.New("nothing selected")
	ErrUnknownKind        = errors.New("unknown session kind")
)

// LineAdder is the part of the cart the flow writes to.
type LineAdder interface {
	AddLine(model.CartLine) error
}

// Outcome reports what a confirmation pushed into the cart.
type Outcome struct {
	Lines    []model.CartLine `json:"lines"`
	Redirect string           `json:"redirect,omitempty"`
}

// Flow is safe for concurrent use.
type Flow struct {
	mu        sync.Mutex
	cart      LineAdder
	state     State
	session   *model.Session
	selection Selection
}

// New returns a flow in Browsing that confirms into cart.
func New(cart LineAdder) *Flow {
	return &Flow{cart: cart}
}

// State returns the current step.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// SelectSession picks the showing to book.  Picking another showing
// before opening a selection replaces the first one.
func (f *Flow) SelectSession(s model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != Browsing && f.state != SessionSelected {
		return fmt.Errorf("select session in %s: %w", f.state, ErrInvalidTransition)
	}
	if !s.Kind.Valid() {
		return ErrUnknownKind
	}
	f.session = &s
	f.selection = nil
	f.state = SessionSelected
	return nil
}

// Open starts the selection matching the session kind.
func (f *Flow) Open() (Selection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != SessionSelected {
		return nil, fmt.Errorf("open in %s: %w", f.state, ErrInvalidTransition)
	}
	switch f.session.Kind {
	case model.KindScreening:
		f.selection = &SeatPicker{grid: seatgrid.New(*f.session)}
		f.state = SeatSelection
	case model.KindEvent:
		f.selection = &QuantityPicker{session: *f.session, quantity: 1}
		f.state = QuantitySelection
	default:
		return nil, ErrUnknownKind
	}
	return f.selection, nil
}

// Toggle flips one seat of the open grid.
func (f *Flow) Toggle(row, seat int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.selection.(*SeatPicker)
	if f.state != SeatSelection || !ok {
		return fmt.Errorf("toggle in %s: %w", f.state, ErrInvalidTransition)
	}
	return p.grid.Toggle(row, seat)
}

// SetQuantity sets the ticket count of an event.  Values outside
// [1, available] are rejected and the previous count is kept.
func (f *Flow) SetQuantity(n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.selection.(*QuantityPicker)
	if f.state != QuantitySelection || !ok {
		return fmt.Errorf("set quantity in %s: %w", f.state, ErrInvalidTransition)
	}
	return p.set(n)
}

// Confirm pushes the selection into the cart and returns to Browsing.
// Seat confirmations add one line per seat and redirect to the cart.
// If the cart rejects the first line the flow stays where it was.
func (f *Flow) Confirm() (Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var lines []model.CartLine
	var redirect string
	switch p := f.selection.(type) {
	case *SeatPicker:
		if f.state != SeatSelection {
			return Outcome{}, fmt.Errorf("confirm in %s: %w", f.state, ErrInvalidTransition)
		}
		pending := p.grid.Selected()
		if len(pending) == 0 {
			return Outcome{}, ErrEmptySelection
		}
		for _, seat := range pending {
			lines = append(lines, model.NewSeatLine(*f.session, seat.SeatRef))
		}
		redirect = CartPath
	case *QuantityPicker:
		if f.state != QuantitySelection {
			return Outcome{}, fmt.Errorf("confirm in %s: %w", f.state, ErrInvalidTransition)
		}
		if p.quantity > f.session.AvailableTickets {
			return Outcome{}, fmt.Errorf("%d tickets: %w", p.quantity, ErrQuantityOutOfRange)
		}
		lines = []model.CartLine{model.NewEventLine(*f.session, p.quantity)}
	default:
		return Outcome{}, fmt.Errorf("confirm in %s: %w", f.state, ErrInvalidTransition)
	}

	for i, l := range lines {
		if err := f.cart.AddLine(l); err != nil {
			if i == 0 {
				return Outcome{}, err
			}
			lines = lines[:i]
			break
		}
	}
	if p, ok := f.selection.(*SeatPicker); ok {
		p.grid.Confirm()
	}
	f.state = Confirmed
	f.reset()
	return Outcome{Lines: lines, Redirect: redirect}, nil
}

// Cancel abandons the current selection.  The cart is not touched.
func (f *Flow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
}

// View is a read-only picture of the flow for rendering.
type View struct {
	State    State                  `json:"state"`
	Session  *model.Session         `json:"session,omitempty"`
	Layout   [][]seatgrid.Cell      `json:"layout,omitempty"`
	Selected []seatgrid.PendingSeat `json:"selected,omitempty"`
	Quantity int                    `json:"quantity,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// View snapshots the flow.
func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := View{State: f.state}
	if f.session != nil {
		s := *f.session
		v.Session = &s
	}
	switch p := f.selection.(type) {
	case *SeatPicker:
		v.Layout = p.grid.Layout()
		v.Selected = p.grid.Selected()
		v.Error = p.grid.ErrorMessage()
	case *QuantityPicker:
		v.Quantity = p.quantity
		v.Error = p.errMsg
	}
	return v
}

func (f *Flow) reset() {
	f.state = Browsing
	f.session = nil
	f.selection = nil
}

// Package cart owns the booking cart of one browser session: the
// mapping from identity key to cart line, quantity aggregation and the
// derived total.
package cart

import (
	"errors"
	"math"
	"sync"

	"github.com/fullindescription/VL-rebrand/internal/model"
)

// ErrFrozen is returned by mutations while a checkout is in flight.
var ErrFrozen = errors.New("cart is locked while checkout is in progress")

// ErrQuantityOverflow is returned when merging would exceed the largest
// representable quantity.  The existing line is left unchanged.
var ErrQuantityOverflow = errors.New("cart line quantity too large")

// Store is the authoritative cart of a browser session.  Lines keep
// insertion order for display; identity and totals do not depend on it.
// All methods are safe for concurrent use and every mutation completes
// under a single lock acquisition.
type Store struct {
	mu     sync.Mutex
	order  []model.LineKey
	lines  map[model.LineKey]*model.CartLine
	errMsg string
	frozen bool
}

// NewStore returns an empty cart.
func NewStore() *Store {
	return &Store{lines: make(map[model.LineKey]*model.CartLine)}
}

// AddLine merges the candidate into the cart.  An event line whose key
// already exists has its quantity increased by the candidate quantity;
// a seat that is already in the cart stays a single quantity-1 line.
// The candidate is not re-validated against AvailableTickets.
func (s *Store) AddLine(candidate model.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return ErrFrozen
	}
	if !candidate.IsSeat() {
		candidate.Row, candidate.Seat = nil, nil
	}
	if candidate.IsSeat() || candidate.Quantity < 1 {
		candidate.Quantity = 1
	}
	key := candidate.Key()
	if existing, ok := s.lines[key]; ok {
		if !existing.IsSeat() {
			if existing.Quantity > math.MaxInt-candidate.Quantity {
				return ErrQuantityOverflow
			}
			existing.Quantity += candidate.Quantity
		}
		s.errMsg = ""
		return nil
	}
	line := cloneLine(candidate)
	s.lines[key] = &line
	s.order = append(s.order, key)
	s.errMsg = ""
	return nil
}

// RemoveLine takes one unit off the first line matching the session and
// seat (nil seat matches the session's event line) and deletes the line
// when it reaches zero.  It reports whether a line matched.
func (s *Store) RemoveLine(sessionID uint64, seat *model.SeatRef) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return false, ErrFrozen
	}
	key, ok := s.match(sessionID, seat)
	if !ok {
		return false, nil
	}
	line := s.lines[key]
	line.Quantity--
	if line.Quantity <= 0 {
		s.delete(key)
	}
	s.errMsg = ""
	return true, nil
}

// RemoveAll deletes the whole matching line regardless of quantity.
func (s *Store) RemoveAll(sessionID uint64, seat *model.SeatRef) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return false, ErrFrozen
	}
	key, ok := s.match(sessionID, seat)
	if !ok {
		return false, nil
	}
	s.delete(key)
	s.errMsg = ""
	return true, nil
}

// Clear empties the cart.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return ErrFrozen
	}
	s.reset()
	return nil
}

// Lines returns a copy of the cart in insertion order.
func (s *Store) Lines() []model.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Len is the number of distinct lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Total is Σ price × quantity over the current lines, in cents.
func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total()
}

// Error is the last user-visible cart error message.
func (s *Store) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// SetError records a user-visible error message; empty clears it.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	s.errMsg = msg
	s.mu.Unlock()
}

// Freeze locks the cart for checkout and returns the lines being
// submitted.  It fails with ErrFrozen if a checkout already holds it.
func (s *Store) Freeze() ([]model.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return nil, ErrFrozen
	}
	s.frozen = true
	return s.snapshot(), nil
}

// Unfreeze releases the checkout lock; when clear is set the cart is
// emptied in the same step.
func (s *Store) Unfreeze(clear bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frozen = false
	if clear {
		s.reset()
	}
}

// Frozen reports whether a checkout currently holds the cart.
func (s *Store) Frozen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frozen
}

func (s *Store) match(sessionID uint64, seat *model.SeatRef) (model.LineKey, bool) {
	for _, key := range s.order {
		line := s.lines[key]
		if line.SessionID != sessionID {
			continue
		}
		ref, isSeat := line.SeatRef()
		if seat == nil && !isSeat {
			return key, true
		}
		if seat != nil && isSeat && ref == *seat {
			return key, true
		}
	}
	return "", false
}

func (s *Store) delete(key model.LineKey) {
	delete(s.lines, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Store) reset() {
	s.lines = make(map[model.LineKey]*model.CartLine)
	s.order = nil
	s.errMsg = ""
}

func (s *Store) snapshot() []model.CartLine {
	out := make([]model.CartLine, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, cloneLine(*s.lines[key]))
	}
	return out
}

func (s *Store) total() int64 {
	var sum int64
	for _, line := range s.lines {
		sum += line.Subtotal()
	}
	return sum
}

// cloneLine copies the seat pointers so callers never alias store state.
func cloneLine(l model.CartLine) model.CartLine {
	if l.Row != nil {
		r := *l.Row
		l.Row = &r
	}
	if l.Seat != nil {
		st := *l.Seat
		l.Seat = &st
	}
	return l
}

package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fullindescription/VL-rebrand/internal/cart"
	"github.com/fullindescription/VL-rebrand/internal/model"
	"github.com/fullindescription/VL-rebrand/internal/queue"
)

// FailureMessage is what the cart shows after a failed checkout.
const FailureMessage = "checkout failed, your cart was kept, please try again"

var (
	ErrEmptyCart  = errors.New("cart is empty")
	ErrInProgress = errors.New("checkout already in progress")
	ErrFailed     = errors.New("checkout failed")
)

// EventPublisher announces confirmed bookings.
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// Result reports a successful checkout.
type Result struct {
	Ref        string           `json:"ref,omitempty"`
	TotalCents int64            `json:"total_cents"`
	Lines      []model.CartLine `json:"lines"`
}

// Submitter runs checkouts against a booker.
type Submitter struct {
	booker    Booker
	publisher EventPublisher
	log       logrus.FieldLogger
}

// NewSubmitter returns a submitter.  publisher may be nil, in which case
// no booking events are sent.
func NewSubmitter(booker Booker, publisher EventPublisher, log logrus.FieldLogger) *Submitter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Submitter{booker: booker, publisher: publisher, log: log}
}

// Submit books the content of store.  The store is frozen while the
// booker runs; on success it is emptied, on failure it keeps its lines
// and gets FailureMessage as its error.  There is no retry.
func (s *Submitter) Submit(ctx context.Context, browserSession string, store *cart.Store) (Result, error) {
	lines, err := store.Freeze()
	if errors.Is(err, cart.ErrFrozen) {
		return Result{}, ErrInProgress
	}
	if err != nil {
		return Result{}, err
	}
	if len(lines) == 0 {
		store.Unfreeze(false)
		return Result{}, ErrEmptyCart
	}

	order := Order{BrowserSession: browserSession, Lines: lines, Request: BuildRequest(lines)}
	receipt, err := s.booker.Book(ctx, order)
	if err != nil {
		store.Unfreeze(false)
		store.SetError(FailureMessage)
		s.log.WithError(err).WithField("browser_session", browserSession).Warn("checkout failed")
		return Result{}, fmt.Errorf("%w: %w", ErrFailed, err)
	}
	store.Unfreeze(true)

	res := Result{Ref: receipt.Ref, Lines: lines}
	for _, l := range lines {
		res.TotalCents += l.Subtotal()
	}
	s.log.WithFields(logrus.Fields{
		"browser_session": browserSession,
		"ref":             res.Ref,
		"total_cents":     res.TotalCents,
	}).Info("checkout succeeded")

	if s.publisher != nil {
		ev := bookingEvent(browserSession, res, order.Request)
		if err := s.publisher.PublishBookingConfirmed(context.WithoutCancel(ctx), ev); err != nil {
			s.log.WithError(err).WithField("ref", ev.Ref).Warn("booking event not published")
		}
	}
	return res, nil
}

func bookingEvent(browserSession string, res Result, req Request) queue.BookingConfirmedEvent {
	ref := res.Ref
	if ref == "" {
		ref = uuid.NewString()
	}
	titles := make(map[uint64]model.CartLine, len(res.Lines))
	for _, l := range res.Lines {
		if _, ok := titles[l.SessionID]; !ok {
			titles[l.SessionID] = l
		}
	}
	items := make([]queue.BookedItem, 0, len(req.Sessions))
	for _, sr := range req.Sessions {
		first := titles[sr.SessionID]
		item := queue.BookedItem{SessionID: sr.SessionID, Title: first.Title, Time: first.Time, Quantity: sr.Quantity}
		for _, seat := range sr.Seats {
			item.Seats = append(item.Seats, seat.Label())
		}
		items = append(items, item)
	}
	return queue.BookingConfirmedEvent{
		Ref:            ref,
		BrowserSession: browserSession,
		Items:          items,
		TotalCents:     res.TotalCents,
		ConfirmedAt:    time.Now().UTC().Format(time.RFC3339),
	}
}

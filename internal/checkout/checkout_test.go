package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fullindescription/VL-rebrand/internal/cart"
	"github.com/fullindescription/VL-rebrand/internal/model"
	"github.com/fullindescription/VL-rebrand/internal/queue"
)

var (
	dune = model.Session{ID: 7, Title: "Dune", Time: "20:00:00", PriceCents: 450, AvailableTickets: 17, Kind: model.KindScreening}
	jazz = model.Session{ID: 9, Title: "Jazz", Time: "19:00:00", PriceCents: 1200, AvailableTickets: 40, Kind: model.KindEvent}
)

func quiet() *logrus.Logger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}

func filledStore(t *testing.T) *cart.Store {
	t.Helper()
	s := cart.NewStore()
	require.NoError(t, s.AddLine(model.NewSeatLine(dune, model.SeatRef{Row: 1, Seat: 1})))
	require.NoError(t, s.AddLine(model.NewEventLine(jazz, 2)))
	require.NoError(t, s.AddLine(model.NewSeatLine(dune, model.SeatRef{Row: 1, Seat: 2})))
	return s
}

func TestBuildRequestGroupsBySession(t *testing.T) {
	req := BuildRequest(filledStore(t).Lines())

	require.Len(t, req.Sessions, 2)
	assert.Equal(t, uint64(7), req.Sessions[0].SessionID)
	assert.Equal(t, []model.SeatRef{{Row: 1, Seat: 1}, {Row: 1, Seat: 2}}, req.Sessions[0].Seats)
	assert.Zero(t, req.Sessions[0].Quantity)
	assert.Equal(t, 2, req.Sessions[1].Quantity)
	assert.Empty(t, req.Sessions[1].Seats)

	body, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sessions":[
		{"sessionId":7,"seats":[{"row":1,"seat":1},{"row":1,"seat":2}]},
		{"sessionId":9,"seats":[],"quantity":2}
	]}`, string(body))
}

func TestHTTPBookerSuccessClearsCart(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := filledStore(t)
	sub := NewSubmitter(NewHTTPBooker(srv.URL, srv.Client(), time.Second), nil, quiet())
	res, err := sub.Submit(context.Background(), "browser-1", store)
	require.NoError(t, err)

	assert.Equal(t, int64(450*2+1200*2), res.TotalCents)
	assert.Len(t, got.Sessions, 2)
	assert.Zero(t, store.Len())
	assert.False(t, store.Frozen())
}

func TestHTTPBookerFailureKeepsCart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	store := filledStore(t)
	before := store.Lines()
	sub := NewSubmitter(NewHTTPBooker(srv.URL, srv.Client(), time.Second), nil, quiet())
	_, err := sub.Submit(context.Background(), "browser-1", store)

	assert.ErrorIs(t, err, ErrFailed)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, before, store.Lines())
	assert.Equal(t, FailureMessage, store.Error())
	assert.False(t, store.Frozen())
}

func TestHTTPBookerNetworkFailureKeepsCart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	store := filledStore(t)
	_, err := NewSubmitter(NewHTTPBooker(url, nil, time.Second), nil, quiet()).Submit(context.Background(), "b", store)
	assert.ErrorIs(t, err, ErrFailed)
	assert.Equal(t, 3, store.Len())
}

func TestSubmitEmptyCart(t *testing.T) {
	store := cart.NewStore()
	_, err := NewSubmitter(bookerFunc(nil), nil, quiet()).Submit(context.Background(), "b", store)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.False(t, store.Frozen())
}

type bookerFunc func(context.Context, Order) (Receipt, error)

func (f bookerFunc) Book(ctx context.Context, o Order) (Receipt, error) { return f(ctx, o) }

func TestStoreFrozenDuringCheckout(t *testing.T) {
	store := filledStore(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	booker := bookerFunc(func(context.Context, Order) (Receipt, error) {
		close(entered)
		<-release
		return Receipt{Ref: "r-1"}, nil
	})
	sub := NewSubmitter(booker, nil, quiet())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := sub.Submit(context.Background(), "b", store)
		assert.NoError(t, err)
	}()
	<-entered

	assert.ErrorIs(t, store.AddLine(model.NewEventLine(jazz, 1)), cart.ErrFrozen)
	_, err := sub.Submit(context.Background(), "b", store)
	assert.ErrorIs(t, err, ErrInProgress)

	close(release)
	wg.Wait()
	assert.Zero(t, store.Len())
}

type fakeWriter struct {
	got *model.Booking
	err error
}

func (f *fakeWriter) Create(_ context.Context, b *model.Booking) error {
	f.got = b
	return f.err
}

func TestLedgerBookerRecordsLines(t *testing.T) {
	w := &fakeWriter{}
	lines := filledStore(t).Lines()
	rec, err := NewLedgerBooker(w).Book(context.Background(), Order{BrowserSession: "b", Lines: lines})
	require.NoError(t, err)

	require.NotNil(t, w.got)
	assert.Equal(t, rec.Ref, w.got.Ref)
	assert.Equal(t, int64(3300), w.got.TotalCents)
	assert.Len(t, w.got.Items, 3)
	assert.Equal(t, "b", w.got.BrowserSession)
}

func TestLedgerBookerPropagatesFailure(t *testing.T) {
	w := &fakeWriter{err: errors.New("db down")}
	_, err := NewLedgerBooker(w).Book(context.Background(), Order{Lines: filledStore(t).Lines()})
	assert.ErrorContains(t, err, "db down")
}

type recordingPublisher struct {
	events []queue.BookingConfirmedEvent
	err    error
}

func (p *recordingPublisher) PublishBookingConfirmed(_ context.Context, ev queue.BookingConfirmedEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func TestSubmitPublishesBookingEvent(t *testing.T) {
	pub := &recordingPublisher{}
	booker := bookerFunc(func(context.Context, Order) (Receipt, error) { return Receipt{Ref: "r-9"}, nil })
	_, err := NewSubmitter(booker, pub, quiet()).Submit(context.Background(), "b", filledStore(t))
	require.NoError(t, err)

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, "r-9", ev.Ref)
	require.Len(t, ev.Items, 2)
	assert.Equal(t, []string{"R1-S1", "R1-S2"}, ev.Items[0].Seats)
	assert.Equal(t, "Jazz", ev.Items[1].Title)
	assert.Equal(t, 2, ev.Items[1].Quantity)
}

func TestPublishFailureDoesNotFailCheckout(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	store := filledStore(t)
	booker := bookerFunc(func(context.Context, Order) (Receipt, error) { return Receipt{}, nil })
	_, err := NewSubmitter(booker, pub, quiet()).Submit(context.Background(), "b", store)
	require.NoError(t, err)
	assert.Zero(t, store.Len())
	require.Len(t, pub.events, 1)
	assert.NotEmpty(t, pub.events[0].Ref)
}

package listing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fullindescription/VL-rebrand/internal/model"
)

func TestDecodeBareArrayNormalisesStrings(t *testing.T) {
	payload := []byte(`[
		{"id": 3, "title": "Dune", "time": "20:00:00", "date": "2026-10-15", "price": "350.50", "available_tickets": "17"},
		{"id": "4", "title": "Alien", "time": "22:00:00", "date": "2026-10-15", "price": 400, "available_tickets": 9}
	]`)

	got, err := Decode(payload, model.KindScreening)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.Session{ID: 3, Title: "Dune", Time: "20:00:00", Date: "2026-10-15", PriceCents: 35050, AvailableTickets: 17, Kind: model.KindScreening}, got[0])
	assert.Equal(t, uint64(4), got[1].ID)
	assert.Equal(t, int64(40000), got[1].PriceCents)
	assert.Equal(t, 9, got[1].AvailableTickets)
}

func TestDecodeDataEnvelopeWithGroups(t *testing.T) {
	payload := []byte(`{"data": [
		{"event": {"title": "Jazz night"}, "sessions": [
			{"id": 11, "time": "19:00:00", "date": "2026-10-15", "price": "1200", "available_tickets": "40"},
			{"id": 12, "time": "21:00:00", "date": "2026-10-15", "price": "1200", "available_tickets": "0"}
		]}
	]}`)

	got, err := Decode(payload, model.KindEvent)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Jazz night", got[0].Title)
	assert.Equal(t, 40, got[0].AvailableTickets)
	assert.Equal(t, model.KindEvent, got[1].Kind)
}

func TestDecodeNonArrayIsEmpty(t *testing.T) {
	for _, payload := range []string{`{"data": "oops"}`, `{"detail": "not found"}`, `42`, `null`} {
		got, err := Decode([]byte(payload), model.KindEvent)
		require.NoError(t, err, payload)
		assert.Empty(t, got, payload)
	}

	got, err := Decode([]byte(`<html>`), model.KindEvent)
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Empty(t, got)
}

func TestDecodeSkipsUnusableRecords(t *testing.T) {
	payload := []byte(`[
		{"id": 1, "title": "ok", "price": "10", "available_tickets": "-3"},
		{"title": "no id", "price": "10"},
		{"id": 2, "title": "bad price", "price": "free"}
	]`)

	got, err := Decode(payload, model.KindEvent)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].AvailableTickets)
}

func TestParseCents(t *testing.T) {
	cases := map[string]int64{"350": 35000, "350.5": 35050, "0.29": 29, " 12.34 ": 1234}
	for in, want := range cases {
		got, err := ParseCents(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseCents("-1")
	assert.Error(t, err)
}

func TestClientSessions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/events/getfilmsforday/", r.URL.Path)
		assert.Equal(t, "2026-10-15", r.URL.Query().Get("date"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": [{"id": 5, "title": "Dune", "time": "20:00:00", "price": "450", "available_tickets": "8"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", srv.Client(), nil)
	got, err := c.Sessions(context.Background(), model.KindScreening, "2026-10-15")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(45000), got[0].PriceCents)
}

func TestClientSessionsMalformedIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL, srv.Client(), nil).Sessions(context.Background(), model.KindEvent, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClientSessionsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, srv.Client(), nil).Sessions(context.Background(), model.KindEvent, "")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)

	_, err = NewClient(srv.URL, nil, nil).Sessions(context.Background(), "theatre", "")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

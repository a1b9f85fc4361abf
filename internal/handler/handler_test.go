package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fullindescription/VL-rebrand/internal/listing"
	"github.com/fullindescription/VL-rebrand/internal/middleware"
	"github.com/fullindescription/VL-rebrand/internal/model"
	"github.com/fullindescription/VL-rebrand/internal/repository"
	"github.com/fullindescription/VL-rebrand/internal/session"
	"github.com/fullindescription/VL-rebrand/internal/utils"
)

type listingFunc func(context.Context, model.Kind, string) ([]model.Session, error)

func (f listingFunc) Sessions(ctx context.Context, k model.Kind, d string) ([]model.Session, error) {
	return f(ctx, k, d)
}

func TestListDefaultsToToday(t *testing.T) {
	var gotDate string
	h := &ListingHandler{
		Source: listingFunc(func(_ context.Context, _ model.Kind, d string) ([]model.Session, error) {
			gotDate = d
			return nil, nil
		}),
		Now: func() time.Time { return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC) },
	}
	e := echo.New()
	e.GET("/v1/listings/:kind", h.List)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/listings/screening", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2026-10-15", gotDate)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
}

func TestListMapsUpstreamErrors(t *testing.T) {
	cases := map[error]int{
		&listing.APIError{StatusCode: 500}: http.StatusBadGateway,
		errors.New("dial tcp: refused"):   http.StatusServiceUnavailable,
	}
	for upstream, want := range cases {
		h := &ListingHandler{Source: listingFunc(func(context.Context, model.Kind, string) ([]model.Session, error) {
			return nil, upstream
		})}
		e := echo.New()
		e.GET("/v1/listings/:kind", h.List)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/listings/event", nil))
		assert.Equal(t, want, rec.Code, upstream.Error())
	}
}

type bookingsFunc func(context.Context, string) (*model.Booking, error)

func (f bookingsFunc) GetByRef(ctx context.Context, ref string) (*model.Booking, error) {
	return f(ctx, ref)
}

func TestBookingVisibleToOwnerOnly(t *testing.T) {
	log := logrus.New()
	log.Out = io.Discard
	reg := session.NewRegistry(time.Hour, log)
	owner, stranger := reg.Start(), reg.Start()

	h := &BookingHandler{Bookings: bookingsFunc(func(_ context.Context, ref string) (*model.Booking, error) {
		if ref != "r-1" {
			return nil, repository.ErrBookingNotFound
		}
		return &model.Booking{Ref: "r-1", BrowserSession: owner.ID, TotalCents: 900}, nil
	})}
	e := echo.New()
	e.GET("/v1/bookings/:ref", h.Get, middleware.SessionAuth("s", reg))

	get := func(id, ref string) int {
		tok, err := utils.NewSessionToken("s", id, time.Minute)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/v1/bookings/"+ref, nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, get(owner.ID, "r-1"))
	assert.Equal(t, http.StatusNotFound, get(stranger.ID, "r-1"))
	assert.Equal(t, http.StatusNotFound, get(owner.ID, "r-2"))
}

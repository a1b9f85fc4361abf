package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fullindescription/VL-rebrand/internal/model"
)

func newMock(t *testing.T) (*BookingRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewBookingRepo(db), mock
}

func sampleBooking() *model.Booking {
	row, seat := 1, 2
	return &model.Booking{
		Ref:            "4b7a0d2e-0000-4000-8000-000000000001",
		BrowserSession: "9c1d2f3e-0000-4000-8000-000000000002",
		TotalCents:     4050,
		CreatedAt:      time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC),
		Items: []model.BookingItem{
			{SessionID: 7, Title: "Dune", Time: "20:00:00", Row: &row, Seat: &seat, Quantity: 1, PriceCents: 450},
			{SessionID: 9, Title: "Jazz", Time: "19:00:00", Quantity: 3, PriceCents: 1200},
		},
	}
}

func TestCreateCommitsBookingAndItems(t *testing.T) {
	repo, mock := newMock(t)
	b := sampleBooking()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).
		WithArgs(b.Ref, b.BrowserSession, b.TotalCents, b.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO booking_items")).
		WithArgs(
			b.Ref, uint64(7), "Dune", "20:00:00", int64(1), int64(2), 1, int64(450),
			b.Ref, uint64(9), "Jazz", "19:00:00", nil, nil, 3, int64(1200),
		).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), b))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRollsBackOnItemFailure(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO booking_items")).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), sampleBooking())
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateRefIsConflict(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.Create(context.Background(), sampleBooking()), ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByRef(t *testing.T) {
	repo, mock := newMock(t)
	created := time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT browser_session, total_cents, created_at FROM bookings")).
		WithArgs("ref-1").
		WillReturnRows(sqlmock.NewRows([]string{"browser_session", "total_cents", "created_at"}).
			AddRow("sess-1", int64(3600), created))
	mock.ExpectQuery(regexp.QuoteMeta("FROM booking_items")).
		WithArgs("ref-1").
		WillReturnRows(sqlmock.NewRows([]string{"session_id", "title", "show_time", "seat_row", "seat_number", "quantity", "price_cents"}).
			AddRow(uint64(9), "Jazz", "19:00:00", nil, nil, 3, int64(1200)).
			AddRow(uint64(7), "Dune", "20:00:00", int64(2), int64(5), 1, int64(450)))

	b, err := repo.GetByRef(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3600), b.TotalCents)
	require.Len(t, b.Items, 2)
	assert.Nil(t, b.Items[0].Row)
	require.NotNil(t, b.Items[1].Seat)
	assert.Equal(t, 5, *b.Items[1].Seat)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByRefNotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"browser_session", "total_cents", "created_at"}))

	_, err := repo.GetByRef(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

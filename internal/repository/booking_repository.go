package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/fullindescription/VL-rebrand/internal/model"
)

// Schema creates the ledger tables.  Seat items carry row and seat;
// event items leave them NULL and carry a quantity.
const Schema = `
CREATE TABLE IF NOT EXISTS bookings (
  ref             CHAR(36)     NOT NULL PRIMARY KEY,
  browser_session CHAR(36)     NOT NULL,
  total_cents     BIGINT       NOT NULL,
  created_at      DATETIME     NOT NULL
);
CREATE TABLE IF NOT EXISTS booking_items (
  id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
  booking_ref CHAR(36)        NOT NULL,
  session_id  BIGINT UNSIGNED NOT NULL,
  title       VARCHAR(255)    NOT NULL,
  show_time   VARCHAR(16)     NOT NULL,
  seat_row    INT             NULL,
  seat_number INT             NULL,
  quantity    INT             NOT NULL,
  price_cents BIGINT          NOT NULL,
  FOREIGN KEY (booking_ref) REFERENCES bookings(ref) ON DELETE CASCADE
);`

const mysqlDuplicateEntry = 1062

// BookingRepo stores bookings and their items.  All timestamps are UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to db.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// Migrate creates the ledger tables if they are missing.
func (r *BookingRepo) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(Schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Create inserts b and all its items in one transaction.  A duplicate
// ref yields ErrConflict.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `INSERT INTO bookings (ref, browser_session, total_cents, created_at) VALUES (?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, q, b.Ref, b.BrowserSession, b.TotalCents, b.CreatedAt.UTC()); err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
			return ErrConflict
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	if err := r.createItemsTx(ctx, tx, b.Ref, b.Items); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// createItemsTx inserts all items in a single statement.  An empty slice
// is a no-op.
func (r *BookingRepo) createItemsTx(ctx context.Context, tx *sql.Tx, ref string, items []model.BookingItem) error {
	if len(items) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO booking_items (booking_ref, session_id, title, show_time, seat_row, seat_number, quantity, price_cents) VALUES `)
	args := make([]any, 0, len(items)*8)
	for i, it := range items {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args, ref, it.SessionID, it.Title, it.Time, nullInt(it.Row), nullInt(it.Seat), it.Quantity, it.PriceCents)
	}
	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("insert booking items: %w", err)
	}
	return nil
}

// GetByRef loads a booking with its items.
func (r *BookingRepo) GetByRef(ctx context.Context, ref string) (*model.Booking, error) {
	b := &model.Booking{Ref: ref}
	const q = `SELECT browser_session, total_cents, created_at FROM bookings WHERE ref = ?`
	err := r.db.QueryRowContext(ctx, q, ref).Scan(&b.BrowserSession, &b.TotalCents, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select booking: %w", err)
	}

	const qi = `SELECT session_id, title, show_time, seat_row, seat_number, quantity, price_cents
FROM booking_items WHERE booking_ref = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, qi, ref)
	if err != nil {
		return nil, fmt.Errorf("select booking items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it model.BookingItem
		var row, seat sql.NullInt64
		if err := rows.Scan(&it.SessionID, &it.Title, &it.Time, &row, &seat, &it.Quantity, &it.PriceCents); err != nil {
			return nil, fmt.Errorf("scan booking item: %w", err)
		}
		it.Row, it.Seat = intPtr(row), intPtr(seat)
		b.Items = append(b.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking items: %w", err)
	}
	return b, nil
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

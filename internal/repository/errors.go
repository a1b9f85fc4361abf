// Package repository persists confirmed bookings in MySQL.
package repository

import "errors"

// ErrBookingNotFound is returned when no booking carries the given ref.
var ErrBookingNotFound = errors.New("booking not found")

// ErrConflict is returned when a booking ref is already taken.  Handlers
// translate it into HTTP 409.
var ErrConflict = errors.New("conflict")

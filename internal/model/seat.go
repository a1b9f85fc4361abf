package model

import "fmt"

// SeatRef addresses a seat inside a session's synthesised layout.  Both
// coordinates are 1-indexed; a seat has no identity beyond the pair.
type SeatRef struct {
	Row  int `json:"row"`
	Seat int `json:"seat"`
}

// Valid reports whether both coordinates are positive.
func (s SeatRef) Valid() bool { return s.Row > 0 && s.Seat > 0 }

// Label renders the seat as "R<row>-S<seat>" for logs and booking events.
func (s SeatRef) Label() string { return fmt.Sprintf("R%d-S%d", s.Row, s.Seat) }

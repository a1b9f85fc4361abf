package listing

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/fullindescription/VL-rebrand/internal/model"
)

// ErrMalformed marks a payload that is not JSON at all.
var ErrMalformed = errors.New("malformed listing payload")

// flexNumber accepts a JSON number or a numeric string and keeps its text.
type flexNumber string

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = flexNumber(strings.TrimSpace(s))
		return nil
	}
	*n = flexNumber(b)
	return nil
}

type record struct {
	ID               flexNumber        `json:"id"`
	Title            string            `json:"title"`
	Time             string            `json:"time"`
	Date             string            `json:"date"`
	Price            flexNumber        `json:"price"`
	AvailableTickets flexNumber        `json:"available_tickets"`
	Event            *record           `json:"event,omitempty"`
	Movie            *record           `json:"movie,omitempty"`
	Sessions         []json.RawMessage `json:"sessions,omitempty"`
}

// Decode turns a listing payload into sessions of the given kind.
//
// The payload is either a bare array or an object whose "data" field is
// an array.  Items are session records, or groups carrying an "event" or
// "movie" header and a "sessions" array whose records inherit the
// header's title.  Anything that is not an array yields an empty list.
// Records without a usable id or price are skipped.
func Decode(payload []byte, kind model.Kind) ([]model.Session, error) {
	var raw any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return []model.Session{}, ErrMalformed
	}

	items, ok := raw.([]any)
	if obj, isObj := raw.(map[string]any); isObj {
		items, ok = obj["data"].([]any)
	}
	if !ok {
		return []model.Session{}, nil
	}

	out := make([]model.Session, 0, len(items))
	for _, it := range items {
		b, err := json.Marshal(it)
		if err != nil {
			continue
		}
		var r record
		if err := json.Unmarshal(b, &r); err != nil {
			continue
		}
		if len(r.Sessions) == 0 {
			if s, ok := r.session(kind, ""); ok {
				out = append(out, s)
			}
			continue
		}

		title := r.Title
		if r.Event != nil && r.Event.Title != "" {
			title = r.Event.Title
		}
		if r.Movie != nil && r.Movie.Title != "" {
			title = r.Movie.Title
		}
		for _, sb := range r.Sessions {
			var sr record
			if err := json.Unmarshal(sb, &sr); err != nil {
				continue
			}
			if s, ok := sr.session(kind, title); ok {
				out = append(out, s)
			}
		}
	}
	return out, nil
}

func (r record) session(kind model.Kind, fallbackTitle string) (model.Session, bool) {
	id, err := strconv.ParseUint(string(r.ID), 10, 64)
	if err != nil || id == 0 {
		return model.Session{}, false
	}
	price, err := ParseCents(string(r.Price))
	if err != nil {
		return model.Session{}, false
	}
	title := r.Title
	if title == "" {
		title = fallbackTitle
	}
	return model.Session{
		ID:               id,
		Title:            title,
		Time:             r.Time,
		Date:             r.Date,
		PriceCents:       price,
		AvailableTickets: parseTickets(string(r.AvailableTickets)),
		Kind:             kind,
	}, true
}

// ParseCents converts a decimal price such as "350", "350.5" or "350.50"
// into cents.
func ParseCents(s string) (int64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, strconv.ErrRange
	}
	return int64(math.Round(f * 100)), nil
}

// parseTickets reads a capacity, flooring fractions.  Unreadable or
// negative values count as sold out.
func parseTickets(s string) int {
	if n, err := strconv.Atoi(s); err == nil {
		return max(n, 0)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

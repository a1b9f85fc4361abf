// Package session keeps the per-browser state of the service: each
// browser session owns one cart and one reservation flow.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fullindescription/VL-rebrand/internal/cart"
	"github.com/fullindescription/VL-rebrand/internal/reservation"
)

// ErrInvalidID is returned for IDs that are not UUIDs.
var ErrInvalidID = errors.New("invalid session id")

// State is what one browser session owns.
type State struct {
	ID   string
	Cart *cart.Store
	Flow *reservation.Flow

	lastSeen time.Time
}

func newState(id string, now time.Time) *State {
	store := cart.NewStore()
	return &State{ID: id, Cart: store, Flow: reservation.New(store), lastSeen: now}
}

// Registry maps session IDs to their state and evicts idle sessions.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*State
	ttl      time.Duration
	now      func() time.Time
	log      logrus.FieldLogger
}

// NewRegistry returns a registry evicting sessions idle for longer than ttl.
func NewRegistry(ttl time.Duration, log logrus.FieldLogger) *Registry {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Registry{sessions: make(map[string]*State), ttl: ttl, now: time.Now, log: log}
}

// Start opens a new browser session with an empty cart.
func (r *Registry) Start() *State {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := newState(uuid.NewString(), r.now())
	r.sessions[st.ID] = st
	return st
}

// Get returns the state of id and marks it as seen.  A well-formed ID
// whose state was evicted or lost on restart gets a fresh empty state.
func (r *Registry) Get(id string) (*State, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	st, ok := r.sessions[id]
	if !ok {
		st = newState(id, now)
		r.sessions[id] = st
	}
	st.lastSeen = now
	return st, nil
}

// Dispose drops the state of id.  It reports whether a session existed.
func (r *Registry) Dispose(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.sessions[id]
	delete(r.sessions, id)
	return ok
}

// Len is the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts sessions idle for longer than the TTL.  Sessions with a
// checkout in flight are kept.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.ttl)
	n := 0
	for id, st := range r.sessions {
		if st.lastSeen.Before(cutoff) && !st.Cart.Frozen() {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// RunJanitor sweeps every interval until ctx is cancelled.
func (r *Registry) RunJanitor(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	r.log.WithField("every", every.String()).Info("session janitor started")
	for {
		select {
		case <-ctx.Done():
			r.log.Info("session janitor stopped")
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.log.WithField("evicted", n).Debug("idle sessions evicted")
			}
		}
	}
}

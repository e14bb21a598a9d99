// Package profile holds the process-wide responsive and profile state read by
// the shell. Each field has exactly one writer: the Tracker owns compact mode,
// and whoever loads the profile flags calls SetFlags once.
package profile

import (
	"sync"

	"github.com/trypromptly/promptly-cli/internal/api"
	"github.com/trypromptly/promptly-cli/internal/logger"
)

// State is a snapshot of the store.
type State struct {
	IsMobile bool
	Flags    api.ProfileFlags
}

// Store is the shared state. Readers never mutate it.
type Store struct {
	mu        sync.RWMutex
	isMobile  bool
	flags     api.ProfileFlags
	tracking  bool
	listeners map[int]func(State)
	nextID    int
}

// NewStore creates an empty store: expanded layout, no flags.
func NewStore() *Store {
	return &Store{
		flags:     api.ProfileFlags{},
		listeners: make(map[int]func(State)),
	}
}

// IsMobile reports whether the compact layout is active.
func (s *Store) IsMobile() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isMobile
}

// Flags returns a copy of the profile flags.
func (s *Store) Flags() api.ProfileFlags {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(api.ProfileFlags, len(s.flags))
	for k, v := range s.flags {
		out[k] = v
	}
	return out
}

// Snapshot returns both fields under one lock.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	flags := make(api.ProfileFlags, len(s.flags))
	for k, v := range s.flags {
		flags[k] = v
	}
	return State{IsMobile: s.isMobile, Flags: flags}
}

// SetFlags replaces the profile flags.
func (s *Store) SetFlags(flags api.ProfileFlags) {
	s.mu.Lock()
	s.flags = make(api.ProfileFlags, len(flags))
	for k, v := range flags {
		s.flags[k] = v
	}
	state := s.snapshotLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	logger.WithComponent("profile").Debug("profile flags set", "org_owner", flags.IsOrganizationOwner())
	notify(listeners, state)
}

// Subscribe registers fn to be called after every change. The returned
// function removes it.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) listenersLocked() []func(State) {
	out := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []func(State), state State) {
	for _, fn := range listeners {
		fn(state)
	}
}

// Tracker recomputes compact mode from resize events. Only one tracker can be
// attached to a store at a time.
type Tracker struct {
	store     *Store
	threshold int

	mu     sync.Mutex
	closed bool
}

// NewTracker attaches a tracker to the store. Widths strictly below
// threshold are compact. Returns nil if another tracker is still attached.
func NewTracker(store *Store, threshold int) *Tracker {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.tracking {
		logger.WithComponent("profile").Warn("tracker already attached")
		return nil
	}
	store.tracking = true
	return &Tracker{store: store, threshold: threshold}
}

// Threshold returns the compact breakpoint.
func (t *Tracker) Threshold() int {
	return t.threshold
}

// Resize records a new viewport width. Ignored after Close.
func (t *Tracker) Resize(width int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}

	mobile := width < t.threshold
	s := t.store
	s.mu.Lock()
	if s.isMobile == mobile {
		s.mu.Unlock()
		return
	}
	s.isMobile = mobile
	state := s.snapshotLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	logger.WithComponent("profile").Debug("layout changed", "width", width, "compact", mobile)
	notify(listeners, state)
}

// Close detaches the tracker. Safe to call more than once.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true

	t.store.mu.Lock()
	t.store.tracking = false
	t.store.mu.Unlock()
}

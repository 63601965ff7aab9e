// Package session holds the per-login booking state: who is booking, at
// which location, the current availability snapshot and any in-progress
// multi-day selection. Every ledger and reconciler call receives a Session
// explicitly instead of reading ambient state.
package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"seatsnag/internal/bookings/availability"
	bookingserrors "seatsnag/internal/bookings/errors"
	"seatsnag/pkg/dates"
	"seatsnag/pkg/model"
)

// Identity joins a person to their bookings. Two people with the same
// display name in one tenant are indistinguishable.
type Identity struct {
	TenantID    string `json:"tenant_id"`
	DisplayName string `json:"display_name"`
}

// Loader reads the active bookings of a location.
type Loader interface {
	FindActiveByLocation(ctx context.Context, locationID, from, to string) ([]*model.Booking, error)
}

type Session struct {
	ID       string
	Identity Identity
	Email    string
	Location *model.Location

	loader Loader

	mu         sync.RWMutex
	index      *availability.Index
	selecting  bool
	selected   map[string]struct{}
	committing bool
	lastSeen   time.Time
	refreshErr error

	refresher *availability.Refresher
}

func New(id string, identity Identity, email string, location *model.Location, loader Loader) *Session {
	return &Session{
		ID:       id,
		Identity: identity,
		Email:    email,
		Location: location,
		loader:   loader,
		index:    availability.Empty(location.ID),
		selected: make(map[string]struct{}),
		lastSeen: time.Now(),
	}
}

func (s *Session) LocationID() string {
	return s.Location.ID
}

func (s *Session) Capacity() int {
	return s.Location.Capacity
}

func (s *Session) Index() *availability.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Refresh swaps in a freshly loaded snapshot. On a read failure the
// previous snapshot stays in place and the error is returned.
func (s *Session) Refresh(ctx context.Context) error {
	bookings, err := s.loader.FindActiveByLocation(ctx, s.Location.ID, "", "")
	if err != nil {
		s.mu.Lock()
		s.refreshErr = err
		s.mu.Unlock()
		return fmt.Errorf("failed to refresh availability for location %s: %w", s.Location.ID, err)
	}

	idx := availability.Rebuild(s.Location.ID, bookings)
	s.mu.Lock()
	s.index = idx
	s.refreshErr = nil
	s.mu.Unlock()
	return nil
}

// LastRefreshError is the error from the most recent failed refresh, or nil
// once a later refresh succeeds.
func (s *Session) LastRefreshError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshErr
}

// StartPolling begins periodic refreshes. onError receives failures.
func (s *Session) StartPolling(ctx context.Context, interval time.Duration, onError func(error)) {
	s.mu.Lock()
	if s.refresher != nil {
		s.mu.Unlock()
		return
	}
	s.refresher = availability.NewRefresher(interval, s.Refresh, onError)
	if s.selecting {
		s.refresher.Suspend()
	}
	r := s.refresher
	s.mu.Unlock()

	r.Start(ctx)
}

func (s *Session) Close() {
	s.mu.Lock()
	r := s.refresher
	s.mu.Unlock()
	if r != nil {
		r.Stop()
	}
}

func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

// BeginSelect enters select mode, pausing polling and seeding the
// selection with the user's bookings from today through windowDays.
func (s *Session) BeginSelect(today time.Time, windowDays int) []string {
	window := dates.Window(today, windowDays)

	s.mu.Lock()
	s.selecting = true
	s.selected = make(map[string]struct{})
	for _, date := range window {
		if s.index.HasUser(date, s.Identity.DisplayName) {
			s.selected[date] = struct{}{}
		}
	}
	if s.refresher != nil {
		s.refresher.Suspend()
	}
	s.mu.Unlock()

	return s.Selected()
}

func (s *Session) Selecting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selecting
}

// Toggle adds or removes date from the selection and reports whether it
// is now selected. A full day cannot be added unless the user already
// holds a seat on it.
func (s *Session) Toggle(date string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.selecting {
		return false, fmt.Errorf("not in select mode")
	}
	if _, ok := s.selected[date]; ok {
		delete(s.selected, date)
		return false, nil
	}

	count := s.index.Count(date)
	if !availability.IsAdmissible(count, s.Location.Capacity) && !s.index.HasUser(date, s.Identity.DisplayName) {
		return false, bookingserrors.ErrDayFull
	}
	s.selected[date] = struct{}{}
	return true, nil
}

// Selected returns the selection in ascending date order.
func (s *Session) Selected() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.selected))
	for date := range s.selected {
		out = append(out, date)
	}
	sort.Strings(out)
	return out
}

// EndSelect leaves select mode and resumes polling.
func (s *Session) EndSelect() {
	s.mu.Lock()
	s.selecting = false
	s.selected = make(map[string]struct{})
	if s.refresher != nil {
		s.refresher.Resume()
	}
	s.mu.Unlock()
}

// BeginMutation marks a write as in flight. A second concurrent write on
// the same session is refused until EndMutation.
func (s *Session) BeginMutation() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.committing {
		return bookingserrors.ErrCommitInProgress
	}
	s.committing = true
	return nil
}

func (s *Session) EndMutation() {
	s.mu.Lock()
	s.committing = false
	s.mu.Unlock()
}

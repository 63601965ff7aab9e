package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	bookingserrors "seatsnag/internal/bookings/errors"
	"seatsnag/internal/trial"
	"seatsnag/pkg/model"
)

// memBookings is an in-memory BookingRepository. createFunc, when set,
// runs before each insert and can fail it.
type memBookings struct {
	mu         sync.Mutex
	seq        int
	rows       []*model.Booking
	createFunc func(b *model.Booking) error
	creates    int
	deletes    int
}

func (m *memBookings) Create(_ context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createFunc != nil {
		if err := m.createFunc(b); err != nil {
			return err
		}
	}
	m.seq++
	m.creates++
	b.ID = fmt.Sprintf("b-%d", m.seq)
	cp := *b
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memBookings) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, b := range m.rows {
		if b.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			m.deletes++
			return nil
		}
	}
	return bookingserrors.ErrNotFound
}

func (m *memBookings) FindActiveByLocation(_ context.Context, locationID, from, to string) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Booking
	for _, b := range m.rows {
		if b.LocationID != locationID || b.Status != model.BookingStatusActive {
			continue
		}
		if (from != "" && b.BookingDate < from) || (to != "" && b.BookingDate > to) {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memBookings) FindActiveForUser(_ context.Context, locationID, userName, date string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.rows {
		if b.LocationID == locationID && b.UserName == userName && b.BookingDate == date && b.Status == model.BookingStatusActive {
			cp := *b
			return &cp, nil
		}
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *memBookings) CountActive(_ context.Context, locationID, date string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, b := range m.rows {
		if b.LocationID == locationID && b.BookingDate == date && b.Status == model.BookingStatusActive {
			n++
		}
	}
	return n, nil
}

func (m *memBookings) DeleteByLocation(_ context.Context, locationID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*model.Booking
	var n int64
	for _, b := range m.rows {
		if b.LocationID == locationID {
			n++
			continue
		}
		kept = append(kept, b)
	}
	m.rows = kept
	return n, nil
}

// datesOf lists userName's booked dates in ascending order.
func (m *memBookings) datesOf(userName string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, b := range m.rows {
		if b.UserName == userName {
			out = append(out, b.BookingDate)
		}
	}
	sort.Strings(out)
	return out
}

func (m *memBookings) seed(userName string, dates ...string) {
	for _, d := range dates {
		_ = m.Create(context.Background(), &model.Booking{
			CompanyID:   "co-1",
			LocationID:  "loc-1",
			UserID:      "u-" + userName,
			UserName:    userName,
			BookingDate: d,
			Status:      model.BookingStatusActive,
		})
	}
	m.mu.Lock()
	m.creates = 0
	m.mu.Unlock()
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func (m *memUsers) FindByName(_ context.Context, companyID, name string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[companyID+"/"+name]; ok {
		return u, nil
	}
	return nil, bookingserrors.ErrUserNotFound
}

func (m *memUsers) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.users == nil {
		m.users = make(map[string]*model.User)
	}
	user.ID = fmt.Sprintf("u-%d", len(m.users)+1)
	m.users[user.CompanyID+"/"+user.Name] = user
	return nil
}

type memEvents struct {
	mu     sync.Mutex
	events []*model.AuditEvent
}

func (m *memEvents) Append(_ context.Context, event *model.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *memEvents) count(eventType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.events {
		if e.EventType == eventType {
			n++
		}
	}
	return n
}

type mockLocks struct {
	acquireFunc func(locationID, date, owner string) (string, error)
	released    []string
}

func (m *mockLocks) Acquire(_ context.Context, locationID, date, owner string, _ time.Duration) (string, error) {
	if m.acquireFunc != nil {
		return m.acquireFunc(locationID, date, owner)
	}
	return locationID + "/" + date, nil
}

func (m *mockLocks) Release(_ context.Context, lockID, _ string) error {
	m.released = append(m.released, lockID)
	return nil
}

type fakeTrials struct {
	status trial.Status
	err    error
}

func (f *fakeTrials) TrialStatus(context.Context, string) (trial.Status, error) {
	return f.status, f.err
}

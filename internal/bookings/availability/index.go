package availability

import (
	"math"
	"sort"

	"seatsnag/pkg/model"
)

type Entry struct {
	BookingID string `json:"booking_id"`
	UserName  string `json:"user_name"`
	UserID    string `json:"user_id"`
}

// Index maps each date to the active bookings of a single location, in the
// order storage returned them. An Index is immutable once built; a refresh
// produces a new one.
type Index struct {
	locationID string
	days       map[string][]Entry
}

// Rebuild groups the active bookings of locationID by date. Bookings for
// other locations or in any other status are ignored.
func Rebuild(locationID string, bookings []*model.Booking) *Index {
	idx := &Index{
		locationID: locationID,
		days:       make(map[string][]Entry),
	}
	for _, b := range bookings {
		if b == nil || b.LocationID != locationID || b.Status != model.BookingStatusActive {
			continue
		}
		idx.days[b.BookingDate] = append(idx.days[b.BookingDate], Entry{
			BookingID: b.ID,
			UserName:  b.UserName,
			UserID:    b.UserID,
		})
	}
	return idx
}

func Empty(locationID string) *Index {
	return Rebuild(locationID, nil)
}

func (i *Index) LocationID() string {
	return i.locationID
}

func (i *Index) Count(date string) int {
	return len(i.days[date])
}

// Entries returns a copy of the bookings held on date.
func (i *Index) Entries(date string) []Entry {
	src := i.days[date]
	if len(src) == 0 {
		return []Entry{}
	}
	out := make([]Entry, len(src))
	copy(out, src)
	return out
}

// Find returns the booking held by userName on date, matched exactly.
func (i *Index) Find(date, userName string) (Entry, bool) {
	for _, e := range i.days[date] {
		if e.UserName == userName {
			return e, true
		}
	}
	return Entry{}, false
}

func (i *Index) HasUser(date, userName string) bool {
	_, ok := i.Find(date, userName)
	return ok
}

// UserDates lists, in ascending order, every date on which userName holds a booking.
func (i *Index) UserDates(userName string) []string {
	var out []string
	for date := range i.days {
		if i.HasUser(date, userName) {
			out = append(out, date)
		}
	}
	sort.Strings(out)
	return out
}

// Dates lists every date with at least one booking, ascending.
func (i *Index) Dates() []string {
	out := make([]string, 0, len(i.days))
	for date, entries := range i.days {
		if len(entries) > 0 {
			out = append(out, date)
		}
	}
	sort.Strings(out)
	return out
}

func (i *Index) Total() int {
	n := 0
	for _, entries := range i.days {
		n += len(entries)
	}
	return n
}

// Utilization is the whole percentage of capacity booked on date. A
// capacity of zero yields 0 rather than dividing by zero.
func Utilization(date string, idx *Index, capacity int) int {
	if capacity <= 0 || idx == nil {
		return 0
	}
	return int(math.Round(float64(idx.Count(date)) / float64(capacity) * 100))
}

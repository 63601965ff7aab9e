// Package dates handles calendar dates as YYYY-MM-DD strings. Booking dates
// carry no time zone; a string is the same day everywhere.
package dates

import (
	"fmt"
	"time"
)

const Layout = "2006-01-02"

const Day = 24 * time.Hour

// Parse returns the date at midnight UTC.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

func Format(t time.Time) string {
	return t.Format(Layout)
}

// Today is the calendar date of now in now's own location.
func Today(now time.Time) string {
	return Format(now)
}

// Midnight strips the clock from t, keeping its location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func AddDays(date string, n int) (string, error) {
	t, err := Parse(date)
	if err != nil {
		return "", err
	}
	return Format(t.AddDate(0, 0, n)), nil
}

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Window lists n consecutive dates starting at start.
func Window(start time.Time, n int) []string {
	start = Midnight(start)
	out := make([]string, 0, max(n, 0))
	for i := 0; i < n; i++ {
		out = append(out, Format(start.AddDate(0, 0, i)))
	}
	return out
}

// Compare orders two valid dates lexically, which matches chronological order.
func Compare(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Weekday returns the weekday of a YYYY-MM-DD date.
func Weekday(date string) (time.Weekday, error) {
	t, err := Parse(date)
	if err != nil {
		return 0, err
	}
	return t.Weekday(), nil
}

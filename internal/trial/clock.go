// Package trial computes a tenant's entitlement state from its trial dates.
// Nothing here reads a stored status: the result is a pure function of the
// two timestamps and the current time, so an extended end date takes effect
// immediately.
package trial

import (
	"fmt"
	"math"
	"time"

	"seatsnag/pkg/model"
)

const day = 24 * time.Hour

type Policy struct {
	// ExpiringThresholdDays is the number of remaining days at or below
	// which an active trial is reported as expiring.
	ExpiringThresholdDays int
	// GraceDays is how long after the trial end the tenant keeps read access.
	GraceDays int
}

var DefaultPolicy = Policy{
	ExpiringThresholdDays: 3,
	GraceDays:             7,
}

type Status struct {
	Status     string `json:"status"`
	DaysLeft   int    `json:"days_left"`
	ReadOnly   bool   `json:"read_only"`
	Locked     bool   `json:"locked"`
	ShowBanner bool   `json:"show_banner"`
	Message    string `json:"message"`
}

// CanWrite reports whether bookings may be created or changed.
func (s Status) CanWrite() bool {
	return !s.ReadOnly && !s.Locked
}

// Classify applies DefaultPolicy.
func Classify(now time.Time, start, end *time.Time) Status {
	return DefaultPolicy.Classify(now, start, end)
}

func (p Policy) Classify(now time.Time, start, end *time.Time) Status {
	if start == nil {
		return Status{
			Status:  model.TrialStatusPending,
			Message: "Trial not started",
		}
	}
	// A started trial without an end date cannot be evaluated; fail closed.
	if end == nil {
		return expired()
	}

	daysLeft := ceilDays(end.Sub(now))
	if daysLeft > p.ExpiringThresholdDays {
		return Status{
			Status:   model.TrialStatusActive,
			DaysLeft: daysLeft,
			Message:  fmt.Sprintf("%d days left in trial", daysLeft),
		}
	}
	if daysLeft > 0 {
		return Status{
			Status:     model.TrialStatusExpiring,
			DaysLeft:   daysLeft,
			ShowBanner: true,
			Message:    fmt.Sprintf("Only %d %s left in trial!", daysLeft, plural(daysLeft)),
		}
	}

	graceEnd := end.Add(time.Duration(p.GraceDays) * day)
	graceLeft := ceilDays(graceEnd.Sub(now))
	if graceLeft > 0 {
		return Status{
			Status:     model.TrialStatusGracePeriod,
			DaysLeft:   graceLeft,
			ReadOnly:   true,
			ShowBanner: true,
			Message:    fmt.Sprintf("Trial expired. %d %s grace period remaining", graceLeft, plural(graceLeft)),
		}
	}

	return expired()
}

func expired() Status {
	return Status{
		Status:     model.TrialStatusExpired,
		ReadOnly:   true,
		Locked:     true,
		ShowBanner: true,
		Message:    "Trial and grace period have expired. Please upgrade to continue.",
	}
}

func ceilDays(d time.Duration) int {
	return int(math.Ceil(float64(d) / float64(day)))
}

func plural(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}

// Window returns the start and end of a fresh trial of length days beginning at now.
func Window(now time.Time, length int) (time.Time, time.Time) {
	return now, now.Add(time.Duration(length) * day)
}

// Extend pushes end forward by days. A missing end is extended from now.
func Extend(now time.Time, end *time.Time, days int) time.Time {
	base := now
	if end != nil {
		base = *end
	}
	return base.Add(time.Duration(days) * day)
}

package availability

import "math"

// WarningRatio is the share of capacity at which a day is shown as filling up.
const WarningRatio = 0.7

type DayStatus string

const (
	StatusAvailable DayStatus = "available"
	StatusWarning   DayStatus = "warning"
	StatusFull      DayStatus = "full"
)

// IsAdmissible reports whether one more booking fits on a day that already
// holds existing bookings. A non-positive capacity never admits anything.
func IsAdmissible(existing, capacity int) bool {
	return capacity > 0 && existing < capacity
}

// StatusFor bands a day by how many of its seats are taken.
func StatusFor(count, capacity int) DayStatus {
	switch {
	case count >= capacity:
		return StatusFull
	case count >= int(math.Ceil(float64(capacity)*WarningRatio)):
		return StatusWarning
	default:
		return StatusAvailable
	}
}

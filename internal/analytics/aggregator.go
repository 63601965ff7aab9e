// Package analytics derives utilization figures from a snapshot of
// locations and active bookings that the caller has already restricted to a
// date range and to the locations the viewer may see.
package analytics

import (
	"math"
	"sort"

	"seatsnag/pkg/model"
)

type DailyPoint struct {
	Date        string  `json:"date"`
	Utilization float64 `json:"utilization"`
	Bookings    int     `json:"bookings"`
	Capacity    int     `json:"capacity"`
}

type LocationPerformance struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Utilization      float64 `json:"utilization"`
	TotalBookings    int     `json:"total_bookings"`
	AvgDailyBookings float64 `json:"avg_daily_bookings"`
	Capacity         int     `json:"capacity"`
}

type Summary struct {
	AvgUtilization int    `json:"avg_utilization"`
	TotalBookings  int    `json:"total_bookings"`
	PeakDay        string `json:"peak_day,omitempty"`
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func totalCapacity(locations []*model.Location) int {
	total := 0
	for _, l := range locations {
		total += l.Capacity
	}
	return total
}

func countByDate(bookings []*model.Booking) map[string]int {
	out := make(map[string]int)
	for _, b := range bookings {
		out[b.BookingDate]++
	}
	return out
}

func countByLocationDate(bookings []*model.Booking) map[string]map[string]int {
	out := make(map[string]map[string]int)
	for _, b := range bookings {
		if out[b.LocationID] == nil {
			out[b.LocationID] = make(map[string]int)
		}
		out[b.LocationID][b.BookingDate]++
	}
	return out
}

// DailyUtilization yields one point per date in rng. Utilization is the
// plain mean of each location's own percentage, not seats filled over total
// seats; the two differ when capacities differ. A location with zero
// capacity contributes 0 to the mean.
func DailyUtilization(rng Range, locations []*model.Location, bookings []*model.Booking) []DailyPoint {
	perLocation := countByLocationDate(bookings)
	perDate := countByDate(bookings)
	capacity := totalCapacity(locations)

	days := rng.Dates()
	out := make([]DailyPoint, 0, len(days))
	for _, date := range days {
		var sum float64
		for _, l := range locations {
			if l.Capacity > 0 {
				sum += float64(perLocation[l.ID][date]) / float64(l.Capacity) * 100
			}
		}
		var avg float64
		if len(locations) > 0 {
			avg = sum / float64(len(locations))
		}
		out = append(out, DailyPoint{
			Date:        date,
			Utilization: round1(avg),
			Bookings:    perDate[date],
			Capacity:    capacity,
		})
	}
	return out
}

// RankLocations scores each location over rng.Days and orders them by
// utilization, highest first. Equal scores keep their input order.
func RankLocations(rng Range, locations []*model.Location, bookings []*model.Booking) []LocationPerformance {
	counts := make(map[string]int)
	for _, b := range bookings {
		counts[b.LocationID]++
	}

	out := make([]LocationPerformance, 0, len(locations))
	for _, l := range locations {
		n := counts[l.ID]
		var pct, avg float64
		if possible := l.Capacity * rng.Days; possible > 0 {
			pct = float64(n) / float64(possible) * 100
		}
		if rng.Days > 0 {
			avg = float64(n) / float64(rng.Days)
		}
		out = append(out, LocationPerformance{
			ID:               l.ID,
			Name:             l.Name,
			Utilization:      round1(pct),
			TotalBookings:    n,
			AvgDailyBookings: round1(avg),
			Capacity:         l.Capacity,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Utilization > out[j].Utilization
	})
	return out
}

// Summarize reports the mean daily utilization rounded to a whole percent,
// the booking total, and the first date holding the highest utilization.
func Summarize(points []DailyPoint) Summary {
	if len(points) == 0 {
		return Summary{}
	}
	var sum float64
	total := 0
	peak := points[0]
	for _, p := range points {
		sum += p.Utilization
		total += p.Bookings
		if p.Utilization > peak.Utilization {
			peak = p
		}
	}
	return Summary{
		AvgUtilization: int(math.Round(sum / float64(len(points)))),
		TotalBookings:  total,
		PeakDay:        peak.Date,
	}
}

package analytics

import (
	"fmt"
	"math"
	"time"

	"seatsnag/pkg/dates"
	"seatsnag/pkg/model"
)

const (
	HeatmapWeeks    = 4
	HeatmapWeekdays = 5
)

type HeatClass string

const (
	HeatEmpty  HeatClass = "empty"
	HeatLow    HeatClass = "low"
	HeatMedium HeatClass = "medium"
	HeatHigh   HeatClass = "high"
	HeatPeak   HeatClass = "peak"
)

var weekdayNames = [HeatmapWeekdays]string{"Mon", "Tue", "Wed", "Thu", "Fri"}

type HeatCell struct {
	Date        string    `json:"date"`
	DayName     string    `json:"day_name"`
	Utilization int       `json:"utilization"`
	Bookings    int       `json:"bookings"`
	Capacity    int       `json:"capacity"`
	Class       HeatClass `json:"class"`
}

type HeatRow struct {
	Label string     `json:"label"`
	Cells []HeatCell `json:"cells"`
}

// ClassFor buckets a cell. Zero capacity is always empty whatever the ratio.
func ClassFor(utilization, capacity int) HeatClass {
	switch {
	case capacity <= 0:
		return HeatEmpty
	case utilization >= 85:
		return HeatPeak
	case utilization >= 70:
		return HeatHigh
	case utilization >= 40:
		return HeatMedium
	default:
		return HeatLow
	}
}

// heatmapDate picks the date for a weekday column weeksBack weeks before
// today. A result landing on a weekend moves forward to Monday.
func heatmapDate(today time.Time, weeksBack, weekday int) time.Time {
	offset := weeksBack*7 + (int(today.Weekday()) - 1 - weekday)
	d := today.AddDate(0, 0, -offset)
	switch d.Weekday() {
	case time.Sunday:
		d = d.AddDate(0, 0, 1)
	case time.Saturday:
		d = d.AddDate(0, 0, 2)
	}
	return d
}

// WeeklyHeatmap covers the four most recent calendar weeks, Monday to
// Friday, oldest row first. Each cell is the day's bookings across every
// location over their summed capacity, as a whole percentage.
func WeeklyHeatmap(today time.Time, locations []*model.Location, bookings []*model.Booking) []HeatRow {
	today = dates.Midnight(today)
	perDate := countByDate(bookings)
	capacity := totalCapacity(locations)

	rows := make([]HeatRow, 0, HeatmapWeeks)
	for weeksBack := HeatmapWeeks - 1; weeksBack >= 0; weeksBack-- {
		row := HeatRow{
			Label: fmt.Sprintf("Week %d", weeksBack+1),
			Cells: make([]HeatCell, 0, HeatmapWeekdays),
		}
		for wd := 0; wd < HeatmapWeekdays; wd++ {
			date := dates.Format(heatmapDate(today, weeksBack, wd))
			n := perDate[date]
			util := 0
			if capacity > 0 {
				util = int(math.Round(float64(n) / float64(capacity) * 100))
			}
			row.Cells = append(row.Cells, HeatCell{
				Date:        date,
				DayName:     weekdayNames[wd],
				Utilization: util,
				Bookings:    n,
				Capacity:    capacity,
				Class:       ClassFor(util, capacity),
			})
		}
		rows = append(rows, row)
	}
	return rows
}

// HeatmapRange is the span of dates WeeklyHeatmap may read, so callers can
// fetch exactly the bookings it needs.
func HeatmapRange(today time.Time) Range {
	today = dates.Midnight(today)
	first := heatmapDate(today, HeatmapWeeks-1, 0)
	last := heatmapDate(today, 0, HeatmapWeekdays-1)
	return Range{
		Start: dates.Format(first),
		End:   dates.Format(last),
		Days:  int(last.Sub(first)/dates.Day) + 1,
	}
}

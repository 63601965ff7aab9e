package availability

import (
	"time"

	"seatsnag/pkg/dates"
)

type ViewMode string

const (
	ViewWeek  ViewMode = "week"
	ViewMonth ViewMode = "month"
)

// MaxVisibleAttendees is how many names a day card shows before "+N more".
const MaxVisibleAttendees = 4

type viewShape struct {
	workingDays int
	scanDays    int
}

var viewShapes = map[ViewMode]viewShape{
	ViewWeek:  {workingDays: 8, scanDays: 10},
	ViewMonth: {workingDays: 22, scanDays: 35},
}

func ParseViewMode(s string) (ViewMode, bool) {
	if s == "" {
		return ViewWeek, true
	}
	mode := ViewMode(s)
	_, ok := viewShapes[mode]
	return mode, ok
}

type Day struct {
	Date        string    `json:"date"`
	Weekday     string    `json:"weekday"`
	IsToday     bool      `json:"is_today"`
	Count       int       `json:"count"`
	Capacity    int       `json:"capacity"`
	Utilization int       `json:"utilization"`
	Status      DayStatus `json:"status"`
	Mine        bool      `json:"mine"`
	Attendees   []string  `json:"attendees"`
	More        int       `json:"more"`
}

// Calendar lays out the upcoming working days starting at today. Weekends
// are skipped. Week view shows up to 8 working days found within 10
// calendar days; month view shows up to 22 within 35.
func Calendar(today time.Time, mode ViewMode, idx *Index, capacity int, userName string) []Day {
	shape, ok := viewShapes[mode]
	if !ok {
		shape = viewShapes[ViewWeek]
	}
	if idx == nil {
		idx = Empty("")
	}

	start := dates.Midnight(today)
	out := make([]Day, 0, shape.workingDays)
	for i := 0; i < shape.scanDays && len(out) < shape.workingDays; i++ {
		d := start.AddDate(0, 0, i)
		if dates.IsWeekend(d) {
			continue
		}
		date := dates.Format(d)
		entries := idx.Entries(date)

		names := make([]string, 0, min(len(entries), MaxVisibleAttendees))
		for _, e := range entries {
			if len(names) == MaxVisibleAttendees {
				break
			}
			names = append(names, e.UserName)
		}

		out = append(out, Day{
			Date:        date,
			Weekday:     d.Weekday().String(),
			IsToday:     i == 0,
			Count:       len(entries),
			Capacity:    capacity,
			Utilization: Utilization(date, idx, capacity),
			Status:      StatusFor(len(entries), capacity),
			Mine:        idx.HasUser(date, userName),
			Attendees:   names,
			More:        len(entries) - len(names),
		})
	}
	return out
}

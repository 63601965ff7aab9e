package analytics

import (
	"fmt"
	"time"

	"seatsnag/pkg/dates"
)

type Period string

const (
	PeriodWeek    Period = "1w"
	PeriodMonth   Period = "1m"
	PeriodQuarter Period = "3m"
	PeriodYear    Period = "1y"
)

var periodDays = map[Period]int{
	PeriodWeek:    7,
	PeriodMonth:   30,
	PeriodQuarter: 90,
	PeriodYear:    365,
}

// Range is an inclusive span of calendar dates. Days is the divisor used
// for per-day averages, which for a period is the nominal length of the
// period rather than the number of dates listed.
type Range struct {
	Start string `json:"start_date"`
	End   string `json:"end_date"`
	Days  int    `json:"days_count"`
}

// ParsePeriod falls back to one week for anything unrecognised.
func ParsePeriod(s string) Period {
	p := Period(s)
	if _, ok := periodDays[p]; ok {
		return p
	}
	return PeriodWeek
}

// PeriodRange spans from today minus the period length up to today.
func PeriodRange(now time.Time, period Period) Range {
	days, ok := periodDays[period]
	if !ok {
		days = periodDays[PeriodWeek]
	}
	end := dates.Midnight(now)
	return Range{
		Start: dates.Format(end.AddDate(0, 0, -days)),
		End:   dates.Format(end),
		Days:  days,
	}
}

// NewRange builds an explicit inclusive range; Days is the number of dates in it.
func NewRange(start, end string) (Range, error) {
	s, err := dates.Parse(start)
	if err != nil {
		return Range{}, err
	}
	e, err := dates.Parse(end)
	if err != nil {
		return Range{}, err
	}
	if e.Before(s) {
		return Range{}, fmt.Errorf("range end %s is before start %s", end, start)
	}
	return Range{
		Start: start,
		End:   end,
		Days:  int(e.Sub(s)/dates.Day) + 1,
	}, nil
}

// Dates lists every date from Start to End inclusive, weekends included.
func (r Range) Dates() []string {
	s, err := dates.Parse(r.Start)
	if err != nil {
		return nil
	}
	e, err := dates.Parse(r.End)
	if err != nil {
		return nil
	}
	var out []string
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		out = append(out, dates.Format(d))
	}
	return out
}

func (r Range) Contains(date string) bool {
	return date >= r.Start && date <= r.End
}

package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"seatsnag/internal/analytics"
	"seatsnag/pkg/config"
	apperrors "seatsnag/pkg/errors"
	"seatsnag/pkg/logger"
	"seatsnag/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ────────────────────────────────────────────────
// Fakes
// ────────────────────────────────────────────────

type fakeLocations struct {
	locations []*model.Location
	pages     int
}

func (f *fakeLocations) ListByCompany(_ context.Context, companyID string) ([]*model.Location, error) {
	var out []*model.Location
	for _, l := range f.locations {
		if l.CompanyID == companyID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLocations) GetAll(_ context.Context, limit int, offset int64) ([]*model.Location, int64, error) {
	f.pages++
	total := int64(len(f.locations))
	if offset >= total {
		return nil, total, nil
	}
	end := min(offset+int64(limit), total)
	return f.locations[offset:end], total, nil
}

type query struct {
	ids      []string
	from, to string
}

type fakeReader struct {
	bookings []*model.Booking
	queries  []query
	err      error
}

func (f *fakeReader) FindActiveByLocations(_ context.Context, ids []string, from, to string) ([]*model.Booking, error) {
	f.queries = append(f.queries, query{ids: ids, from: from, to: to})
	if f.err != nil {
		return nil, f.err
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var out []*model.Booking
	for _, b := range f.bookings {
		if wanted[b.LocationID] && b.BookingDate >= from && b.BookingDate <= to {
			out = append(out, b)
		}
	}
	return out, nil
}

// ────────────────────────────────────────────────
// Helpers
// ────────────────────────────────────────────────

// Wednesday.
var fixedNow = time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

func newTestService(locs *fakeLocations, reader *fakeReader) *analyticsService {
	cfg := &config.Config{Log: logger.Discard(), MaxInClause: 10}
	svc := NewAnalyticsService(locs, reader, cfg).(*analyticsService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func bookingsOn(locationID, date string, n int) []*model.Booking {
	out := make([]*model.Booking, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &model.Booking{
			LocationID:  locationID,
			UserName:    fmt.Sprintf("user-%d", i),
			BookingDate: date,
			Status:      model.BookingStatusActive,
		})
	}
	return out
}

// ────────────────────────────────────────────────
// Tests
// ────────────────────────────────────────────────

func TestReport_SingleLocation(t *testing.T) {
	locs := &fakeLocations{locations: []*model.Location{
		{ID: "loc-1", CompanyID: "co-1", Name: "HQ", Capacity: 10},
		{ID: "loc-9", CompanyID: "co-2", Name: "Other", Capacity: 5},
	}}
	reader := &fakeReader{}
	reader.bookings = append(reader.bookings, bookingsOn("loc-1", "2025-03-10", 5)...)
	reader.bookings = append(reader.bookings, bookingsOn("loc-1", "2025-02-18", 1)...)
	reader.bookings = append(reader.bookings, bookingsOn("loc-9", "2025-03-10", 5)...)

	report, err := newTestService(locs, reader).Report(context.Background(), "co-1", analytics.PeriodWeek)
	require.NoError(t, err)

	require.Len(t, reader.queries, 1)
	assert.Equal(t, []string{"loc-1"}, reader.queries[0].ids)
	assert.Equal(t, "2025-02-17", reader.queries[0].from, "heatmap reaches further back than the week")
	assert.Equal(t, "2025-03-14", reader.queries[0].to)

	assert.Equal(t, analytics.Range{Start: "2025-03-05", End: "2025-03-12", Days: 7}, report.Range)
	assert.Equal(t, 5, report.Summary.TotalBookings)
	assert.Equal(t, "2025-03-10", report.Summary.PeakDay)

	for _, p := range report.Daily {
		if p.Date == "2025-03-10" {
			assert.Equal(t, 50.0, p.Utilization)
		} else {
			assert.Zero(t, p.Utilization, p.Date)
		}
	}

	require.Len(t, report.Locations, 1)
	assert.Equal(t, 5, report.Locations[0].TotalBookings)

	require.Len(t, report.Heatmap, analytics.HeatmapWeeks)
	assert.Equal(t, "2025-02-18", report.Heatmap[0].Cells[1].Date)
	assert.Equal(t, 1, report.Heatmap[0].Cells[1].Bookings)
	monday := report.Heatmap[analytics.HeatmapWeeks-1].Cells[0]
	assert.Equal(t, "2025-03-10", monday.Date)
	assert.Equal(t, 50, monday.Utilization)
	assert.Equal(t, analytics.HeatMedium, monday.Class)
}

func TestReport_AllLocationsChunksQueries(t *testing.T) {
	locs := &fakeLocations{}
	for i := 0; i < 215; i++ {
		locs.locations = append(locs.locations, &model.Location{
			ID:        fmt.Sprintf("loc-%03d", i),
			CompanyID: fmt.Sprintf("co-%d", i%7),
			Capacity:  4,
		})
	}
	reader := &fakeReader{bookings: bookingsOn("loc-214", "2025-03-11", 2)}

	report, err := newTestService(locs, reader).Report(context.Background(), "", analytics.PeriodMonth)
	require.NoError(t, err)

	assert.Equal(t, 3, locs.pages)
	assert.Len(t, reader.queries, 22)
	seen := 0
	for _, q := range reader.queries {
		assert.LessOrEqual(t, len(q.ids), 10)
		seen += len(q.ids)
	}
	assert.Equal(t, 215, seen)

	assert.Len(t, report.Locations, 215)
	assert.Equal(t, "loc-214", report.Locations[0].ID, "only location with bookings ranks first")
	assert.Equal(t, 2, report.Summary.TotalBookings)
}

func TestReport_NoLocations(t *testing.T) {
	reader := &fakeReader{}
	report, err := newTestService(&fakeLocations{}, reader).Report(context.Background(), "co-1", analytics.PeriodWeek)
	require.NoError(t, err)

	assert.Empty(t, reader.queries)
	assert.Empty(t, report.Locations)
	assert.Len(t, report.Daily, 8)
	assert.Equal(t, analytics.HeatEmpty, report.Heatmap[0].Cells[0].Class)
}

func TestReport_StorageFailure(t *testing.T) {
	locs := &fakeLocations{locations: []*model.Location{{ID: "loc-1", CompanyID: "co-1", Capacity: 10}}}
	reader := &fakeReader{err: errors.New("connection reset")}

	_, err := newTestService(locs, reader).Report(context.Background(), "co-1", analytics.PeriodWeek)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
}

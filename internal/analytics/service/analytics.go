package service

import (
	"context"
	"time"

	"seatsnag/internal/analytics"
	"seatsnag/internal/analytics/repository"
	"seatsnag/pkg/config"
	mongodb "seatsnag/pkg/db/mongo"
	apperrors "seatsnag/pkg/errors"
	"seatsnag/pkg/model"
)

const locationPageSize = 100

// LocationSource lists the locations a report may cover.
type LocationSource interface {
	ListByCompany(ctx context.Context, companyID string) ([]*model.Location, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Location, int64, error)
}

type Report struct {
	CompanyID    string                          `json:"company_id,omitempty"`
	Period       analytics.Period                `json:"period"`
	Range        analytics.Range                 `json:"range"`
	Summary      analytics.Summary               `json:"summary"`
	Daily        []analytics.DailyPoint          `json:"daily"`
	Locations    []analytics.LocationPerformance `json:"locations"`
	HeatmapRange analytics.Range                 `json:"heatmap_range"`
	Heatmap      []analytics.HeatRow             `json:"heatmap"`
}

type AnalyticsService interface {
	// Report covers one company, or every location when companyID is empty.
	Report(ctx context.Context, companyID string, period analytics.Period) (*Report, error)
}

type analyticsService struct {
	locations LocationSource
	bookings  repository.BookingReader
	cfg       *config.Config
	now       func() time.Time
}

func NewAnalyticsService(locations LocationSource, bookings repository.BookingReader, cfg *config.Config) AnalyticsService {
	return &analyticsService{
		locations: locations,
		bookings:  bookings,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *analyticsService) Report(ctx context.Context, companyID string, period analytics.Period) (*Report, error) {
	now := s.now()
	rng := analytics.PeriodRange(now, period)
	heatRange := analytics.HeatmapRange(now)

	locs, err := s.scope(ctx, companyID)
	if err != nil {
		return nil, err
	}

	from, to := rng.Start, rng.End
	if heatRange.Start < from {
		from = heatRange.Start
	}
	if heatRange.End > to {
		to = heatRange.End
	}

	bookings, err := s.fetch(ctx, locs, from, to)
	if err != nil {
		return nil, err
	}

	inPeriod := within(bookings, rng)
	daily := analytics.DailyUtilization(rng, locs, inPeriod)
	report := &Report{
		CompanyID:    companyID,
		Period:       period,
		Range:        rng,
		Summary:      analytics.Summarize(daily),
		Daily:        daily,
		Locations:    analytics.RankLocations(rng, locs, inPeriod),
		HeatmapRange: heatRange,
		Heatmap:      analytics.WeeklyHeatmap(now, locs, within(bookings, heatRange)),
	}

	s.cfg.Log.Debug("Analytics report built",
		"company_id", companyID,
		"period", period,
		"locations", len(locs),
		"bookings", len(inPeriod),
	)
	return report, nil
}

func (s *analyticsService) scope(ctx context.Context, companyID string) ([]*model.Location, error) {
	if companyID != "" {
		locs, err := s.locations.ListByCompany(ctx, companyID)
		if err != nil {
			return nil, err
		}
		return locs, nil
	}

	var all []*model.Location
	for offset := int64(0); ; {
		page, total, err := s.locations.GetAll(ctx, locationPageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		offset += int64(len(page))
		if len(page) == 0 || offset >= total {
			return all, nil
		}
	}
}

// fetch reads bookings in chunks so no query carries more location ids
// than the store accepts in one "in" clause.
func (s *analyticsService) fetch(ctx context.Context, locs []*model.Location, from, to string) ([]*model.Booking, error) {
	ids := make([]string, 0, len(locs))
	for _, l := range locs {
		ids = append(ids, l.ID)
	}

	size := s.cfg.MaxInClause
	if size <= 0 {
		size = config.DefaultMaxInClause
	}

	var out []*model.Booking
	for _, chunk := range mongodb.Chunk(ids, size) {
		bookings, err := s.bookings.FindActiveByLocations(ctx, chunk, from, to)
		if err != nil {
			s.cfg.Log.Error("Failed to load bookings for analytics",
				"locations", len(chunk),
				"from", from,
				"to", to,
				"error", err,
			)
			return nil, apperrors.Internal("Failed to load analytics", err)
		}
		out = append(out, bookings...)
	}
	return out, nil
}

func within(bookings []*model.Booking, rng analytics.Range) []*model.Booking {
	out := make([]*model.Booking, 0, len(bookings))
	for _, b := range bookings {
		if rng.Contains(b.BookingDate) {
			out = append(out, b)
		}
	}
	return out
}

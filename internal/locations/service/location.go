package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	locationserrors "seatsnag/internal/locations/errors"
	"seatsnag/internal/locations/repository"
	"seatsnag/internal/locations/validator"
	"seatsnag/pkg/config"
	mongodb "seatsnag/pkg/db/mongo"
	apperrors "seatsnag/pkg/errors"
	httputil "seatsnag/pkg/http"
	"seatsnag/pkg/model"
	"seatsnag/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

// BookingPurger removes every booking of a location.
type BookingPurger interface {
	DeleteByLocation(ctx context.Context, locationID string) (int64, error)
}

type LocationService interface {
	Create(ctx context.Context, loc *model.Location) error
	GetByID(ctx context.Context, id string) (*model.Location, error)
	GetByIDs(ctx context.Context, ids []string) ([]*model.Location, error)
	ListByCompany(ctx context.Context, companyID string) ([]*model.Location, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Location, int64, error)
	Update(ctx context.Context, id string, updates *model.LocationUpdate) (*model.Location, error)
	Delete(ctx context.Context, id string) error

	GenerateAccessCode(ctx context.Context) (string, error)
	FindByAccessCode(ctx context.Context, code string) ([]*model.Location, error)
}

type locationService struct {
	repo      repository.LocationRepository
	bookings  BookingPurger
	validator *validator.LocationValidator
	cfg       *config.Config
}

func NewLocationService(
	repo repository.LocationRepository,
	bookings BookingPurger,
	validator *validator.LocationValidator,
	cfg *config.Config,
) LocationService {
	return &locationService{
		repo:      repo,
		bookings:  bookings,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *locationService) Create(ctx context.Context, loc *model.Location) error {
	s.sanitize(loc)

	if loc.AccessCode == "" {
		code, err := s.GenerateAccessCode(ctx)
		if err != nil {
			return err
		}
		loc.AccessCode = code
	}
	loc.IsActive = true

	if err := s.validator.Validate(loc); err != nil {
		s.cfg.Log.Warn("Location validation failed",
			"name", loc.Name,
			"company_id", loc.CompanyID,
			"error", err,
		)
		return apperrors.Validation("Location validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		exists, err := s.repo.AccessCodeExists(sessCtx, loc.AccessCode)
		if err != nil {
			return fmt.Errorf("failed to check access code: %w", err)
		}
		if exists {
			return apperrors.Conflict(fmt.Sprintf("Access code %s is already in use", loc.AccessCode))
		}

		if loc.PIN != "" {
			taken, err := s.repo.PINExists(sessCtx, loc.CompanyID, loc.PIN, "")
			if err != nil {
				return fmt.Errorf("failed to check PIN: %w", err)
			}
			if taken {
				return apperrors.Conflict("PIN is already used by another location")
			}
		}

		return s.repo.Create(sessCtx, loc)
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		if errors.Is(err, locationserrors.ErrDuplicateAccessCode) {
			return apperrors.Conflict(fmt.Sprintf("Access code %s is already in use", loc.AccessCode))
		}
		s.cfg.Log.Error("Failed to create location",
			"name", loc.Name,
			"company_id", loc.CompanyID,
			"error", err,
		)
		return apperrors.Internal("Failed to create location", err)
	}

	s.cfg.Log.Info("Location created successfully",
		"id", loc.ID,
		"name", loc.Name,
		"company_id", loc.CompanyID,
		"capacity", loc.Capacity,
	)
	return nil
}

func (s *locationService) GetByID(ctx context.Context, id string) (*model.Location, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Location ID cannot be empty")
	}

	loc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "Failed to retrieve location")
	}
	return loc, nil
}

func (s *locationService) GetByIDs(ctx context.Context, ids []string) ([]*model.Location, error) {
	var out []*model.Location
	for _, chunk := range mongodb.Chunk(ids, s.maxInClause()) {
		locs, err := s.repo.FindByIDs(ctx, chunk)
		if err != nil {
			s.cfg.Log.Error("Failed to get locations by id", "count", len(chunk), "error", err)
			return nil, apperrors.Internal("Failed to retrieve locations", err)
		}
		out = append(out, locs...)
	}
	return out, nil
}

func (s *locationService) ListByCompany(ctx context.Context, companyID string) ([]*model.Location, error) {
	if companyID == "" {
		return nil, apperrors.InvalidInput("Company ID cannot be empty")
	}

	locs, err := s.repo.FindByCompany(ctx, companyID)
	if err != nil {
		s.cfg.Log.Error("Failed to list locations",
			"company_id", companyID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve locations", err)
	}
	return locs, nil
}

func (s *locationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Location, int64, error) {
	limit = httputil.NormalizeLimit(limit)
	if offset < 0 {
		offset = 0
	}

	var count int64
	var locs []*model.Location
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count locations", "error", err)
			errCount = apperrors.Internal("Failed to count locations", err)
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		locs, err = s.repo.FindAll(ctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all locations",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve locations", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return locs, count, nil
}

func (s *locationService) Update(ctx context.Context, id string, updates *model.LocationUpdate) (*model.Location, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Location ID cannot be empty")
	}

	s.sanitizeUpdate(updates)
	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, apperrors.Validation("Location validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "Failed to check location existence")
	}

	merged := mergeLocationUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		return nil, apperrors.Validation("Location validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if updates.PIN != nil && merged.PIN != "" && merged.PIN != existing.PIN {
		taken, err := s.repo.PINExists(ctx, merged.CompanyID, merged.PIN, id)
		if err != nil {
			return nil, apperrors.Internal("Failed to check PIN", err)
		}
		if taken {
			return nil, apperrors.Conflict("PIN is already used by another location")
		}
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		return nil, s.translate(err, id, "Failed to update location")
	}

	s.cfg.Log.Info("Location updated successfully",
		"id", id,
		"name", merged.Name,
		"capacity", merged.Capacity,
		"is_active", merged.IsActive,
	)
	return merged, nil
}

// Delete removes the location and all of its bookings.
func (s *locationService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Location ID cannot be empty")
	}

	var purged int64
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Delete(sessCtx, id); err != nil {
			return err
		}
		var err error
		purged, err = s.bookings.DeleteByLocation(sessCtx, id)
		return err
	})
	if err != nil {
		return s.translate(err, id, "Failed to delete location")
	}

	s.cfg.Log.Info("Location deleted successfully",
		"id", id,
		"bookings_deleted", purged,
	)
	return nil
}

// GenerateAccessCode returns a fresh code not used by any location.
func (s *locationService) GenerateAccessCode(ctx context.Context) (string, error) {
	for range maxAccessCodeAttempts {
		code, err := newAccessCode(randomSource)
		if err != nil {
			return "", apperrors.Internal("Failed to generate access code", err)
		}
		exists, err := s.repo.AccessCodeExists(ctx, code)
		if err != nil {
			s.cfg.Log.Error("Failed to check access code", "error", err)
			return "", apperrors.Internal("Failed to generate access code", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", apperrors.Internal("Failed to generate access code", locationserrors.ErrCodeExhausted)
}

// FindByAccessCode returns the active locations behind an access code,
// falling back to a legacy PIN when no code matches.
func (s *locationService) FindByAccessCode(ctx context.Context, code string) ([]*model.Location, error) {
	code = sanitizer.AccessCode(code)
	if code == "" {
		return nil, apperrors.InvalidInput("Access code cannot be empty")
	}

	var locs []*model.Location
	if validator.IsAccessCode(code) {
		var err error
		locs, err = s.repo.FindActiveByAccessCode(ctx, code)
		if err != nil {
			s.cfg.Log.Error("Failed to find locations by access code", "error", err)
			return nil, apperrors.Internal("Failed to look up access code", err)
		}
	}

	if len(locs) == 0 && validator.IsPIN(code) {
		var err error
		locs, err = s.repo.FindActiveByPIN(ctx, code)
		if err != nil {
			s.cfg.Log.Error("Failed to find locations by PIN", "error", err)
			return nil, apperrors.Internal("Failed to look up access code", err)
		}
	}

	if len(locs) == 0 {
		return nil, apperrors.New(apperrors.CodeNotFound, "No active location matches this access code", http.StatusNotFound)
	}
	return locs, nil
}

func (s *locationService) translate(err error, id, message string) error {
	if apperrors.IsAppError(err) {
		return err
	}
	if errors.Is(err, locationserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Location", id)
	}
	if errors.Is(err, locationserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid location ID format")
	}
	s.cfg.Log.Error(message,
		"id", id,
		"error", err,
	)
	return apperrors.Internal(message, err)
}

func (s *locationService) maxInClause() int {
	if s.cfg.MaxInClause > 0 {
		return s.cfg.MaxInClause
	}
	return config.DefaultMaxInClause
}

func (s *locationService) sanitize(loc *model.Location) {
	loc.Name = sanitizer.LocationName(loc.Name)
	loc.Address = sanitizer.TrimAndNormalize(loc.Address)
	loc.AccessCode = sanitizer.AccessCode(loc.AccessCode)
	loc.PIN = sanitizer.PIN(loc.PIN)
}

func (s *locationService) sanitizeUpdate(updates *model.LocationUpdate) {
	if updates.Name != "" {
		updates.Name = sanitizer.LocationName(updates.Name)
	}
	if updates.Address != nil {
		normalized := sanitizer.TrimAndNormalize(*updates.Address)
		updates.Address = &normalized
	}
	if updates.PIN != nil {
		normalized := sanitizer.PIN(*updates.PIN)
		updates.PIN = &normalized
	}
}

func mergeLocationUpdates(existing *model.Location, updates *model.LocationUpdate) *model.Location {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Address != nil {
		merged.Address = *updates.Address
	}
	if updates.Capacity != nil {
		merged.Capacity = *updates.Capacity
	}
	if updates.PIN != nil {
		merged.PIN = *updates.PIN
	}
	if updates.IsActive != nil {
		merged.IsActive = *updates.IsActive
	}
	if updates.Settings != nil {
		merged.Settings = *updates.Settings
	}

	merged.ID = existing.ID
	merged.CompanyID = existing.CompanyID
	merged.AccessCode = existing.AccessCode
	merged.CreatedAt = existing.CreatedAt

	return &merged
}

package service

import (
	"context"
	"errors"
	"time"

	"seatsnag/internal/bookings/availability"
	bookingserrors "seatsnag/internal/bookings/errors"
	"seatsnag/internal/bookings/repository"
	"seatsnag/internal/bookings/session"
	"seatsnag/internal/bookings/validator"
	"seatsnag/internal/metrics"
	"seatsnag/internal/trial"
	"seatsnag/pkg/config"
	"seatsnag/pkg/dates"
	apperrors "seatsnag/pkg/errors"
	"seatsnag/pkg/model"

	"github.com/google/uuid"
)

// EntitlementChecker reports a tenant's current trial state.
type EntitlementChecker interface {
	TrialStatus(ctx context.Context, companyID string) (trial.Status, error)
}

type BookingService interface {
	StartSession(ctx context.Context, identity session.Identity, email string, location *model.Location) (*session.Session, error)
	Session(ctx context.Context, id string) (*session.Session, error)
	EndSession(ctx context.Context, id string)

	Availability(ctx context.Context, sess *session.Session, mode availability.ViewMode) (*AvailabilityView, error)
	BookDay(ctx context.Context, sess *session.Session, date string) (*model.Booking, error)
	CancelDay(ctx context.Context, sess *session.Session, date, userName string) error

	BeginSelect(ctx context.Context, sess *session.Session) ([]string, error)
	ToggleDate(ctx context.Context, sess *session.Session, date string) (bool, error)
	CommitSelection(ctx context.Context, sess *session.Session) (*CommitResult, error)
	CancelSelect(ctx context.Context, sess *session.Session) error

	TrialStatus(ctx context.Context, sess *session.Session) (trial.Status, error)
}

type AvailabilityView struct {
	LocationID   string             `json:"location_id"`
	LocationName string             `json:"location_name"`
	Capacity     int                `json:"capacity"`
	Mode         string             `json:"mode"`
	Today        string             `json:"today"`
	Days         []availability.Day `json:"days"`
	Selecting    bool               `json:"selecting"`
	Selected     []string           `json:"selected,omitempty"`
	// RefreshError is set while the shown snapshot is older than the last
	// failed reload.
	RefreshError string `json:"refresh_error,omitempty"`
}

type bookingService struct {
	bookings   repository.BookingRepository
	ledger     *Ledger
	guard      *capacityGuard
	reconciler *Reconciler
	trials     EntitlementChecker
	registry   *session.Registry
	validator  *validator.BookingValidator
	metrics    *metrics.Metrics
	cfg        *config.Config
	now        func() time.Time
}

func NewBookingService(
	bookings repository.BookingRepository,
	users repository.UserRepository,
	events repository.EventRepository,
	locks repository.BookingLockRepository,
	trials EntitlementChecker,
	registry *session.Registry,
	validator *validator.BookingValidator,
	m *metrics.Metrics,
	cfg *config.Config,
) BookingService {
	ledger := NewLedger(bookings, users, events, m, cfg.Log)
	guard := &capacityGuard{
		bookings: bookings,
		locks:    locks,
		strict:   cfg.StrictCapacity,
		lockTTL:  cfg.LockTTL,
		log:      cfg.Log,
	}
	return &bookingService{
		bookings:   bookings,
		ledger:     ledger,
		guard:      guard,
		reconciler: NewReconciler(ledger, guard, cfg.BookingWindowDays, m, cfg.Log),
		trials:     trials,
		registry:   registry,
		validator:  validator,
		metrics:    m,
		cfg:        cfg,
		now:        time.Now,
	}
}

func (s *bookingService) StartSession(ctx context.Context, identity session.Identity, email string, location *model.Location) (*session.Session, error) {
	if _, err := s.entitlement(ctx, identity.TenantID, false); err != nil {
		return nil, err
	}
	if !location.IsActive {
		return nil, apperrors.Forbidden("This location is not active")
	}

	sess := session.New(uuid.NewString(), identity, email, location, s.bookings)
	if err := sess.Refresh(ctx); err != nil {
		s.cfg.Log.Error("Failed to load availability for new session",
			"location_id", location.ID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to load bookings, please retry", err)
	}

	sessionLog := s.cfg.Log.With("session_id", sess.ID, "location_id", location.ID)
	sess.StartPolling(context.Background(), s.cfg.PollInterval, func(err error) {
		sessionLog.Warn("Availability refresh failed", "error", err)
	})

	s.registry.Put(sess)
	s.metrics.SetActiveSessions(s.registry.Len())

	s.cfg.Log.Info("Booking session started",
		"session_id", sess.ID,
		"company_id", identity.TenantID,
		"location_id", location.ID,
		"user_name", identity.DisplayName,
	)
	return sess, nil
}

func (s *bookingService) Session(_ context.Context, id string) (*session.Session, error) {
	sess, err := s.registry.Get(id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrSessionNotFound) {
			return nil, apperrors.Unauthorized("Session expired, please log in again")
		}
		return nil, apperrors.Internal("Failed to load session", err)
	}
	return sess, nil
}

func (s *bookingService) EndSession(_ context.Context, id string) {
	s.registry.Remove(id)
	s.metrics.SetActiveSessions(s.registry.Len())
}

func (s *bookingService) Availability(ctx context.Context, sess *session.Session, mode availability.ViewMode) (*AvailabilityView, error) {
	if _, err := s.entitlement(ctx, sess.Identity.TenantID, false); err != nil {
		return nil, err
	}

	now := s.now()
	view := &AvailabilityView{
		LocationID:   sess.LocationID(),
		LocationName: sess.Location.Name,
		Capacity:     sess.Capacity(),
		Mode:         string(mode),
		Today:        dates.Today(now),
		Days:         availability.Calendar(now, mode, sess.Index(), sess.Capacity(), sess.Identity.DisplayName),
		Selecting:    sess.Selecting(),
	}
	if view.Selecting {
		view.Selected = sess.Selected()
	}
	if err := sess.LastRefreshError(); err != nil {
		view.RefreshError = "Showing saved availability; latest changes could not be loaded"
	}
	return view, nil
}

func (s *bookingService) BookDay(ctx context.Context, sess *session.Session, date string) (*model.Booking, error) {
	if err := sess.BeginMutation(); err != nil {
		return nil, apperrors.Conflict("Another booking operation is in progress")
	}
	defer sess.EndMutation()

	if _, err := s.entitlement(ctx, sess.Identity.TenantID, true); err != nil {
		return nil, err
	}
	if err := s.checkBookableDate(sess, date); err != nil {
		return nil, err
	}
	if err := s.checkUserLimit(sess, date); err != nil {
		return nil, err
	}

	if _, err := s.bookings.FindActiveForUser(ctx, sess.LocationID(), sess.Identity.DisplayName, date); err == nil {
		return nil, apperrors.Conflict("You already have a booking on this day")
	} else if !errors.Is(err, bookingserrors.ErrNotFound) {
		s.cfg.Log.Error("Failed to check for an existing booking",
			"location_id", sess.LocationID(),
			"booking_date", date,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to create booking, please retry", err)
	}

	var booking *model.Booking
	count, admitted, err := s.guard.admit(ctx, sess, date, func() error {
		var err error
		booking, err = s.ledger.CreateBooking(ctx, sess, date)
		return err
	})
	if err != nil {
		if errors.Is(err, bookingserrors.ErrLockHeld) {
			return nil, apperrors.Conflict("Another booking for this day is being saved, please retry")
		}
		s.cfg.Log.Error("Failed to create booking",
			"location_id", sess.LocationID(),
			"booking_date", date,
			"user_name", sess.Identity.DisplayName,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to create booking, please retry", err)
	}
	if !admitted {
		s.metrics.CapacityRejected(sess.LocationID())
		s.cfg.Log.Warn("Booking rejected, day is full",
			"location_id", sess.LocationID(),
			"booking_date", date,
			"count", count,
			"capacity", sess.Capacity(),
		)
		s.refresh(ctx, sess)
		return nil, apperrors.DayFull(date, count, sess.Capacity())
	}

	s.refresh(ctx, sess)
	return booking, nil
}

func (s *bookingService) CancelDay(ctx context.Context, sess *session.Session, date, userName string) error {
	if err := sess.BeginMutation(); err != nil {
		return apperrors.Conflict("Another booking operation is in progress")
	}
	defer sess.EndMutation()

	if err := s.validateDate(date); err != nil {
		return err
	}
	if userName == "" {
		userName = sess.Identity.DisplayName
	}
	if _, err := s.entitlement(ctx, sess.Identity.TenantID, true); err != nil {
		return err
	}

	removed, err := s.ledger.CancelBooking(ctx, sess, date, userName)
	if err != nil {
		if apperrors.IsAppError(err) {
			s.cfg.Log.Warn("Booking cancellation refused",
				"location_id", sess.LocationID(),
				"booking_date", date,
				"user_name", sess.Identity.DisplayName,
				"target_user_name", userName,
			)
			return err
		}
		s.cfg.Log.Error("Failed to cancel booking",
			"location_id", sess.LocationID(),
			"booking_date", date,
			"error", err,
		)
		return apperrors.Internal("Failed to cancel booking, please retry", err)
	}
	if !removed {
		s.cfg.Log.Debug("No booking to cancel",
			"location_id", sess.LocationID(),
			"booking_date", date,
			"user_name", userName,
		)
	}

	s.refresh(ctx, sess)
	return nil
}

func (s *bookingService) BeginSelect(ctx context.Context, sess *session.Session) ([]string, error) {
	if _, err := s.entitlement(ctx, sess.Identity.TenantID, true); err != nil {
		return nil, err
	}
	if sess.Selecting() {
		return sess.Selected(), nil
	}
	return sess.BeginSelect(s.now(), windowDays(sess, s.cfg.BookingWindowDays)), nil
}

func (s *bookingService) ToggleDate(ctx context.Context, sess *session.Session, date string) (bool, error) {
	if !sess.Selecting() {
		return false, apperrors.InvalidInput("Not in select mode")
	}
	if err := s.checkBookableDate(sess, date); err != nil {
		return false, err
	}

	selected, err := sess.Toggle(date)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrDayFull) {
			return false, apperrors.DayFull(date, sess.Index().Count(date), sess.Capacity())
		}
		return false, apperrors.InvalidInput(err.Error())
	}

	if limit := sess.Location.Settings.MaxBookingsPerUser; selected && limit > 0 && len(sess.Selected()) > limit {
		_, _ = sess.Toggle(date)
		return false, apperrors.Validation("Too many days selected", map[string]any{
			"max_bookings_per_user": limit,
		})
	}
	return selected, nil
}

func (s *bookingService) CommitSelection(ctx context.Context, sess *session.Session) (*CommitResult, error) {
	if !sess.Selecting() {
		return nil, apperrors.InvalidInput("Not in select mode")
	}
	if _, err := s.entitlement(ctx, sess.Identity.TenantID, true); err != nil {
		return nil, err
	}
	if err := sess.BeginMutation(); err != nil {
		return nil, apperrors.Conflict("Another booking operation is in progress")
	}
	defer sess.EndMutation()
	defer sess.EndSelect()

	selected := sess.Selected()
	for _, date := range selected {
		if err := s.checkBookableDate(sess, date); err != nil {
			return nil, err
		}
	}

	result, err := s.reconciler.Commit(ctx, sess, selected)
	if err != nil {
		return nil, apperrors.Internal("Some changes could not be saved, please retry", err).WithDetails(map[string]any{
			"cancelled": result.Cancelled,
			"created":   result.Created,
			"skipped":   result.Skipped,
		})
	}
	return result, nil
}

func (s *bookingService) CancelSelect(_ context.Context, sess *session.Session) error {
	if !sess.Selecting() {
		return apperrors.InvalidInput("Not in select mode")
	}
	sess.EndSelect()
	return nil
}

func (s *bookingService) TrialStatus(ctx context.Context, sess *session.Session) (trial.Status, error) {
	status, err := s.trials.TrialStatus(ctx, sess.Identity.TenantID)
	if err != nil {
		if apperrors.IsAppError(err) {
			return trial.Status{}, err
		}
		return trial.Status{}, apperrors.Internal("Failed to check subscription status", err)
	}
	return status, nil
}

// entitlement enforces the trial clock: locked tenants get nothing, and
// writes also need a tenant that is not read-only.
func (s *bookingService) entitlement(ctx context.Context, companyID string, write bool) (trial.Status, error) {
	status, err := s.trials.TrialStatus(ctx, companyID)
	if err != nil {
		if apperrors.IsAppError(err) {
			return status, err
		}
		s.cfg.Log.Error("Failed to check trial status",
			"company_id", companyID,
			"error", err,
		)
		return status, apperrors.Internal("Failed to check subscription status", err)
	}
	if status.Locked {
		return status, apperrors.Locked(status.Message)
	}
	if write && !status.CanWrite() {
		return status, apperrors.Forbidden(status.Message)
	}
	return status, nil
}

func (s *bookingService) validateDate(date string) error {
	if err := s.validator.ValidateDate(&validator.DateRequest{Date: date}); err != nil {
		return apperrors.Validation("Invalid booking date", map[string]any{
			"error": err.Error(),
		})
	}
	return nil
}

// checkBookableDate accepts dates from today through the end of the
// booking window, on working days unless the location allows weekends.
func (s *bookingService) checkBookableDate(sess *session.Session, date string) error {
	if err := s.validateDate(date); err != nil {
		return err
	}

	window := dates.Window(s.now(), windowDays(sess, s.cfg.BookingWindowDays))
	if dates.Compare(date, window[0]) < 0 {
		return apperrors.InvalidInput("Cannot book a date in the past")
	}
	if dates.Compare(date, window[len(window)-1]) > 0 {
		return apperrors.InvalidInput("Date is outside the booking window")
	}

	if !sess.Location.Settings.AllowWeekendBookings {
		weekday, _ := dates.Weekday(date)
		if weekday == time.Saturday || weekday == time.Sunday {
			return apperrors.InvalidInput("Bookings are only available on working days")
		}
	}
	return nil
}

func (s *bookingService) checkUserLimit(sess *session.Session, date string) error {
	limit := sess.Location.Settings.MaxBookingsPerUser
	if limit <= 0 {
		return nil
	}
	today := dates.Today(s.now())
	upcoming := 0
	for _, d := range sess.Index().UserDates(sess.Identity.DisplayName) {
		if d != date && dates.Compare(d, today) >= 0 {
			upcoming++
		}
	}
	if upcoming >= limit {
		return apperrors.Validation("Booking limit reached", map[string]any{
			"max_bookings_per_user": limit,
		})
	}
	return nil
}

func (s *bookingService) refresh(ctx context.Context, sess *session.Session) {
	if err := sess.Refresh(ctx); err != nil {
		s.cfg.Log.Warn("Failed to refresh availability",
			"location_id", sess.LocationID(),
			"error", err,
		)
	}
}

// windowDays prefers the location's own window over the service default.
func windowDays(sess *session.Session, fallback int) int {
	if n := sess.Location.Settings.BookingWindowDays; n > 0 {
		return n
	}
	if fallback > 0 {
		return fallback
	}
	return config.DefaultBookingWindowDays
}

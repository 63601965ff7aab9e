package service

import (
	"context"
	"errors"
	"fmt"

	bookingserrors "seatsnag/internal/bookings/errors"
	"seatsnag/internal/bookings/repository"
	"seatsnag/internal/bookings/session"
	"seatsnag/internal/metrics"
	apperrors "seatsnag/pkg/errors"
	"seatsnag/pkg/logger"
	"seatsnag/pkg/model"
)

// Ledger appends and removes bookings and records one audit event per
// effective change. It does not check capacity; callers do that first.
type Ledger struct {
	bookings repository.BookingRepository
	users    repository.UserRepository
	events   repository.EventRepository
	metrics  *metrics.Metrics
	log      *logger.Logger
}

func NewLedger(
	bookings repository.BookingRepository,
	users repository.UserRepository,
	events repository.EventRepository,
	m *metrics.Metrics,
	log *logger.Logger,
) *Ledger {
	return &Ledger{
		bookings: bookings,
		users:    users,
		events:   events,
		metrics:  m,
		log:      log,
	}
}

// ResolveUser finds the user with this exact display name in the tenant,
// creating one on first sight.
func (l *Ledger) ResolveUser(ctx context.Context, identity session.Identity, locationID string) (*model.User, error) {
	user, err := l.users.FindByName(ctx, identity.TenantID, identity.DisplayName)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, bookingserrors.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to resolve user %q: %w", identity.DisplayName, err)
	}

	user = &model.User{
		CompanyID:         identity.TenantID,
		Name:              identity.DisplayName,
		DefaultLocationID: locationID,
		IsActive:          true,
	}
	if err := l.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user %q: %w", identity.DisplayName, err)
	}

	l.log.Info("User created on first booking",
		"user_id", user.ID,
		"company_id", identity.TenantID,
		"user_name", identity.DisplayName,
	)
	return user, nil
}

// CreateBooking writes an active booking for the session's user on date.
func (l *Ledger) CreateBooking(ctx context.Context, sess *session.Session, date string) (*model.Booking, error) {
	user, err := l.ResolveUser(ctx, sess.Identity, sess.LocationID())
	if err != nil {
		return nil, err
	}

	booking := &model.Booking{
		CompanyID:    sess.Identity.TenantID,
		LocationID:   sess.LocationID(),
		LocationName: sess.Location.Name,
		UserID:       user.ID,
		UserName:     sess.Identity.DisplayName,
		BookingDate:  date,
		Status:       model.BookingStatusActive,
	}
	if err := l.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	l.appendEvent(ctx, booking, model.EventBookingCreated)
	l.metrics.BookingCreated(booking.LocationID)

	l.log.Info("Booking created successfully",
		"booking_id", booking.ID,
		"location_id", booking.LocationID,
		"booking_date", date,
		"user_name", booking.UserName,
	)
	return booking, nil
}

// CancelBooking removes userName's booking on date. Only the session's own
// name may be cancelled. It reports whether a booking was removed; a
// missing booking is not an error and records nothing.
func (l *Ledger) CancelBooking(ctx context.Context, sess *session.Session, date, userName string) (bool, error) {
	if userName != sess.Identity.DisplayName {
		return false, apperrors.Forbidden("You can only cancel your own bookings")
	}

	booking, err := l.bookings.FindActiveForUser(ctx, sess.LocationID(), userName, date)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := l.bookings.Delete(ctx, booking.ID); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	l.appendEvent(ctx, booking, model.EventBookingCancelled)
	l.metrics.BookingCancelled(booking.LocationID)

	l.log.Info("Booking cancelled successfully",
		"booking_id", booking.ID,
		"location_id", booking.LocationID,
		"booking_date", date,
		"user_name", userName,
	)
	return true, nil
}

// appendEvent logs and drops failures; the booking itself is the record of truth.
func (l *Ledger) appendEvent(ctx context.Context, booking *model.Booking, eventType string) {
	event := &model.AuditEvent{
		CompanyID:  booking.CompanyID,
		LocationID: booking.LocationID,
		UserID:     booking.UserID,
		EventType:  eventType,
		EventData: map[string]any{
			"booking_date": booking.BookingDate,
			"booking_id":   booking.ID,
		},
	}
	if err := l.events.Append(ctx, event); err != nil {
		l.log.Error("Failed to append audit event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}

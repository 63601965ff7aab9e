package service

import (
	"context"
	"fmt"
	"time"

	"seatsnag/internal/bookings/session"
	"seatsnag/internal/metrics"
	"seatsnag/pkg/dates"
	"seatsnag/pkg/logger"
)

// CommitResult lists what a selection commit changed. Skipped holds
// selected days that were full by the time they were written.
type CommitResult struct {
	Cancelled []string `json:"cancelled"`
	Created   []string `json:"created"`
	Skipped   []string `json:"skipped"`
}

// Reconciler replaces a user's bookings in the look-ahead window with a
// selected set: every existing booking is cancelled first, then each
// selected day is re-created if it still has room.
type Reconciler struct {
	ledger     *Ledger
	guard      *capacityGuard
	windowDays int
	now        func() time.Time
	metrics    *metrics.Metrics
	log        *logger.Logger
}

func NewReconciler(ledger *Ledger, guard *capacityGuard, windowDays int, m *metrics.Metrics, log *logger.Logger) *Reconciler {
	return &Reconciler{
		ledger:     ledger,
		guard:      guard,
		windowDays: windowDays,
		now:        time.Now,
		metrics:    m,
		log:        log,
	}
}

// Commit applies selected for the session's user. On the first failing
// write the rest of the batch is abandoned and the partial result is
// returned with the error; nothing already applied is rolled back. The
// session's index is refreshed either way.
func (r *Reconciler) Commit(ctx context.Context, sess *session.Session, selected []string) (*CommitResult, error) {
	result := &CommitResult{
		Cancelled: []string{},
		Created:   []string{},
		Skipped:   []string{},
	}

	// Start from storage, not the snapshot frozen while selecting.
	if err := sess.Refresh(ctx); err != nil {
		return result, err
	}

	err := r.apply(ctx, sess, selected, result)

	if refreshErr := sess.Refresh(ctx); refreshErr != nil {
		r.log.Warn("Failed to refresh availability after commit",
			"location_id", sess.LocationID(),
			"error", refreshErr,
		)
	}

	r.metrics.ReconcileSkipped(sess.LocationID(), len(result.Skipped))
	if err != nil {
		r.metrics.ReconcileFailed(sess.LocationID())
		r.log.Error("Selection commit abandoned",
			"location_id", sess.LocationID(),
			"user_name", sess.Identity.DisplayName,
			"cancelled", len(result.Cancelled),
			"created", len(result.Created),
			"error", err,
		)
		return result, err
	}

	r.log.Info("Selection committed successfully",
		"location_id", sess.LocationID(),
		"user_name", sess.Identity.DisplayName,
		"cancelled", len(result.Cancelled),
		"created", len(result.Created),
		"skipped", len(result.Skipped),
	)
	return result, nil
}

func (r *Reconciler) apply(ctx context.Context, sess *session.Session, selected []string, result *CommitResult) error {
	name := sess.Identity.DisplayName
	idx := sess.Index()

	// Every cancellation finishes before the first create.
	for _, date := range dates.Window(r.now(), windowDays(sess, r.windowDays)) {
		if !idx.HasUser(date, name) {
			continue
		}
		removed, err := r.ledger.CancelBooking(ctx, sess, date, name)
		if err != nil {
			return fmt.Errorf("failed to cancel booking on %s: %w", date, err)
		}
		if removed {
			result.Cancelled = append(result.Cancelled, date)
		}
	}

	for _, date := range selected {
		_, admitted, err := r.guard.admit(ctx, sess, date, func() error {
			_, err := r.ledger.CreateBooking(ctx, sess, date)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to book %s: %w", date, err)
		}
		if !admitted {
			result.Skipped = append(result.Skipped, date)
			continue
		}
		result.Created = append(result.Created, date)
	}
	return nil
}

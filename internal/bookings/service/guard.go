package service

import (
	"context"
	"fmt"
	"time"

	"seatsnag/internal/bookings/availability"
	"seatsnag/internal/bookings/repository"
	"seatsnag/internal/bookings/session"
	"seatsnag/pkg/logger"

	"github.com/google/uuid"
)

// capacityGuard runs the count-then-write sequence for one day. In strict
// mode the sequence holds an advisory lock on (location, date); otherwise
// two writers may both pass the count and overfill the day.
type capacityGuard struct {
	bookings repository.BookingRepository
	locks    repository.BookingLockRepository
	strict   bool
	lockTTL  time.Duration
	log      *logger.Logger
}

// admit re-reads the day's count from storage and calls write when one more
// booking fits. It returns the count it saw and whether write ran.
func (g *capacityGuard) admit(ctx context.Context, sess *session.Session, date string, write func() error) (int, bool, error) {
	if g.strict && g.locks != nil {
		owner := uuid.NewString()
		lockID, err := g.locks.Acquire(ctx, sess.LocationID(), date, owner, g.lockTTL)
		if err != nil {
			return 0, false, err
		}
		defer func() {
			// Release with a fresh context so a cancelled request still frees the lock.
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := g.locks.Release(releaseCtx, lockID, owner); err != nil {
				g.log.Warn("Failed to release booking lock",
					"lock_id", lockID,
					"error", err,
				)
			}
		}()
	}

	count64, err := g.bookings.CountActive(ctx, sess.LocationID(), date)
	if err != nil {
		return 0, false, fmt.Errorf("failed to count bookings for %s: %w", date, err)
	}
	count := int(count64)

	if !availability.IsAdmissible(count, sess.Capacity()) {
		return count, false, nil
	}
	if err := write(); err != nil {
		return count, false, err
	}
	return count, true, nil
}

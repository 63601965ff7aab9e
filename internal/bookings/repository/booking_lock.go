package repository

import (
	"context"
	"fmt"
	"time"

	bookingserrors "seatsnag/internal/bookings/errors"
	"seatsnag/pkg/config"
	mongodb "seatsnag/pkg/db/mongo"
	"seatsnag/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "booking_locks"

// BookingLockRepository provides advisory locks keyed by (location, date).
type BookingLockRepository interface {
	Acquire(ctx context.Context, locationID, date, owner string, ttl time.Duration) (string, error)
	Release(ctx context.Context, lockID, owner string) error
}

type mongoBookingLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewBookingLockRepository(cfg *config.Config) BookingLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

func LockID(locationID, date string) string {
	return fmt.Sprintf("booking_lock_%s_%s", locationID, date)
}

// Acquire inserts the lock document. A live lock held by someone else
// yields ErrLockHeld; an expired one is taken over.
func (r *mongoBookingLockRepository) Acquire(ctx context.Context, locationID, date, owner string, ttl time.Duration) (string, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	lock := &model.BookingLock{
		ID:        LockID(locationID, date),
		Owner:     owner,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	_, err := r.collection.InsertOne(ctx, lock)
	if err == nil {
		return lock.ID, nil
	}
	if !mongodb.IsDuplicateKey(err) {
		return "", fmt.Errorf("failed to acquire booking lock: %w", err)
	}

	// Take over a lock whose holder died without releasing it.
	result, err := r.collection.ReplaceOne(ctx, bson.M{
		"_id":        lock.ID,
		"expires_at": bson.M{"$lt": now},
	}, lock)
	if err != nil {
		return "", fmt.Errorf("failed to take over expired booking lock: %w", err)
	}
	if result.MatchedCount == 0 {
		return "", bookingserrors.ErrLockHeld
	}
	return lock.ID, nil
}

func (r *mongoBookingLockRepository) Release(ctx context.Context, lockID, owner string) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID, "owner": owner}); err != nil {
		return fmt.Errorf("failed to release booking lock: %w", err)
	}
	return nil
}

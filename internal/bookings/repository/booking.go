package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "seatsnag/internal/bookings/errors"
	"seatsnag/pkg/config"
	mongodb "seatsnag/pkg/db/mongo"
	"seatsnag/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "bookings"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	Delete(ctx context.Context, id string) error
	FindActiveByLocation(ctx context.Context, locationID, from, to string) ([]*model.Booking, error)
	FindActiveForUser(ctx context.Context, locationID, userName, date string) (*model.Booking, error)
	CountActive(ctx context.Context, locationID, date string) (int64, error)
	DeleteByLocation(ctx context.Context, locationID string) (int64, error)
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now
	if booking.Status == "" {
		booking.Status = model.BookingStatusActive
	}

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

// Delete removes the booking outright; cancelled bookings are not kept.
func (r *mongoBookingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if result.DeletedCount == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

// FindActiveByLocation returns the location's active bookings ordered by
// date then creation time. Empty from or to leaves that side open.
func (r *mongoBookingRepository) FindActiveByLocation(ctx context.Context, locationID, from, to string) ([]*model.Booking, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"location_id": locationID,
		"status":      model.BookingStatusActive,
	}
	if dateFilter := dateRange(from, to); dateFilter != nil {
		filter["booking_date"] = dateFilter
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "booking_date", Value: 1},
		{Key: "created_at", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

// FindActiveForUser matches userName exactly.
func (r *mongoBookingRepository) FindActiveForUser(ctx context.Context, locationID, userName, date string) (*model.Booking, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"location_id":  locationID,
		"user_name":    userName,
		"booking_date": date,
		"status":       model.BookingStatusActive,
	}

	var booking model.Booking
	if err := r.collection.FindOne(ctx, filter).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

func (r *mongoBookingRepository) CountActive(ctx context.Context, locationID, date string) (int64, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{
		"location_id":  locationID,
		"booking_date": date,
		"status":       model.BookingStatusActive,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) DeleteByLocation(ctx context.Context, locationID string) (int64, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"location_id": locationID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete bookings for location: %w", err)
	}
	return result.DeletedCount, nil
}

func dateRange(from, to string) bson.M {
	if from == "" && to == "" {
		return nil
	}
	m := bson.M{}
	if from != "" {
		m["$gte"] = from
	}
	if to != "" {
		m["$lte"] = to
	}
	return m
}

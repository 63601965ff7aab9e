package repository

import (
	"context"
	"fmt"

	"seatsnag/pkg/config"
	mongodb "seatsnag/pkg/db/mongo"
	"seatsnag/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "bookings"

// BookingReader is the read side analytics needs. Each call carries a
// single "in" clause, so callers keep locationIDs within the store limit.
type BookingReader interface {
	FindActiveByLocations(ctx context.Context, locationIDs []string, from, to string) ([]*model.Booking, error)
}

type mongoBookingReader struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBookingReader(cfg *config.Config) BookingReader {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingReader{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoBookingReader) FindActiveByLocations(ctx context.Context, locationIDs []string, from, to string) ([]*model.Booking, error) {
	if len(locationIDs) == 0 {
		return nil, nil
	}

	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"location_id":  bson.M{"$in": locationIDs},
		"status":       model.BookingStatusActive,
		"booking_date": bson.M{"$gte": from, "$lte": to},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "booking_date", Value: 1}}).
		SetProjection(bson.M{
			"location_id":  1,
			"booking_date": 1,
			"status":       1,
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

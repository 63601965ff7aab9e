package repository

import (
	"context"
	"fmt"
	"time"

	"seatsnag/pkg/config"
	mongodb "seatsnag/pkg/db/mongo"
	"seatsnag/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const EventCollectionName = "analytics_events"

// EventRepository appends audit events. Events are never updated or removed.
type EventRepository interface {
	Append(ctx context.Context, event *model.AuditEvent) error
}

type mongoEventRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoEventRepository(cfg *config.Config) EventRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoEventRepository{
		cfg:        cfg,
		collection: db.Collection(EventCollectionName),
	}
}

func (r *mongoEventRepository) Append(ctx context.Context, event *model.AuditEvent) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	event.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to append %s event: %w", event.EventType, err)
	}
	return nil
}

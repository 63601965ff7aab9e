package mailqueue

import (
	"context"
	"fmt"
	"time"

	"seatsnag/pkg/config"
	mongodb "seatsnag/pkg/db/mongo"
	"seatsnag/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const CollectionName = "mail"

type MongoEnqueuer struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoEnqueuer(cfg *config.Config) *MongoEnqueuer {
	return &MongoEnqueuer{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName),
	}
}

func (e *MongoEnqueuer) Enqueue(ctx context.Context, m model.Mail) error {
	ctx, cancel := mongodb.WithTimeout(ctx, e.cfg.WriteTimeout)
	defer cancel()

	m.ID = ""
	m.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := e.collection.InsertOne(ctx, m); err != nil {
		return fmt.Errorf("failed to insert mail: %w", err)
	}
	return nil
}

package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingsrepo "seatsnag/internal/bookings/repository"
	companiesrepo "seatsnag/internal/companies/repository"
	locationsrepo "seatsnag/internal/locations/repository"
	"seatsnag/internal/mailqueue"
	"seatsnag/internal/migrations/mongo/validators"
	"seatsnag/pkg/logger"
)

var (
	LocationsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "access_code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("access_code_unique"),
		},
		{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "pin", Value: 1}}},
	}

	BookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "location_id", Value: 1},
			{Key: "status", Value: 1},
			{Key: "booking_date", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "location_id", Value: 1},
			{Key: "user_name", Value: 1},
			{Key: "booking_date", Value: 1},
		}},
		{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "booking_date", Value: 1}}},
	}

	UsersIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	EventsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "location_id", Value: 1}, {Key: "event_type", Value: 1}}},
	}

	CompaniesIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "domain", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("domain_unique"),
		},
		{
			Keys:    bson.D{{Key: "admin_email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("admin_email_unique"),
		},
		{Keys: bson.D{{Key: "trial_status", Value: 1}, {Key: "trial_end_date", Value: 1}}},
	}

	MailIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	}

	// Expired advisory locks are reaped by the server.
	BookingLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

type CollectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func Collections() map[string]CollectionDef {
	return map[string]CollectionDef{
		locationsrepo.CollectionName:     {Indexes: LocationsIndexes, Validator: validators.LocationValidator},
		bookingsrepo.CollectionName:      {Indexes: BookingsIndexes, Validator: validators.BookingValidator},
		bookingsrepo.UserCollectionName:  {Indexes: UsersIndexes, Validator: validators.UserValidator},
		bookingsrepo.EventCollectionName: {Indexes: EventsIndexes, Validator: validators.AuditEventValidator},
		bookingsrepo.LockCollectionName:  {Indexes: BookingLocksIndexes, Validator: validators.BookingLockValidator},
		companiesrepo.CollectionName:     {Indexes: CompaniesIndexes, Validator: validators.CompanyValidator},
		mailqueue.CollectionName:         {Indexes: MailIndexes, Validator: validators.MailValidator},
	}
}

func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	for name, def := range Collections() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	coll := db.Collection(name)
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}

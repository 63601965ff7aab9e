package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	locationserrors "seatsnag/internal/locations/errors"
	"seatsnag/pkg/config"
	mongodb "seatsnag/pkg/db/mongo"
	"seatsnag/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "locations"
)

type LocationRepository interface {
	Create(ctx context.Context, loc *model.Location) error
	FindByID(ctx context.Context, id string) (*model.Location, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Location, error)
	FindByCompany(ctx context.Context, companyID string) ([]*model.Location, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Location, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, loc *model.Location) error
	Delete(ctx context.Context, id string) error

	FindActiveByAccessCode(ctx context.Context, code string) ([]*model.Location, error)
	FindActiveByPIN(ctx context.Context, pin string) ([]*model.Location, error)
	AccessCodeExists(ctx context.Context, code string) (bool, error)
	PINExists(ctx context.Context, companyID, pin, excludeID string) (bool, error)

	ExecuteTransaction(ctx context.Context, fn mongodb.TransactionFunc) error
}

type mongoLocationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongodb.TransactionManager
}

func NewMongoLocationRepository(cfg *config.Config) LocationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoLocationRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongodb.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoLocationRepository) Create(ctx context.Context, loc *model.Location) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	loc.CreatedAt = now
	loc.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, loc)
	if err != nil {
		if mongodb.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %s", locationserrors.ErrDuplicateAccessCode, loc.AccessCode)
		}
		return fmt.Errorf("failed to create location: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		loc.ID = oid.Hex()
	}
	return nil
}

func (r *mongoLocationRepository) FindByID(ctx context.Context, id string) (*model.Location, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", locationserrors.ErrInvalidID, id)
	}

	var loc model.Location
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&loc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", locationserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find location: %w", err)
	}
	return &loc, nil
}

// FindByIDs skips malformed ids. Callers keep len(ids) within the store's
// "in" limit.
func (r *mongoLocationRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Location, error) {
	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			objectIDs = append(objectIDs, oid)
		}
	}
	if len(objectIDs) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}}, nil)
}

func (r *mongoLocationRepository) FindByCompany(ctx context.Context, companyID string) ([]*model.Location, error) {
	return r.find(ctx, bson.M{"company_id": companyID}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (r *mongoLocationRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Location, error) {
	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "company_id", Value: 1}, {Key: "name", Value: 1}})
	return r.find(ctx, bson.M{}, opts)
}

func (r *mongoLocationRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count locations: %w", err)
	}
	return count, nil
}

func (r *mongoLocationRepository) Update(ctx context.Context, id string, loc *model.Location) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", locationserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":       loc.Name,
			"address":    loc.Address,
			"capacity":   loc.Capacity,
			"pin":        loc.PIN,
			"is_active":  loc.IsActive,
			"settings":   loc.Settings,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update location: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", locationserrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoLocationRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", locationserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", locationserrors.ErrNotFound, id)
	}
	return nil
}

// FindActiveByAccessCode expects code already uppercased; codes are
// stored uppercase so equality is case-insensitive.
func (r *mongoLocationRepository) FindActiveByAccessCode(ctx context.Context, code string) ([]*model.Location, error) {
	return r.find(ctx, bson.M{"access_code": code, "is_active": true}, nil)
}

func (r *mongoLocationRepository) FindActiveByPIN(ctx context.Context, pin string) ([]*model.Location, error) {
	return r.find(ctx, bson.M{"pin": pin, "is_active": true}, nil)
}

func (r *mongoLocationRepository) AccessCodeExists(ctx context.Context, code string) (bool, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, bson.M{"access_code": code}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check access code: %w", err)
	}
	return n > 0, nil
}

func (r *mongoLocationRepository) PINExists(ctx context.Context, companyID, pin, excludeID string) (bool, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"company_id": companyID, "pin": pin}
	if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
		filter["_id"] = bson.M{"$ne": oid}
	}

	n, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check PIN: %w", err)
	}
	return n > 0, nil
}

func (r *mongoLocationRepository) ExecuteTransaction(ctx context.Context, fn mongodb.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func (r *mongoLocationRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Location, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if opts == nil {
		opts = options.Find()
	}
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer cursor.Close(ctx)

	var locations []*model.Location
	if err := cursor.All(ctx, &locations); err != nil {
		return nil, fmt.Errorf("failed to decode locations: %w", err)
	}
	return locations, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	companieserrors "seatsnag/internal/companies/errors"
	"seatsnag/pkg/config"
	mongodb "seatsnag/pkg/db/mongo"
	"seatsnag/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "companies"
)

type CompanyRepository interface {
	Create(ctx context.Context, company *model.Company) error
	FindByID(ctx context.Context, id string) (*model.Company, error)
	FindActiveByDomain(ctx context.Context, domain string) (*model.Company, error)
	ExistsByDomainOrEmail(ctx context.Context, domain, email string) (domainTaken, emailTaken bool, err error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Company, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, company *model.Company) error
}

type mongoCompanyRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoCompanyRepository(cfg *config.Config) CompanyRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCompanyRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoCompanyRepository) Create(ctx context.Context, company *model.Company) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	company.CreatedAt = now
	company.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, company)
	if err != nil {
		if mongodb.IsDuplicateKey(err) {
			// Both domain and admin_email carry unique indexes.
			if strings.Contains(err.Error(), "admin_email") {
				return fmt.Errorf("%w: %s", companieserrors.ErrDuplicateEmail, company.AdminEmail)
			}
			return fmt.Errorf("%w: %s", companieserrors.ErrDuplicateDomain, company.Domain)
		}
		return fmt.Errorf("failed to create company: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		company.ID = oid.Hex()
	}
	return nil
}

func (r *mongoCompanyRepository) FindByID(ctx context.Context, id string) (*model.Company, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", companieserrors.ErrInvalidID, id)
	}

	var company model.Company
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&company); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", companieserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find company: %w", err)
	}
	return &company, nil
}

// FindActiveByDomain expects a sanitized, lowercase domain.
func (r *mongoCompanyRepository) FindActiveByDomain(ctx context.Context, domain string) (*model.Company, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var company model.Company
	err := r.collection.FindOne(ctx, bson.M{"domain": domain, "is_active": true}).Decode(&company)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: domain %s", companieserrors.ErrNotFound, domain)
		}
		return nil, fmt.Errorf("failed to find company by domain: %w", err)
	}
	return &company, nil
}

func (r *mongoCompanyRepository) ExistsByDomainOrEmail(ctx context.Context, domain, email string) (bool, bool, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"$or": bson.A{
		bson.M{"domain": domain},
		bson.M{"admin_email": email},
	}}
	opts := options.Find().SetProjection(bson.M{"domain": 1, "admin_email": 1}).SetLimit(2)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return false, false, fmt.Errorf("failed to check company uniqueness: %w", err)
	}
	defer cursor.Close(ctx)

	var matches []model.Company
	if err := cursor.All(ctx, &matches); err != nil {
		return false, false, fmt.Errorf("failed to decode companies: %w", err)
	}

	var domainTaken, emailTaken bool
	for _, c := range matches {
		domainTaken = domainTaken || c.Domain == domain
		emailTaken = emailTaken || c.AdminEmail == email
	}
	return domainTaken, emailTaken, nil
}

func (r *mongoCompanyRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Company, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find companies: %w", err)
	}
	defer cursor.Close(ctx)

	var companies []*model.Company
	if err := cursor.All(ctx, &companies); err != nil {
		return nil, fmt.Errorf("failed to decode companies: %w", err)
	}
	return companies, nil
}

func (r *mongoCompanyRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count companies: %w", err)
	}
	return count, nil
}

// Update writes the lifecycle fields. Name, domain and admin email are
// fixed after signup.
func (r *mongoCompanyRepository) Update(ctx context.Context, id string, company *model.Company) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", companieserrors.ErrInvalidID, id)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	set := bson.M{
		"is_active":        company.IsActive,
		"email_verified":   company.EmailVerified,
		"trial_start_date": company.TrialStartDate,
		"trial_end_date":   company.TrialEndDate,
		"trial_status":     company.TrialStatus,
		"extension_days":   company.ExtensionDays,
		"extended_at":      company.ExtendedAt,
		"updated_at":       now,
	}
	update := bson.M{"$set": set}
	if company.VerificationToken == "" {
		update["$unset"] = bson.M{"verification_token": ""}
	} else {
		set["verification_token"] = company.VerificationToken
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update company: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", companieserrors.ErrNotFound, id)
	}
	company.UpdatedAt = now
	return nil
}

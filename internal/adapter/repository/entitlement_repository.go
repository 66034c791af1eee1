package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	domainErrors "github.com/lumenlabs/lumen-payments/internal/domain/errors"
	"github.com/lumenlabs/lumen-payments/internal/domain/model"
	domainRepo "github.com/lumenlabs/lumen-payments/internal/domain/repository"
)

const entitlementCollection = "users"

// MongoEntitlementRepository persists entitlement documents in the users
// collection, one document per email.
type MongoEntitlementRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
	logger     *zap.Logger
}

// NewMongoEntitlementRepository creates an entitlement repository backed by
// the given database.
func NewMongoEntitlementRepository(db *mongo.Database, timeout time.Duration, logger *zap.Logger) *MongoEntitlementRepository {
	return &MongoEntitlementRepository{
		collection: db.Collection(entitlementCollection),
		timeout:    timeout,
		logger:     logger,
	}
}

func (r *MongoEntitlementRepository) GetByEmail(ctx context.Context, email string) (*model.Entitlement, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var entitlement model.Entitlement
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&entitlement)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		r.logger.Error("Failed to find entitlement",
			zap.String("email", email),
			zap.Error(err))
		return nil, fmt.Errorf("failed to find entitlement: %w", err)
	}

	return &entitlement, nil
}

func (r *MongoEntitlementRepository) ApplyPaid(ctx context.Context, update *domainRepo.PaidUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	now := time.Now()
	set := bson.M{
		"email":         update.Email,
		"payment":       model.PaymentStatePaid,
		"paymentType":   update.PlanType,
		"paymentDate":   update.PaidAt,
		"lastPaymentId": update.ExternalID,
		"updatedAt":     now,
	}
	if len(update.Metadata) > 0 {
		set["paymentMetadata"] = update.Metadata
	}
	if update.CustomerID != "" {
		set["customerId"] = update.CustomerID
	}
	if update.SubscriptionID != "" {
		set["subscriptionId"] = update.SubscriptionID
	}
	if update.SubscriptionStatus != "" {
		set["subscriptionStatus"] = update.SubscriptionStatus
	}

	doc := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"createdAt": now},
	}
	if update.CreditsDelta > 0 {
		doc["$inc"] = bson.M{"totalCredits": update.CreditsDelta}
	}

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"email": update.Email},
		doc,
		options.Update().SetUpsert(true))
	if err != nil {
		r.logger.Error("Failed to upsert entitlement",
			zap.String("email", update.Email),
			zap.String("external_id", update.ExternalID),
			zap.Error(err))
		return fmt.Errorf("failed to upsert entitlement: %w", err)
	}

	return nil
}

func (r *MongoEntitlementRepository) MarkUnpaid(ctx context.Context, email, subscriptionID, status string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	set := bson.M{
		"payment":            model.PaymentStateUnpaid,
		"subscriptionStatus": status,
		"updatedAt":          time.Now(),
	}
	if subscriptionID != "" {
		set["subscriptionId"] = subscriptionID
	}

	// No upsert: a lapsed subscription for an unseen email must not
	// create a document.
	_, err := r.collection.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": set})
	if err != nil {
		r.logger.Error("Failed to mark entitlement unpaid",
			zap.String("email", email),
			zap.String("subscription_id", subscriptionID),
			zap.Error(err))
		return fmt.Errorf("failed to mark entitlement unpaid: %w", err)
	}

	return nil
}

func (r *MongoEntitlementRepository) RecordUsage(ctx context.Context, email string, cost decimal.Decimal, at time.Time) (*model.Entitlement, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	inc := bson.M{"imagesGenerated": 1}
	if !cost.IsZero() {
		inc["totalUsageCost"] = cost.InexactFloat64()
	}

	// Returning the post-update document keeps the counters reported to
	// the caller consistent under concurrent increments.
	var updated model.Entitlement
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"email": email},
		bson.M{
			"$inc": inc,
			"$set": bson.M{
				"lastImageGenerated": at,
				"updatedAt":          at,
			},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainErrors.ErrEntitlementNotFound
		}
		r.logger.Error("Failed to record usage",
			zap.String("email", email),
			zap.Error(err))
		return nil, fmt.Errorf("failed to record usage: %w", err)
	}

	return &updated, nil
}

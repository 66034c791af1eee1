package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/lumenlabs/lumen-payments/internal/domain/model"
)

const appliedEventCollection = "applied_events"

// MongoEventLedgerRepository implements the processed-events ledger on top
// of a unique {email, event_id} index: the insert either claims the event or
// fails with a duplicate key.
type MongoEventLedgerRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
	logger     *zap.Logger
}

// NewMongoEventLedgerRepository creates a ledger repository backed by the
// given database.
func NewMongoEventLedgerRepository(db *mongo.Database, timeout time.Duration, logger *zap.Logger) *MongoEventLedgerRepository {
	return &MongoEventLedgerRepository{
		collection: db.Collection(appliedEventCollection),
		timeout:    timeout,
		logger:     logger,
	}
}

func (r *MongoEventLedgerRepository) Apply(ctx context.Context, email, eventID string, credits int) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	entry := model.AppliedEvent{
		LedgerID:  uuid.NewString(),
		Email:     email,
		EventID:   eventID,
		Credits:   credits,
		AppliedAt: time.Now(),
	}

	_, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.logger.Info("Event already applied, skipping",
				zap.String("email", email),
				zap.String("event_id", eventID))
			return false, nil
		}
		r.logger.Error("Failed to insert ledger entry",
			zap.String("email", email),
			zap.String("event_id", eventID),
			zap.Error(err))
		return false, fmt.Errorf("failed to insert ledger entry: %w", err)
	}

	return true, nil
}

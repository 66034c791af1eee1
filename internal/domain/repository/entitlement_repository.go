package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumenlabs/lumen-payments/internal/domain/model"
)

// PaidUpdate describes the entitlement fields written for one successful
// payment observation. CreditsDelta is only non-zero when the processed
// events ledger accepted the grant.
type PaidUpdate struct {
	Email              string
	PlanType           model.PlanType
	ExternalID         string
	Metadata           map[string]string
	CustomerID         string
	SubscriptionID     string
	SubscriptionStatus string
	CreditsDelta       int
	PaidAt             time.Time
}

// EntitlementRepository persists per-user entitlement documents.
type EntitlementRepository interface {
	// GetByEmail returns nil without error when no document exists.
	GetByEmail(ctx context.Context, email string) (*model.Entitlement, error)

	// ApplyPaid upserts the document for a successful payment observation.
	ApplyPaid(ctx context.Context, update *PaidUpdate) error

	// MarkUnpaid records a lapsed subscription. It never creates a
	// document for an unseen email.
	MarkUnpaid(ctx context.Context, email, subscriptionID, status string) error

	// RecordUsage atomically bumps the usage counters and returns the
	// document after the update, so concurrent calls each see their own
	// increment. Cost may be zero for non-metered plans.
	RecordUsage(ctx context.Context, email string, cost decimal.Decimal, at time.Time) (*model.Entitlement, error)
}

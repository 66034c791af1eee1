package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	domainErrors "github.com/lumenlabs/lumen-payments/internal/domain/errors"
	"github.com/lumenlabs/lumen-payments/internal/domain/model"
	domainRepo "github.com/lumenlabs/lumen-payments/internal/domain/repository"
)

// EntitlementSnapshot is what the dashboard and billing pages read.
type EntitlementSnapshot struct {
	HasPaid            bool           `json:"hasPaid"`
	PaymentType        model.PlanType `json:"paymentType,omitempty"`
	PaymentDate        *time.Time     `json:"paymentDate,omitempty"`
	TotalCredits       int            `json:"totalCredits"`
	SubscriptionStatus string         `json:"subscriptionStatus,omitempty"`
	CustomerID         string         `json:"customerId,omitempty"`
	ImagesGenerated    int            `json:"imagesGenerated"`
	TotalUsageCost     float64        `json:"totalUsageCost"`
}

// EntitlementService serves read-only entitlement snapshots.
type EntitlementService struct {
	entitlements domainRepo.EntitlementRepository
	logger       *zap.Logger
}

// NewEntitlementService creates a new entitlement read service.
func NewEntitlementService(entitlements domainRepo.EntitlementRepository, logger *zap.Logger) *EntitlementService {
	return &EntitlementService{
		entitlements: entitlements,
		logger:       logger,
	}
}

// Snapshot returns the current entitlement state for an email. An unseen
// email yields an unpaid snapshot; it never creates a document.
func (s *EntitlementService) Snapshot(ctx context.Context, email string) (*EntitlementSnapshot, error) {
	if email == "" {
		return nil, domainErrors.ErrMissingEmail
	}

	entitlement, err := s.entitlements.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if entitlement == nil {
		return &EntitlementSnapshot{HasPaid: false}, nil
	}

	snapshot := &EntitlementSnapshot{
		HasPaid:            entitlement.HasPaid(),
		PaymentType:        entitlement.PaymentType,
		TotalCredits:       entitlement.TotalCredits,
		SubscriptionStatus: entitlement.SubscriptionStatus,
		CustomerID:         entitlement.CustomerID,
		ImagesGenerated:    entitlement.ImagesGenerated,
		TotalUsageCost:     entitlement.TotalUsageCost,
	}
	if !entitlement.PaymentDate.IsZero() {
		paidAt := entitlement.PaymentDate
		snapshot.PaymentDate = &paidAt
	}

	return snapshot, nil
}

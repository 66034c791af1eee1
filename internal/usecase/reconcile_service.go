package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	domainErrors "github.com/lumenlabs/lumen-payments/internal/domain/errors"
	"github.com/lumenlabs/lumen-payments/internal/domain/model"
	domainRepo "github.com/lumenlabs/lumen-payments/internal/domain/repository"
)

// ReconcileResult reports what a reconciliation pass decided.
type ReconcileResult struct {
	Applied        bool
	PlanType       model.PlanType
	CreditsGranted int
	Message        string
}

// ReconcileService maps normalized payment events onto entitlement state.
// Both the webhook ingress and client-initiated verification funnel through
// it, so the two paths cannot drift apart.
type ReconcileService struct {
	entitlements domainRepo.EntitlementRepository
	ledger       domainRepo.EventLedgerRepository
	logger       *zap.Logger
}

// NewReconcileService creates a new reconciliation service.
func NewReconcileService(
	entitlements domainRepo.EntitlementRepository,
	ledger domainRepo.EventLedgerRepository,
	logger *zap.Logger,
) *ReconcileService {
	return &ReconcileService{
		entitlements: entitlements,
		ledger:       ledger,
		logger:       logger,
	}
}

// Apply decides the entitlement's new state for one event and persists it.
// Events without a successful status never mutate state, with one
// exception: a subscription reporting a lapsed status flips the entitlement
// to unpaid (without ever creating a document for an unseen email).
func (s *ReconcileService) Apply(ctx context.Context, event *model.PaymentEvent) (*ReconcileResult, error) {
	if event.Email == "" {
		return nil, domainErrors.ErrMissingEmail
	}

	if !model.IsSuccessfulStatus(event.Status) {
		if event.Kind == model.EventKindSubscription {
			subscriptionID := event.ExternalID
			if event.SubscriptionID != "" {
				subscriptionID = event.SubscriptionID
			}

			s.logger.Info("Subscription lapsed, revoking entitlement",
				zap.String("email", event.Email),
				zap.String("subscription_id", subscriptionID),
				zap.String("status", event.Status))

			if err := s.entitlements.MarkUnpaid(ctx, event.Email, subscriptionID, event.Status); err != nil {
				return nil, err
			}
			return &ReconcileResult{
				Applied:  false,
				PlanType: model.PlanTypeSubscription,
				Message:  fmt.Sprintf("subscription is %s", event.Status),
			}, nil
		}

		return &ReconcileResult{
			Applied: false,
			Message: fmt.Sprintf("payment status %q is not successful yet", event.Status),
		}, nil
	}

	planType := model.ClassifyPlan(event)

	// Credits are granted only if the ledger insert claims this event id
	// for this email. A redelivered webhook or duplicate poll loses the
	// claim and grants nothing.
	granted := 0
	if credits := model.CreditsToGrant(event); credits > 0 {
		applied, err := s.ledger.Apply(ctx, event.Email, event.ExternalID, credits)
		if err != nil {
			return nil, err
		}
		if applied {
			granted = credits
		}
	}

	subscriptionID := event.SubscriptionID
	if event.Kind == model.EventKindSubscription && subscriptionID == "" {
		subscriptionID = event.ExternalID
	}

	var subscriptionStatus string
	if planType == model.PlanTypeSubscription {
		if event.Kind == model.EventKindSubscription {
			subscriptionStatus = event.Status
		} else {
			// A successful payment or completed session on a
			// subscription plan means the subscription just started.
			subscriptionStatus = "active"
		}
	}

	update := &domainRepo.PaidUpdate{
		Email:              event.Email,
		PlanType:           planType,
		ExternalID:         event.ExternalID,
		Metadata:           event.Metadata,
		CustomerID:         event.CustomerID,
		SubscriptionID:     subscriptionID,
		SubscriptionStatus: subscriptionStatus,
		CreditsDelta:       granted,
		PaidAt:             time.Now(),
	}

	if err := s.entitlements.ApplyPaid(ctx, update); err != nil {
		return nil, err
	}

	s.logger.Info("Entitlement reconciled",
		zap.String("email", event.Email),
		zap.String("kind", string(event.Kind)),
		zap.String("external_id", event.ExternalID),
		zap.String("plan_type", string(planType)),
		zap.Int("credits_granted", granted))

	return &ReconcileResult{
		Applied:        true,
		PlanType:       planType,
		CreditsGranted: granted,
		Message:        "payment verified",
	}, nil
}

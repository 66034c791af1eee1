package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	domainErrors "github.com/lumenlabs/lumen-payments/internal/domain/errors"
	"github.com/lumenlabs/lumen-payments/internal/domain/model"
	"github.com/lumenlabs/lumen-payments/internal/domain/provider"
)

// VerifyRequest identifies the provider resource to check. Exactly one of
// the three ids is expected; when several are set, payment wins over
// subscription over session.
type VerifyRequest struct {
	Email          string
	PaymentID      string
	SubscriptionID string
	SessionID      string
}

// VerifyResult is returned to the browser, which uses it to decide whether
// to unlock the product.
type VerifyResult struct {
	Success    bool
	Message    string
	PlanType   model.PlanType
	CustomerID string
}

// VerifyService lets the browser force-check payment status after a
// redirect-based checkout, for deployments webhooks cannot reach or before
// delivery arrives. It polls the provider synchronously and feeds the same
// reconciler the webhook path uses.
type VerifyService struct {
	client     provider.PaymentClient
	reconciler *ReconcileService
	logger     *zap.Logger
}

// NewVerifyService creates a new verification service.
func NewVerifyService(client provider.PaymentClient, reconciler *ReconcileService, logger *zap.Logger) *VerifyService {
	return &VerifyService{
		client:     client,
		reconciler: reconciler,
		logger:     logger,
	}
}

// Verify resolves the referenced provider resource and reconciles it.
func (s *VerifyService) Verify(ctx context.Context, req *VerifyRequest) (*VerifyResult, error) {
	if req.Email == "" {
		return nil, domainErrors.ErrMissingEmail
	}

	switch {
	case req.PaymentID != "":
		return s.verifyPayment(ctx, req.Email, req.PaymentID)
	case req.SubscriptionID != "":
		return s.verifySubscription(ctx, req.Email, req.SubscriptionID)
	case req.SessionID != "":
		return s.verifySession(ctx, req.Email, req.SessionID)
	default:
		return nil, domainErrors.ErrMissingReference
	}
}

func (s *VerifyService) verifyPayment(ctx context.Context, email, paymentID string) (*VerifyResult, error) {
	resource, err := s.client.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment: %w", err)
	}
	return s.reconcile(ctx, email, model.EventKindPayment, resource)
}

func (s *VerifyService) verifySubscription(ctx context.Context, email, subscriptionID string) (*VerifyResult, error) {
	resource, err := s.client.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscription: %w", err)
	}
	return s.reconcile(ctx, email, model.EventKindSubscription, resource)
}

// verifySession checks a checkout session. Sessions do not always expose a
// terminal status themselves; when this one doesn't, fall back to the
// payment or subscription it resolved to and verify that instead.
func (s *VerifyService) verifySession(ctx context.Context, email, sessionID string) (*VerifyResult, error) {
	resource, err := s.client.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch checkout session: %w", err)
	}

	if model.IsSuccessfulStatus(resource.Status) {
		return s.reconcile(ctx, email, model.EventKindCheckoutSession, resource)
	}

	if resource.PaymentID != "" {
		s.logger.Info("Checkout session not terminal, re-verifying payment",
			zap.String("session_id", sessionID),
			zap.String("payment_id", resource.PaymentID))
		return s.verifyPayment(ctx, email, resource.PaymentID)
	}

	if resource.SubscriptionID != "" {
		s.logger.Info("Checkout session not terminal, re-verifying subscription",
			zap.String("session_id", sessionID),
			zap.String("subscription_id", resource.SubscriptionID))
		return s.verifySubscription(ctx, email, resource.SubscriptionID)
	}

	return &VerifyResult{
		Success: false,
		Message: fmt.Sprintf("checkout session is %s", resource.Status),
	}, nil
}

func (s *VerifyService) reconcile(ctx context.Context, email string, kind model.EventKind, resource *provider.Resource) (*VerifyResult, error) {
	event := &model.PaymentEvent{
		Email:          email,
		Kind:           kind,
		ExternalID:     resource.ID,
		Status:         resource.Status,
		Metadata:       resource.Metadata,
		CustomerID:     resource.CustomerID,
		SubscriptionID: resource.SubscriptionID,
	}

	result, err := s.reconciler.Apply(ctx, event)
	if err != nil {
		return nil, err
	}

	return &VerifyResult{
		Success:    result.Applied,
		Message:    result.Message,
		PlanType:   result.PlanType,
		CustomerID: resource.CustomerID,
	}, nil
}

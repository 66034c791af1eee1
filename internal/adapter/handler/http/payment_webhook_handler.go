package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainErrors "github.com/lumenlabs/lumen-payments/internal/domain/errors"
	"github.com/lumenlabs/lumen-payments/internal/domain/model"
	"github.com/lumenlabs/lumen-payments/internal/usecase"
)

// PaymentWebhookHandler is the legacy unsigned ingress at
// /api/webhooks/payment. It consumes a generically shaped event body and
// feeds the same reconciler as the signed route, so the two paths cannot
// diverge. Unsigned, so it is only registered when explicitly enabled.
type PaymentWebhookHandler struct {
	logger     *zap.Logger
	reconciler *usecase.ReconcileService
}

// NewPaymentWebhookHandler creates a new unsigned webhook handler.
func NewPaymentWebhookHandler(logger *zap.Logger, reconciler *usecase.ReconcileService) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{
		logger:     logger,
		reconciler: reconciler,
	}
}

type genericWebhookRequest struct {
	Type           string            `json:"type"`
	Email          string            `json:"email"`
	PaymentID      string            `json:"paymentId"`
	SubscriptionID string            `json:"subscriptionId"`
	Status         string            `json:"status"`
	CustomerID     string            `json:"customerId"`
	Metadata       map[string]string `json:"metadata"`
}

func (h *PaymentWebhookHandler) HandleWebhook(c echo.Context) error {
	var req genericWebhookRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}

	event := normalizeGenericEvent(&req)

	h.logger.Info("Unsigned webhook event received",
		zap.String("type", req.Type),
		zap.String("kind", string(event.Kind)),
		zap.String("external_id", event.ExternalID))

	_, err := h.reconciler.Apply(c.Request().Context(), event)
	if err != nil {
		if errors.Is(err, domainErrors.ErrMissingEmail) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
		}
		h.logger.Error("Failed to reconcile unsigned webhook event",
			zap.String("type", req.Type),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to process event"})
	}

	return c.JSON(http.StatusOK, echo.Map{"received": true})
}

func normalizeGenericEvent(req *genericWebhookRequest) *model.PaymentEvent {
	kind := model.EventKindPayment
	externalID := req.PaymentID
	if externalID == "" && req.SubscriptionID != "" {
		kind = model.EventKindSubscription
		externalID = req.SubscriptionID
	}

	status := req.Status
	if status == "" {
		switch {
		case req.Type == "payment.succeeded":
			status = "succeeded"
		case strings.HasPrefix(req.Type, "subscription."):
			// Creation is implicitly active.
			status = strings.TrimPrefix(req.Type, "subscription.")
			if status == "created" {
				status = "active"
			}
		}
	}

	return &model.PaymentEvent{
		Email:          req.Email,
		Kind:           kind,
		ExternalID:     externalID,
		Status:         status,
		Metadata:       req.Metadata,
		CustomerID:     req.CustomerID,
		SubscriptionID: req.SubscriptionID,
	}
}

package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainErrors "github.com/lumenlabs/lumen-payments/internal/domain/errors"
	"github.com/lumenlabs/lumen-payments/internal/domain/provider"
	"github.com/lumenlabs/lumen-payments/internal/usecase"
)

// WebhookHandler is the signed webhook ingress. The provider client owns
// signature verification and event normalization; this handler routes the
// normalized event into reconciliation.
type WebhookHandler struct {
	logger     *zap.Logger
	client     provider.PaymentClient
	reconciler *usecase.ReconcileService
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(logger *zap.Logger, client provider.PaymentClient, reconciler *usecase.ReconcileService) *WebhookHandler {
	return &WebhookHandler{
		logger:     logger,
		client:     client,
		reconciler: reconciler,
	}
}

func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("Error reading request body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Error reading request body"})
	}

	event, eventType, err := h.client.VerifyWebhook(body, c.Request().Header)
	if err != nil {
		h.logger.Error("Webhook verification failed",
			zap.String("provider", h.client.Name()),
			zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	h.logger.Info("Webhook event received",
		zap.String("provider", h.client.Name()),
		zap.String("type", eventType))

	if event == nil {
		// Redelivery of event types we do not act on must not error.
		h.logger.Warn("Unhandled event type, acknowledging",
			zap.String("type", eventType))
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	}

	result, err := h.reconciler.Apply(c.Request().Context(), event)
	if err != nil {
		if errors.Is(err, domainErrors.ErrMissingEmail) {
			h.logger.Error("Webhook event carries no customer email",
				zap.String("type", eventType),
				zap.String("external_id", event.ExternalID))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "event has no customer email"})
		}
		h.logger.Error("Failed to reconcile webhook event",
			zap.String("type", eventType),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to process event"})
	}

	h.logger.Info("Webhook event processed",
		zap.String("type", eventType),
		zap.Bool("applied", result.Applied),
		zap.String("plan_type", string(result.PlanType)))

	return c.JSON(http.StatusOK, echo.Map{"received": true})
}

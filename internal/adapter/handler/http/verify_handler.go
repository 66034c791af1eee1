package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainErrors "github.com/lumenlabs/lumen-payments/internal/domain/errors"
	"github.com/lumenlabs/lumen-payments/internal/domain/provider"
	"github.com/lumenlabs/lumen-payments/internal/usecase"
)

// VerifyHandler serves the browser-initiated verification the pricing and
// dashboard pages call after a redirect checkout.
type VerifyHandler struct {
	logger *zap.Logger
	verify *usecase.VerifyService
}

// NewVerifyHandler creates a new verify handler.
func NewVerifyHandler(logger *zap.Logger, verify *usecase.VerifyService) *VerifyHandler {
	return &VerifyHandler{
		logger: logger,
		verify: verify,
	}
}

type VerifyPaymentRequest struct {
	Email          string `json:"email" validate:"required,email"`
	PaymentID      string `json:"paymentId"`
	SubscriptionID string `json:"subscriptionId"`
	SessionID      string `json:"sessionId"`
}

type VerifyPaymentResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	PaymentType string `json:"paymentType,omitempty"`
	CustomerID  string `json:"customerId,omitempty"`
}

func (h *VerifyHandler) VerifyPayment(c echo.Context) error {
	var req VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.verify.Verify(c.Request().Context(), &usecase.VerifyRequest{
		Email:          req.Email,
		PaymentID:      req.PaymentID,
		SubscriptionID: req.SubscriptionID,
		SessionID:      req.SessionID,
	})
	if err != nil {
		if errors.Is(err, domainErrors.ErrMissingReference) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}

		// A provider failure is a verification failure, not a server
		// error: the browser retries by refreshing.
		var providerErr *provider.ProviderError
		if errors.As(err, &providerErr) {
			h.logger.Warn("Provider call failed during verification",
				zap.String("email", req.Email),
				zap.Error(err))
			return c.JSON(http.StatusOK, VerifyPaymentResponse{
				Success: false,
				Message: "could not verify payment with provider",
			})
		}

		h.logger.Error("Verification failed",
			zap.String("email", req.Email),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verification failed"})
	}

	return c.JSON(http.StatusOK, VerifyPaymentResponse{
		Success:     result.Success,
		Message:     result.Message,
		PaymentType: string(result.PlanType),
		CustomerID:  result.CustomerID,
	})
}

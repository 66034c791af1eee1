package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lumenlabs/lumen-payments/internal/domain/provider"
)

// CheckoutHandler starts provider-hosted checkout flows for the pricing
// page.
type CheckoutHandler struct {
	logger    *zap.Logger
	client    provider.PaymentClient
	clientURL string
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(logger *zap.Logger, client provider.PaymentClient, clientURL string) *CheckoutHandler {
	return &CheckoutHandler{
		logger:    logger,
		client:    client,
		clientURL: clientURL,
	}
}

type CreateCheckoutRequest struct {
	ProductID string            `json:"productId" validate:"required"`
	Email     string            `json:"email" validate:"required,email"`
	Quantity  int64             `json:"quantity"`
	Metadata  map[string]string `json:"metadata"`
}

type CreateCheckoutResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (h *CheckoutHandler) CreateCheckout(c echo.Context) error {
	var req CreateCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	h.logger.Info("Creating checkout session...",
		zap.String("product_id", req.ProductID),
		zap.String("email", req.Email))

	session, err := h.client.CreateCheckoutSession(c.Request().Context(), &provider.CheckoutRequest{
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		Email:      req.Email,
		Metadata:   req.Metadata,
		SuccessURL: h.clientURL + "/dashboard?checkout=success",
		CancelURL:  h.clientURL + "/pricing",
	})
	if err != nil {
		h.logger.Error("Error creating checkout session", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, CreateCheckoutResponse{
		ID:  session.ID,
		URL: session.URL,
	})
}

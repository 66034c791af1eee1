package dodo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lumenlabs/lumen-payments/internal/config"
	"github.com/lumenlabs/lumen-payments/internal/domain/provider"
)

const defaultAPIBase = "https://live.dodopayments.com"

// Client is a REST client for the Dodo Payments hosted API.
type Client struct {
	apiBase       string
	apiKey        string
	webhookSecret string
	httpClient    *http.Client
	logger        *zap.Logger
}

// NewClient creates a new Dodo Payments client.
func NewClient(cfg *config.DodoConfig, logger *zap.Logger) *Client {
	apiBase := cfg.APIBase
	if apiBase == "" {
		apiBase = defaultAPIBase
	}

	return &Client{
		apiBase:       strings.TrimRight(apiBase, "/"),
		apiKey:        cfg.APIKey,
		webhookSecret: cfg.WebhookSecret,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		logger:        logger,
	}
}

// Name returns the provider name
func (c *Client) Name() string {
	return "dodo"
}

// customer is the customer object embedded in Dodo resources
type customer struct {
	CustomerID string `json:"customer_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
}

type paymentResource struct {
	PaymentID      string            `json:"payment_id"`
	Status         string            `json:"status"`
	SubscriptionID string            `json:"subscription_id"`
	Customer       customer          `json:"customer"`
	Metadata       map[string]string `json:"metadata"`
}

type subscriptionResource struct {
	SubscriptionID string            `json:"subscription_id"`
	Status         string            `json:"status"`
	Customer       customer          `json:"customer"`
	Metadata       map[string]string `json:"metadata"`
}

type checkoutResource struct {
	SessionID      string            `json:"session_id"`
	Status         string            `json:"status"`
	PaymentID      string            `json:"payment_id"`
	SubscriptionID string            `json:"subscription_id"`
	Customer       customer          `json:"customer"`
	Metadata       map[string]string `json:"metadata"`
}

// GetPayment fetches a payment by id
// GET /payments/{payment_id}
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*provider.Resource, error) {
	var payment paymentResource
	if err := c.get(ctx, "/payments/"+paymentID, &payment); err != nil {
		return nil, err
	}

	return &provider.Resource{
		ID:             payment.PaymentID,
		Status:         payment.Status,
		Email:          resolveEmail(payment.Customer, payment.Metadata),
		CustomerID:     payment.Customer.CustomerID,
		Metadata:       payment.Metadata,
		SubscriptionID: payment.SubscriptionID,
	}, nil
}

// GetSubscription fetches a subscription by id
// GET /subscriptions/{subscription_id}
func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*provider.Resource, error) {
	var subscription subscriptionResource
	if err := c.get(ctx, "/subscriptions/"+subscriptionID, &subscription); err != nil {
		return nil, err
	}

	return &provider.Resource{
		ID:         subscription.SubscriptionID,
		Status:     subscription.Status,
		Email:      resolveEmail(subscription.Customer, subscription.Metadata),
		CustomerID: subscription.Customer.CustomerID,
		Metadata:   subscription.Metadata,
	}, nil
}

// GetCheckoutSession fetches a checkout session by id
// GET /checkouts/{session_id}
func (c *Client) GetCheckoutSession(ctx context.Context, sessionID string) (*provider.Resource, error) {
	var session checkoutResource
	if err := c.get(ctx, "/checkouts/"+sessionID, &session); err != nil {
		return nil, err
	}

	return &provider.Resource{
		ID:             session.SessionID,
		Status:         session.Status,
		Email:          resolveEmail(session.Customer, session.Metadata),
		CustomerID:     session.Customer.CustomerID,
		Metadata:       session.Metadata,
		PaymentID:      session.PaymentID,
		SubscriptionID: session.SubscriptionID,
	}, nil
}

// CreateCheckoutSession starts a hosted checkout flow
// POST /checkouts
func (c *Client) CreateCheckoutSession(ctx context.Context, req *provider.CheckoutRequest) (*provider.CheckoutResponse, error) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	body := map[string]interface{}{
		"product_cart": []map[string]interface{}{
			{"product_id": req.ProductID, "quantity": quantity},
		},
		"customer":   map[string]string{"email": req.Email},
		"return_url": req.SuccessURL,
	}
	if len(req.Metadata) > 0 {
		body["metadata"] = req.Metadata
	}

	var result struct {
		SessionID   string `json:"session_id"`
		CheckoutURL string `json:"checkout_url"`
	}
	if err := c.post(ctx, "/checkouts", body, &result); err != nil {
		return nil, err
	}

	c.logger.Info("DodoClient: Checkout session created",
		zap.String("session_id", result.SessionID),
		zap.String("product_id", req.ProductID))

	return &provider.CheckoutResponse{
		ID:  result.SessionID,
		URL: result.CheckoutURL,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+path, nil)
	if err != nil {
		return &provider.ProviderError{
			Code:    "REQUEST_ERROR",
			Message: "Failed to create request",
			Details: err.Error(),
		}
	}

	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return &provider.ProviderError{
			Code:    "MARSHAL_ERROR",
			Message: "Failed to prepare request",
			Details: err.Error(),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return &provider.ProviderError{
			Code:    "REQUEST_ERROR",
			Message: "Failed to create request",
			Details: err.Error(),
		}
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("DodoClient: API request failed",
			zap.String("url", req.URL.String()),
			zap.Error(err))
		return &provider.ProviderError{
			Code:    "API_ERROR",
			Message: "Dodo Payments API request failed",
			Details: err.Error(),
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &provider.ProviderError{
			Code:    "RESPONSE_ERROR",
			Message: "Failed to read response",
			Details: err.Error(),
		}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var errResp map[string]interface{}
		json.Unmarshal(respBody, &errResp)

		c.logger.Error("DodoClient: API returned error",
			zap.String("url", req.URL.String()),
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(respBody)))

		code, _ := errResp["code"].(string)
		message, _ := errResp["message"].(string)
		if message == "" {
			message = fmt.Sprintf("Dodo Payments API returned status %d", resp.StatusCode)
		}

		return &provider.ProviderError{
			Code:    code,
			Message: message,
			Details: string(respBody),
		}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &provider.ProviderError{
			Code:    "PARSE_ERROR",
			Message: "Failed to parse response",
			Details: err.Error(),
		}
	}

	return nil
}

func resolveEmail(cust customer, metadata map[string]string) string {
	if cust.Email != "" {
		return cust.Email
	}
	return metadata["email"]
}

package provider

import (
	"context"
	"net/http"

	"github.com/lumenlabs/lumen-payments/internal/domain/model"
)

// PaymentClient defines the interface for hosted payment providers (Dodo,
// Stripe, ...). Implementations translate provider wire shapes into the
// normalized model types; nothing above this interface touches raw provider
// JSON.
type PaymentClient interface {
	// GetPayment fetches a payment resource by id.
	GetPayment(ctx context.Context, paymentID string) (*Resource, error)

	// GetSubscription fetches a subscription resource by id.
	GetSubscription(ctx context.Context, subscriptionID string) (*Resource, error)

	// GetCheckoutSession fetches a checkout session by id. Sessions may
	// not expose a terminal status directly; callers fall back to the
	// embedded PaymentID / SubscriptionID in that case.
	GetCheckoutSession(ctx context.Context, sessionID string) (*Resource, error)

	// CreateCheckoutSession starts a provider-hosted checkout flow.
	CreateCheckoutSession(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error)

	// VerifyWebhook authenticates an inbound webhook and normalizes its
	// event. A nil event with nil error means the event type is not one
	// this service acts on; callers acknowledge it without action.
	VerifyWebhook(payload []byte, headers http.Header) (*model.PaymentEvent, string, error)

	// Name returns the provider name.
	Name() string
}

// Resource is a provider payment, subscription, or checkout session reduced
// to the fields reconciliation needs.
type Resource struct {
	ID             string            `json:"id"`
	Status         string            `json:"status"`
	Email          string            `json:"email,omitempty"`
	CustomerID     string            `json:"customer_id,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	PaymentID      string            `json:"payment_id,omitempty"`
	SubscriptionID string            `json:"subscription_id,omitempty"`
}

// CheckoutRequest describes a checkout session to create.
type CheckoutRequest struct {
	ProductID  string            `json:"product_id"`
	Quantity   int64             `json:"quantity"`
	Email      string            `json:"email"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	SuccessURL string            `json:"success_url"`
	CancelURL  string            `json:"cancel_url,omitempty"`
}

// CheckoutResponse is the created session the browser is redirected to.
type CheckoutResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ProviderError carries a provider API failure back to the caller.
type ProviderError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *ProviderError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

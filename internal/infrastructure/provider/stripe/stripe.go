package stripe

import (
	"context"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"go.uber.org/zap"

	"github.com/lumenlabs/lumen-payments/internal/config"
	"github.com/lumenlabs/lumen-payments/internal/domain/model"
	"github.com/lumenlabs/lumen-payments/internal/domain/provider"
)

// Client implements the PaymentClient interface for Stripe.
type Client struct {
	api           *client.API
	webhookSecret string
	logger        *zap.Logger
}

// NewClient creates a new Stripe client. The API client is scoped to this
// instance; no package-level key is set.
func NewClient(cfg *config.StripeConfig, logger *zap.Logger) *Client {
	return &Client{
		api:           client.New(cfg.SecretKey, nil),
		webhookSecret: cfg.WebhookSecret,
		logger:        logger,
	}
}

// Name returns the provider name
func (c *Client) Name() string {
	return "stripe"
}

// GetPayment fetches a payment intent by id.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*provider.Resource, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := c.api.PaymentIntents.Get(paymentID, params)
	if err != nil {
		return nil, wrapStripeError(err)
	}

	email := intent.ReceiptEmail
	if email == "" {
		email = intent.Metadata["email"]
	}

	return &provider.Resource{
		ID:         intent.ID,
		Status:     string(intent.Status),
		Email:      email,
		CustomerID: customerID(intent.Customer),
		Metadata:   intent.Metadata,
	}, nil
}

// GetSubscription fetches a subscription by id.
func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*provider.Resource, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	subscription, err := c.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return nil, wrapStripeError(err)
	}

	return &provider.Resource{
		ID:         subscription.ID,
		Status:     string(subscription.Status),
		Email:      subscription.Metadata["email"],
		CustomerID: customerID(subscription.Customer),
		Metadata:   subscription.Metadata,
	}, nil
}

// GetCheckoutSession fetches a checkout session by id, expanding the
// payment intent and subscription it resolved to.
func (c *Client) GetCheckoutSession(ctx context.Context, sessionID string) (*provider.Resource, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")
	params.AddExpand("subscription")

	session, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, wrapStripeError(err)
	}

	status := string(session.Status)
	if session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid ||
		session.Status == stripe.CheckoutSessionStatusComplete {
		status = "completed"
	}

	resource := &provider.Resource{
		ID:       session.ID,
		Status:   status,
		Email:    sessionEmail(session),
		Metadata: session.Metadata,
	}
	if session.Customer != nil {
		resource.CustomerID = session.Customer.ID
	}
	if session.PaymentIntent != nil {
		resource.PaymentID = session.PaymentIntent.ID
	}
	if session.Subscription != nil {
		resource.SubscriptionID = session.Subscription.ID
	}

	return resource, nil
}

// CreateCheckoutSession starts a Stripe-hosted checkout flow. ProductID is
// the Stripe price id; plan metadata decides the session mode.
func (c *Client) CreateCheckoutSession(ctx context.Context, req *provider.CheckoutRequest) (*provider.CheckoutResponse, error) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	mode := stripe.CheckoutSessionModePayment
	probe := &model.PaymentEvent{Metadata: req.Metadata}
	if model.ClassifyPlan(probe) != model.PlanTypeOneTime {
		mode = stripe.CheckoutSessionModeSubscription
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(mode)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.ProductID),
				Quantity: stripe.Int64(quantity),
			},
		},
		SuccessURL:    stripe.String(req.SuccessURL),
		CustomerEmail: stripe.String(req.Email),
	}
	params.Context = ctx
	if req.CancelURL != "" {
		params.CancelURL = stripe.String(req.CancelURL)
	}
	for key, value := range req.Metadata {
		params.AddMetadata(key, value)
	}

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, wrapStripeError(err)
	}

	c.logger.Info("StripeClient: Checkout session created",
		zap.String("session_id", session.ID),
		zap.String("mode", string(mode)))

	return &provider.CheckoutResponse{
		ID:  session.ID,
		URL: session.URL,
	}, nil
}

func customerID(customer *stripe.Customer) string {
	if customer == nil {
		return ""
	}
	return customer.ID
}

func sessionEmail(session *stripe.CheckoutSession) string {
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		return session.CustomerDetails.Email
	}
	if session.CustomerEmail != "" {
		return session.CustomerEmail
	}
	return session.Metadata["email"]
}

func wrapStripeError(err error) error {
	if stripeErr, ok := err.(*stripe.Error); ok {
		return &provider.ProviderError{
			Code:    string(stripeErr.Code),
			Message: stripeErr.Msg,
			Details: stripeErr.RequestID,
		}
	}
	return &provider.ProviderError{
		Code:    "API_ERROR",
		Message: "Stripe API request failed",
		Details: err.Error(),
	}
}

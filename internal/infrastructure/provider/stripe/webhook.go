package stripe

import (
	"encoding/json"
	"net/http"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"

	"github.com/lumenlabs/lumen-payments/internal/domain/model"
	"github.com/lumenlabs/lumen-payments/internal/domain/provider"
)

// VerifyWebhook authenticates a Stripe event and normalizes it. Event types
// this service does not act on return a nil event so the ingress can
// acknowledge them without action.
func (c *Client) VerifyWebhook(payload []byte, headers http.Header) (*model.PaymentEvent, string, error) {
	event, err := webhook.ConstructEventWithOptions(
		payload,
		headers.Get("Stripe-Signature"),
		c.webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		return nil, "", &provider.ProviderError{
			Code:    "SIGNATURE_INVALID",
			Message: "Webhook signature verification failed",
			Details: err.Error(),
		}
	}

	normalized, err := c.normalizeEvent(&event)
	if err != nil {
		return nil, string(event.Type), err
	}

	return normalized, string(event.Type), nil
}

func (c *Client) normalizeEvent(event *stripe.Event) (*model.PaymentEvent, error) {
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := c.unmarshalEventObject(event, &session); err != nil {
			return nil, err
		}

		normalized := &model.PaymentEvent{
			Email:      sessionEmail(&session),
			Kind:       model.EventKindCheckoutSession,
			ExternalID: session.ID,
			Status:     "completed",
			Metadata:   session.Metadata,
		}
		if session.Customer != nil {
			normalized.CustomerID = session.Customer.ID
		}
		if session.Subscription != nil {
			normalized.SubscriptionID = session.Subscription.ID
		}
		return normalized, nil

	case stripe.EventTypePaymentIntentSucceeded:
		var intent stripe.PaymentIntent
		if err := c.unmarshalEventObject(event, &intent); err != nil {
			return nil, err
		}

		email := intent.ReceiptEmail
		if email == "" {
			email = intent.Metadata["email"]
		}

		return &model.PaymentEvent{
			Email:      email,
			Kind:       model.EventKindPayment,
			ExternalID: intent.ID,
			Status:     "succeeded",
			Metadata:   intent.Metadata,
			CustomerID: customerID(intent.Customer),
		}, nil

	case stripe.EventTypeCustomerSubscriptionCreated,
		stripe.EventTypeCustomerSubscriptionUpdated,
		stripe.EventTypeCustomerSubscriptionDeleted:
		var subscription stripe.Subscription
		if err := c.unmarshalEventObject(event, &subscription); err != nil {
			return nil, err
		}

		status := string(subscription.Status)
		if event.Type == stripe.EventTypeCustomerSubscriptionCreated && status == "" {
			// Creation events are implicitly active.
			status = "active"
		}

		return &model.PaymentEvent{
			Email:      subscription.Metadata["email"],
			Kind:       model.EventKindSubscription,
			ExternalID: subscription.ID,
			Status:     status,
			Metadata:   subscription.Metadata,
			CustomerID: customerID(subscription.Customer),
		}, nil

	default:
		c.logger.Debug("StripeClient: Ignoring event type",
			zap.String("type", string(event.Type)))
		return nil, nil
	}
}

func (c *Client) unmarshalEventObject(event *stripe.Event, out interface{}) error {
	if err := json.Unmarshal(event.Data.Raw, out); err != nil {
		return &provider.ProviderError{
			Code:    "PARSE_ERROR",
			Message: "Failed to parse webhook payload",
			Details: err.Error(),
		}
	}
	return nil
}

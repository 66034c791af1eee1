package dodo

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lumenlabs/lumen-payments/internal/domain/model"
	"github.com/lumenlabs/lumen-payments/internal/domain/provider"
)

// Webhooks are signed per the standard-webhooks scheme: HMAC-SHA256 over
// "{id}.{timestamp}.{body}" with the base64 portion of the whsec_ secret,
// carried in the webhook-id / webhook-timestamp / webhook-signature headers.
const (
	headerWebhookID        = "webhook-id"
	headerWebhookTimestamp = "webhook-timestamp"
	headerWebhookSignature = "webhook-signature"

	signatureVersion   = "v1"
	timestampTolerance = 5 * time.Minute
)

type webhookEnvelope struct {
	Type string           `json:"type"`
	Data webhookEventData `json:"data"`
}

// webhookEventData merges the payment and subscription payload shapes; which
// fields are set depends on the event type.
type webhookEventData struct {
	PayloadType    string            `json:"payload_type"`
	PaymentID      string            `json:"payment_id"`
	SubscriptionID string            `json:"subscription_id"`
	Status         string            `json:"status"`
	Customer       customer          `json:"customer"`
	Metadata       map[string]string `json:"metadata"`
}

// VerifyWebhook authenticates an inbound event and normalizes it. Event
// types this service does not act on return a nil event so the ingress can
// acknowledge them without action.
func (c *Client) VerifyWebhook(payload []byte, headers http.Header) (*model.PaymentEvent, string, error) {
	if err := verifySignature(
		c.webhookSecret,
		headers.Get(headerWebhookID),
		headers.Get(headerWebhookTimestamp),
		headers.Get(headerWebhookSignature),
		payload,
		time.Now(),
	); err != nil {
		return nil, "", &provider.ProviderError{
			Code:    "SIGNATURE_INVALID",
			Message: "Webhook signature verification failed",
			Details: err.Error(),
		}
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, "", &provider.ProviderError{
			Code:    "PARSE_ERROR",
			Message: "Failed to parse webhook payload",
			Details: err.Error(),
		}
	}

	return normalizeEvent(&envelope), envelope.Type, nil
}

func normalizeEvent(envelope *webhookEnvelope) *model.PaymentEvent {
	data := envelope.Data
	email := resolveEmail(data.Customer, data.Metadata)

	switch {
	case envelope.Type == "payment.succeeded":
		return &model.PaymentEvent{
			Email:          email,
			Kind:           model.EventKindPayment,
			ExternalID:     data.PaymentID,
			Status:         "succeeded",
			Metadata:       data.Metadata,
			CustomerID:     data.Customer.CustomerID,
			SubscriptionID: data.SubscriptionID,
		}

	case strings.HasPrefix(envelope.Type, "subscription."):
		status := data.Status
		if status == "" {
			// subscription.active, subscription.cancelled, ... carry
			// the status in the type when the payload omits it. Creation
			// is implicitly active.
			status = strings.TrimPrefix(envelope.Type, "subscription.")
			if status == "created" {
				status = "active"
			}
		}
		if envelope.Type == "subscription.renewed" {
			status = "active"
		}

		return &model.PaymentEvent{
			Email:      email,
			Kind:       model.EventKindSubscription,
			ExternalID: data.SubscriptionID,
			Status:     status,
			Metadata:   data.Metadata,
			CustomerID: data.Customer.CustomerID,
		}

	default:
		return nil
	}
}

func verifySignature(secret, msgID, timestamp, signatureHeader string, payload []byte, now time.Time) error {
	if msgID == "" || timestamp == "" || signatureHeader == "" {
		return fmt.Errorf("missing webhook signature headers")
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid webhook timestamp: %w", err)
	}

	age := now.Sub(time.Unix(ts, 0))
	if age > timestampTolerance || age < -timestampTolerance {
		return fmt.Errorf("webhook timestamp outside tolerance")
	}

	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, "whsec_"))
	if err != nil {
		return fmt.Errorf("invalid webhook secret: %w", err)
	}

	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "%s.%s.%s", msgID, timestamp, payload)
	expected := signatureVersion + "," + base64.StdEncoding.EncodeToString(mac.Sum(nil))

	// The header may carry several space-delimited signatures after key
	// rotation; any match passes.
	for _, candidate := range strings.Fields(signatureHeader) {
		if hmac.Equal([]byte(candidate), []byte(expected)) {
			return nil
		}
	}

	return fmt.Errorf("no matching webhook signature")
}

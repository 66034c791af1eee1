package model

import "time"

// PaymentState tells whether a user has any active paid plan
type PaymentState string

const (
	PaymentStatePaid   PaymentState = "paid"
	PaymentStateUnpaid PaymentState = "unpaid"
)

// PlanType classifies the active plan on an entitlement
type PlanType string

const (
	PlanTypeOneTime      PlanType = "one-time"
	PlanTypeSubscription PlanType = "subscription"
	PlanTypeUsageBased   PlanType = "usage-based"
)

// Entitlement is the per-user record of what was paid for and how much
// usage/credit remains. One document per email in the users collection,
// upserted on the first successful payment observation and never deleted.
type Entitlement struct {
	Email           string            `bson:"email" json:"email"`
	Payment         PaymentState      `bson:"payment" json:"payment"`
	PaymentType     PlanType          `bson:"paymentType,omitempty" json:"paymentType,omitempty"`
	PaymentDate     time.Time         `bson:"paymentDate,omitempty" json:"paymentDate,omitempty"`
	LastPaymentID   string            `bson:"lastPaymentId,omitempty" json:"lastPaymentId,omitempty"`
	PaymentMetadata map[string]string `bson:"paymentMetadata,omitempty" json:"paymentMetadata,omitempty"`

	// TotalCredits only ever increases, and only via credit-pack purchases.
	TotalCredits int `bson:"totalCredits,omitempty" json:"totalCredits,omitempty"`

	SubscriptionID     string `bson:"subscriptionId,omitempty" json:"subscriptionId,omitempty"`
	SubscriptionStatus string `bson:"subscriptionStatus,omitempty" json:"subscriptionStatus,omitempty"`

	// CustomerID is the provider-side customer, required for usage metering.
	CustomerID string `bson:"customerId,omitempty" json:"customerId,omitempty"`

	ImagesGenerated    int        `bson:"imagesGenerated,omitempty" json:"imagesGenerated,omitempty"`
	TotalUsageCost     float64    `bson:"totalUsageCost,omitempty" json:"totalUsageCost,omitempty"`
	LastImageGenerated *time.Time `bson:"lastImageGenerated,omitempty" json:"lastImageGenerated,omitempty"`

	CreatedAt time.Time `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// HasPaid reports whether the entitlement currently unlocks the product.
// Subscription entitlements additionally require an active or trialing
// subscription; the reconciler keeps Payment in sync with that on every
// subscription event, so this only guards against stale documents.
func (e *Entitlement) HasPaid() bool {
	if e == nil || e.Payment != PaymentStatePaid {
		return false
	}
	if e.PaymentType == PlanTypeSubscription {
		return IsActiveSubscriptionStatus(e.SubscriptionStatus)
	}
	return true
}

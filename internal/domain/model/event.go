package model

import "strconv"

// EventKind identifies which provider resource a normalized event came from
type EventKind string

const (
	EventKindPayment         EventKind = "payment"
	EventKindSubscription    EventKind = "subscription"
	EventKindCheckoutSession EventKind = "checkout_session"
)

// Metadata keys echoed by the provider on payments and sessions.
const (
	MetadataKeyPlan        = "plan"
	MetadataKeyBillingType = "billing_type"
	MetadataKeyCredits     = "credits"
)

// Plan names the storefront attaches to checkout sessions.
const (
	PlanNamePayPerImage  = "Pay Per Image"
	PlanNameCreditPack   = "Credit Pack"
	PlanNameUnlimitedPro = "Unlimited Pro"
)

const defaultCreditPackCredits = 10

// PaymentEvent is the normalized description of a provider event or polled
// resource. Providers parse their own wire shapes into this type; the
// reconciler never sees raw provider JSON.
type PaymentEvent struct {
	Email          string
	Kind           EventKind
	ExternalID     string
	Status         string
	Metadata       map[string]string
	CustomerID     string
	SubscriptionID string
}

// Plan returns the plan-name metadata hint, if any.
func (e *PaymentEvent) Plan() string {
	return e.Metadata[MetadataKeyPlan]
}

// BillingType returns the billing-type metadata hint, if any.
func (e *PaymentEvent) BillingType() string {
	return e.Metadata[MetadataKeyBillingType]
}

// ClassifyPlan resolves the plan type for an event. Metadata hints win over
// event structure; an event carrying a subscription identifier defaults to
// subscription; everything else is a one-time purchase.
func ClassifyPlan(e *PaymentEvent) PlanType {
	switch e.BillingType() {
	case "usage_based":
		return PlanTypeUsageBased
	case "subscription":
		return PlanTypeSubscription
	}

	switch e.Plan() {
	case PlanNamePayPerImage:
		return PlanTypeUsageBased
	case PlanNameCreditPack:
		return PlanTypeOneTime
	case PlanNameUnlimitedPro:
		return PlanTypeSubscription
	}

	if e.Kind == EventKindSubscription || e.SubscriptionID != "" {
		return PlanTypeSubscription
	}

	return PlanTypeOneTime
}

// CreditsToGrant returns how many credits a one-time purchase carries.
// Only credit-pack purchases (by plan name or an explicit credits hint)
// grant credits; subscription and usage-based events always return 0.
func CreditsToGrant(e *PaymentEvent) int {
	if ClassifyPlan(e) != PlanTypeOneTime {
		return 0
	}

	raw, hasCredits := e.Metadata[MetadataKeyCredits]
	if e.Plan() != PlanNameCreditPack && !hasCredits {
		return 0
	}

	if hasCredits {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return defaultCreditPackCredits
}

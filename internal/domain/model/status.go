package model

import "strings"

// successfulStatuses are the provider statuses that unlock an entitlement.
// Anything else is reported back as not-yet-successful without mutating
// state.
var successfulStatuses = map[string]struct{}{
	"paid":      {},
	"succeeded": {},
	"active":    {},
	"trialing":  {},
	"completed": {},
}

// IsSuccessfulStatus reports whether a provider status string counts as a
// successful payment observation.
func IsSuccessfulStatus(status string) bool {
	_, ok := successfulStatuses[strings.ToLower(status)]
	return ok
}

// IsActiveSubscriptionStatus reports whether a subscription status keeps the
// entitlement unlocked.
func IsActiveSubscriptionStatus(status string) bool {
	switch strings.ToLower(status) {
	case "active", "trialing":
		return true
	default:
		return false
	}
}

package errors

import "errors"

var (
	// ErrMissingEmail is returned when an event or request cannot be
	// resolved to a user.
	ErrMissingEmail = errors.New("email is required")

	// ErrEntitlementNotFound is returned when no document exists for an
	// email.
	ErrEntitlementNotFound = errors.New("entitlement not found")

	// ErrNotEntitled is returned when a usage call arrives for a user
	// without an active paid plan.
	ErrNotEntitled = errors.New("no active paid plan")

	// ErrMissingReference is returned when a verification request names
	// no payment, subscription, or checkout session.
	ErrMissingReference = errors.New("paymentId, subscriptionId or sessionId is required")
)

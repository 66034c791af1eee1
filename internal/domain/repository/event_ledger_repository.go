package repository

import "context"

// EventLedgerRepository is the processed-events ledger backing credit-grant
// idempotency under at-least-once webhook delivery.
type EventLedgerRepository interface {
	// Apply claims an external event id for an email. It returns true when
	// this call inserted the ledger row, false when the event was already
	// applied earlier.
	Apply(ctx context.Context, email, eventID string, credits int) (bool, error)
}

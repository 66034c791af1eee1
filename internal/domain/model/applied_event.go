package model

import "time"

// AppliedEvent is one row of the processed-events ledger. A unique index on
// {email, event_id} makes inserting the row the atomic claim on a credit
// grant: at-least-once webhook delivery then applies credits exactly once.
type AppliedEvent struct {
	LedgerID  string    `bson:"ledgerId" json:"ledgerId"`
	Email     string    `bson:"email" json:"email"`
	EventID   string    `bson:"event_id" json:"event_id"`
	Credits   int       `bson:"credits" json:"credits"`
	AppliedAt time.Time `bson:"appliedAt" json:"appliedAt"`
}

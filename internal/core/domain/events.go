package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType identifies a domain event emitted for the notification layer.
type EventType string

const (
	EventCollectionVerified   EventType = "collection.verified"
	EventCollectionApproved   EventType = "collection.approved"
	EventCollectionReconciled EventType = "collection.reconciled"
	EventCollectionRejected   EventType = "collection.rejected"
	EventBalanceDriftCorrect  EventType = "ledger.balance_drift_corrected"
	EventBackfillCompleted    EventType = "ledger.backfill_completed"
)

// Event is a domain event. Amount and AccountCode are set where meaningful
// for the event type.
type Event struct {
	Type        EventType       `json:"type"`
	OccurredAt  time.Time       `json:"occurredAt"`
	SubjectID   int64           `json:"subjectID,omitempty"`
	AccountCode string          `json:"accountCode,omitempty"`
	Amount      decimal.Decimal `json:"amount,omitempty"`
	ActorID     string          `json:"actorID,omitempty"`
	Detail      string          `json:"detail,omitempty"`
}

package domain

import "time"

// EntryStatus indicates the state of a journal entry.
type EntryStatus string

const (
	Posted   EntryStatus = "posted"
	Reversed EntryStatus = "reversed"
)

// Source types for journal entries, identifying the triggering business event.
const (
	SourceOrderDelivered  = "order_delivered"
	SourceOrderReturned   = "order_returned"
	SourceFailedDelivery  = "failed_delivery"
	SourceCostBackfill    = "cost_backfill"
	SourceAgentCollection = "agent_collection"
	SourceAgentReconcile  = "agent_reconciliation"
	SourceDeposit         = "deposit"
	SourceReversal        = "reversal"
	SourceManual          = "manual"
)

// JournalEntry represents a single, balanced financial event composed of
// multiple account transactions. Once posted it is never mutated in place;
// corrections happen via offsetting entries.
type JournalEntry struct {
	EntryID     string      `json:"entryID"`
	EntryNumber string      `json:"entryNumber"` // JE-YYYYMMDD-NNNNN, unique
	EntryDate   time.Time   `json:"entryDate"`
	Description string      `json:"description"`
	SourceType  string      `json:"sourceType"`
	SourceID    int64       `json:"sourceID"`
	Status      EntryStatus `json:"status"`
	// Set when this entry reverses another, or was itself reversed.
	OriginalEntryID  *string `json:"originalEntryID,omitempty"`
	ReversingEntryID *string `json:"reversingEntryID,omitempty"`
	AuditFields
	Transactions []AccountTransaction `json:"transactions,omitempty"`
}

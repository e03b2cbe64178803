package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountBalanceSummary is the per-account aggregate of the transaction
// ledger, the input to balance reconciliation.
type AccountBalanceSummary struct {
	AccountCode string          `json:"accountCode"`
	DebitSum    decimal.Decimal `json:"debitSum"`
	CreditSum   decimal.Decimal `json:"creditSum"`
}

// CalculatedBalance applies the account's normal-balance sign convention to
// the aggregate sums.
func (s AccountBalanceSummary) CalculatedBalance(nb NormalBalance) decimal.Decimal {
	if nb == DebitNormal {
		return s.DebitSum.Sub(s.CreditSum)
	}
	return s.CreditSum.Sub(s.DebitSum)
}

// BalanceCorrection records one cached-balance fix applied (or proposed, in
// dry-run mode) by the reconciliation service.
type BalanceCorrection struct {
	AccountCode string          `json:"accountCode"`
	Before      decimal.Decimal `json:"before"`
	After       decimal.Decimal `json:"after"`
}

// ReconciliationReport is the result of one reconcile pass.
type ReconciliationReport struct {
	RanAt           time.Time           `json:"ranAt"`
	DryRun          bool                `json:"dryRun"`
	CheckedAccounts int                 `json:"checkedAccounts"`
	Corrections     []BalanceCorrection `json:"corrections"`
}

// BackfillOrderResult is the outcome for one order during a backfill scan.
type BackfillOrderResult struct {
	OrderID    int64           `json:"orderID"`
	Recognized bool            `json:"recognized"`
	Amount     decimal.Decimal `json:"amount"`
	EntryID    string          `json:"entryID,omitempty"`
	SkipReason string          `json:"skipReason,omitempty"`
}

// BackfillReport summarises a backfillMissing run over orders in
// terminal-recognized states that never produced a journal entry.
type BackfillReport struct {
	RanAt            time.Time             `json:"ranAt"`
	DryRun           bool                  `json:"dryRun"`
	Scanned          int                   `json:"scanned"`
	Recognized       int                   `json:"recognized"`
	Skipped          int                   `json:"skipped"`
	RecoveredRevenue decimal.Decimal       `json:"recoveredRevenue"`
	Orders           []BackfillOrderResult `json:"orders"`
}

// CostBackfillResult is the outcome for one order during a cost backfill
// scan.
type CostBackfillResult struct {
	OrderID    int64           `json:"orderID"`
	Posted     bool            `json:"posted"`
	COGS       decimal.Decimal `json:"cogs"`
	EntryID    string          `json:"entryID,omitempty"`
	SkipReason string          `json:"skipReason,omitempty"`
}

// CostBackfillReport summarises a pass over recognized orders that were
// posted without a COGS leg because product cost data was missing.
type CostBackfillReport struct {
	RanAt     time.Time            `json:"ranAt"`
	DryRun    bool                 `json:"dryRun"`
	Scanned   int                  `json:"scanned"`
	Posted    int                  `json:"posted"`
	Skipped   int                  `json:"skipped"`
	TotalCOGS decimal.Decimal      `json:"totalCOGS"`
	Orders    []CostBackfillResult `json:"orders"`
}

// AgingBucket boundaries, in days outstanding.
const (
	AgingBucket0To7   = "0-7"
	AgingBucket8To14  = "8-14"
	AgingBucket15To30 = "15-30"
	AgingBucket30Plus = "30+"
)

// AgentAgingReport groups one agent's outstanding (unreconciled, unrejected,
// live-order) collections by age bucket.
type AgentAgingReport struct {
	AgentID          int64                      `json:"agentID"`
	Buckets          map[string]decimal.Decimal `json:"buckets"`
	TotalOutstanding decimal.Decimal            `json:"totalOutstanding"`
	OldestCollection time.Time                  `json:"oldestCollection"`
}

// DedupResolution describes how the guard handles a duplicate group's GL state.
type DedupResolution string

const (
	DedupNoPosting      DedupResolution = "no_posting"
	DedupTransferredGL  DedupResolution = "transferred_gl"
	DedupReversedLoser  DedupResolution = "reversed_loser"
	DedupManualReview   DedupResolution = "manual_review"
	DedupSurvivorPosted DedupResolution = "survivor_posted"
)

// DedupGroup is one set of orders sharing a fingerprint, with the chosen
// survivor and the GL handling decided for the losers.
type DedupGroup struct {
	Fingerprint string          `json:"fingerprint"`
	SurvivorID  int64           `json:"survivorID"`
	LoserIDs    []int64         `json:"loserIDs"`
	Resolution  DedupResolution `json:"resolution"`
	Detail      string          `json:"detail,omitempty"`
}

// DedupReport is the result of one deduplication pass.
type DedupReport struct {
	RanAt           time.Time    `json:"ranAt"`
	DryRun          bool         `json:"dryRun"`
	ScannedOrders   int          `json:"scannedOrders"`
	DuplicateGroups []DedupGroup `json:"duplicateGroups"`
	SoftDeleted     int64        `json:"softDeleted"`
	ManualReview    int          `json:"manualReview"`
	OrphanCustomers []Customer   `json:"orphanCustomers"`
}

// AmountFix is one proposed or applied correction for a bulk-imported order
// line where the total amount was misapplied as the unit price.
type AmountFix struct {
	OrderID          int64           `json:"orderID"`
	ItemID           int64           `json:"itemID"`
	Quantity         int64           `json:"quantity"`
	BeforeUnitPrice  decimal.Decimal `json:"beforeUnitPrice"`
	BeforeTotal      decimal.Decimal `json:"beforeTotal"`
	CorrectUnitPrice decimal.Decimal `json:"correctUnitPrice"`
	CorrectTotal     decimal.Decimal `json:"correctTotal"`
}

// AmountFixReport is the result of one imported-amount repair pass.
type AmountFixReport struct {
	RanAt   time.Time   `json:"ranAt"`
	DryRun  bool        `json:"dryRun"`
	Scanned int         `json:"scanned"`
	Fixes   []AmountFix `json:"fixes"`
	Applied int         `json:"applied"`
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CollectionStatus is the lifecycle of cash held by a delivery agent for one
// order. Transitions move forward only; rejected is a terminal abort state
// reachable from draft or verified.
type CollectionStatus string

const (
	CollectionDraft      CollectionStatus = "draft"
	CollectionVerified   CollectionStatus = "verified"
	CollectionApproved   CollectionStatus = "approved"
	CollectionReconciled CollectionStatus = "reconciled"
	CollectionRejected   CollectionStatus = "rejected"
)

// AgentCollection records custody of COD cash by a delivery agent for
// exactly one order. At most one live collection exists per order.
type AgentCollection struct {
	ID             int64            `json:"id"`
	OrderID        int64            `json:"orderID"`
	AgentID        int64            `json:"agentID"`
	Amount         decimal.Decimal  `json:"amount"`
	Status         CollectionStatus `json:"status"`
	CollectionDate time.Time        `json:"collectionDate"`
	VerifiedAt     *time.Time       `json:"verifiedAt,omitempty"`
	VerifiedBy     *string          `json:"verifiedBy,omitempty"`
	ApprovedAt     *time.Time       `json:"approvedAt,omitempty"`
	ApprovedBy     *string          `json:"approvedBy,omitempty"`
	ReconciledAt   *time.Time       `json:"reconciledAt,omitempty"`
	ReconciledBy   *string          `json:"reconciledBy,omitempty"`
	RejectedAt     *time.Time       `json:"rejectedAt,omitempty"`
	RejectedBy     *string          `json:"rejectedBy,omitempty"`
	RejectReason   string           `json:"rejectReason,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// AgentBalance tracks the cash an agent presently holds. One row per agent,
// created lazily on the agent's first collection.
type AgentBalance struct {
	ID             int64           `json:"id"`
	AgentID        int64           `json:"agentID"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	TotalCollected decimal.Decimal `json:"totalCollected"`
	TotalDeposited decimal.Decimal `json:"totalDeposited"`
	LastUpdatedAt  time.Time       `json:"lastUpdatedAt"`
}

// DepositStatus is the verification lifecycle of an agent cash deposit.
type DepositStatus string

const (
	DepositPending  DepositStatus = "pending"
	DepositVerified DepositStatus = "verified"
	DepositRejected DepositStatus = "rejected"
)

// AgentDeposit records cash handed over by an agent. Verification reduces
// the agent's current balance.
type AgentDeposit struct {
	ID         int64           `json:"id"`
	AgentID    int64           `json:"agentID"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Reference  string          `json:"reference"`
	Notes      string          `json:"notes,omitempty"`
	Status     DepositStatus   `json:"status"`
	VerifiedAt *time.Time      `json:"verifiedAt,omitempty"`
	VerifiedBy *string         `json:"verifiedBy,omitempty"`
	RejectedAt *time.Time      `json:"rejectedAt,omitempty"`
	RejectedBy *string         `json:"rejectedBy,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

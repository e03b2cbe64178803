package dto

import (
	"time"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateCollectionRequest defines the data needed to record cash collected
// by a delivery agent for one order.
type CreateCollectionRequest struct {
	OrderID        int64           `json:"orderID" binding:"required"`
	AgentID        int64           `json:"agentID" binding:"required"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	CollectionDate time.Time       `json:"collectionDate"`
}

// RejectCollectionRequest carries the mandatory rejection reason.
type RejectCollectionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// BulkVerifyRequest defines the batch verification input.
type BulkVerifyRequest struct {
	CollectionIDs []int64 `json:"collectionIDs" binding:"required,min=1"`
}

// BulkVerifyFailure reports one collection that could not be verified.
type BulkVerifyFailure struct {
	CollectionID int64  `json:"collectionID"`
	Reason       string `json:"reason"`
}

// BulkVerifyResponse summarises a batch verification: successes commit,
// failures are reported per item.
type BulkVerifyResponse struct {
	Verified []int64             `json:"verified"`
	Failed   []BulkVerifyFailure `json:"failed"`
}

// ListCollectionsParams defines query parameters for listing collections.
type ListCollectionsParams struct {
	AgentID *int64     `form:"agentID"`
	Status  *string    `form:"status" binding:"omitempty,oneof=draft verified approved reconciled rejected"`
	From    *time.Time `form:"from" time_format:"2006-01-02"`
	To      *time.Time `form:"to" time_format:"2006-01-02"`
	Limit   int        `form:"limit,default=100" binding:"omitempty,min=1,max=1000"`
}

// CollectionResponse defines the data returned for a collection.
type CollectionResponse struct {
	ID             int64           `json:"id"`
	OrderID        int64           `json:"orderID"`
	AgentID        int64           `json:"agentID"`
	Amount         decimal.Decimal `json:"amount"`
	Status         string          `json:"status"`
	CollectionDate time.Time       `json:"collectionDate"`
	VerifiedAt     *time.Time      `json:"verifiedAt,omitempty"`
	ApprovedAt     *time.Time      `json:"approvedAt,omitempty"`
	ReconciledAt   *time.Time      `json:"reconciledAt,omitempty"`
	RejectedAt     *time.Time      `json:"rejectedAt,omitempty"`
	RejectReason   string          `json:"rejectReason,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// ToCollectionResponse converts a domain.AgentCollection to its DTO.
func ToCollectionResponse(c *domain.AgentCollection) CollectionResponse {
	return CollectionResponse{
		ID:             c.ID,
		OrderID:        c.OrderID,
		AgentID:        c.AgentID,
		Amount:         c.Amount,
		Status:         string(c.Status),
		CollectionDate: c.CollectionDate,
		VerifiedAt:     c.VerifiedAt,
		ApprovedAt:     c.ApprovedAt,
		ReconciledAt:   c.ReconciledAt,
		RejectedAt:     c.RejectedAt,
		RejectReason:   c.RejectReason,
		CreatedAt:      c.CreatedAt,
	}
}

// ToCollectionResponses converts a slice of collections to DTOs.
func ToCollectionResponses(collections []domain.AgentCollection) []CollectionResponse {
	res := make([]CollectionResponse, len(collections))
	for i := range collections {
		res[i] = ToCollectionResponse(&collections[i])
	}
	return res
}

// AgentBalanceResponse defines the data returned for an agent's cash position.
type AgentBalanceResponse struct {
	AgentID        int64           `json:"agentID"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	TotalCollected decimal.Decimal `json:"totalCollected"`
	TotalDeposited decimal.Decimal `json:"totalDeposited"`
	LastUpdatedAt  time.Time       `json:"lastUpdatedAt"`
}

// ToAgentBalanceResponse converts a domain.AgentBalance to its DTO.
func ToAgentBalanceResponse(b *domain.AgentBalance) AgentBalanceResponse {
	return AgentBalanceResponse{
		AgentID:        b.AgentID,
		CurrentBalance: b.CurrentBalance,
		TotalCollected: b.TotalCollected,
		TotalDeposited: b.TotalDeposited,
		LastUpdatedAt:  b.LastUpdatedAt,
	}
}

// CreateDepositRequest defines the data needed to record an agent deposit.
type CreateDepositRequest struct {
	AgentID   int64           `json:"agentID" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    string          `json:"method" binding:"required,oneof=cash bank_transfer mobile_money"`
	Reference string          `json:"reference"`
	Notes     string          `json:"notes"`
}

// DepositResponse defines the data returned for a deposit.
type DepositResponse struct {
	ID         int64           `json:"id"`
	AgentID    int64           `json:"agentID"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Reference  string          `json:"reference"`
	Notes      string          `json:"notes,omitempty"`
	Status     string          `json:"status"`
	VerifiedAt *time.Time      `json:"verifiedAt,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// ToDepositResponse converts a domain.AgentDeposit to its DTO.
func ToDepositResponse(d *domain.AgentDeposit) DepositResponse {
	return DepositResponse{
		ID:         d.ID,
		AgentID:    d.AgentID,
		Amount:     d.Amount,
		Method:     d.Method,
		Reference:  d.Reference,
		Notes:      d.Notes,
		Status:     string(d.Status),
		VerifiedAt: d.VerifiedAt,
		CreatedAt:  d.CreatedAt,
	}
}

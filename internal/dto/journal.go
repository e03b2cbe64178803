package dto

import (
	"time"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryLineRequest is one line of a manual journal entry. Exactly one of
// the two amounts must be positive.
type EntryLineRequest struct {
	AccountCode  string          `json:"accountCode" binding:"required,account_code"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Description  string          `json:"description"`
}

// PostEntryRequest defines the data needed to post a manual journal entry.
type PostEntryRequest struct {
	EntryDate   time.Time          `json:"entryDate" binding:"required"`
	Description string             `json:"description" binding:"required"`
	SourceType  string             `json:"sourceType"`
	SourceID    int64              `json:"sourceID"`
	Lines       []EntryLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// TransactionResponse defines the data returned for one ledger line.
type TransactionResponse struct {
	TransactionID string          `json:"transactionID"`
	EntryID       string          `json:"entryID"`
	AccountCode   string          `json:"accountCode"`
	DebitAmount   decimal.Decimal `json:"debitAmount"`
	CreditAmount  decimal.Decimal `json:"creditAmount"`
	Description   string          `json:"description"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	EntryID          string                `json:"entryID"`
	EntryNumber      string                `json:"entryNumber"`
	EntryDate        time.Time             `json:"entryDate"`
	Description      string                `json:"description"`
	SourceType       string                `json:"sourceType"`
	SourceID         int64                 `json:"sourceID"`
	Status           string                `json:"status"`
	OriginalEntryID  *string               `json:"originalEntryID,omitempty"`
	ReversingEntryID *string               `json:"reversingEntryID,omitempty"`
	CreatedAt        time.Time             `json:"createdAt"`
	CreatedBy        string                `json:"createdBy"`
	Transactions     []TransactionResponse `json:"transactions,omitempty"`
}

// ToTransactionResponse converts a domain.AccountTransaction to its DTO.
func ToTransactionResponse(txn *domain.AccountTransaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: txn.TransactionID,
		EntryID:       txn.EntryID,
		AccountCode:   txn.AccountCode,
		DebitAmount:   txn.DebitAmount,
		CreditAmount:  txn.CreditAmount,
		Description:   txn.Description,
		CreatedAt:     txn.CreatedAt,
	}
}

// ToTransactionResponses converts a slice of ledger lines to DTOs.
func ToTransactionResponses(txns []domain.AccountTransaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToTransactionResponse(&txns[i])
	}
	return responses
}

// ToEntryResponse converts a domain.JournalEntry to EntryResponse DTO.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	return EntryResponse{
		EntryID:          e.EntryID,
		EntryNumber:      e.EntryNumber,
		EntryDate:        e.EntryDate,
		Description:      e.Description,
		SourceType:       e.SourceType,
		SourceID:         e.SourceID,
		Status:           string(e.Status),
		OriginalEntryID:  e.OriginalEntryID,
		ReversingEntryID: e.ReversingEntryID,
		CreatedAt:        e.CreatedAt,
		CreatedBy:        e.CreatedBy,
		Transactions:     ToTransactionResponses(e.Transactions),
	}
}

package dto

import (
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new GL account.
// NormalBalance is derived from the account type, never supplied by the caller.
type CreateAccountRequest struct {
	Code        string             `json:"code" binding:"required,account_code"`
	Name        string             `json:"name" binding:"required"`
	Description string             `json:"description"`
	AccountType domain.AccountType `json:"accountType" binding:"required,oneof=asset liability equity revenue expense"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
// Code, type and normal balance are immutable after creation.
type UpdateAccountRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	AccountType    string          `json:"accountType"`
	NormalBalance  string          `json:"normalBalance"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	IsActive       bool            `json:"isActive"`
	IsSystem       bool            `json:"isSystem"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		Code:           acc.Code,
		Name:           acc.Name,
		Description:    acc.Description,
		AccountType:    string(acc.AccountType),
		NormalBalance:  string(acc.NormalBalance),
		CurrentBalance: acc.CurrentBalance,
		IsActive:       acc.IsActive,
		IsSystem:       acc.IsSystem,
	}
}

// ToListAccountResponse converts a slice of domain.Account to response DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// ListAccountsResponse wraps the chart of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// MappingCheckResponse reports whether every account code the posting
// workflows depend on exists and is active.
type MappingCheckResponse struct {
	OK      bool     `json:"ok"`
	Missing []string `json:"missing,omitempty"`
}

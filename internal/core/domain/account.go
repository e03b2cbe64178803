package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "asset"
	Liability AccountType = "liability"
	Equity    AccountType = "equity"
	Revenue   AccountType = "revenue"
	Expense   AccountType = "expense"
)

// NormalBalance defines whether an account naturally increases with debits or credits.
type NormalBalance string

const (
	DebitNormal  NormalBalance = "debit"
	CreditNormal NormalBalance = "credit"
)

// ExpectedNormalBalance returns the only valid normal balance for an account type.
// Assets and expenses carry debit balances; liabilities, equity, and revenue
// carry credit balances.
func ExpectedNormalBalance(t AccountType) (NormalBalance, bool) {
	switch t {
	case Asset, Expense:
		return DebitNormal, true
	case Liability, Equity, Revenue:
		return CreditNormal, true
	}
	return "", false
}

// Account is a ledger account in the chart of accounts, identified by its
// stable 4-digit code. CurrentBalance is a cached value maintained
// incrementally on every posting; the reconciliation service keeps it equal
// to the signed sum of the account's transactions.
type Account struct {
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	AccountType    AccountType     `json:"accountType"`
	NormalBalance  NormalBalance   `json:"normalBalance"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	IsActive       bool            `json:"isActive"`
	IsSystem       bool            `json:"isSystem"`
	AuditFields
}

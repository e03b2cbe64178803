package domain

import "github.com/shopspring/decimal"

// AccountTransaction is a single line item within a JournalEntry, affecting
// one account. Exactly one of DebitAmount/CreditAmount is non-zero in a
// well-formed line. Lines are created only by the journal entry engine and
// are immutable once posted, except through the documented
// misclassification repair tool.
type AccountTransaction struct {
	TransactionID string          `json:"transactionID"`
	EntryID       string          `json:"entryID"`
	AccountCode   string          `json:"accountCode"`
	DebitAmount   decimal.Decimal `json:"debitAmount"`
	CreditAmount  decimal.Decimal `json:"creditAmount"`
	Description   string          `json:"description"`
	AuditFields
}

// IsDebit reports whether the line's non-zero side is the debit side.
func (t AccountTransaction) IsDebit() bool {
	return t.DebitAmount.IsPositive()
}

// Amount returns the line's non-zero side.
func (t AccountTransaction) Amount() decimal.Decimal {
	if t.IsDebit() {
		return t.DebitAmount
	}
	return t.CreditAmount
}

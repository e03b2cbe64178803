package accounting

import (
	"fmt"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceEpsilon is the tolerance used when comparing currency amounts:
// entry balance checks and cached-balance drift detection.
var BalanceEpsilon = decimal.NewFromFloat(0.01)

// SignedAmount applies the account's normal-balance sign convention to a
// transaction line: debit−credit for debit-normal accounts, credit−debit
// for credit-normal accounts. Used by the posting path and the
// reconciliation path so both sides agree on the arithmetic.
func SignedAmount(txn domain.AccountTransaction, nb domain.NormalBalance) (decimal.Decimal, error) {
	switch nb {
	case domain.DebitNormal:
		return txn.DebitAmount.Sub(txn.CreditAmount), nil
	case domain.CreditNormal:
		return txn.CreditAmount.Sub(txn.DebitAmount), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown normal balance %q for account %s", nb, txn.AccountCode)
	}
}

// ValidateEntryBalance checks that an entry's lines form a well-formed
// double-entry posting: at least two lines, each line with exactly one
// positive side, and debits equal to credits within BalanceEpsilon.
func ValidateEntryBalance(transactions []domain.AccountTransaction) (debits, credits decimal.Decimal, err error) {
	if len(transactions) < 2 {
		return decimal.Zero, decimal.Zero, fmt.Errorf("entry must have at least two transaction lines, got %d", len(transactions))
	}

	for _, txn := range transactions {
		if txn.DebitAmount.IsNegative() || txn.CreditAmount.IsNegative() {
			return decimal.Zero, decimal.Zero, fmt.Errorf("negative amount on line for account %s", txn.AccountCode)
		}
		hasDebit := txn.DebitAmount.IsPositive()
		hasCredit := txn.CreditAmount.IsPositive()
		if hasDebit == hasCredit {
			return decimal.Zero, decimal.Zero, fmt.Errorf("line for account %s must have exactly one non-zero side (debit=%s credit=%s)",
				txn.AccountCode, txn.DebitAmount, txn.CreditAmount)
		}
		debits = debits.Add(txn.DebitAmount)
		credits = credits.Add(txn.CreditAmount)
	}

	if debits.Sub(credits).Abs().GreaterThan(BalanceEpsilon) {
		return debits, credits, fmt.Errorf("debits %s do not equal credits %s", debits, credits)
	}
	return debits, credits, nil
}

// BalanceChanges computes the net cached-balance delta per account for a set
// of lines, given each account's normal balance.
func BalanceChanges(transactions []domain.AccountTransaction, normals map[string]domain.NormalBalance) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal, len(normals))
	for _, txn := range transactions {
		nb, ok := normals[txn.AccountCode]
		if !ok {
			return nil, fmt.Errorf("normal balance not known for account %s", txn.AccountCode)
		}
		signed, err := SignedAmount(txn, nb)
		if err != nil {
			return nil, err
		}
		changes[txn.AccountCode] = changes[txn.AccountCode].Add(signed)
	}
	return changes, nil
}

package config

import (
	"fmt"
	"regexp"
)

// GL account codes used by automated posting. They must match accounts in
// the seeded chart of accounts.
//
// Code ranges: assets 1000-1999, liabilities 2000-2999, equity 3000-3999,
// revenue 4000-4999, expenses 5000-5999.
const (
	AccountCashInHand    = "1010" // cash collected by agents, not yet deposited
	AccountCashInTransit = "1015" // cash from delivered orders, with delivery agents
	AccountARAgents      = "1020" // accounts receivable - delivery agents
	AccountInventory     = "1200"

	AccountRefundLiability    = "2010"
	AccountCommissionsPayable = "2020"

	AccountProductRevenue = "4010"

	AccountCOGS                    = "5010"
	AccountFailedDeliveryExpense   = "5020"
	AccountReturnProcessingExpense = "5030"
	AccountDeliveryCommission      = "5040"
	AccountSalesRepCommission      = "5050"
)

// MappedAccountCodes lists every account code automated posting can touch.
// Startup verifies each exists in the chart of accounts.
func MappedAccountCodes() []string {
	return []string{
		AccountCashInHand,
		AccountCashInTransit,
		AccountARAgents,
		AccountInventory,
		AccountRefundLiability,
		AccountCommissionsPayable,
		AccountProductRevenue,
		AccountCOGS,
		AccountFailedDeliveryExpense,
		AccountReturnProcessingExpense,
		AccountDeliveryCommission,
		AccountSalesRepCommission,
	}
}

var accountCodePattern = regexp.MustCompile(`^\d{4}$`)

// ValidateAccountCodeFormat checks that a code is a 4-digit numeric string.
func ValidateAccountCodeFormat(code string) error {
	if !accountCodePattern.MatchString(code) {
		return fmt.Errorf("account code must be a 4-digit number, got %q", code)
	}
	return nil
}

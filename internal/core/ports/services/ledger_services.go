package services

import (
	"context"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/dto"
)

// LedgerSvcFacade exposes the append-only transaction ledger and its single
// controlled repair operation.
type LedgerSvcFacade interface {
	// ListAccountTransactions retrieves one page of an account's ledger
	// lines, newest first.
	ListAccountTransactions(ctx context.Context, accountCode string, params dto.ListTransactionsParams) (*dto.AccountLedgerResponse, error)

	// AggregateBalances computes debit/credit sums per account across the
	// whole ledger, the raw input to balance reconciliation.
	AggregateBalances(ctx context.Context) ([]domain.AccountBalanceSummary, error)

	// RepairMisclassified re-points posted lines from one account code to
	// another, adjusting both cached balances. Dry-run only counts.
	RepairMisclassified(ctx context.Context, req dto.RepairMisclassifiedRequest, userID string) (*dto.RepairMisclassifiedResponse, error)
}

package repositories

import (
	"context"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
)

// LedgerReader exposes the append-only transaction ledger to balance
// computation and dashboards. No update or delete operations exist here.
type LedgerReader interface {
	// ListTransactionsByAccount retrieves a paginated list of a single
	// account's ledger lines using token-based pagination, newest first.
	ListTransactionsByAccount(ctx context.Context, accountCode string, limit int, nextToken *string) ([]domain.AccountTransaction, *string, error)

	// AggregateByAccount computes debit/credit sums per account across the
	// entire ledger.
	AggregateByAccount(ctx context.Context) ([]domain.AccountBalanceSummary, error)
}

// LedgerRepairer is the single controlled exception to ledger immutability:
// re-pointing lines that were posted against a misclassified account code.
type LedgerRepairer interface {
	// RepairMisclassified moves all lines with the given source type from
	// one account code to another, adjusting both accounts' cached balances
	// in the same transaction. Returns the number of lines moved.
	RepairMisclassified(ctx context.Context, fromCode, toCode, sourceType string, userID string) (int64, error)

	// CountMisclassified reports how many lines a repair would move, for
	// dry-run previews.
	CountMisclassified(ctx context.Context, fromCode, sourceType string) (int64, error)
}

// LedgerRepositoryFacade combines ledger read and repair interfaces.
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerRepairer
}

package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for chart-of-accounts data
type AccountReader interface {
	// FindAccountByCode retrieves a specific account by its stable code.
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindAccountsByCodes retrieves multiple accounts keyed by code.
	FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)

	// ListAccounts retrieves the full chart of accounts ordered by code.
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

// AccountWriter defines administrative write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount persists an existing account's mutable details: name,
	// description and active flag. Code, type and normal balance never
	// change after creation.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// SetAccountActive toggles an account's active flag.
	SetAccountActive(ctx context.Context, code string, active bool, userID string, now time.Time) error

	// SetAccountBalance overwrites the cached balance of one account. Used
	// only by the reconciliation service when correcting drift.
	SetAccountBalance(ctx context.Context, code string, balance decimal.Decimal, userID string, now time.Time) error
}

// AccountTransactionSupport defines operations used inside posting transactions
type AccountTransactionSupport interface {
	// FindAccountsByCodesForUpdate selects accounts and locks them for update
	// within a transaction.
	FindAccountsByCodesForUpdate(ctx context.Context, tx pgx.Tx, codes []string) (map[string]domain.Account, error)

	// UpdateAccountBalancesInTx applies incremental balance deltas for
	// multiple accounts within a given transaction.
	UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}

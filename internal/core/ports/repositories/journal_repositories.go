package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalReader defines read operations for journal entries
type JournalReader interface {
	// FindEntryByID retrieves a specific entry by its unique identifier.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindEntryBySource retrieves the entry posted for a business event, if
	// any. This is the lookup backing posting idempotency.
	FindEntryBySource(ctx context.Context, sourceType string, sourceID int64) (*domain.JournalEntry, error)

	// FindTransactionsByEntryID retrieves all lines of a single entry.
	FindTransactionsByEntryID(ctx context.Context, entryID string) ([]domain.AccountTransaction, error)
}

// JournalWriter defines write operations for journal entries
type JournalWriter interface {
	// SaveEntry persists an entry with its lines and applies the account
	// balance deltas as one atomic unit. The entry number is assigned inside
	// the transaction and returned on the entry.
	SaveEntry(ctx context.Context, entry domain.JournalEntry, transactions []domain.AccountTransaction, balanceChanges map[string]decimal.Decimal) (*domain.JournalEntry, error)

	// InsertEntryInTx is SaveEntry's body exposed for callers that must post
	// an entry inside a wider transaction (collection reconciliation couples
	// a posting with a collection status change and an agent balance write).
	InsertEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, transactions []domain.AccountTransaction, balanceChanges map[string]decimal.Decimal) (*domain.JournalEntry, error)

	// UpdateEntryStatusAndLinks marks an entry reversed and records the
	// reversal linkage.
	UpdateEntryStatusAndLinks(ctx context.Context, entryID string, status domain.EntryStatus, reversingEntryID *string, updatedBy string, updatedAt time.Time) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}

// JournalRepositoryWithTx extends JournalRepositoryFacade with transaction capabilities
type JournalRepositoryWithTx interface {
	JournalRepositoryFacade
	TransactionManager
}

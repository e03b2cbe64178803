package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CollectionFilter narrows collection listings for the query surface.
type CollectionFilter struct {
	AgentID *int64
	Status  *domain.CollectionStatus
	From    *time.Time
	To      *time.Time
	Limit   int
}

// CollectionReader defines read operations for agent collections.
type CollectionReader interface {
	// FindCollectionByID retrieves a collection by ID.
	FindCollectionByID(ctx context.Context, collectionID int64) (*domain.AgentCollection, error)

	// ListCollections retrieves collections matching the filter, excluding
	// those belonging to soft-deleted orders.
	ListCollections(ctx context.Context, filter CollectionFilter) ([]domain.AgentCollection, error)

	// ListOutstandingCollections retrieves unreconciled, unrejected
	// collections on live orders, for the aging report.
	ListOutstandingCollections(ctx context.Context) ([]domain.AgentCollection, error)
}

// CollectionWriter defines write operations for agent collections. Status
// changes that touch money go through the atomic methods below, never plain
// updates.
type CollectionWriter interface {
	// SaveCollectionWithAccrual inserts a draft collection and accrues its
	// amount onto the agent's balance (creating the balance row if absent)
	// in one transaction. Fails with apperrors.ErrDuplicate when a live
	// collection already exists for the order.
	SaveCollectionWithAccrual(ctx context.Context, collection domain.AgentCollection) (*domain.AgentCollection, error)

	// UpdateCollectionStatus records a plain state transition (verify,
	// approve, reject) with actor and timestamp.
	UpdateCollectionStatus(ctx context.Context, collectionID int64, status domain.CollectionStatus, actorID string, reason string, now time.Time) error

	// SettleCollection performs the reconcile transition atomically: flips
	// the collection to reconciled, decrements the agent's balance under a
	// per-agent row lock, increments totalDeposited, and posts the supplied
	// reclassification entry. A crash mid-way leaves no partial rows.
	SettleCollection(ctx context.Context, collectionID int64, actorID string, now time.Time,
		entry domain.JournalEntry, transactions []domain.AccountTransaction, balanceChanges map[string]decimal.Decimal) (*domain.JournalEntry, error)
}

// AgentBalanceRepository manages per-agent balance rows.
type AgentBalanceRepository interface {
	// GetOrCreateBalance fetches the agent's balance row, creating a zero
	// row on first use.
	GetOrCreateBalance(ctx context.Context, agentID int64) (*domain.AgentBalance, error)

	// FindBalanceForUpdate locks the agent's balance row inside a transaction.
	FindBalanceForUpdate(ctx context.Context, tx pgx.Tx, agentID int64) (*domain.AgentBalance, error)

	// UpdateBalanceInTx writes balance deltas inside a transaction.
	UpdateBalanceInTx(ctx context.Context, tx pgx.Tx, agentID int64, deltaBalance, deltaCollected, deltaDeposited decimal.Decimal, now time.Time) error
}

// DepositRepository manages agent deposit rows.
type DepositRepository interface {
	// SaveDeposit inserts a pending deposit.
	SaveDeposit(ctx context.Context, deposit domain.AgentDeposit) (*domain.AgentDeposit, error)

	// FindDepositByID retrieves a deposit by ID.
	FindDepositByID(ctx context.Context, depositID int64) (*domain.AgentDeposit, error)

	// SettleDeposit verifies a deposit and decrements the agent balance
	// under a per-agent row lock, in one transaction.
	SettleDeposit(ctx context.Context, depositID int64, actorID string, now time.Time) (*domain.AgentDeposit, error)

	// RejectDeposit marks a pending deposit rejected without touching the
	// agent balance.
	RejectDeposit(ctx context.Context, depositID int64, actorID string, now time.Time) (*domain.AgentDeposit, error)
}

// CollectionRepositoryFacade combines all collection-related repository interfaces.
type CollectionRepositoryFacade interface {
	CollectionReader
	CollectionWriter
	AgentBalanceRepository
	DepositRepository
}

package services

import (
	"context"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/dto"
)

// CollectionReaderSvc defines read operations for agent collections
type CollectionReaderSvc interface {
	// GetCollection retrieves a collection by ID.
	GetCollection(ctx context.Context, collectionID int64) (*domain.AgentCollection, error)

	// ListCollections retrieves collections matching the filter.
	ListCollections(ctx context.Context, params dto.ListCollectionsParams) ([]domain.AgentCollection, error)

	// GetAgentBalance retrieves an agent's cash position, creating a zero
	// row on first use.
	GetAgentBalance(ctx context.Context, agentID int64) (*domain.AgentBalance, error)

	// AgingReport groups outstanding collections per agent by days held.
	AgingReport(ctx context.Context) ([]domain.AgentAgingReport, error)
}

// CollectionWriterSvc defines the collection state machine transitions
type CollectionWriterSvc interface {
	// CreateCollection records a draft collection and accrues the amount
	// onto the agent's balance. At most one live collection per order.
	CreateCollection(ctx context.Context, req dto.CreateCollectionRequest, userID string) (*domain.AgentCollection, error)

	// VerifyCollection moves draft to verified.
	VerifyCollection(ctx context.Context, collectionID int64, userID string) (*domain.AgentCollection, error)

	// ApproveCollection moves verified to approved.
	ApproveCollection(ctx context.Context, collectionID int64, userID string) (*domain.AgentCollection, error)

	// ReconcileCollection settles the collection: status flip, agent balance
	// decrement, and the cash reclassification entry commit atomically.
	ReconcileCollection(ctx context.Context, collectionID int64, userID string) (*domain.AgentCollection, error)

	// RejectCollection aborts a draft or verified collection with a reason.
	// The agent balance is left unchanged.
	RejectCollection(ctx context.Context, collectionID int64, reason string, userID string) (*domain.AgentCollection, error)

	// BulkVerify verifies a batch independently: failures are reported per
	// item and never roll back the successes.
	BulkVerify(ctx context.Context, req dto.BulkVerifyRequest, userID string) (*dto.BulkVerifyResponse, error)
}

// DepositSvc defines agent deposit operations
type DepositSvc interface {
	// CreateDeposit records a pending deposit.
	CreateDeposit(ctx context.Context, req dto.CreateDepositRequest, userID string) (*domain.AgentDeposit, error)

	// VerifyDeposit confirms a pending deposit and reduces the agent's
	// balance. Fails when the deposit exceeds the balance.
	VerifyDeposit(ctx context.Context, depositID int64, userID string) (*domain.AgentDeposit, error)

	// RejectDeposit marks a pending deposit rejected.
	RejectDeposit(ctx context.Context, depositID int64, userID string) (*domain.AgentDeposit, error)
}

// CollectionSvcFacade combines all collection-related service interfaces
type CollectionSvcFacade interface {
	CollectionReaderSvc
	CollectionWriterSvc
	DepositSvc
}

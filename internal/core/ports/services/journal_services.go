package services

import (
	"context"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/dto"
)

// JournalReaderSvc defines read operations for journal entries
type JournalReaderSvc interface {
	// GetEntryByID retrieves an entry with its lines.
	GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// GetEntryBySource retrieves the entry posted for a business event.
	GetEntryBySource(ctx context.Context, sourceType string, sourceID int64) (*domain.JournalEntry, error)
}

// JournalWriterSvc defines write operations for journal entries
type JournalWriterSvc interface {
	// PostEntry validates and posts a balanced entry atomically: the entry
	// row, its lines, and the cached balance updates commit together.
	// Posting the same (sourceType, sourceID) twice returns the existing
	// entry instead of creating a duplicate.
	PostEntry(ctx context.Context, req dto.PostEntryRequest, creatorUserID string) (*domain.JournalEntry, error)

	// ReverseEntry creates an offsetting entry with debits and credits
	// swapped, links the pair, and marks the original reversed.
	ReverseEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal-related service interfaces
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
}

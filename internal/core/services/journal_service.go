package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/apperrors"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
	portsrepo "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/repositories"
	portssvc "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/services"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/dto"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/middleware"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/utils/accounting"
)

var (
	ErrUnbalancedEntry    = errors.New("entry debits and credits do not balance")
	ErrUnknownAccount     = errors.New("entry references an unknown or inactive account")
	ErrAlreadyReversed    = errors.New("entry has already been reversed")
	ErrReversalOfReversal = errors.New("reversal entries cannot themselves be reversed")
)

// journalService is the journal entry engine. Every ledger mutation in the
// system flows through PostEntry or ReverseEntry.
type journalService struct {
	journalRepo portsrepo.JournalRepositoryWithTx
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewJournalService creates a new journal service.
func NewJournalService(journalRepo portsrepo.JournalRepositoryWithTx, accountRepo portsrepo.AccountRepositoryFacade) portssvc.JournalSvcFacade {
	return &journalService{
		journalRepo: journalRepo,
		accountRepo: accountRepo,
	}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// PostEntry validates and posts a balanced journal entry. The entry row,
// its transaction lines, and the cached balance updates commit atomically.
// When the entry carries a source reference, posting is idempotent on
// (sourceType, sourceID): a second post returns the existing entry.
func (s *journalService) PostEntry(ctx context.Context, req dto.PostEntryRequest, creatorUserID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.SourceType != "" {
		existing, err := s.journalRepo.FindEntryBySource(ctx, req.SourceType, req.SourceID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to check for existing entry: %w", err)
		}
		if existing != nil {
			logger.Info("Entry already posted for source, returning existing",
				slog.String("source_type", req.SourceType), slog.Int64("source_id", req.SourceID),
				slog.String("entry_id", existing.EntryID))
			return existing, nil
		}
	}

	now := time.Now().UTC()
	entryID := uuid.NewString()

	transactions := make([]domain.AccountTransaction, len(req.Lines))
	codes := make([]string, 0, len(req.Lines))
	for i, line := range req.Lines {
		transactions[i] = domain.AccountTransaction{
			TransactionID: uuid.NewString(),
			EntryID:       entryID,
			AccountCode:   line.AccountCode,
			DebitAmount:   line.DebitAmount,
			CreditAmount:  line.CreditAmount,
			Description:   line.Description,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creatorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: creatorUserID,
			},
		}
		codes = append(codes, line.AccountCode)
	}

	if _, _, err := accounting.ValidateEntryBalance(transactions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnbalancedEntry, err)
	}

	balanceChanges, err := s.resolveBalanceChanges(ctx, transactions, codes)
	if err != nil {
		return nil, err
	}

	entry := domain.JournalEntry{
		EntryID:     entryID,
		EntryDate:   req.EntryDate,
		Description: req.Description,
		SourceType:  req.SourceType,
		SourceID:    req.SourceID,
		Status:      domain.Posted,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	saved, err := s.journalRepo.SaveEntry(ctx, entry, transactions, balanceChanges)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) && req.SourceType != "" {
			// Concurrent post for the same source won the race; surface its entry.
			return s.journalRepo.FindEntryBySource(ctx, req.SourceType, req.SourceID)
		}
		logger.Error("Failed to save entry", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}
	saved.Transactions = transactions

	logger.Info("Entry posted",
		slog.String("entry_id", saved.EntryID),
		slog.String("entry_number", saved.EntryNumber),
		slog.String("source_type", saved.SourceType))
	return saved, nil
}

// resolveBalanceChanges looks up the accounts touched by the lines,
// verifies each exists and is active, and computes the net cached-balance
// delta per account.
func (s *journalService) resolveBalanceChanges(ctx context.Context, transactions []domain.AccountTransaction, codes []string) (map[string]decimal.Decimal, error) {
	unique := uniqueStrings(codes)
	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	normals := make(map[string]domain.NormalBalance, len(unique))
	for _, code := range unique {
		acc, found := accounts[code]
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, code)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: %s is inactive", ErrUnknownAccount, code)
		}
		normals[code] = acc.NormalBalance
	}

	changes, err := accounting.BalanceChanges(transactions, normals)
	if err != nil {
		return nil, fmt.Errorf("failed to compute balance changes: %w", err)
	}
	return changes, nil
}

// GetEntryByID retrieves an entry with its lines.
func (s *journalService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}
	transactions, err := s.journalRepo.FindTransactionsByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve lines for entry %s: %w", entryID, err)
	}
	entry.Transactions = transactions
	return entry, nil
}

// GetEntryBySource retrieves the entry posted for a business event.
func (s *journalService) GetEntryBySource(ctx context.Context, sourceType string, sourceID int64) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryBySource(ctx, sourceType, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry for %s/%d: %w", sourceType, sourceID, err)
	}
	return entry, nil
}

// ReverseEntry creates an offsetting entry with each line's debit and
// credit swapped, links the pair, and marks the original reversed. Posted
// entries are never mutated in place; this is the only correction path.
func (s *journalService) ReverseEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve entry %s: %w", entryID, err)
	}
	if original.Status == domain.Reversed {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyReversed, entryID)
	}
	if original.OriginalEntryID != nil {
		return nil, fmt.Errorf("%w: %s", ErrReversalOfReversal, entryID)
	}

	originalTxns, err := s.journalRepo.FindTransactionsByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve lines for entry %s: %w", entryID, err)
	}

	now := time.Now().UTC()
	reversalID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}

	reversalTxns := make([]domain.AccountTransaction, len(originalTxns))
	codes := make([]string, 0, len(originalTxns))
	for i, orig := range originalTxns {
		reversalTxns[i] = domain.AccountTransaction{
			TransactionID: uuid.NewString(),
			EntryID:       reversalID,
			AccountCode:   orig.AccountCode,
			DebitAmount:   orig.CreditAmount,
			CreditAmount:  orig.DebitAmount,
			Description:   orig.Description,
			AuditFields:   audit,
		}
		codes = append(codes, orig.AccountCode)
	}

	balanceChanges, err := s.resolveBalanceChanges(ctx, reversalTxns, codes)
	if err != nil {
		return nil, err
	}

	reversal := domain.JournalEntry{
		EntryID:         reversalID,
		EntryDate:       now,
		Description:     fmt.Sprintf("Reversal of %s: %s", original.EntryNumber, original.Description),
		SourceType:      domain.SourceReversal,
		SourceID:        original.SourceID,
		Status:          domain.Posted,
		OriginalEntryID: &original.EntryID,
		AuditFields:     audit,
	}

	saved, err := s.journalRepo.SaveEntry(ctx, reversal, reversalTxns, balanceChanges)
	if err != nil {
		logger.Error("Failed to save reversal entry", slog.String("error", err.Error()), slog.String("original_entry_id", entryID))
		return nil, fmt.Errorf("failed to save reversal entry: %w", err)
	}
	saved.Transactions = reversalTxns

	if err := s.journalRepo.UpdateEntryStatusAndLinks(ctx, original.EntryID, domain.Reversed, &saved.EntryID, userID, now); err != nil {
		logger.Error("Failed to mark original entry reversed", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to mark entry %s reversed: %w", entryID, err)
	}

	logger.Info("Entry reversed",
		slog.String("original_entry_id", original.EntryID),
		slog.String("reversal_entry_id", saved.EntryID))
	return saved, nil
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}

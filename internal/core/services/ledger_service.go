package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/apperrors"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
	portsrepo "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/repositories"
	portssvc "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/services"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/dto"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/middleware"
)

// ledgerService exposes the append-only transaction ledger.
type ledgerService struct {
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// ListAccountTransactions retrieves one page of an account's ledger lines,
// newest first.
func (s *ledgerService) ListAccountTransactions(ctx context.Context, accountCode string, params dto.ListTransactionsParams) (*dto.AccountLedgerResponse, error) {
	if _, err := s.accountRepo.FindAccountByCode(ctx, accountCode); err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountCode, err)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}

	transactions, nextToken, err := s.ledgerRepo.ListTransactionsByAccount(ctx, accountCode, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for account %s: %w", accountCode, err)
	}

	return &dto.AccountLedgerResponse{
		AccountCode:  accountCode,
		Transactions: dto.ToTransactionResponses(transactions),
		NextToken:    nextToken,
	}, nil
}

// AggregateBalances computes debit/credit sums per account across the whole
// ledger.
func (s *ledgerService) AggregateBalances(ctx context.Context) ([]domain.AccountBalanceSummary, error) {
	summaries, err := s.ledgerRepo.AggregateByAccount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ledger: %w", err)
	}
	return summaries, nil
}

// RepairMisclassified re-points posted lines carrying the given source type
// from one account code to another. Both cached balances are adjusted in
// the same database transaction as the line updates. This is the single
// controlled exception to ledger immutability.
func (s *ledgerService) RepairMisclassified(ctx context.Context, req dto.RepairMisclassifiedRequest, userID string) (*dto.RepairMisclassifiedResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.FromCode == req.ToCode {
		return nil, fmt.Errorf("%w: source and target account codes are the same", apperrors.ErrValidation)
	}
	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, []string{req.FromCode, req.ToCode})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repair accounts: %w", err)
	}
	for _, code := range []string{req.FromCode, req.ToCode} {
		if _, found := accounts[code]; !found {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, code)
		}
	}

	dryRun := req.DryRun == nil || *req.DryRun

	var moved int64
	if dryRun {
		moved, err = s.ledgerRepo.CountMisclassified(ctx, req.FromCode, req.SourceType)
		if err != nil {
			return nil, fmt.Errorf("failed to count misclassified lines: %w", err)
		}
	} else {
		moved, err = s.ledgerRepo.RepairMisclassified(ctx, req.FromCode, req.ToCode, req.SourceType, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to repair misclassified lines: %w", err)
		}
		logger.Info("Misclassified ledger lines repaired",
			slog.String("from", req.FromCode),
			slog.String("to", req.ToCode),
			slog.String("source_type", req.SourceType),
			slog.Int64("lines_moved", moved))
	}

	return &dto.RepairMisclassifiedResponse{
		FromCode:   req.FromCode,
		ToCode:     req.ToCode,
		SourceType: req.SourceType,
		DryRun:     dryRun,
		LinesMoved: moved,
	}, nil
}

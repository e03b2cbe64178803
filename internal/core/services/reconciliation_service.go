package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
	portsrepo "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/repositories"
	portssvc "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/services"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/middleware"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/utils/accounting"
)

// reconciliationService recomputes cached account balances from the ledger.
// The cached balance on each account is maintained incrementally at posting
// time; this service is the safety net that detects and repairs drift from
// crashes, manual data surgery, or bugs.
type reconciliationService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	publisher   portssvc.EventPublisher
}

// NewReconciliationService creates a new reconciliation service.
func NewReconciliationService(accountRepo portsrepo.AccountRepositoryFacade, ledgerRepo portsrepo.LedgerRepositoryFacade, publisher portssvc.EventPublisher) portssvc.ReconciliationSvcFacade {
	return &reconciliationService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		publisher:   publisher,
	}
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

// ReconcileBalances compares every account's cached balance against the
// balance derived from its ledger lines and overwrites drifted caches.
// Accounts within the drift tolerance are untouched, so a second run right
// after a first yields zero corrections.
func (s *reconciliationService) ReconcileBalances(ctx context.Context, dryRun bool, userID string) (*domain.ReconciliationReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	summaries, err := s.ledgerRepo.AggregateByAccount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ledger: %w", err)
	}
	byCode := make(map[string]domain.AccountBalanceSummary, len(summaries))
	for _, summary := range summaries {
		byCode[summary.AccountCode] = summary
	}

	report := &domain.ReconciliationReport{
		RanAt:           now,
		DryRun:          dryRun,
		CheckedAccounts: len(accounts),
	}

	for _, account := range accounts {
		// Accounts with no ledger lines reconcile to zero.
		calculated := decimal.Zero
		if summary, ok := byCode[account.Code]; ok {
			calculated = summary.CalculatedBalance(account.NormalBalance)
		}

		drift := account.CurrentBalance.Sub(calculated).Abs()
		if drift.LessThanOrEqual(accounting.BalanceEpsilon) {
			continue
		}

		correction := domain.BalanceCorrection{
			AccountCode: account.Code,
			Before:      account.CurrentBalance,
			After:       calculated,
		}
		report.Corrections = append(report.Corrections, correction)

		if dryRun {
			continue
		}

		if err := s.accountRepo.SetAccountBalance(ctx, account.Code, calculated, userID, now); err != nil {
			return nil, fmt.Errorf("failed to correct balance for account %s: %w", account.Code, err)
		}
		logger.Warn("Cached balance drift corrected",
			slog.String("account_code", account.Code),
			slog.String("before", correction.Before.String()),
			slog.String("after", correction.After.String()))

		if s.publisher != nil {
			s.publisher.Publish(ctx, domain.Event{
				Type:        domain.EventBalanceDriftCorrect,
				OccurredAt:  now,
				AccountCode: account.Code,
				Amount:      drift,
				ActorID:     userID,
				Detail:      fmt.Sprintf("cached %s, ledger %s", correction.Before, correction.After),
			})
		}
	}

	logger.Info("Balance reconciliation completed",
		slog.Bool("dry_run", dryRun),
		slog.Int("checked", report.CheckedAccounts),
		slog.Int("corrections", len(report.Corrections)))
	return report, nil
}

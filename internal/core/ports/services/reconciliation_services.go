package services

import (
	"context"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
)

// ReconciliationSvcFacade recomputes cached account balances from the
// transaction ledger and corrects drift.
type ReconciliationSvcFacade interface {
	// ReconcileBalances compares every account's cached balance against the
	// ledger-derived balance and overwrites drifted caches (unless dryRun).
	// Running it twice in a row yields zero corrections on the second pass.
	ReconcileBalances(ctx context.Context, dryRun bool, userID string) (*domain.ReconciliationReport, error)
}

package services

import (
	"context"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
)

// IntegritySvcFacade repairs bulk-import damage: duplicate orders and
// misapplied amounts.
type IntegritySvcFacade interface {
	// DeduplicateOrders fingerprints live bulk-imported orders, soft-deletes
	// the losers of each duplicate group, and migrates any GL state from
	// loser to survivor. Dry-run reports without mutating.
	DeduplicateOrders(ctx context.Context, dryRun bool, userID string) (*domain.DedupReport, error)

	// FixImportedAmounts corrects order lines where the total amount was
	// imported as the unit price. Dry-run reports without mutating.
	FixImportedAmounts(ctx context.Context, dryRun bool, userID string) (*domain.AmountFixReport, error)
}

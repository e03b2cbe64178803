package services

import (
	"context"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
)

// RevenueSvcFacade posts the journal entries for order lifecycle events and
// heals orders whose recognition was missed.
type RevenueSvcFacade interface {
	// RecognizeOrder posts the delivery recognition entry for one order:
	// cash in transit net of commissions, commission expenses, full revenue,
	// and COGS against inventory when cost data is present. Idempotent per
	// order.
	RecognizeOrder(ctx context.Context, orderID int64, userID string) (*domain.JournalEntry, error)

	// BackfillMissing scans live orders in terminal-recognized states that
	// never produced an entry and recognizes them. Dry-run reports without
	// posting.
	BackfillMissing(ctx context.Context, dryRun bool, limit int, userID string) (*domain.BackfillReport, error)

	// BackfillCosts posts the COGS-only entry for recognized orders that
	// were flagged cost-incomplete and now have product cost data. Revenue
	// is never touched.
	BackfillCosts(ctx context.Context, dryRun bool, userID string) (*domain.CostBackfillReport, error)

	// RecordFailedDelivery posts the failed-delivery fee expense entry.
	RecordFailedDelivery(ctx context.Context, orderID int64, userID string) (*domain.JournalEntry, error)

	// RecordReturn posts the return entry: refund liability and restocking,
	// offsetting the original recognition.
	RecordReturn(ctx context.Context, orderID int64, userID string) (*domain.JournalEntry, error)
}

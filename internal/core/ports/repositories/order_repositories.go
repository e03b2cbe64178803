package repositories

import (
	"context"
	"time"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
	"github.com/shopspring/decimal"
)

// OrderReader defines the read operations revenue recognition and the
// integrity guard need over upstream order data.
type OrderReader interface {
	// FindOrderByID retrieves an order with its items (including product
	// list price and COGS) and commission amounts.
	FindOrderByID(ctx context.Context, orderID int64) (*domain.Order, error)

	// ListDeliveredUnrecognized retrieves live orders in a terminal-recognized
	// state whose revenue was never posted (the financial-leak case).
	ListDeliveredUnrecognized(ctx context.Context) ([]domain.Order, error)

	// ListLiveBulkImported retrieves all live bulk-imported orders with the
	// customer phone joined in, for fingerprint grouping.
	ListLiveBulkImported(ctx context.Context) ([]domain.Order, error)

	// ListImportedItemsForAmountFix retrieves order items on live
	// bulk-imported orders with quantity > 1, with product list prices.
	ListImportedItemsForAmountFix(ctx context.Context) ([]domain.OrderItem, error)

	// ListCostIncomplete retrieves live recognized orders still flagged as
	// missing cost data, candidates for a later COGS-only posting.
	ListCostIncomplete(ctx context.Context) ([]domain.Order, error)

	// ListOrphanCustomers retrieves customers with zero live orders.
	ListOrphanCustomers(ctx context.Context) ([]domain.Customer, error)
}

// OrderWriter defines the narrow set of order mutations this core owns.
type OrderWriter interface {
	// MarkRevenueRecognized records the recognition back-reference after the
	// journal engine confirms the post succeeded.
	MarkRevenueRecognized(ctx context.Context, orderID int64, entryID string, costDataIncomplete bool, now time.Time) error

	// SetRecognitionLink re-points (or clears) an order's recognition
	// back-reference. Used by the dedup guard when transferring a posting
	// from a duplicate to its survivor.
	SetRecognitionLink(ctx context.Context, orderID int64, entryID *string, recognized bool, now time.Time) error

	// SoftDeleteOrders sets deletedAt on the given orders, returning how
	// many rows changed. Orders are never hard-deleted.
	SoftDeleteOrders(ctx context.Context, orderIDs []int64, now time.Time) (int64, error)

	// ApplyAmountFix corrects a bulk-imported order's misapplied amounts:
	// the item's unit/total prices and the order's total.
	ApplyAmountFix(ctx context.Context, orderID, itemID int64, unitPrice, total decimal.Decimal, now time.Time) error

	// ClearCostIncomplete drops the cost-data flag once the missing COGS
	// entry has been posted.
	ClearCostIncomplete(ctx context.Context, orderID int64, now time.Time) error
}

// OrderRepositoryFacade combines order reader and writer interfaces.
type OrderRepositoryFacade interface {
	OrderReader
	OrderWriter
}

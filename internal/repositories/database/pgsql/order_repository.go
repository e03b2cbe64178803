package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/apperrors"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
	portsrepo "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/repositories"
)

// PgxOrderRepository reads the upstream order tables and owns the narrow set
// of columns the ledger core writes back (recognition link, soft-delete,
// amount fixes).
type PgxOrderRepository struct {
	BaseRepository
}

// newPgxOrderRepository creates a new repository for order projections.
func newPgxOrderRepository(pool *pgxpool.Pool) portsrepo.OrderRepositoryFacade {
	return &PgxOrderRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.OrderRepositoryFacade = (*PgxOrderRepository)(nil)

const orderColumns = `o.id, o.customer_id, c.phone_number, o.status, o.total_amount, o.delivery_address, o.source,
	o.gl_entry_id, o.revenue_recognized, o.cost_data_incomplete, o.delivery_agent_id, o.sales_rep_id,
	o.delivery_commission, o.rep_commission, o.created_at, o.deleted_at`

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	var glEntryID sql.NullString
	var agentID, repID sql.NullInt64
	var deletedAt sql.NullTime

	err := row.Scan(
		&o.ID,
		&o.CustomerID,
		&o.CustomerPhone,
		&o.Status,
		&o.TotalAmount,
		&o.DeliveryAddress,
		&o.Source,
		&glEntryID,
		&o.RevenueRecognized,
		&o.CostDataIncomplete,
		&agentID,
		&repID,
		&o.DeliveryCommission,
		&o.RepCommission,
		&o.CreatedAt,
		&deletedAt,
	)
	if err != nil {
		return o, err
	}

	if glEntryID.Valid {
		o.GLEntryID = &glEntryID.String
	}
	if agentID.Valid {
		o.DeliveryAgentID = &agentID.Int64
	}
	if repID.Valid {
		o.SalesRepID = &repID.Int64
	}
	if deletedAt.Valid {
		o.DeletedAt = &deletedAt.Time
	}
	return o, nil
}

// FindOrderByID retrieves an order with its items, including the product
// list price and cost data recognition needs.
func (r *PgxOrderRepository) FindOrderByID(ctx context.Context, orderID int64) (*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN customers c ON o.customer_id = c.id
		WHERE o.id = $1;
	`
	order, err := scanOrder(r.Pool.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: order %d", apperrors.ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to find order %d: %w", orderID, err)
	}

	items, err := r.findItemsByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

func (r *PgxOrderRepository) findItemsByOrderID(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	query := `
		SELECT i.id, i.order_id, i.product_id, p.name, i.quantity, i.unit_price, i.total_price, p.list_price, p.cogs
		FROM order_items i
		JOIN products p ON i.product_id = p.id
		WHERE i.order_id = $1
		ORDER BY i.id;
	`
	rows, err := r.Pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items for order %d: %w", orderID, err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.UnitPrice,
			&item.TotalPrice,
			&item.ProductListPrice,
			&item.ProductCOGS,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item row for order %d: %w", orderID, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows for order %d: %w", orderID, err)
	}
	return items, nil
}

func (r *PgxOrderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order rows: %w", err)
	}
	return orders, nil
}

// ListDeliveredUnrecognized retrieves live delivered orders whose revenue
// was never posted.
func (r *PgxOrderRepository) ListDeliveredUnrecognized(ctx context.Context) ([]domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN customers c ON o.customer_id = c.id
		WHERE o.status = 'delivered' AND o.revenue_recognized = FALSE AND o.gl_entry_id IS NULL AND o.deleted_at IS NULL
		ORDER BY o.id;
	`
	return r.queryOrders(ctx, query)
}

// ListLiveBulkImported retrieves all live bulk-imported orders for
// fingerprint grouping.
func (r *PgxOrderRepository) ListLiveBulkImported(ctx context.Context) ([]domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN customers c ON o.customer_id = c.id
		WHERE o.source = 'bulk_import' AND o.deleted_at IS NULL
		ORDER BY o.id;
	`
	return r.queryOrders(ctx, query)
}

// ListImportedItemsForAmountFix retrieves multi-quantity items on live
// bulk-imported orders, with the product list price joined in.
func (r *PgxOrderRepository) ListImportedItemsForAmountFix(ctx context.Context) ([]domain.OrderItem, error) {
	query := `
		SELECT i.id, i.order_id, i.product_id, p.name, i.quantity, i.unit_price, i.total_price, p.list_price, p.cogs
		FROM order_items i
		JOIN orders o ON i.order_id = o.id
		JOIN products p ON i.product_id = p.id
		WHERE o.source = 'bulk_import' AND o.deleted_at IS NULL AND i.quantity > 1
		ORDER BY i.id;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query imported items: %w", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.UnitPrice,
			&item.TotalPrice,
			&item.ProductListPrice,
			&item.ProductCOGS,
		); err != nil {
			return nil, fmt.Errorf("failed to scan imported item row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating imported item rows: %w", err)
	}
	return items, nil
}

// ListCostIncomplete retrieves live recognized orders still flagged as
// missing cost data.
func (r *PgxOrderRepository) ListCostIncomplete(ctx context.Context) ([]domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN customers c ON o.customer_id = c.id
		WHERE o.revenue_recognized = TRUE AND o.cost_data_incomplete = TRUE AND o.deleted_at IS NULL
		ORDER BY o.id;
	`
	return r.queryOrders(ctx, query)
}

// ListOrphanCustomers retrieves customers left with zero live orders.
func (r *PgxOrderRepository) ListOrphanCustomers(ctx context.Context) ([]domain.Customer, error) {
	query := `
		SELECT c.id, c.first_name, c.last_name, c.phone_number
		FROM customers c
		WHERE NOT EXISTS (
			SELECT 1 FROM orders o WHERE o.customer_id = c.id AND o.deleted_at IS NULL
		)
		ORDER BY c.id;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query orphan customers: %w", err)
	}
	defer rows.Close()

	customers := []domain.Customer{}
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.PhoneNumber); err != nil {
			return nil, fmt.Errorf("failed to scan orphan customer row: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orphan customer rows: %w", err)
	}
	return customers, nil
}

// MarkRevenueRecognized records the recognition back-reference after the
// posting committed.
func (r *PgxOrderRepository) MarkRevenueRecognized(ctx context.Context, orderID int64, entryID string, costDataIncomplete bool, now time.Time) error {
	query := `
		UPDATE orders
		SET gl_entry_id = $2, revenue_recognized = TRUE, cost_data_incomplete = $3, updated_at = $4
		WHERE id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, orderID, entryID, costDataIncomplete, now)
	if err != nil {
		return fmt.Errorf("failed to mark order %d recognized: %w", orderID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order %d", apperrors.ErrNotFound, orderID)
	}
	return nil
}

// SetRecognitionLink re-points or clears an order's recognition back-reference.
func (r *PgxOrderRepository) SetRecognitionLink(ctx context.Context, orderID int64, entryID *string, recognized bool, now time.Time) error {
	query := `
		UPDATE orders
		SET gl_entry_id = $2, revenue_recognized = $3, updated_at = $4
		WHERE id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, orderID, entryID, recognized, now)
	if err != nil {
		return fmt.Errorf("failed to set recognition link on order %d: %w", orderID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order %d", apperrors.ErrNotFound, orderID)
	}
	return nil
}

// SoftDeleteOrders sets deleted_at on the given orders, skipping any that
// are already deleted.
func (r *PgxOrderRepository) SoftDeleteOrders(ctx context.Context, orderIDs []int64, now time.Time) (int64, error) {
	if len(orderIDs) == 0 {
		return 0, nil
	}
	query := `
		UPDATE orders
		SET deleted_at = $2, updated_at = $2
		WHERE id = ANY($1) AND deleted_at IS NULL;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, orderIDs, now)
	if err != nil {
		return 0, fmt.Errorf("failed to soft-delete orders: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

// ClearCostIncomplete drops the cost-data flag once the missing COGS entry
// has been posted.
func (r *PgxOrderRepository) ClearCostIncomplete(ctx context.Context, orderID int64, now time.Time) error {
	query := `
		UPDATE orders
		SET cost_data_incomplete = FALSE, updated_at = $2
		WHERE id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, orderID, now)
	if err != nil {
		return fmt.Errorf("failed to clear cost flag on order %d: %w", orderID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order %d", apperrors.ErrNotFound, orderID)
	}
	return nil
}

// ApplyAmountFix corrects a misimported line's prices and recomputes the
// order total from its lines, in one transaction.
func (r *PgxOrderRepository) ApplyAmountFix(ctx context.Context, orderID, itemID int64, unitPrice, total decimal.Decimal, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	itemQuery := `
		UPDATE order_items
		SET unit_price = $2, total_price = $3
		WHERE id = $1 AND order_id = $4;
	`
	cmdTag, err := tx.Exec(ctx, itemQuery, itemID, unitPrice, total, orderID)
	if err != nil {
		return fmt.Errorf("failed to fix item %d on order %d: %w", itemID, orderID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: item %d on order %d", apperrors.ErrNotFound, itemID, orderID)
	}

	orderQuery := `
		UPDATE orders
		SET total_amount = (SELECT COALESCE(SUM(total_price), 0) FROM order_items WHERE order_id = $1),
		    updated_at = $2
		WHERE id = $1;
	`
	if _, err := tx.Exec(ctx, orderQuery, orderID, now); err != nil {
		return fmt.Errorf("failed to recompute total for order %d: %w", orderID, err)
	}

	return r.Commit(ctx, tx)
}

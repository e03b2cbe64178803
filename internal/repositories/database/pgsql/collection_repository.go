package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/apperrors"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
	portsrepo "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/repositories"
)

type PgxCollectionRepository struct {
	BaseRepository
	journalRepo portsrepo.JournalRepositoryWithTx
}

// newPgxCollectionRepository creates a new repository for agent collections,
// balances, and deposits. The journal repository handles the posting half of
// the settle transaction.
func newPgxCollectionRepository(pool *pgxpool.Pool, journalRepo portsrepo.JournalRepositoryWithTx) portsrepo.CollectionRepositoryFacade {
	return &PgxCollectionRepository{
		BaseRepository: BaseRepository{Pool: pool},
		journalRepo:    journalRepo,
	}
}

var _ portsrepo.CollectionRepositoryFacade = (*PgxCollectionRepository)(nil)

const collectionColumns = `ac.id, ac.order_id, ac.agent_id, ac.amount, ac.status, ac.collection_date,
	ac.verified_at, ac.verified_by, ac.approved_at, ac.approved_by,
	ac.reconciled_at, ac.reconciled_by, ac.rejected_at, ac.rejected_by, ac.reject_reason, ac.created_at`

func scanCollection(row pgx.Row) (domain.AgentCollection, error) {
	var c domain.AgentCollection
	var verifiedAt, approvedAt, reconciledAt, rejectedAt sql.NullTime
	var verifiedBy, approvedBy, reconciledBy, rejectedBy, rejectReason sql.NullString

	err := row.Scan(
		&c.ID,
		&c.OrderID,
		&c.AgentID,
		&c.Amount,
		&c.Status,
		&c.CollectionDate,
		&verifiedAt,
		&verifiedBy,
		&approvedAt,
		&approvedBy,
		&reconciledAt,
		&reconciledBy,
		&rejectedAt,
		&rejectedBy,
		&rejectReason,
		&c.CreatedAt,
	)
	if err != nil {
		return c, err
	}

	if verifiedAt.Valid {
		c.VerifiedAt, c.VerifiedBy = &verifiedAt.Time, &verifiedBy.String
	}
	if approvedAt.Valid {
		c.ApprovedAt, c.ApprovedBy = &approvedAt.Time, &approvedBy.String
	}
	if reconciledAt.Valid {
		c.ReconciledAt, c.ReconciledBy = &reconciledAt.Time, &reconciledBy.String
	}
	if rejectedAt.Valid {
		c.RejectedAt, c.RejectedBy = &rejectedAt.Time, &rejectedBy.String
	}
	c.RejectReason = rejectReason.String
	return c, nil
}

// FindCollectionByID retrieves a collection by ID.
func (r *PgxCollectionRepository) FindCollectionByID(ctx context.Context, collectionID int64) (*domain.AgentCollection, error) {
	query := `SELECT ` + collectionColumns + ` FROM agent_collections ac WHERE ac.id = $1;`

	collection, err := scanCollection(r.Pool.QueryRow(ctx, query, collectionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: collection %d", apperrors.ErrNotFound, collectionID)
		}
		return nil, fmt.Errorf("failed to find collection %d: %w", collectionID, err)
	}
	return &collection, nil
}

// ListCollections retrieves collections matching the filter. Collections on
// soft-deleted orders never appear.
func (r *PgxCollectionRepository) ListCollections(ctx context.Context, filter portsrepo.CollectionFilter) ([]domain.AgentCollection, error) {
	query := `
		SELECT ` + collectionColumns + `
		FROM agent_collections ac
		JOIN orders o ON ac.order_id = o.id
		WHERE o.deleted_at IS NULL
	`
	args := []any{}
	if filter.AgentID != nil {
		args = append(args, *filter.AgentID)
		query += ` AND ac.agent_id = $` + strconv.Itoa(len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += ` AND ac.status = $` + strconv.Itoa(len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += ` AND ac.collection_date >= $` + strconv.Itoa(len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += ` AND ac.collection_date <= $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY ac.collection_date DESC, ac.id DESC`
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args)) + `;`

	return r.queryCollections(ctx, query, args...)
}

// ListOutstandingCollections retrieves unreconciled, unrejected collections
// on live orders, for the aging report.
func (r *PgxCollectionRepository) ListOutstandingCollections(ctx context.Context) ([]domain.AgentCollection, error) {
	query := `
		SELECT ` + collectionColumns + `
		FROM agent_collections ac
		JOIN orders o ON ac.order_id = o.id
		WHERE o.deleted_at IS NULL AND ac.status IN ('draft', 'verified', 'approved')
		ORDER BY ac.agent_id, ac.collection_date;
	`
	return r.queryCollections(ctx, query)
}

func (r *PgxCollectionRepository) queryCollections(ctx context.Context, query string, args ...any) ([]domain.AgentCollection, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}
	defer rows.Close()

	collections := []domain.AgentCollection{}
	for rows.Next() {
		collection, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collection row: %w", err)
		}
		collections = append(collections, collection)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collection rows: %w", err)
	}
	return collections, nil
}

// SaveCollectionWithAccrual inserts a draft collection and accrues its
// amount onto the agent's balance in one transaction. A live collection
// already existing for the order fails with ErrDuplicate via the partial
// unique index on order_id.
func (r *PgxCollectionRepository) SaveCollectionWithAccrual(ctx context.Context, collection domain.AgentCollection) (*domain.AgentCollection, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	insertQuery := `
		INSERT INTO agent_collections (order_id, agent_id, amount, status, collection_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id;
	`
	err = tx.QueryRow(ctx, insertQuery,
		collection.OrderID,
		collection.AgentID,
		collection.Amount,
		collection.Status,
		collection.CollectionDate,
		collection.CreatedAt,
	).Scan(&collection.ID)
	if err != nil {
		if isUniqueViolation(err, "") {
			return nil, fmt.Errorf("%w: a live collection already exists for order %d", apperrors.ErrDuplicate, collection.OrderID)
		}
		return nil, fmt.Errorf("failed to insert collection for order %d: %w", collection.OrderID, err)
	}

	accrualQuery := `
		INSERT INTO agent_balances (agent_id, current_balance, total_collected, total_deposited, last_updated_at)
		VALUES ($1, $2, $2, 0, $3)
		ON CONFLICT (agent_id) DO UPDATE
		SET current_balance = agent_balances.current_balance + EXCLUDED.current_balance,
		    total_collected = agent_balances.total_collected + EXCLUDED.total_collected,
		    last_updated_at = EXCLUDED.last_updated_at;
	`
	if _, err := tx.Exec(ctx, accrualQuery, collection.AgentID, collection.Amount, collection.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to accrue balance for agent %d: %w", collection.AgentID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &collection, nil
}

// UpdateCollectionStatus records a plain state transition with actor and
// timestamp. Monetary transitions go through SettleCollection instead.
func (r *PgxCollectionRepository) UpdateCollectionStatus(ctx context.Context, collectionID int64, status domain.CollectionStatus, actorID string, reason string, now time.Time) error {
	var query string
	args := []any{collectionID, status, actorID, now}
	switch status {
	case domain.CollectionVerified:
		query = `UPDATE agent_collections SET status = $2, verified_by = $3, verified_at = $4 WHERE id = $1;`
	case domain.CollectionApproved:
		query = `UPDATE agent_collections SET status = $2, approved_by = $3, approved_at = $4 WHERE id = $1;`
	case domain.CollectionRejected:
		query = `UPDATE agent_collections SET status = $2, rejected_by = $3, rejected_at = $4, reject_reason = $5 WHERE id = $1;`
		args = append(args, reason)
	default:
		return fmt.Errorf("%w: status %s is not a plain transition", apperrors.ErrValidation, status)
	}

	cmdTag, err := r.Pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update collection %d to %s: %w", collectionID, status, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: collection %d", apperrors.ErrNotFound, collectionID)
	}
	return nil
}

// SettleCollection performs the reconcile transition atomically: the status
// flip, the agent balance decrement under a row lock, and the cash
// reclassification posting commit or roll back together.
func (r *PgxCollectionRepository) SettleCollection(ctx context.Context, collectionID int64, actorID string, now time.Time,
	entry domain.JournalEntry, transactions []domain.AccountTransaction, balanceChanges map[string]decimal.Decimal) (*domain.JournalEntry, error) {

	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	// The status guard repeats inside the transaction: a concurrent settle
	// loses here, not at the service-level pre-check.
	flipQuery := `
		UPDATE agent_collections
		SET status = 'reconciled', reconciled_by = $2, reconciled_at = $3
		WHERE id = $1 AND status IN ('verified', 'approved')
		RETURNING agent_id, amount;
	`
	var agentID int64
	var amount decimal.Decimal
	if err := tx.QueryRow(ctx, flipQuery, collectionID, actorID, now).Scan(&agentID, &amount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: collection %d is not settleable", apperrors.ErrConflict, collectionID)
		}
		return nil, fmt.Errorf("failed to flip collection %d: %w", collectionID, err)
	}

	if _, err := r.FindBalanceForUpdate(ctx, tx, agentID); err != nil {
		return nil, err
	}
	if err := r.UpdateBalanceInTx(ctx, tx, agentID, amount.Neg(), decimal.Zero, decimal.Zero, now); err != nil {
		return nil, err
	}

	postedEntry, err := r.journalRepo.InsertEntryInTx(ctx, tx, entry, transactions, balanceChanges)
	if err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return postedEntry, nil
}

// GetOrCreateBalance fetches the agent's balance row, creating a zero row on
// first use.
func (r *PgxCollectionRepository) GetOrCreateBalance(ctx context.Context, agentID int64) (*domain.AgentBalance, error) {
	insertQuery := `
		INSERT INTO agent_balances (agent_id, current_balance, total_collected, total_deposited, last_updated_at)
		VALUES ($1, 0, 0, 0, NOW())
		ON CONFLICT (agent_id) DO NOTHING;
	`
	if _, err := r.Pool.Exec(ctx, insertQuery, agentID); err != nil {
		return nil, fmt.Errorf("failed to ensure balance row for agent %d: %w", agentID, err)
	}

	query := `
		SELECT id, agent_id, current_balance, total_collected, total_deposited, last_updated_at
		FROM agent_balances
		WHERE agent_id = $1;
	`
	var b domain.AgentBalance
	err := r.Pool.QueryRow(ctx, query, agentID).Scan(
		&b.ID, &b.AgentID, &b.CurrentBalance, &b.TotalCollected, &b.TotalDeposited, &b.LastUpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find balance for agent %d: %w", agentID, err)
	}
	return &b, nil
}

// FindBalanceForUpdate locks the agent's balance row inside a transaction.
func (r *PgxCollectionRepository) FindBalanceForUpdate(ctx context.Context, tx pgx.Tx, agentID int64) (*domain.AgentBalance, error) {
	query := `
		SELECT id, agent_id, current_balance, total_collected, total_deposited, last_updated_at
		FROM agent_balances
		WHERE agent_id = $1
		FOR UPDATE;
	`
	var b domain.AgentBalance
	err := tx.QueryRow(ctx, query, agentID).Scan(
		&b.ID, &b.AgentID, &b.CurrentBalance, &b.TotalCollected, &b.TotalDeposited, &b.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: balance for agent %d", apperrors.ErrNotFound, agentID)
		}
		return nil, fmt.Errorf("failed to lock balance for agent %d: %w", agentID, err)
	}
	return &b, nil
}

// UpdateBalanceInTx writes balance deltas inside a transaction.
func (r *PgxCollectionRepository) UpdateBalanceInTx(ctx context.Context, tx pgx.Tx, agentID int64, deltaBalance, deltaCollected, deltaDeposited decimal.Decimal, now time.Time) error {
	query := `
		UPDATE agent_balances
		SET current_balance = current_balance + $2,
		    total_collected = total_collected + $3,
		    total_deposited = total_deposited + $4,
		    last_updated_at = $5
		WHERE agent_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query, agentID, deltaBalance, deltaCollected, deltaDeposited, now)
	if err != nil {
		return fmt.Errorf("failed to update balance for agent %d: %w", agentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: balance for agent %d", apperrors.ErrNotFound, agentID)
	}
	return nil
}

const depositColumns = `id, agent_id, amount, method, reference, notes, status, verified_at, verified_by, rejected_at, rejected_by, created_at`

func scanDeposit(row pgx.Row) (domain.AgentDeposit, error) {
	var d domain.AgentDeposit
	var verifiedAt, rejectedAt sql.NullTime
	var verifiedBy, rejectedBy sql.NullString

	err := row.Scan(
		&d.ID, &d.AgentID, &d.Amount, &d.Method, &d.Reference, &d.Notes, &d.Status,
		&verifiedAt, &verifiedBy, &rejectedAt, &rejectedBy, &d.CreatedAt,
	)
	if err != nil {
		return d, err
	}
	if verifiedAt.Valid {
		d.VerifiedAt, d.VerifiedBy = &verifiedAt.Time, &verifiedBy.String
	}
	if rejectedAt.Valid {
		d.RejectedAt, d.RejectedBy = &rejectedAt.Time, &rejectedBy.String
	}
	return d, nil
}

// SaveDeposit inserts a pending deposit.
func (r *PgxCollectionRepository) SaveDeposit(ctx context.Context, deposit domain.AgentDeposit) (*domain.AgentDeposit, error) {
	query := `
		INSERT INTO agent_deposits (agent_id, amount, method, reference, notes, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id;
	`
	err := r.Pool.QueryRow(ctx, query,
		deposit.AgentID,
		deposit.Amount,
		deposit.Method,
		deposit.Reference,
		deposit.Notes,
		deposit.Status,
		deposit.CreatedAt,
	).Scan(&deposit.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert deposit for agent %d: %w", deposit.AgentID, err)
	}
	return &deposit, nil
}

// FindDepositByID retrieves a deposit by ID.
func (r *PgxCollectionRepository) FindDepositByID(ctx context.Context, depositID int64) (*domain.AgentDeposit, error) {
	query := `SELECT ` + depositColumns + ` FROM agent_deposits WHERE id = $1;`

	deposit, err := scanDeposit(r.Pool.QueryRow(ctx, query, depositID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: deposit %d", apperrors.ErrNotFound, depositID)
		}
		return nil, fmt.Errorf("failed to find deposit %d: %w", depositID, err)
	}
	return &deposit, nil
}

// SettleDeposit verifies a pending deposit and reduces the agent's balance
// under a row lock. The balance guard is re-checked inside the transaction.
func (r *PgxCollectionRepository) SettleDeposit(ctx context.Context, depositID int64, actorID string, now time.Time) (*domain.AgentDeposit, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	flipQuery := `
		UPDATE agent_deposits
		SET status = 'verified', verified_by = $2, verified_at = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + depositColumns + `;
	`
	deposit, err := scanDeposit(tx.QueryRow(ctx, flipQuery, depositID, actorID, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: deposit %d is not pending", apperrors.ErrConflict, depositID)
		}
		return nil, fmt.Errorf("failed to verify deposit %d: %w", depositID, err)
	}

	balance, err := r.FindBalanceForUpdate(ctx, tx, deposit.AgentID)
	if err != nil {
		return nil, err
	}
	if deposit.Amount.GreaterThan(balance.CurrentBalance) {
		return nil, fmt.Errorf("%w: deposit %s exceeds agent balance %s", apperrors.ErrConflict, deposit.Amount, balance.CurrentBalance)
	}
	if err := r.UpdateBalanceInTx(ctx, tx, deposit.AgentID, deposit.Amount.Neg(), decimal.Zero, deposit.Amount, now); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &deposit, nil
}

// RejectDeposit marks a pending deposit rejected without touching the
// balance. The verify stamp columns stay null; rejection carries its own.
func (r *PgxCollectionRepository) RejectDeposit(ctx context.Context, depositID int64, actorID string, now time.Time) (*domain.AgentDeposit, error) {
	query := `
		UPDATE agent_deposits
		SET status = 'rejected', rejected_by = $2, rejected_at = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + depositColumns + `;
	`
	deposit, err := scanDeposit(r.Pool.QueryRow(ctx, query, depositID, actorID, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: deposit %d is not pending", apperrors.ErrConflict, depositID)
		}
		return nil, fmt.Errorf("failed to reject deposit %d: %w", depositID, err)
	}
	return &deposit, nil
}

package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/apperrors"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
	portsrepo "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/repositories"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/utils/pagination"
)

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository over the append-only
// transaction ledger.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

// ListTransactionsByAccount retrieves one account's ledger lines newest
// first, using token-based pagination. The cursor is (created_at,
// transaction_id) for a stable order even when lines share a timestamp.
func (r *PgxLedgerRepository) ListTransactionsByAccount(ctx context.Context, accountCode string, limit int, nextToken *string) ([]domain.AccountTransaction, *string, error) {
	if limit <= 0 {
		limit = 50
	}
	// One extra row tells us whether a next page exists.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT transaction_id, entry_id, account_code, debit_amount, credit_amount, description, created_at, created_by, last_updated_at, last_updated_by
		FROM account_transactions
		WHERE account_code = $1
	`
	orderByClause := `ORDER BY created_at DESC, transaction_id DESC`

	var rows pgx.Rows
	var err error
	if nextToken != nil && *nextToken != "" {
		fields, decodeErr := pagination.DecodeCursor(*nextToken)
		if decodeErr != nil || len(fields) != 2 {
			return nil, nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}
		lastCreatedAt, parseErr := time.Parse(time.RFC3339Nano, fields[0])
		if parseErr != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}

		query := baseQuery + ` AND (created_at, transaction_id) < ($2, $3) ` + orderByClause + ` LIMIT $4;`
		rows, err = r.Pool.Query(ctx, query, accountCode, lastCreatedAt, fields[1], fetchLimit)
	} else {
		query := baseQuery + " " + orderByClause + ` LIMIT $2;`
		rows, err = r.Pool.Query(ctx, query, accountCode, fetchLimit)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query ledger for account %s: %w", accountCode, err)
	}
	defer rows.Close()

	transactions := make([]domain.AccountTransaction, 0, fetchLimit)
	for rows.Next() {
		var t domain.AccountTransaction
		if err := rows.Scan(
			&t.TransactionID,
			&t.EntryID,
			&t.AccountCode,
			&t.DebitAmount,
			&t.CreditAmount,
			&t.Description,
			&t.CreatedAt,
			&t.CreatedBy,
			&t.LastUpdatedAt,
			&t.LastUpdatedBy,
		); err != nil {
			return nil, nil, fmt.Errorf("failed to scan ledger row for account %s: %w", accountCode, err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating ledger rows for account %s: %w", accountCode, err)
	}

	var nextTokenVal *string
	if len(transactions) > limit {
		transactions = transactions[:limit]
		last := transactions[limit-1]
		token := pagination.EncodeCursor(last.CreatedAt.Format(time.RFC3339Nano), last.TransactionID)
		nextTokenVal = &token
	}
	return transactions, nextTokenVal, nil
}

// AggregateByAccount computes debit/credit sums per account across the whole
// ledger. This is the ground truth the reconciliation service compares
// cached balances against.
func (r *PgxLedgerRepository) AggregateByAccount(ctx context.Context) ([]domain.AccountBalanceSummary, error) {
	query := `
		SELECT account_code, COALESCE(SUM(debit_amount), 0), COALESCE(SUM(credit_amount), 0)
		FROM account_transactions
		GROUP BY account_code
		ORDER BY account_code;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ledger: %w", err)
	}
	defer rows.Close()

	summaries := []domain.AccountBalanceSummary{}
	for rows.Next() {
		var s domain.AccountBalanceSummary
		if err := rows.Scan(&s.AccountCode, &s.DebitSum, &s.CreditSum); err != nil {
			return nil, fmt.Errorf("failed to scan ledger aggregate row: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger aggregate rows: %w", err)
	}
	return summaries, nil
}

// CountMisclassified reports how many lines a repair would move.
func (r *PgxLedgerRepository) CountMisclassified(ctx context.Context, fromCode, sourceType string) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM account_transactions t
		JOIN journal_entries e ON t.entry_id = e.entry_id
		WHERE t.account_code = $1 AND e.source_type = $2;
	`
	var count int64
	if err := r.Pool.QueryRow(ctx, query, fromCode, sourceType).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count misclassified lines on account %s: %w", fromCode, err)
	}
	return count, nil
}

// RepairMisclassified moves all lines with the given source type from one
// account code to another and shifts the moved net between both cached
// balances, in one transaction. This is the only permitted mutation of
// posted ledger lines.
func (r *PgxLedgerRepository) RepairMisclassified(ctx context.Context, fromCode, toCode, sourceType string, userID string) (int64, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer r.Rollback(ctx, tx)

	now := time.Now().UTC()

	// Lock both accounts in code order before touching balances.
	first, second := fromCode, toCode
	if second < first {
		first, second = second, first
	}
	lockQuery := `SELECT code FROM accounts WHERE code = ANY($1) ORDER BY code FOR UPDATE;`
	lockRows, err := tx.Query(ctx, lockQuery, []string{first, second})
	if err != nil {
		return 0, fmt.Errorf("failed to lock accounts %s, %s: %w", fromCode, toCode, err)
	}
	locked := 0
	for lockRows.Next() {
		var code string
		if err := lockRows.Scan(&code); err != nil {
			lockRows.Close()
			return 0, fmt.Errorf("failed to scan locked account: %w", err)
		}
		locked++
	}
	lockRows.Close()
	if err := lockRows.Err(); err != nil {
		return 0, fmt.Errorf("error locking accounts %s, %s: %w", fromCode, toCode, err)
	}
	if locked != 2 {
		return 0, fmt.Errorf("%w: account %s or %s", apperrors.ErrNotFound, fromCode, toCode)
	}

	moveQuery := `
		UPDATE account_transactions t
		SET account_code = $2, last_updated_at = $3, last_updated_by = $4
		FROM journal_entries e
		WHERE t.entry_id = e.entry_id AND t.account_code = $1 AND e.source_type = $5
		RETURNING t.debit_amount, t.credit_amount;
	`
	rows, err := tx.Query(ctx, moveQuery, fromCode, toCode, now, userID, sourceType)
	if err != nil {
		return 0, fmt.Errorf("failed to move lines from account %s: %w", fromCode, err)
	}

	var moved int64
	movedNet := domain.AccountBalanceSummary{AccountCode: fromCode}
	for rows.Next() {
		var t domain.AccountTransaction
		if err := rows.Scan(&t.DebitAmount, &t.CreditAmount); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan moved line: %w", err)
		}
		movedNet.DebitSum = movedNet.DebitSum.Add(t.DebitAmount)
		movedNet.CreditSum = movedNet.CreditSum.Add(t.CreditAmount)
		moved++
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("error iterating moved lines: %w", err)
	}

	if moved > 0 {
		// The moved lines' signed sum leaves one cached balance and enters
		// the other; each account's own normal balance decides the sign.
		adjustQuery := `
			UPDATE accounts
			SET current_balance = current_balance + (
				CASE WHEN normal_balance = 'debit' THEN $2::numeric - $3::numeric ELSE $3::numeric - $2::numeric END
			) * $4::numeric,
			    last_updated_at = $5, last_updated_by = $6
			WHERE code = $1;
		`
		if _, err := tx.Exec(ctx, adjustQuery, fromCode, movedNet.DebitSum, movedNet.CreditSum, -1, now, userID); err != nil {
			return 0, fmt.Errorf("failed to adjust balance on account %s: %w", fromCode, err)
		}
		if _, err := tx.Exec(ctx, adjustQuery, toCode, movedNet.DebitSum, movedNet.CreditSum, 1, now, userID); err != nil {
			return 0, fmt.Errorf("failed to adjust balance on account %s: %w", toCode, err)
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return 0, err
	}
	return moved, nil
}

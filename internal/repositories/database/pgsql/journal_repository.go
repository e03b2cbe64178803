package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/apperrors"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
	portsrepo "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/repositories"
)

type PgxJournalRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxJournalRepository creates a new repository for journal entry and
// transaction data.
func newPgxJournalRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.JournalRepositoryWithTx {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.JournalRepositoryWithTx = (*PgxJournalRepository)(nil)

const entryColumns = `entry_id, entry_number, entry_date, description, source_type, source_id, status, original_entry_id, reversing_entry_id, created_at, created_by, last_updated_at, last_updated_by`

func scanEntry(row pgx.Row) (domain.JournalEntry, error) {
	var e domain.JournalEntry
	var sourceType sql.NullString
	var sourceID sql.NullInt64
	var originalID, reversingID sql.NullString

	err := row.Scan(
		&e.EntryID,
		&e.EntryNumber,
		&e.EntryDate,
		&e.Description,
		&sourceType,
		&sourceID,
		&e.Status,
		&originalID,
		&reversingID,
		&e.CreatedAt,
		&e.CreatedBy,
		&e.LastUpdatedAt,
		&e.LastUpdatedBy,
	)
	if err != nil {
		return e, err
	}

	e.SourceType = sourceType.String
	e.SourceID = sourceID.Int64
	if originalID.Valid {
		e.OriginalEntryID = &originalID.String
	}
	if reversingID.Valid {
		e.ReversingEntryID = &reversingID.String
	}
	return e, nil
}

// nextEntryNumber allocates the next JE-YYYYMMDD-NNNNN number for the entry
// date's day. The per-day counter row is upserted atomically, so concurrent
// postings never collide.
func (r *PgxJournalRepository) nextEntryNumber(ctx context.Context, tx pgx.Tx, entryDate time.Time) (string, error) {
	day := entryDate.UTC().Truncate(24 * time.Hour)

	var counter int64
	query := `
		INSERT INTO entry_number_counters (day, counter)
		VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET counter = entry_number_counters.counter + 1
		RETURNING counter;
	`
	if err := tx.QueryRow(ctx, query, day).Scan(&counter); err != nil {
		return "", fmt.Errorf("failed to allocate entry number: %w", err)
	}
	return fmt.Sprintf("JE-%s-%05d", day.Format("20060102"), counter), nil
}

// SaveEntry persists an entry with its lines and applies the account balance
// deltas as one atomic unit.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, transactions []domain.AccountTransaction, balanceChanges map[string]decimal.Decimal) (*domain.JournalEntry, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	saved, err := r.InsertEntryInTx(ctx, tx, entry, transactions, balanceChanges)
	if err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return saved, nil
}

// InsertEntryInTx is the posting body: number assignment, the entry row, a
// batch of line inserts, and the cached balance deltas, all on the caller's
// transaction. Row locks on the touched accounts are taken before any
// balance write.
func (r *PgxJournalRepository) InsertEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, transactions []domain.AccountTransaction, balanceChanges map[string]decimal.Decimal) (*domain.JournalEntry, error) {
	codes := make([]string, 0, len(balanceChanges))
	for code := range balanceChanges {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	if _, err := r.accountRepo.FindAccountsByCodesForUpdate(ctx, tx, codes); err != nil {
		return nil, fmt.Errorf("failed to lock accounts for entry %s: %w", entry.EntryID, err)
	}

	if entry.EntryNumber == "" {
		number, err := r.nextEntryNumber(ctx, tx, entry.EntryDate)
		if err != nil {
			return nil, err
		}
		entry.EntryNumber = number
	}

	var sourceType sql.NullString
	var sourceID sql.NullInt64
	if entry.SourceType != "" {
		sourceType = sql.NullString{String: entry.SourceType, Valid: true}
		sourceID = sql.NullInt64{Int64: entry.SourceID, Valid: true}
	}

	entryQuery := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := tx.Exec(ctx, entryQuery,
		entry.EntryID,
		entry.EntryNumber,
		entry.EntryDate,
		entry.Description,
		sourceType,
		sourceID,
		entry.Status,
		entry.OriginalEntryID,
		entry.ReversingEntryID,
		entry.CreatedAt,
		entry.CreatedBy,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return nil, fmt.Errorf("%w: entry for source %s/%d already posted", apperrors.ErrDuplicate, entry.SourceType, entry.SourceID)
		}
		return nil, fmt.Errorf("failed to insert entry %s: %w", entry.EntryID, err)
	}

	batch := &pgx.Batch{}
	txnQuery := `
		INSERT INTO account_transactions (transaction_id, entry_id, account_code, debit_amount, credit_amount, description, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	for _, txn := range transactions {
		batch.Queue(txnQuery,
			txn.TransactionID,
			txn.EntryID,
			txn.AccountCode,
			txn.DebitAmount,
			txn.CreditAmount,
			txn.Description,
			txn.CreatedAt,
			txn.CreatedBy,
			txn.LastUpdatedAt,
			txn.LastUpdatedBy,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, fmt.Errorf("failed to insert lines for entry %s: %w", entry.EntryID, err)
	}

	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, entry.CreatedBy, entry.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to update balances for entry %s: %w", entry.EntryID, err)
	}

	entry.Transactions = transactions
	return &entry, nil
}

// FindEntryByID retrieves an entry with its lines.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`

	entry, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}

	transactions, err := r.FindTransactionsByEntryID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	entry.Transactions = transactions
	return &entry, nil
}

// FindEntryBySource retrieves the entry posted for a business event, if any.
// This is the lookup backing posting idempotency.
func (r *PgxJournalRepository) FindEntryBySource(ctx context.Context, sourceType string, sourceID int64) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE source_type = $1 AND source_id = $2 AND status <> 'reversed';`

	entry, err := scanEntry(r.Pool.QueryRow(ctx, query, sourceType, sourceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry for source %s/%d: %w", sourceType, sourceID, err)
	}
	return &entry, nil
}

// FindTransactionsByEntryID retrieves all lines of a single entry.
func (r *PgxJournalRepository) FindTransactionsByEntryID(ctx context.Context, entryID string) ([]domain.AccountTransaction, error) {
	query := `
		SELECT transaction_id, entry_id, account_code, debit_amount, credit_amount, description, created_at, created_by, last_updated_at, last_updated_by
		FROM account_transactions
		WHERE entry_id = $1
		ORDER BY transaction_id;
	`
	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entry %s: %w", entryID, err)
	}
	defer rows.Close()

	transactions := []domain.AccountTransaction{}
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
			return nil, fmt.Errorf("failed to scan line row for entry %s: %w", entryID, err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows for entry %s: %w", entryID, err)
	}
	return transactions, nil
}

// UpdateEntryStatusAndLinks marks an entry reversed and records which entry
// reversed it.
func (r *PgxJournalRepository) UpdateEntryStatusAndLinks(ctx context.Context, entryID string, status domain.EntryStatus, reversingEntryID *string, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE journal_entries
		SET status = $2, reversing_entry_id = $3, last_updated_at = $4, last_updated_by = $5
		WHERE entry_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, entryID, status, reversingEntryID, updatedAt, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to update status of entry %s: %w", entryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s", apperrors.ErrNotFound, entryID)
	}
	return nil
}

package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	journalRepo := newPgxJournalRepository(dbPool, accountRepo)
	ledgerRepo := newPgxLedgerRepository(dbPool)
	orderRepo := newPgxOrderRepository(dbPool)
	collectionRepo := newPgxCollectionRepository(dbPool, journalRepo)

	return portsrepo.RepositoryProvider{
		AccountRepo:    accountRepo,
		JournalRepo:    journalRepo,
		LedgerRepo:     ledgerRepo,
		OrderRepo:      orderRepo,
		CollectionRepo: collectionRepo,
	}
}

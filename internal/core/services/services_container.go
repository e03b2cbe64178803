package services

import (
	"github.com/shopspring/decimal"

	portsrepo "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/repositories"
	portssvc "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/services"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}
	publisher := NewLogEventPublisher()

	container.Account = NewAccountService(repos.AccountRepo)
	container.Journal = NewJournalService(repos.JournalRepo, repos.AccountRepo)
	container.Ledger = NewLedgerService(repos.LedgerRepo, repos.AccountRepo)
	container.Reconciliation = NewReconciliationService(repos.AccountRepo, repos.LedgerRepo, publisher)
	container.Revenue = NewRevenueService(
		repos.OrderRepo,
		repos.AccountRepo,
		container.Journal,
		publisher,
		decimal.NewFromFloat(cfg.FailedDeliveryFee),
	)
	container.Collection = NewCollectionService(
		repos.CollectionRepo,
		repos.OrderRepo,
		repos.AccountRepo,
		publisher,
		cfg.AllowReconcileFromVerified,
	)
	container.Integrity = NewIntegrityService(repos.OrderRepo, container.Journal)

	return container
}

package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
	portsrepo "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/repositories"
	portssvc "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/services"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/dto"
)

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) SetAccountActive(ctx context.Context, code string, active bool, userID string, now time.Time) error {
	args := m.Called(ctx, code, active, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) SetAccountBalance(ctx context.Context, code string, balance decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, code, balance, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByCodesForUpdate(ctx context.Context, tx pgx.Tx, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, balanceChanges, userID, now)
	return args.Error(0)
}

// --- Mock JournalRepository ---

type MockJournalRepository struct {
	mock.Mock
}

var _ portsrepo.JournalRepositoryWithTx = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindEntryBySource(ctx context.Context, sourceType string, sourceID int64) (*domain.JournalEntry, error) {
	args := m.Called(ctx, sourceType, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindTransactionsByEntryID(ctx context.Context, entryID string) ([]domain.AccountTransaction, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountTransaction), args.Error(1)
}

func (m *MockJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, transactions []domain.AccountTransaction, balanceChanges map[string]decimal.Decimal) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entry, transactions, balanceChanges)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) InsertEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, transactions []domain.AccountTransaction, balanceChanges map[string]decimal.Decimal) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tx, entry, transactions, balanceChanges)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) UpdateEntryStatusAndLinks(ctx context.Context, entryID string, status domain.EntryStatus, reversingEntryID *string, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, entryID, status, reversingEntryID, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockJournalRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockJournalRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockJournalRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock LedgerRepository ---

type MockLedgerRepository struct {
	mock.Mock
}

var _ portsrepo.LedgerRepositoryFacade = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) ListTransactionsByAccount(ctx context.Context, accountCode string, limit int, nextToken *string) ([]domain.AccountTransaction, *string, error) {
	args := m.Called(ctx, accountCode, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		returnedNextToken = args.Get(1).(*string)
	}
	return args.Get(0).([]domain.AccountTransaction), returnedNextToken, args.Error(2)
}

func (m *MockLedgerRepository) AggregateByAccount(ctx context.Context) ([]domain.AccountBalanceSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountBalanceSummary), args.Error(1)
}

func (m *MockLedgerRepository) RepairMisclassified(ctx context.Context, fromCode, toCode, sourceType string, userID string) (int64, error) {
	args := m.Called(ctx, fromCode, toCode, sourceType, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) CountMisclassified(ctx context.Context, fromCode, sourceType string) (int64, error) {
	args := m.Called(ctx, fromCode, sourceType)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock OrderRepository ---

type MockOrderRepository struct {
	mock.Mock
}

var _ portsrepo.OrderRepositoryFacade = (*MockOrderRepository)(nil)

func (m *MockOrderRepository) FindOrderByID(ctx context.Context, orderID int64) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ListDeliveredUnrecognized(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ListLiveBulkImported(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ListImportedItemsForAmountFix(ctx context.Context) ([]domain.OrderItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OrderItem), args.Error(1)
}

func (m *MockOrderRepository) ListCostIncomplete(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ListOrphanCustomers(ctx context.Context) ([]domain.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Customer), args.Error(1)
}

func (m *MockOrderRepository) MarkRevenueRecognized(ctx context.Context, orderID int64, entryID string, costDataIncomplete bool, now time.Time) error {
	args := m.Called(ctx, orderID, entryID, costDataIncomplete, now)
	return args.Error(0)
}

func (m *MockOrderRepository) SetRecognitionLink(ctx context.Context, orderID int64, entryID *string, recognized bool, now time.Time) error {
	args := m.Called(ctx, orderID, entryID, recognized, now)
	return args.Error(0)
}

func (m *MockOrderRepository) SoftDeleteOrders(ctx context.Context, orderIDs []int64, now time.Time) (int64, error) {
	args := m.Called(ctx, orderIDs, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) ApplyAmountFix(ctx context.Context, orderID, itemID int64, unitPrice, total decimal.Decimal, now time.Time) error {
	args := m.Called(ctx, orderID, itemID, unitPrice, total, now)
	return args.Error(0)
}

func (m *MockOrderRepository) ClearCostIncomplete(ctx context.Context, orderID int64, now time.Time) error {
	args := m.Called(ctx, orderID, now)
	return args.Error(0)
}

// --- Mock CollectionRepository ---

type MockCollectionRepository struct {
	mock.Mock
}

var _ portsrepo.CollectionRepositoryFacade = (*MockCollectionRepository)(nil)

func (m *MockCollectionRepository) FindCollectionByID(ctx context.Context, collectionID int64) (*domain.AgentCollection, error) {
	args := m.Called(ctx, collectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AgentCollection), args.Error(1)
}

func (m *MockCollectionRepository) ListCollections(ctx context.Context, filter portsrepo.CollectionFilter) ([]domain.AgentCollection, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AgentCollection), args.Error(1)
}

func (m *MockCollectionRepository) ListOutstandingCollections(ctx context.Context) ([]domain.AgentCollection, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AgentCollection), args.Error(1)
}

func (m *MockCollectionRepository) SaveCollectionWithAccrual(ctx context.Context, collection domain.AgentCollection) (*domain.AgentCollection, error) {
	args := m.Called(ctx, collection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AgentCollection), args.Error(1)
}

func (m *MockCollectionRepository) UpdateCollectionStatus(ctx context.Context, collectionID int64, status domain.CollectionStatus, actorID string, reason string, now time.Time) error {
	args := m.Called(ctx, collectionID, status, actorID, reason, now)
	return args.Error(0)
}

func (m *MockCollectionRepository) SettleCollection(ctx context.Context, collectionID int64, actorID string, now time.Time, entry domain.JournalEntry, transactions []domain.AccountTransaction, balanceChanges map[string]decimal.Decimal) (*domain.JournalEntry, error) {
	args := m.Called(ctx, collectionID, actorID, now, entry, transactions, balanceChanges)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockCollectionRepository) GetOrCreateBalance(ctx context.Context, agentID int64) (*domain.AgentBalance, error) {
	args := m.Called(ctx, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AgentBalance), args.Error(1)
}

func (m *MockCollectionRepository) FindBalanceForUpdate(ctx context.Context, tx pgx.Tx, agentID int64) (*domain.AgentBalance, error) {
	args := m.Called(ctx, tx, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AgentBalance), args.Error(1)
}

func (m *MockCollectionRepository) UpdateBalanceInTx(ctx context.Context, tx pgx.Tx, agentID int64, deltaBalance, deltaCollected, deltaDeposited decimal.Decimal, now time.Time) error {
	args := m.Called(ctx, tx, agentID, deltaBalance, deltaCollected, deltaDeposited, now)
	return args.Error(0)
}

func (m *MockCollectionRepository) SaveDeposit(ctx context.Context, deposit domain.AgentDeposit) (*domain.AgentDeposit, error) {
	args := m.Called(ctx, deposit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AgentDeposit), args.Error(1)
}

func (m *MockCollectionRepository) FindDepositByID(ctx context.Context, depositID int64) (*domain.AgentDeposit, error) {
	args := m.Called(ctx, depositID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AgentDeposit), args.Error(1)
}

func (m *MockCollectionRepository) SettleDeposit(ctx context.Context, depositID int64, actorID string, now time.Time) (*domain.AgentDeposit, error) {
	args := m.Called(ctx, depositID, actorID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AgentDeposit), args.Error(1)
}

func (m *MockCollectionRepository) RejectDeposit(ctx context.Context, depositID int64, actorID string, now time.Time) (*domain.AgentDeposit, error) {
	args := m.Called(ctx, depositID, actorID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AgentDeposit), args.Error(1)
}

// --- Mock EventPublisher ---

type MockEventPublisher struct {
	mock.Mock
}

var _ portssvc.EventPublisher = (*MockEventPublisher)(nil)

func (m *MockEventPublisher) Publish(ctx context.Context, event domain.Event) {
	m.Called(ctx, event)
}

// --- Mock JournalService (for services composing postings) ---

type MockJournalService struct {
	mock.Mock
}

var _ portssvc.JournalSvcFacade = (*MockJournalService)(nil)

func (m *MockJournalService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) GetEntryBySource(ctx context.Context, sourceType string, sourceID int64) (*domain.JournalEntry, error) {
	args := m.Called(ctx, sourceType, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) PostEntry(ctx context.Context, req dto.PostEntryRequest, creatorUserID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) ReverseEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

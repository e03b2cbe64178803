package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/apperrors"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
	portssvc "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/services"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/services"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/dto"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/platform/config"
)

type CollectionServiceTestSuite struct {
	suite.Suite
	mockCollectionRepo *MockCollectionRepository
	mockOrderRepo      *MockOrderRepository
	mockAccountRepo    *MockAccountRepository
	mockPublisher      *MockEventPublisher
	service            portssvc.CollectionSvcFacade
	userID             string
}

func (suite *CollectionServiceTestSuite) SetupTest() {
	suite.mockCollectionRepo = new(MockCollectionRepository)
	suite.mockOrderRepo = new(MockOrderRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockPublisher = new(MockEventPublisher)
	suite.service = services.NewCollectionService(
		suite.mockCollectionRepo, suite.mockOrderRepo, suite.mockAccountRepo, suite.mockPublisher, false,
	)
	suite.userID = "cashier-1"
}

func (suite *CollectionServiceTestSuite) serviceWithVerifiedReconcile() portssvc.CollectionSvcFacade {
	return services.NewCollectionService(
		suite.mockCollectionRepo, suite.mockOrderRepo, suite.mockAccountRepo, suite.mockPublisher, true,
	)
}

func (suite *CollectionServiceTestSuite) expectCashAccounts() {
	suite.mockAccountRepo.On("FindAccountsByCodes", mock.Anything, mock.Anything).Return(map[string]domain.Account{
		config.AccountCashInHand:    {Code: config.AccountCashInHand, IsActive: true, NormalBalance: domain.DebitNormal},
		config.AccountCashInTransit: {Code: config.AccountCashInTransit, IsActive: true, NormalBalance: domain.DebitNormal},
	}, nil)
}

func collectionIn(id int64, status domain.CollectionStatus, amount int64) *domain.AgentCollection {
	return &domain.AgentCollection{
		ID:             id,
		OrderID:        id + 1000,
		AgentID:        42,
		Amount:         decimal.NewFromInt(amount),
		Status:         status,
		CollectionDate: time.Now().UTC().AddDate(0, 0, -1),
		CreatedAt:      time.Now().UTC().AddDate(0, 0, -1),
	}
}

func (suite *CollectionServiceTestSuite) TestCreateCollection_DefaultsToOrderTotal() {
	ctx := context.Background()
	order := &domain.Order{ID: 5, Status: domain.OrderDelivered, TotalAmount: decimal.NewFromInt(350)}

	suite.mockOrderRepo.On("FindOrderByID", ctx, int64(5)).Return(order, nil).Once()
	suite.mockCollectionRepo.On("SaveCollectionWithAccrual", ctx, mock.AnythingOfType("domain.AgentCollection")).
		Run(func(args mock.Arguments) {
			c := args.Get(1).(domain.AgentCollection)
			suite.True(c.Amount.Equal(decimal.NewFromInt(350)))
			suite.Equal(domain.CollectionDraft, c.Status)
		}).
		Return(&domain.AgentCollection{ID: 1, OrderID: 5, AgentID: 42, Amount: decimal.NewFromInt(350), Status: domain.CollectionDraft}, nil).Once()

	saved, err := suite.service.CreateCollection(ctx, dto.CreateCollectionRequest{OrderID: 5, AgentID: 42}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(int64(1), saved.ID)
	suite.mockCollectionRepo.AssertExpectations(suite.T())
}

func (suite *CollectionServiceTestSuite) TestCreateCollection_DeletedOrder() {
	ctx := context.Background()
	deletedAt := time.Now().UTC()
	order := &domain.Order{ID: 6, Status: domain.OrderDelivered, TotalAmount: decimal.NewFromInt(100), DeletedAt: &deletedAt}

	suite.mockOrderRepo.On("FindOrderByID", ctx, int64(6)).Return(order, nil).Once()

	_, err := suite.service.CreateCollection(ctx, dto.CreateCollectionRequest{OrderID: 6, AgentID: 42}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockCollectionRepo.AssertNotCalled(suite.T(), "SaveCollectionWithAccrual", mock.Anything, mock.Anything)
}

func (suite *CollectionServiceTestSuite) TestVerifyCollection_FromDraft() {
	ctx := context.Background()
	collection := collectionIn(10, domain.CollectionDraft, 200)

	suite.mockCollectionRepo.On("FindCollectionByID", ctx, int64(10)).Return(collection, nil).Once()
	suite.mockCollectionRepo.On("UpdateCollectionStatus", ctx, int64(10), domain.CollectionVerified, suite.userID, "", mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockPublisher.On("Publish", ctx, mock.MatchedBy(func(e domain.Event) bool {
		return e.Type == domain.EventCollectionVerified && e.SubjectID == int64(10)
	})).Once()

	updated, err := suite.service.VerifyCollection(ctx, 10, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.CollectionVerified, updated.Status)
	suite.Require().NotNil(updated.VerifiedAt)
	suite.mockPublisher.AssertExpectations(suite.T())
}

func (suite *CollectionServiceTestSuite) TestApproveCollection_FromDraftRejected() {
	ctx := context.Background()
	collection := collectionIn(11, domain.CollectionDraft, 200)

	suite.mockCollectionRepo.On("FindCollectionByID", ctx, int64(11)).Return(collection, nil).Once()

	_, err := suite.service.ApproveCollection(ctx, 11, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInvalidTransition)
	suite.mockCollectionRepo.AssertNotCalled(suite.T(), "UpdateCollectionStatus",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CollectionServiceTestSuite) TestRejectCollection_RequiresReason() {
	ctx := context.Background()

	_, err := suite.service.RejectCollection(ctx, 12, "", suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrRejectNeedsReason)
	suite.mockCollectionRepo.AssertNotCalled(suite.T(), "FindCollectionByID", mock.Anything, mock.Anything)
}

func (suite *CollectionServiceTestSuite) TestRejectCollection_LeavesBalanceAlone() {
	ctx := context.Background()
	collection := collectionIn(13, domain.CollectionVerified, 75)

	suite.mockCollectionRepo.On("FindCollectionByID", ctx, int64(13)).Return(collection, nil).Once()
	suite.mockCollectionRepo.On("UpdateCollectionStatus", ctx, int64(13), domain.CollectionRejected, suite.userID, "amount disputed", mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockPublisher.On("Publish", ctx, mock.Anything).Once()

	updated, err := suite.service.RejectCollection(ctx, 13, "amount disputed", suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.CollectionRejected, updated.Status)
	suite.Equal("amount disputed", updated.RejectReason)
	// Rejection never touches the agent's cash position.
	suite.mockCollectionRepo.AssertNotCalled(suite.T(), "SettleCollection",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CollectionServiceTestSuite) TestReconcileCollection_FromApproved() {
	ctx := context.Background()
	collection := collectionIn(20, domain.CollectionApproved, 200)

	suite.mockCollectionRepo.On("FindCollectionByID", ctx, int64(20)).Return(collection, nil).Once()
	suite.expectCashAccounts()
	suite.mockCollectionRepo.On("SettleCollection", ctx, int64(20), suite.userID, mock.AnythingOfType("time.Time"),
		mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.AccountTransaction"), mock.Anything).
		Run(func(args mock.Arguments) {
			entry := args.Get(4).(domain.JournalEntry)
			suite.Equal(domain.SourceAgentReconcile, entry.SourceType)
			suite.Equal(int64(20), entry.SourceID)

			transactions := args.Get(5).([]domain.AccountTransaction)
			suite.Require().Len(transactions, 2)
			suite.Equal(config.AccountCashInHand, transactions[0].AccountCode)
			suite.True(transactions[0].DebitAmount.Equal(decimal.NewFromInt(200)))
			suite.Equal(config.AccountCashInTransit, transactions[1].AccountCode)
			suite.True(transactions[1].CreditAmount.Equal(decimal.NewFromInt(200)))

			changes := args.Get(6).(map[string]decimal.Decimal)
			suite.True(changes[config.AccountCashInHand].Equal(decimal.NewFromInt(200)))
			suite.True(changes[config.AccountCashInTransit].Equal(decimal.NewFromInt(-200)))
		}).
		Return(&domain.JournalEntry{EntryID: "e20", EntryNumber: "JE-20250301-00002"}, nil).Once()
	suite.mockPublisher.On("Publish", ctx, mock.MatchedBy(func(e domain.Event) bool {
		return e.Type == domain.EventCollectionReconciled
	})).Once()

	updated, err := suite.service.ReconcileCollection(ctx, 20, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.CollectionReconciled, updated.Status)
	suite.Require().NotNil(updated.ReconciledAt)
	suite.mockCollectionRepo.AssertExpectations(suite.T())
}

func (suite *CollectionServiceTestSuite) TestReconcileCollection_AlreadyReconciled() {
	ctx := context.Background()
	collection := collectionIn(21, domain.CollectionReconciled, 200)

	suite.mockCollectionRepo.On("FindCollectionByID", ctx, int64(21)).Return(collection, nil).Once()

	_, err := suite.service.ReconcileCollection(ctx, 21, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAlreadyReconciled)
	// Nothing is posted and no balance moves on the second attempt.
	suite.mockCollectionRepo.AssertNotCalled(suite.T(), "SettleCollection",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockPublisher.AssertNotCalled(suite.T(), "Publish", mock.Anything, mock.Anything)
}

func (suite *CollectionServiceTestSuite) TestReconcileCollection_FromVerifiedNeedsFlag() {
	ctx := context.Background()

	suite.mockCollectionRepo.On("FindCollectionByID", ctx, int64(22)).Return(collectionIn(22, domain.CollectionVerified, 150), nil)

	_, err := suite.service.ReconcileCollection(ctx, 22, suite.userID)
	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInvalidTransition)

	suite.expectCashAccounts()
	suite.mockCollectionRepo.On("SettleCollection", ctx, int64(22), suite.userID, mock.AnythingOfType("time.Time"),
		mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.AccountTransaction"), mock.Anything).
		Return(&domain.JournalEntry{EntryID: "e22"}, nil).Once()
	suite.mockPublisher.On("Publish", ctx, mock.Anything).Once()

	updated, err := suite.serviceWithVerifiedReconcile().ReconcileCollection(ctx, 22, suite.userID)
	suite.Require().NoError(err)
	suite.Equal(domain.CollectionReconciled, updated.Status)
}

func (suite *CollectionServiceTestSuite) TestReconcileCollection_MissingCashAccount() {
	ctx := context.Background()
	collection := collectionIn(23, domain.CollectionApproved, 90)

	suite.mockCollectionRepo.On("FindCollectionByID", ctx, int64(23)).Return(collection, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByCodes", ctx, mock.Anything).Return(map[string]domain.Account{
		config.AccountCashInHand: {Code: config.AccountCashInHand, IsActive: true, NormalBalance: domain.DebitNormal},
	}, nil).Once()

	_, err := suite.service.ReconcileCollection(ctx, 23, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrMissingAccountMapping)
}

func (suite *CollectionServiceTestSuite) TestBulkVerify_PartialFailure() {
	ctx := context.Background()

	suite.mockCollectionRepo.On("FindCollectionByID", ctx, int64(30)).Return(collectionIn(30, domain.CollectionDraft, 100), nil).Once()
	suite.mockCollectionRepo.On("FindCollectionByID", ctx, int64(31)).Return(collectionIn(31, domain.CollectionReconciled, 200), nil).Once()
	suite.mockCollectionRepo.On("FindCollectionByID", ctx, int64(32)).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockCollectionRepo.On("UpdateCollectionStatus", ctx, int64(30), domain.CollectionVerified, suite.userID, "", mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockPublisher.On("Publish", ctx, mock.Anything).Once()

	resp, err := suite.service.BulkVerify(ctx, dto.BulkVerifyRequest{CollectionIDs: []int64{30, 31, 32}}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal([]int64{30}, resp.Verified)
	suite.Require().Len(resp.Failed, 2)
	suite.Equal(int64(31), resp.Failed[0].CollectionID)
	suite.Equal(int64(32), resp.Failed[1].CollectionID)
}

func (suite *CollectionServiceTestSuite) TestCreateDeposit_ExceedsBalance() {
	ctx := context.Background()
	balance := &domain.AgentBalance{AgentID: 42, CurrentBalance: decimal.NewFromInt(100)}

	suite.mockCollectionRepo.On("GetOrCreateBalance", ctx, int64(42)).Return(balance, nil).Once()

	_, err := suite.service.CreateDeposit(ctx, dto.CreateDepositRequest{
		AgentID: 42,
		Amount:  decimal.NewFromInt(150),
		Method:  "cash",
	}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockCollectionRepo.AssertNotCalled(suite.T(), "SaveDeposit", mock.Anything, mock.Anything)
}

func (suite *CollectionServiceTestSuite) TestCreateDeposit_WithinBalance() {
	ctx := context.Background()
	balance := &domain.AgentBalance{AgentID: 42, CurrentBalance: decimal.NewFromInt(350)}

	suite.mockCollectionRepo.On("GetOrCreateBalance", ctx, int64(42)).Return(balance, nil).Once()
	suite.mockCollectionRepo.On("SaveDeposit", ctx, mock.AnythingOfType("domain.AgentDeposit")).
		Run(func(args mock.Arguments) {
			d := args.Get(1).(domain.AgentDeposit)
			suite.Equal(domain.DepositPending, d.Status)
			suite.Equal("bank_transfer", d.Method)
		}).
		Return(&domain.AgentDeposit{ID: 1, AgentID: 42, Amount: decimal.NewFromInt(200), Status: domain.DepositPending}, nil).Once()

	saved, err := suite.service.CreateDeposit(ctx, dto.CreateDepositRequest{
		AgentID: 42,
		Amount:  decimal.NewFromInt(200),
		Method:  "bank_transfer",
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(int64(1), saved.ID)
}

func (suite *CollectionServiceTestSuite) TestRejectDeposit_StampsRejectionNotVerification() {
	ctx := context.Background()
	rejectedAt := time.Now().UTC()
	actor := suite.userID

	suite.mockCollectionRepo.On("RejectDeposit", ctx, int64(9), actor, mock.AnythingOfType("time.Time")).
		Return(&domain.AgentDeposit{
			ID:         9,
			AgentID:    42,
			Amount:     decimal.NewFromInt(200),
			Status:     domain.DepositRejected,
			RejectedAt: &rejectedAt,
			RejectedBy: &actor,
		}, nil).Once()

	deposit, err := suite.service.RejectDeposit(ctx, 9, actor)

	suite.Require().NoError(err)
	suite.Equal(domain.DepositRejected, deposit.Status)
	suite.Require().NotNil(deposit.RejectedBy)
	suite.Equal(actor, *deposit.RejectedBy)
	suite.Nil(deposit.VerifiedAt)
	suite.Nil(deposit.VerifiedBy)
	suite.mockCollectionRepo.AssertExpectations(suite.T())
}

func (suite *CollectionServiceTestSuite) TestAgingReport_Buckets() {
	ctx := context.Background()
	now := time.Now().UTC()

	outstanding := []domain.AgentCollection{
		{ID: 1, AgentID: 7, Amount: decimal.NewFromInt(100), Status: domain.CollectionDraft, CollectionDate: now.AddDate(0, 0, -2)},
		{ID: 2, AgentID: 7, Amount: decimal.NewFromInt(200), Status: domain.CollectionVerified, CollectionDate: now.AddDate(0, 0, -10)},
		{ID: 3, AgentID: 7, Amount: decimal.NewFromInt(50), Status: domain.CollectionApproved, CollectionDate: now.AddDate(0, 0, -45)},
		{ID: 4, AgentID: 9, Amount: decimal.NewFromInt(500), Status: domain.CollectionDraft, CollectionDate: now.AddDate(0, 0, -20)},
	}
	suite.mockCollectionRepo.On("ListOutstandingCollections", ctx).Return(outstanding, nil).Once()

	reports, err := suite.service.AgingReport(ctx)

	suite.Require().NoError(err)
	suite.Require().Len(reports, 2)

	// Sorted by total outstanding, largest first.
	suite.Equal(int64(9), reports[0].AgentID)
	suite.True(reports[0].Buckets[domain.AgingBucket15To30].Equal(decimal.NewFromInt(500)))

	agent7 := reports[1]
	suite.Equal(int64(7), agent7.AgentID)
	suite.True(agent7.TotalOutstanding.Equal(decimal.NewFromInt(350)))
	suite.True(agent7.Buckets[domain.AgingBucket0To7].Equal(decimal.NewFromInt(100)))
	suite.True(agent7.Buckets[domain.AgingBucket8To14].Equal(decimal.NewFromInt(200)))
	suite.True(agent7.Buckets[domain.AgingBucket30Plus].Equal(decimal.NewFromInt(50)))
	suite.True(agent7.OldestCollection.Equal(now.AddDate(0, 0, -45)))
}

func TestCollectionService(t *testing.T) {
	suite.Run(t, new(CollectionServiceTestSuite))
}

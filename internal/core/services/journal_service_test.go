package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/apperrors"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
	portssvc "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/services"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/services"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/dto"
)

type JournalServiceTestSuite struct {
	suite.Suite
	mockJournalRepo *MockJournalRepository
	mockAccountRepo *MockAccountRepository
	service         portssvc.JournalSvcFacade
	cashAccount     domain.Account
	revenueAccount  domain.Account
	userID          string
}

func (suite *JournalServiceTestSuite) SetupTest() {
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewJournalService(suite.mockJournalRepo, suite.mockAccountRepo)

	suite.userID = uuid.NewString()
	suite.cashAccount = domain.Account{
		Code:          "1010",
		Name:          "Cash in Hand",
		AccountType:   domain.Asset,
		NormalBalance: domain.DebitNormal,
		IsActive:      true,
	}
	suite.revenueAccount = domain.Account{
		Code:          "4010",
		Name:          "Product Revenue",
		AccountType:   domain.Revenue,
		NormalBalance: domain.CreditNormal,
		IsActive:      true,
	}
}

func (suite *JournalServiceTestSuite) accountsMap() map[string]domain.Account {
	return map[string]domain.Account{
		suite.cashAccount.Code:    suite.cashAccount,
		suite.revenueAccount.Code: suite.revenueAccount,
	}
}

func (suite *JournalServiceTestSuite) simpleRequest(amount decimal.Decimal) dto.PostEntryRequest {
	return dto.PostEntryRequest{
		EntryDate:   time.Now().UTC(),
		Description: "Cash sale",
		Lines: []dto.EntryLineRequest{
			{AccountCode: suite.cashAccount.Code, DebitAmount: amount},
			{AccountCode: suite.revenueAccount.Code, CreditAmount: amount},
		},
	}
}

func (suite *JournalServiceTestSuite) TestPostEntry_Success() {
	ctx := context.Background()
	amount := decimal.NewFromFloat(125.50)
	req := suite.simpleRequest(amount)

	suite.mockAccountRepo.On("FindAccountsByCodes", ctx, []string{"1010", "4010"}).Return(suite.accountsMap(), nil).Once()
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.AccountTransaction"), mock.AnythingOfType("map[string]decimal.Decimal")).
		Run(func(args mock.Arguments) {
			changes := args.Get(3).(map[string]decimal.Decimal)
			// Debit raises the debit-normal cash account, credit raises the
			// credit-normal revenue account.
			suite.True(changes["1010"].Equal(amount))
			suite.True(changes["4010"].Equal(amount))
		}).
		Return(&domain.JournalEntry{EntryID: "e1", EntryNumber: "JE-20250101-00001", Status: domain.Posted}, nil).Once()

	entry, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	suite.Equal("JE-20250101-00001", entry.EntryNumber)
	suite.Len(entry.Transactions, 2)

	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestPostEntry_IdempotentBySource() {
	ctx := context.Background()
	req := suite.simpleRequest(decimal.NewFromInt(100))
	req.SourceType = domain.SourceOrderDelivered
	req.SourceID = 42

	existing := &domain.JournalEntry{EntryID: "existing", SourceType: domain.SourceOrderDelivered, SourceID: 42}
	suite.mockJournalRepo.On("FindEntryBySource", ctx, domain.SourceOrderDelivered, int64(42)).Return(existing, nil).Once()

	entry, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("existing", entry.EntryID)
	// No save must happen for a duplicate post.
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestPostEntry_Unbalanced() {
	ctx := context.Background()
	req := dto.PostEntryRequest{
		EntryDate:   time.Now().UTC(),
		Description: "Unbalanced",
		Lines: []dto.EntryLineRequest{
			{AccountCode: "1010", DebitAmount: decimal.NewFromInt(100)},
			{AccountCode: "4010", CreditAmount: decimal.NewFromInt(90)},
		},
	}

	_, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrUnbalancedEntry)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestPostEntry_WithinTolerance() {
	// A one-cent rounding difference is accepted.
	ctx := context.Background()
	req := dto.PostEntryRequest{
		EntryDate:   time.Now().UTC(),
		Description: "Rounding",
		Lines: []dto.EntryLineRequest{
			{AccountCode: "1010", DebitAmount: decimal.NewFromFloat(100.00)},
			{AccountCode: "4010", CreditAmount: decimal.NewFromFloat(99.99)},
		},
	}

	suite.mockAccountRepo.On("FindAccountsByCodes", ctx, []string{"1010", "4010"}).Return(suite.accountsMap(), nil).Once()
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.JournalEntry{EntryID: "e1"}, nil).Once()

	_, err := suite.service.PostEntry(ctx, req, suite.userID)
	suite.Require().NoError(err)
}

func (suite *JournalServiceTestSuite) TestPostEntry_BothSidesOnOneLine() {
	ctx := context.Background()
	req := dto.PostEntryRequest{
		EntryDate:   time.Now().UTC(),
		Description: "Bad line",
		Lines: []dto.EntryLineRequest{
			{AccountCode: "1010", DebitAmount: decimal.NewFromInt(50), CreditAmount: decimal.NewFromInt(50)},
			{AccountCode: "4010", CreditAmount: decimal.NewFromInt(0)},
		},
	}

	_, err := suite.service.PostEntry(ctx, req, suite.userID)
	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrUnbalancedEntry)
}

func (suite *JournalServiceTestSuite) TestPostEntry_UnknownAccount() {
	ctx := context.Background()
	req := suite.simpleRequest(decimal.NewFromInt(100))

	// Only the cash account exists.
	partial := map[string]domain.Account{suite.cashAccount.Code: suite.cashAccount}
	suite.mockAccountRepo.On("FindAccountsByCodes", ctx, []string{"1010", "4010"}).Return(partial, nil).Once()

	_, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrUnknownAccount)
}

func (suite *JournalServiceTestSuite) TestPostEntry_InactiveAccount() {
	ctx := context.Background()
	req := suite.simpleRequest(decimal.NewFromInt(100))

	inactive := suite.revenueAccount
	inactive.IsActive = false
	accounts := map[string]domain.Account{
		suite.cashAccount.Code: suite.cashAccount,
		inactive.Code:          inactive,
	}
	suite.mockAccountRepo.On("FindAccountsByCodes", ctx, []string{"1010", "4010"}).Return(accounts, nil).Once()

	_, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrUnknownAccount)
}

func (suite *JournalServiceTestSuite) TestReverseEntry_Success() {
	ctx := context.Background()
	originalID := uuid.NewString()
	original := &domain.JournalEntry{
		EntryID:     originalID,
		EntryNumber: "JE-20250101-00007",
		Description: "Cash sale",
		SourceType:  domain.SourceOrderDelivered,
		SourceID:    7,
		Status:      domain.Posted,
	}
	amount := decimal.NewFromInt(200)
	originalTxns := []domain.AccountTransaction{
		{TransactionID: uuid.NewString(), EntryID: originalID, AccountCode: "1010", DebitAmount: amount},
		{TransactionID: uuid.NewString(), EntryID: originalID, AccountCode: "4010", CreditAmount: amount},
	}

	suite.mockJournalRepo.On("FindEntryByID", ctx, originalID).Return(original, nil).Once()
	suite.mockJournalRepo.On("FindTransactionsByEntryID", ctx, originalID).Return(originalTxns, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByCodes", ctx, []string{"1010", "4010"}).Return(suite.accountsMap(), nil).Once()

	suite.mockJournalRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.AccountTransaction"), mock.AnythingOfType("map[string]decimal.Decimal")).
		Run(func(args mock.Arguments) {
			entry := args.Get(1).(domain.JournalEntry)
			txns := args.Get(2).([]domain.AccountTransaction)
			changes := args.Get(3).(map[string]decimal.Decimal)

			suite.Equal(domain.SourceReversal, entry.SourceType)
			suite.Require().NotNil(entry.OriginalEntryID)
			suite.Equal(originalID, *entry.OriginalEntryID)

			// Debits and credits swapped.
			suite.True(txns[0].CreditAmount.Equal(amount))
			suite.True(txns[1].DebitAmount.Equal(amount))

			// Balance deltas fully negate the original posting.
			suite.True(changes["1010"].Equal(amount.Neg()))
			suite.True(changes["4010"].Equal(amount.Neg()))
		}).
		Return(&domain.JournalEntry{EntryID: "rev1", Status: domain.Posted}, nil).Once()
	suite.mockJournalRepo.On("UpdateEntryStatusAndLinks", ctx, originalID, domain.Reversed, mock.AnythingOfType("*string"), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	reversal, err := suite.service.ReverseEntry(ctx, originalID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("rev1", reversal.EntryID)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestReverseEntry_AlreadyReversed() {
	ctx := context.Background()
	entryID := uuid.NewString()
	suite.mockJournalRepo.On("FindEntryByID", ctx, entryID).
		Return(&domain.JournalEntry{EntryID: entryID, Status: domain.Reversed}, nil).Once()

	_, err := suite.service.ReverseEntry(ctx, entryID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAlreadyReversed)
}

func (suite *JournalServiceTestSuite) TestReverseEntry_ReversalOfReversal() {
	ctx := context.Background()
	entryID := uuid.NewString()
	origID := uuid.NewString()
	suite.mockJournalRepo.On("FindEntryByID", ctx, entryID).
		Return(&domain.JournalEntry{EntryID: entryID, Status: domain.Posted, OriginalEntryID: &origID}, nil).Once()

	_, err := suite.service.ReverseEntry(ctx, entryID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrReversalOfReversal)
}

func (suite *JournalServiceTestSuite) TestGetEntryByID_NotFound() {
	ctx := context.Background()
	suite.mockJournalRepo.On("FindEntryByID", ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetEntryByID(ctx, "missing")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestJournalService(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}

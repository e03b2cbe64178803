package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
	portssvc "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/services"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/services"
)

type ReconciliationServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockLedgerRepo  *MockLedgerRepository
	mockPublisher   *MockEventPublisher
	service         portssvc.ReconciliationSvcFacade
}

func (suite *ReconciliationServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockPublisher = new(MockEventPublisher)
	suite.service = services.NewReconciliationService(suite.mockAccountRepo, suite.mockLedgerRepo, suite.mockPublisher)
}

func (suite *ReconciliationServiceTestSuite) TestReconcile_CorrectsDrift() {
	ctx := context.Background()

	// Cached balance says 980 but the ledger sums to 1000.
	accounts := []domain.Account{
		{Code: "1010", NormalBalance: domain.DebitNormal, CurrentBalance: decimal.NewFromInt(980)},
		{Code: "4010", NormalBalance: domain.CreditNormal, CurrentBalance: decimal.NewFromInt(1000)},
	}
	summaries := []domain.AccountBalanceSummary{
		{AccountCode: "1010", DebitSum: decimal.NewFromInt(1200), CreditSum: decimal.NewFromInt(200)},
		{AccountCode: "4010", DebitSum: decimal.NewFromInt(0), CreditSum: decimal.NewFromInt(1000)},
	}

	suite.mockAccountRepo.On("ListAccounts", ctx).Return(accounts, nil).Once()
	suite.mockLedgerRepo.On("AggregateByAccount", ctx).Return(summaries, nil).Once()
	suite.mockAccountRepo.On("SetAccountBalance", ctx, "1010", mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.NewFromInt(1000))
	}), "system", mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockPublisher.On("Publish", ctx, mock.MatchedBy(func(e domain.Event) bool {
		return e.Type == domain.EventBalanceDriftCorrect && e.AccountCode == "1010"
	})).Once()

	report, err := suite.service.ReconcileBalances(ctx, false, "system")

	suite.Require().NoError(err)
	suite.Equal(2, report.CheckedAccounts)
	suite.Require().Len(report.Corrections, 1)
	suite.Equal("1010", report.Corrections[0].AccountCode)
	suite.True(report.Corrections[0].Before.Equal(decimal.NewFromInt(980)))
	suite.True(report.Corrections[0].After.Equal(decimal.NewFromInt(1000)))

	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockPublisher.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestReconcile_WithinToleranceUntouched() {
	ctx := context.Background()

	accounts := []domain.Account{
		{Code: "1010", NormalBalance: domain.DebitNormal, CurrentBalance: decimal.NewFromFloat(99.99)},
	}
	summaries := []domain.AccountBalanceSummary{
		{AccountCode: "1010", DebitSum: decimal.NewFromInt(100), CreditSum: decimal.Zero},
	}

	suite.mockAccountRepo.On("ListAccounts", ctx).Return(accounts, nil).Once()
	suite.mockLedgerRepo.On("AggregateByAccount", ctx).Return(summaries, nil).Once()

	report, err := suite.service.ReconcileBalances(ctx, false, "system")

	suite.Require().NoError(err)
	suite.Empty(report.Corrections)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SetAccountBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconciliationServiceTestSuite) TestReconcile_NoLedgerLinesMeansZero() {
	ctx := context.Background()

	// An account with a stale cache but no ledger lines reconciles to zero.
	accounts := []domain.Account{
		{Code: "2010", NormalBalance: domain.CreditNormal, CurrentBalance: decimal.NewFromInt(55)},
	}

	suite.mockAccountRepo.On("ListAccounts", ctx).Return(accounts, nil).Once()
	suite.mockLedgerRepo.On("AggregateByAccount", ctx).Return([]domain.AccountBalanceSummary{}, nil).Once()
	suite.mockAccountRepo.On("SetAccountBalance", ctx, "2010", mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.IsZero()
	}), "system", mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockPublisher.On("Publish", ctx, mock.AnythingOfType("domain.Event")).Once()

	report, err := suite.service.ReconcileBalances(ctx, false, "system")

	suite.Require().NoError(err)
	suite.Len(report.Corrections, 1)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestReconcile_DryRunWritesNothing() {
	ctx := context.Background()

	accounts := []domain.Account{
		{Code: "1010", NormalBalance: domain.DebitNormal, CurrentBalance: decimal.NewFromInt(500)},
	}
	summaries := []domain.AccountBalanceSummary{
		{AccountCode: "1010", DebitSum: decimal.NewFromInt(700), CreditSum: decimal.Zero},
	}

	suite.mockAccountRepo.On("ListAccounts", ctx).Return(accounts, nil).Once()
	suite.mockLedgerRepo.On("AggregateByAccount", ctx).Return(summaries, nil).Once()

	report, err := suite.service.ReconcileBalances(ctx, true, "system")

	suite.Require().NoError(err)
	suite.True(report.DryRun)
	suite.Len(report.Corrections, 1)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SetAccountBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockPublisher.AssertNotCalled(suite.T(), "Publish", mock.Anything, mock.Anything)
}

func (suite *ReconciliationServiceTestSuite) TestReconcile_SecondPassIsNoop() {
	ctx := context.Background()

	// After correction the cache matches the ledger, so a rerun finds nothing.
	accounts := []domain.Account{
		{Code: "1010", NormalBalance: domain.DebitNormal, CurrentBalance: decimal.NewFromInt(1000)},
	}
	summaries := []domain.AccountBalanceSummary{
		{AccountCode: "1010", DebitSum: decimal.NewFromInt(1200), CreditSum: decimal.NewFromInt(200)},
	}

	suite.mockAccountRepo.On("ListAccounts", ctx).Return(accounts, nil).Once()
	suite.mockLedgerRepo.On("AggregateByAccount", ctx).Return(summaries, nil).Once()

	report, err := suite.service.ReconcileBalances(ctx, false, "system")

	suite.Require().NoError(err)
	suite.Empty(report.Corrections)
}

func TestReconciliationService(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}

package services_test

import (
	"context"
	"testing"

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

type AccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	service         portssvc.AccountSvcFacade
	userID          string
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewAccountService(suite.mockAccountRepo)
	suite.userID = "admin-1"
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DerivesNormalBalance() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		Code:        "5060",
		Name:        "Packaging Expense",
		AccountType: domain.Expense,
	}

	suite.mockAccountRepo.On("FindAccountByCode", ctx, "5060").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).
		Run(func(args mock.Arguments) {
			acc := args.Get(1).(domain.Account)
			suite.Equal(domain.DebitNormal, acc.NormalBalance)
			suite.True(acc.CurrentBalance.IsZero())
			suite.True(acc.IsActive)
			suite.False(acc.IsSystem)
		}).
		Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.DebitNormal, account.NormalBalance)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_BadCodeFormat() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{Code: "50A0", Name: "Bad", AccountType: domain.Expense}

	_, err := suite.service.CreateAccount(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DuplicateCode() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{Code: "1010", Name: "Cash again", AccountType: domain.Asset}

	suite.mockAccountRepo.On("FindAccountByCode", ctx, "1010").
		Return(&domain.Account{Code: "1010"}, nil).Once()

	_, err := suite.service.CreateAccount(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_NameOnly() {
	ctx := context.Background()
	existing := &domain.Account{
		Code:          "1010",
		Name:          "Cash in Hand",
		AccountType:   domain.Asset,
		NormalBalance: domain.DebitNormal,
		IsActive:      true,
	}
	newName := "Cash on Hand"

	suite.mockAccountRepo.On("FindAccountByCode", ctx, "1010").Return(existing, nil).Once()
	suite.mockAccountRepo.On("UpdateAccount", ctx, mock.MatchedBy(func(acc domain.Account) bool {
		return acc.Code == "1010" && acc.Name == newName && acc.IsActive && acc.LastUpdatedBy == suite.userID
	})).Return(nil).Once()

	account, err := suite.service.UpdateAccount(ctx, "1010", dto.UpdateAccountRequest{Name: &newName}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(newName, account.Name)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount")
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SetAccountActive")
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_DeactivateGuardWritesNothing() {
	ctx := context.Background()
	existing := &domain.Account{
		Code:           "1020",
		Name:           "Accounts Receivable, Agents",
		AccountType:    domain.Asset,
		NormalBalance:  domain.DebitNormal,
		CurrentBalance: decimal.NewFromInt(120),
		IsActive:       true,
	}
	inactive := false

	suite.mockAccountRepo.On("FindAccountByCode", ctx, "1020").Return(existing, nil).Once()

	_, err := suite.service.UpdateAccount(ctx, "1020", dto.UpdateAccountRequest{IsActive: &inactive}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountHasBalance)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccount")
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SetAccountActive")
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_SystemAccount() {
	ctx := context.Background()
	suite.mockAccountRepo.On("FindAccountByCode", ctx, "1010").
		Return(&domain.Account{Code: "1010", IsSystem: true}, nil).Once()

	err := suite.service.DeactivateAccount(ctx, "1010", suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrSystemAccount)
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_NonZeroBalance() {
	ctx := context.Background()
	suite.mockAccountRepo.On("FindAccountByCode", ctx, "5060").
		Return(&domain.Account{Code: "5060", CurrentBalance: decimal.NewFromInt(10)}, nil).Once()

	err := suite.service.DeactivateAccount(ctx, "5060", suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountHasBalance)
}

func (suite *AccountServiceTestSuite) TestVerifyMappedAccounts_AllPresent() {
	ctx := context.Background()
	accounts := make(map[string]domain.Account)
	for _, code := range config.MappedAccountCodes() {
		accounts[code] = domain.Account{Code: code, IsActive: true}
	}
	suite.mockAccountRepo.On("FindAccountsByCodes", ctx, config.MappedAccountCodes()).Return(accounts, nil).Once()

	missing, err := suite.service.VerifyMappedAccounts(ctx)

	suite.Require().NoError(err)
	suite.Empty(missing)
}

func (suite *AccountServiceTestSuite) TestVerifyMappedAccounts_MissingAndInactive() {
	ctx := context.Background()
	accounts := make(map[string]domain.Account)
	for _, code := range config.MappedAccountCodes() {
		accounts[code] = domain.Account{Code: code, IsActive: true}
	}
	delete(accounts, config.AccountInventory)
	cogs := accounts[config.AccountCOGS]
	cogs.IsActive = false
	accounts[config.AccountCOGS] = cogs

	suite.mockAccountRepo.On("FindAccountsByCodes", ctx, config.MappedAccountCodes()).Return(accounts, nil).Once()

	missing, err := suite.service.VerifyMappedAccounts(ctx)

	suite.Require().NoError(err)
	suite.ElementsMatch([]string{config.AccountInventory, config.AccountCOGS}, missing)
}

func TestAccountService(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}

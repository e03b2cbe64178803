package services

import (
	"context"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/dto"
)

// AccountReaderSvc defines read operations for the chart of accounts
type AccountReaderSvc interface {
	// GetAccountByCode retrieves a specific account by its stable code.
	GetAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// ListAccounts retrieves the full chart of accounts ordered by code.
	ListAccounts(ctx context.Context) ([]domain.Account, error)

	// VerifyMappedAccounts checks that every account code the posting
	// workflows depend on exists and is active, returning the missing codes.
	VerifyMappedAccounts(ctx context.Context) ([]string, error)
}

// AccountWriterSvc defines administrative write operations for accounts
type AccountWriterSvc interface {
	// CreateAccount persists a new account after validating its code format
	// and deriving the normal balance from the account type.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// UpdateAccount updates an account's mutable details.
	UpdateAccount(ctx context.Context, code string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// DeactivateAccount marks an account as inactive. System accounts and
	// accounts with a non-zero balance cannot be deactivated.
	DeactivateAccount(ctx context.Context, code string, userID string) error
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}

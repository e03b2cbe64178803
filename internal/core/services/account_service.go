package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/apperrors"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
	portsrepo "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/repositories"
	portssvc "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/services"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/dto"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/middleware"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/platform/config"
)

var (
	ErrInvalidAccountType    = errors.New("unknown account type")
	ErrSystemAccount         = errors.New("system accounts cannot be deactivated")
	ErrAccountHasBalance     = errors.New("accounts with a non-zero balance cannot be deactivated")
	ErrMissingAccountMapping = errors.New("required GL account mapping is missing or inactive")
)

// accountService manages the chart of accounts.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount persists a new account. The normal balance is derived from
// the account type; a caller can never create a debit-normal revenue account.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := config.ValidateAccountCodeFormat(req.Code); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	normal, ok := domain.ExpectedNormalBalance(req.AccountType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAccountType, req.AccountType)
	}

	if existing, err := s.accountRepo.FindAccountByCode(ctx, req.Code); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: account code %s", apperrors.ErrDuplicate, req.Code)
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing account: %w", err)
	}

	now := time.Now().UTC()
	account := domain.Account{
		Code:           req.Code,
		Name:           req.Name,
		Description:    req.Description,
		AccountType:    req.AccountType,
		NormalBalance:  normal,
		CurrentBalance: decimal.Zero,
		IsActive:       true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save account", slog.String("error", err.Error()), slog.String("code", req.Code))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created", slog.String("code", account.Code), slog.String("type", string(account.AccountType)))
	return &account, nil
}

// GetAccountByCode retrieves a specific account by its stable code.
func (s *accountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", code, err)
	}
	return account, nil
}

// ListAccounts retrieves the full chart of accounts ordered by code.
func (s *accountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// UpdateAccount updates an account's mutable details. Code, account type
// and normal balance are immutable after creation.
func (s *accountService) UpdateAccount(ctx context.Context, code string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", code, err)
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	if req.IsActive != nil && *req.IsActive != account.IsActive {
		if !*req.IsActive {
			if err := s.checkDeactivatable(account); err != nil {
				return nil, err
			}
		}
		account.IsActive = *req.IsActive
	}

	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = userID
	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		logger.Error("Failed to update account", slog.String("error", err.Error()), slog.String("code", code))
		return nil, fmt.Errorf("failed to update account %s: %w", code, err)
	}

	return account, nil
}

// DeactivateAccount marks an account as inactive.
func (s *accountService) DeactivateAccount(ctx context.Context, code string, userID string) error {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to find account %s: %w", code, err)
	}
	if err := s.checkDeactivatable(account); err != nil {
		return err
	}
	if err := s.accountRepo.SetAccountActive(ctx, code, false, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to deactivate account %s: %w", code, err)
	}
	return nil
}

func (s *accountService) checkDeactivatable(account *domain.Account) error {
	if account.IsSystem {
		return fmt.Errorf("%w: %s", ErrSystemAccount, account.Code)
	}
	if !account.CurrentBalance.IsZero() {
		return fmt.Errorf("%w: %s holds %s", ErrAccountHasBalance, account.Code, account.CurrentBalance)
	}
	return nil
}

// VerifyMappedAccounts checks that every account code automated posting
// depends on exists and is active. Called at startup and exposed for
// operational checks.
func (s *accountService) VerifyMappedAccounts(ctx context.Context) ([]string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	required := config.MappedAccountCodes()
	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, required)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mapped accounts: %w", err)
	}

	var missing []string
	for _, code := range required {
		acc, found := accounts[code]
		if !found || !acc.IsActive {
			missing = append(missing, code)
		}
	}
	if len(missing) > 0 {
		logger.Warn("GL account mapping incomplete", slog.Any("missing", missing))
	}
	return missing, nil
}

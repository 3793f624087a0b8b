package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"account-ledger/internal/domain"
	"account-ledger/internal/errors"
	"account-ledger/internal/guard"
)

const registerAttempts = 5

// AccountService owns the account lifecycle: registration, status changes
// and the existence/activity checks the engine's callers rely on.
type AccountService struct {
	store             domain.LedgerStore
	guards            *guard.Guard
	guardTimeout      time.Duration
	minOpeningBalance decimal.Decimal
	newID             func() string
	logger            *slog.Logger
}

func NewAccountService(
	store domain.LedgerStore,
	guards *guard.Guard,
	guardTimeout time.Duration,
	minOpeningBalance decimal.Decimal,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		store:             store,
		guards:            guards,
		guardTimeout:      guardTimeout,
		minOpeningBalance: minOpeningBalance,
		newID:             randomAccountID,
		logger:            logger,
	}
}

func randomAccountID() string {
	return fmt.Sprintf("%010d", 1_000_000_000+rand.Int63n(9_000_000_000))
}

// Register opens an Active account with a freshly generated account number.
func (s *AccountService) Register(ctx context.Context, initialBalance decimal.Decimal) (*domain.Account, error) {
	s.logger.Info("Registering account", "initial_balance", initialBalance)

	if initialBalance.IsNegative() || !initialBalance.Equal(initialBalance.Truncate(domain.AmountScale)) {
		return nil, errors.ErrInvalidAmount
	}
	if initialBalance.LessThan(s.minOpeningBalance) {
		return nil, errors.ErrOpeningBalanceTooLow.WithDetails("minimum is " + s.minOpeningBalance.StringFixed(domain.AmountScale))
	}

	var lastErr error
	for i := 0; i < registerAttempts; i++ {
		account := &domain.Account{
			ID:      s.newID(),
			Balance: initialBalance,
			Status:  domain.StatusActive,
		}

		err := s.store.CreateAccount(ctx, account)
		if err == nil {
			s.logger.Info("Account registered", "account_id", account.ID)
			return account, nil
		}
		if !stderrors.Is(err, errors.ErrDuplicateAccount) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (s *AccountService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	if !domain.ValidAccountID(accountID) {
		return nil, errors.ErrInvalidAccountID
	}
	return s.store.GetAccount(ctx, accountID)
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	return s.store.ListAccounts(ctx)
}

// SetStatus activates or deactivates an account. It serializes with balance
// mutations on the same account through the account's guard.
func (s *AccountService) SetStatus(ctx context.Context, accountID string, status domain.Status) (*domain.Account, error) {
	if !status.Valid() {
		return nil, errors.ErrInvalidStatus
	}
	if !domain.ValidAccountID(accountID) {
		return nil, errors.ErrInvalidAccountID
	}

	h, err := acquireGuards(ctx, s.guards, s.guardTimeout, nil, "status", accountID)
	if err != nil {
		return nil, err
	}
	defer h.Release()

	if err := s.store.UpdateStatus(ctx, accountID, status); err != nil {
		return nil, err
	}

	s.logger.Info("Account status changed", "account_id", accountID, "status", status)
	return s.store.GetAccount(ctx, accountID)
}

func (s *AccountService) AccountExists(ctx context.Context, accountID string) (bool, error) {
	_, err := s.store.GetAccount(ctx, accountID)
	if err == nil {
		return true, nil
	}
	if stderrors.Is(err, errors.ErrAccountNotFound) {
		return false, nil
	}
	return false, err
}

func (s *AccountService) IsActive(ctx context.Context, accountID string) (bool, error) {
	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		if stderrors.Is(err, errors.ErrAccountNotFound) {
			return false, nil
		}
		return false, err
	}
	return account.IsActive(), nil
}

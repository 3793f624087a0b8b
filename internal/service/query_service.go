package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"account-ledger/internal/domain"
)

// QueryService answers balance and history lookups straight from the store
// without taking any guard.
type QueryService struct {
	store  domain.LedgerStore
	logger *slog.Logger
}

func NewQueryService(store domain.LedgerStore, logger *slog.Logger) *QueryService {
	return &QueryService{
		store:  store,
		logger: logger,
	}
}

func (s *QueryService) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// GetHistory returns the account's entries oldest first. Each call reads the
// log afresh.
func (s *QueryService) GetHistory(ctx context.Context, accountID string) ([]*domain.Entry, error) {
	if _, err := s.store.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}

	entries, err := s.store.ListEntries(ctx, accountID)
	if err != nil {
		s.logger.Error("Failed to read history", "account_id", accountID, "error", err)
		return nil, err
	}
	return entries, nil
}

package service

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"account-ledger/internal/domain"
	"account-ledger/internal/errors"
	"account-ledger/internal/guard"
	"account-ledger/internal/metrics"
)

// TransactionService applies credits, debits and transfers. Every operation
// re-reads the accounts it touches while holding their guards, and the
// balance writes and log entries of one operation go to the store as a
// single commit before the guards are released.
type TransactionService struct {
	store        domain.LedgerStore
	guards       *guard.Guard
	metrics      *metrics.Recorder
	guardTimeout time.Duration
	logger       *slog.Logger
}

func NewTransactionService(
	store domain.LedgerStore,
	guards *guard.Guard,
	recorder *metrics.Recorder,
	guardTimeout time.Duration,
	logger *slog.Logger,
) *TransactionService {
	return &TransactionService{
		store:        store,
		guards:       guards,
		metrics:      recorder,
		guardTimeout: guardTimeout,
		logger:       logger,
	}
}

type BalanceResult struct {
	AccountID     string          `json:"account_id"`
	Balance       decimal.Decimal `json:"balance"`
	CorrelationID uuid.UUID       `json:"correlation_id"`
}

type TransferResult struct {
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	FromBalance   decimal.Decimal `json:"from_balance"`
	ToBalance     decimal.Decimal `json:"to_balance"`
	CorrelationID uuid.UUID       `json:"correlation_id"`
}

func (s *TransactionService) Credit(ctx context.Context, accountID string, amount decimal.Decimal) (result *BalanceResult, err error) {
	defer func() { s.observe("credit", err) }()

	s.logger.Info("Processing credit", "account_id", accountID, "amount", amount)

	if !domain.ValidAmount(amount) {
		return nil, errors.ErrInvalidAmount
	}

	h, err := s.acquire(ctx, "credit", accountID)
	if err != nil {
		return nil, err
	}
	defer h.Release()

	account, err := s.activeAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	newBalance := account.Balance.Add(amount)
	correlationID := uuid.New()
	entry := &domain.Entry{
		AccountID:     accountID,
		Kind:          domain.KindCredit,
		Amount:        amount,
		CorrelationID: correlationID,
	}

	if err := s.commit(ctx, []domain.BalanceChange{{AccountID: accountID, NewBalance: newBalance}}, entry); err != nil {
		return nil, err
	}

	s.logger.Info("Credit applied", "account_id", accountID, "balance", newBalance, "correlation_id", correlationID)
	return &BalanceResult{AccountID: accountID, Balance: newBalance, CorrelationID: correlationID}, nil
}

func (s *TransactionService) Debit(ctx context.Context, accountID string, amount decimal.Decimal) (result *BalanceResult, err error) {
	defer func() { s.observe("debit", err) }()

	s.logger.Info("Processing debit", "account_id", accountID, "amount", amount)

	if !domain.ValidAmount(amount) {
		return nil, errors.ErrInvalidAmount
	}

	h, err := s.acquire(ctx, "debit", accountID)
	if err != nil {
		return nil, err
	}
	defer h.Release()

	account, err := s.activeAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if account.Balance.LessThan(amount) {
		s.logger.Warn("Debit rejected", "account_id", accountID, "reason", errors.InsufficientFunds)
		return nil, errors.ErrInsufficientFunds
	}

	newBalance := account.Balance.Sub(amount)
	correlationID := uuid.New()
	entry := &domain.Entry{
		AccountID:     accountID,
		Kind:          domain.KindDebit,
		Amount:        amount,
		CorrelationID: correlationID,
	}

	if err := s.commit(ctx, []domain.BalanceChange{{AccountID: accountID, NewBalance: newBalance}}, entry); err != nil {
		return nil, err
	}

	s.logger.Info("Debit applied", "account_id", accountID, "balance", newBalance, "correlation_id", correlationID)
	return &BalanceResult{AccountID: accountID, Balance: newBalance, CorrelationID: correlationID}, nil
}

func (s *TransactionService) Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal) (result *TransferResult, err error) {
	defer func() { s.observe("transfer", err) }()

	s.logger.Info("Processing transfer",
		"from_account_id", fromID,
		"to_account_id", toID,
		"amount", amount)

	if fromID == toID {
		return nil, errors.ErrSameAccountTransfer
	}
	if !domain.ValidAmount(amount) {
		return nil, errors.ErrInvalidAmount
	}

	h, err := s.acquire(ctx, "transfer", fromID, toID)
	if err != nil {
		return nil, err
	}
	defer h.Release()

	from, err := s.activeAccount(ctx, fromID)
	if err != nil {
		return nil, err
	}
	to, err := s.activeAccount(ctx, toID)
	if err != nil {
		return nil, err
	}

	if from.Balance.LessThan(amount) {
		s.logger.Warn("Transfer rejected", "from_account_id", fromID, "reason", errors.InsufficientFunds)
		return nil, errors.ErrInsufficientFunds
	}

	fromBalance := from.Balance.Sub(amount)
	toBalance := to.Balance.Add(amount)
	correlationID := uuid.New()

	changes := []domain.BalanceChange{
		{AccountID: fromID, NewBalance: fromBalance},
		{AccountID: toID, NewBalance: toBalance},
	}
	debit := &domain.Entry{AccountID: fromID, Kind: domain.KindDebit, Amount: amount, CorrelationID: correlationID}
	credit := &domain.Entry{AccountID: toID, Kind: domain.KindCredit, Amount: amount, CorrelationID: correlationID}

	if err := s.commit(ctx, changes, debit, credit); err != nil {
		return nil, err
	}

	s.logger.Info("Transfer completed",
		"from_account_id", fromID,
		"to_account_id", toID,
		"correlation_id", correlationID)

	return &TransferResult{
		FromAccountID: fromID,
		ToAccountID:   toID,
		FromBalance:   fromBalance,
		ToBalance:     toBalance,
		CorrelationID: correlationID,
	}, nil
}

// acquire takes the guards for ids, bounded by the configured guard timeout.
func (s *TransactionService) acquire(ctx context.Context, operation string, ids ...string) (*guard.Handle, error) {
	return acquireGuards(ctx, s.guards, s.guardTimeout, s.metrics, operation, ids...)
}

func (s *TransactionService) activeAccount(ctx context.Context, id string) (*domain.Account, error) {
	account, err := s.store.GetAccount(ctx, id)
	if err != nil {
		if stderrors.Is(err, errors.ErrAccountNotFound) {
			s.logger.Warn("Account not found", "account_id", id)
		}
		return nil, err
	}
	if !account.IsActive() {
		s.logger.Warn("Account inactive", "account_id", id)
		return nil, errors.ErrInactiveAccount.WithDetails(id)
	}
	return account, nil
}

func (s *TransactionService) commit(ctx context.Context, changes []domain.BalanceChange, entries ...*domain.Entry) error {
	if err := s.store.Commit(ctx, changes, entries); err != nil {
		s.logger.Error("Ledger commit failed", "error", err)
		if stderrors.Is(err, errors.ErrStorageFailure) {
			return err
		}
		return errors.Storage("ledger commit failed", err)
	}
	return nil
}

func (s *TransactionService) observe(operation string, err error) {
	if err == nil {
		s.metrics.Observe(operation, "ok")
		return
	}
	s.metrics.Observe(operation, string(errors.From(err).Code))
}

func acquireGuards(
	ctx context.Context,
	guards *guard.Guard,
	timeout time.Duration,
	recorder *metrics.Recorder,
	operation string,
	ids ...string,
) (*guard.Handle, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	h, err := guards.Acquire(ctx, ids...)
	recorder.ObserveGuardWait(operation, time.Since(start))
	if err != nil {
		return nil, errors.ErrGuardTimeout.WithDetails(err.Error())
	}
	return h, nil
}

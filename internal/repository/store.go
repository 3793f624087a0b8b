package repository

import (
	"context"
	"database/sql"
	"log/slog"

	sq "github.com/Masterminds/squirrel"

	"account-ledger/internal/domain"
	"account-ledger/internal/errors"
)

// Store is the Postgres ledger store. Repositories obtained from a Store
// share its executor, so inside WithTransaction they all run on one sql.Tx.
type Store struct {
	db       DB
	executor SQLExecutor
	inTx     bool
	sb       sq.StatementBuilderType
	logger   *slog.Logger
}

var _ domain.LedgerStore = (*Store)(nil)

// NewStore creates a new Store instance
func NewStore(db DB, logger *slog.Logger) *Store {
	return &Store{
		db:       db,
		executor: db,
		sb:       sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		logger:   logger,
	}
}

func (s *Store) Account() *AccountRepository {
	return NewAccountRepository(s.executor, s.sb, s.logger)
}

func (s *Store) Entry() *EntryRepository {
	return NewEntryRepository(s.executor, s.sb, s.logger)
}

// WithTransaction executes a function within a database transaction
func (s *Store) WithTransaction(ctx context.Context, fn func(*Store) error) error {
	if s.inTx {
		return errors.NewAppError(errors.InternalError, "nested transactions are not supported")
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return errors.Storage("failed to begin transaction", err)
	}

	txStore := &Store{
		db:       s.db,
		executor: tx,
		inTx:     true,
		sb:       s.sb,
		logger:   s.logger,
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("Rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Storage("failed to commit transaction", err)
	}
	return nil
}

func (s *Store) CreateAccount(ctx context.Context, account *domain.Account) error {
	return s.Account().CreateAccount(ctx, account)
}

func (s *Store) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.Account().GetAccount(ctx, id)
}

func (s *Store) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	return s.Account().ListAccounts(ctx)
}

func (s *Store) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	return s.Account().UpdateStatus(ctx, id, status)
}

// Commit writes the balance changes and appends the entries in one
// database transaction. Entries get their sequence and timestamp filled in.
func (s *Store) Commit(ctx context.Context, changes []domain.BalanceChange, entries []*domain.Entry) error {
	return s.WithTransaction(ctx, func(tx *Store) error {
		for _, change := range changes {
			if err := tx.Account().UpdateAccountBalance(ctx, change.AccountID, change.NewBalance); err != nil {
				return err
			}
		}
		for _, entry := range entries {
			if err := tx.Entry().AppendEntry(ctx, entry); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) ListEntries(ctx context.Context, accountID string) ([]*domain.Entry, error) {
	return s.Entry().ListEntries(ctx, accountID)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

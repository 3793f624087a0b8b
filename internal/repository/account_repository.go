package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"account-ledger/internal/domain"
	"account-ledger/internal/errors"
)

var accountColumns = []string{"id", "balance", "status", "created_at", "updated_at"}

type AccountRepository struct {
	db     SQLExecutor
	sb     sq.StatementBuilderType
	logger *slog.Logger
}

func NewAccountRepository(db SQLExecutor, sb sq.StatementBuilderType, logger *slog.Logger) *AccountRepository {
	return &AccountRepository{
		db:     db,
		sb:     sb,
		logger: logger,
	}
}

func (r *AccountRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	now := time.Now().UTC()
	query, args, err := r.sb.
		Insert("accounts").
		Columns(accountColumns...).
		Values(account.ID, account.Balance.StringFixed(domain.AmountScale), string(account.Status), now, now).
		ToSql()
	if err != nil {
		return errors.NewAppError(errors.InternalError, "failed to build insert").WithDetails(err.Error())
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			r.logger.Warn("Duplicate account creation attempt", "account_id", account.ID)
			return errors.ErrDuplicateAccount
		}
		r.logger.Error("Failed to create account", "account_id", account.ID, "error", err)
		return errors.Storage("failed to create account", err)
	}

	account.CreatedAt = now
	account.UpdatedAt = now
	r.logger.Info("Account created", "account_id", account.ID)
	return nil
}

func (r *AccountRepository) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	query, args, err := r.sb.
		Select(accountColumns...).
		From("accounts").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to build select").WithDetails(err.Error())
	}

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.ErrAccountNotFound
		}
		r.logger.Error("Failed to get account", "account_id", id, "error", err)
		return nil, errors.Storage("failed to get account", err)
	}
	return account, nil
}

func (r *AccountRepository) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	query, args, err := r.sb.
		Select(accountColumns...).
		From("accounts").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to build select").WithDetails(err.Error())
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list accounts", "error", err)
		return nil, errors.Storage("failed to list accounts", err)
	}
	defer rows.Close()

	accounts := make([]*domain.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, errors.Storage("failed to scan account", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("failed to list accounts", err)
	}
	return accounts, nil
}

func (r *AccountRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	query, args, err := r.sb.
		Update("accounts").
		Set("status", string(status)).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return errors.NewAppError(errors.InternalError, "failed to build update").WithDetails(err.Error())
	}
	return r.execSingle(ctx, id, query, args, "failed to update account status")
}

func (r *AccountRepository) UpdateAccountBalance(ctx context.Context, id string, newBalance decimal.Decimal) error {
	query, args, err := r.sb.
		Update("accounts").
		Set("balance", newBalance.StringFixed(domain.AmountScale)).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return errors.NewAppError(errors.InternalError, "failed to build update").WithDetails(err.Error())
	}
	return r.execSingle(ctx, id, query, args, "failed to update account balance")
}

func (r *AccountRepository) execSingle(ctx context.Context, id, query string, args []interface{}, msg string) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error(msg, "account_id", id, "error", err)
		return errors.Storage(msg, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.Storage("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		r.logger.Warn("No account found to update", "account_id", id)
		return errors.ErrAccountNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var account domain.Account
	var balanceStr, status string

	if err := row.Scan(&account.ID, &balanceStr, &status, &account.CreatedAt, &account.UpdatedAt); err != nil {
		return nil, err
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, err
	}
	account.Balance = balance
	account.Status = domain.Status(status)
	return &account, nil
}

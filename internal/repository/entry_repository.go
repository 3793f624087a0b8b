package repository

import (
	"context"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"account-ledger/internal/domain"
	"account-ledger/internal/errors"
)

type EntryRepository struct {
	db     SQLExecutor
	sb     sq.StatementBuilderType
	logger *slog.Logger
}

func NewEntryRepository(db SQLExecutor, sb sq.StatementBuilderType, logger *slog.Logger) *EntryRepository {
	return &EntryRepository{
		db:     db,
		sb:     sb,
		logger: logger,
	}
}

// AppendEntry inserts the entry and fills in the sequence assigned by the database.
func (r *EntryRepository) AppendEntry(ctx context.Context, entry *domain.Entry) error {
	now := time.Now().UTC()
	query, args, err := r.sb.
		Insert("ledger_entries").
		Columns("account_id", "kind", "amount", "correlation_id", "created_at").
		Values(entry.AccountID, string(entry.Kind), entry.Amount.StringFixed(domain.AmountScale), entry.CorrelationID, now).
		Suffix("RETURNING sequence").
		ToSql()
	if err != nil {
		return errors.NewAppError(errors.InternalError, "failed to build insert").WithDetails(err.Error())
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&entry.Sequence); err != nil {
		r.logger.Error("Failed to append entry",
			"account_id", entry.AccountID,
			"kind", entry.Kind,
			"correlation_id", entry.CorrelationID,
			"error", err)
		return errors.Storage("failed to append entry", err)
	}

	entry.CreatedAt = now
	return nil
}

func (r *EntryRepository) ListEntries(ctx context.Context, accountID string) ([]*domain.Entry, error) {
	query, args, err := r.sb.
		Select("sequence", "account_id", "kind", "amount", "correlation_id", "created_at").
		From("ledger_entries").
		Where(sq.Eq{"account_id": accountID}).
		OrderBy("sequence ASC").
		ToSql()
	if err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to build select").WithDetails(err.Error())
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list entries", "account_id", accountID, "error", err)
		return nil, errors.Storage("failed to list entries", err)
	}
	defer rows.Close()

	entries := make([]*domain.Entry, 0)
	for rows.Next() {
		var entry domain.Entry
		var kind, amountStr string
		var correlationID uuid.UUID

		if err := rows.Scan(&entry.Sequence, &entry.AccountID, &kind, &amountStr, &correlationID, &entry.CreatedAt); err != nil {
			return nil, errors.Storage("failed to scan entry", err)
		}

		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, errors.Storage("failed to parse amount", err)
		}

		entry.Kind = domain.Kind(kind)
		entry.Amount = amount
		entry.CorrelationID = correlationID
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("failed to list entries", err)
	}
	return entries, nil
}

package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind is the direction of a transaction entry.
type Kind string

const (
	KindCredit Kind = "Credit"
	KindDebit  Kind = "Debit"
)

// Entry is one immutable line of the transaction log. Sequence is assigned by
// the store at commit time and is strictly increasing across the ledger.
type Entry struct {
	Sequence      int64           `json:"sequence"`
	AccountID     string          `json:"account_id"`
	Kind          Kind            `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	CorrelationID uuid.UUID       `json:"correlation_id"`
	CreatedAt     time.Time       `json:"timestamp"`
}

// BalanceChange is an account write paired with the entries in the same commit.
type BalanceChange struct {
	AccountID  string
	NewBalance decimal.Decimal
}

// LedgerStore is the durable owner of accounts and the transaction log.
// Commit applies every balance change and appends every entry as one atomic
// unit: either all of it becomes visible or none of it does.
type LedgerStore interface {
	AccountRepository
	Commit(ctx context.Context, changes []BalanceChange, entries []*Entry) error
	ListEntries(ctx context.Context, accountID string) ([]*Entry, error)
	Ping(ctx context.Context) error
}

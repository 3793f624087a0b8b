package domain

import (
	"context"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an account. Mutations require Active.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

var accountIDPattern = regexp.MustCompile(`^[0-9]{10}$`)

// ValidAccountID reports whether id is a 10-digit numeric account number.
func ValidAccountID(id string) bool {
	return accountIDPattern.MatchString(id)
}

type Account struct {
	ID        string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
	Status    Status          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// AccountRepository holds account records. UpdateStatus must only be called
// while the caller holds the account's guard.
type AccountRepository interface {
	CreateAccount(ctx context.Context, account *Account) error
	GetAccount(ctx context.Context, id string) (*Account, error)
	ListAccounts(ctx context.Context) ([]*Account, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}

package repository

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"account-ledger/internal/domain"
	"account-ledger/internal/errors"
)

// MemoryStore is a process-local LedgerStore. Commit is validated in full
// before anything is applied, so a rejected commit leaves no trace. Reads
// return copies and never observe a half-applied commit.
type MemoryStore struct {
	mu        sync.RWMutex
	accounts  map[string]*domain.Account
	entries   []*domain.Entry
	byAccount map[string][]int
	sequence  int64
	logger    *slog.Logger
	now       func() time.Time
}

var _ domain.LedgerStore = (*MemoryStore)(nil)

func NewMemoryStore(logger *slog.Logger) *MemoryStore {
	return &MemoryStore{
		accounts:  make(map[string]*domain.Account),
		byAccount: make(map[string][]int),
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryStore) CreateAccount(_ context.Context, account *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[account.ID]; ok {
		m.logger.Warn("Duplicate account creation attempt", "account_id", account.ID)
		return errors.ErrDuplicateAccount
	}

	now := m.now()
	account.CreatedAt = now
	account.UpdatedAt = now
	cp := *account
	m.accounts[account.ID] = &cp
	m.logger.Info("Account created", "account_id", account.ID)
	return nil
}

func (m *MemoryStore) GetAccount(_ context.Context, id string) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[id]
	if !ok {
		return nil, errors.ErrAccountNotFound
	}
	cp := *account
	return &cp, nil
}

func (m *MemoryStore) ListAccounts(_ context.Context) ([]*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.Account, 0, len(m.accounts))
	for _, account := range m.accounts {
		cp := *account
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) UpdateStatus(_ context.Context, id string, status domain.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[id]
	if !ok {
		return errors.ErrAccountNotFound
	}
	account.Status = status
	account.UpdatedAt = m.now()
	return nil
}

func (m *MemoryStore) Commit(ctx context.Context, changes []domain.BalanceChange, entries []*domain.Entry) error {
	if err := ctx.Err(); err != nil {
		return errors.Storage("commit cancelled", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, change := range changes {
		if _, ok := m.accounts[change.AccountID]; !ok {
			return errors.ErrAccountNotFound.WithDetails(change.AccountID)
		}
		if change.NewBalance.IsNegative() {
			return errors.Storage("negative balance rejected", nil).WithDetails(change.AccountID)
		}
	}
	for _, entry := range entries {
		if _, ok := m.accounts[entry.AccountID]; !ok {
			return errors.ErrAccountNotFound.WithDetails(entry.AccountID)
		}
	}

	now := m.now()
	for _, change := range changes {
		account := m.accounts[change.AccountID]
		account.Balance = change.NewBalance
		account.UpdatedAt = now
	}
	for _, entry := range entries {
		m.sequence++
		entry.Sequence = m.sequence
		entry.CreatedAt = now
		cp := *entry
		m.byAccount[entry.AccountID] = append(m.byAccount[entry.AccountID], len(m.entries))
		m.entries = append(m.entries, &cp)
	}
	return nil
}

func (m *MemoryStore) ListEntries(_ context.Context, accountID string) ([]*domain.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx := m.byAccount[accountID]
	out := make([]*domain.Entry, 0, len(idx))
	for _, i := range idx {
		cp := *m.entries[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

package memory

import (
	"context"
	"sync"

	"github.com/iho/transferledger/internal/domain"
)

// AccountDirectory is an in-memory usecase.AccountResolver.
type AccountDirectory struct {
	mu       sync.RWMutex
	byNumber map[string]*domain.Account
}

// NewAccountDirectory creates a directory holding accounts.
func NewAccountDirectory(accounts ...*domain.Account) *AccountDirectory {
	d := &AccountDirectory{byNumber: make(map[string]*domain.Account)}
	for _, a := range accounts {
		d.Add(a)
	}

	return d
}

// Add registers or replaces an account.
func (d *AccountDirectory) Add(account *domain.Account) {
	d.mu.Lock()
	defer d.mu.Unlock()

	acc := *account
	d.byNumber[acc.Number] = &acc
}

// ResolveAccount returns the account with number.
func (d *AccountDirectory) ResolveAccount(ctx context.Context, number string) (*domain.Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	acc, ok := d.byNumber[number]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	c := *acc
	return &c, nil
}

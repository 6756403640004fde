package store

import (
	"context"
	"sync"
	"time"

	"github.com/fairabc/apiserver/types"
)

// MemoryAccountRepository is an in-memory account store implementing
// the same contract as AccountRepository, including email uniqueness.
// It backs unit tests that need persistence without a database.
type MemoryAccountRepository struct {
	mu      sync.Mutex
	nextID  int
	byID    map[int]types.Account
	byEmail map[string]int
}

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{
		nextID:  1,
		byID:    make(map[int]types.Account),
		byEmail: make(map[string]int),
	}
}

func (r *MemoryAccountRepository) GetByID(ctx context.Context, id int) (types.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.byID[id]
	if !ok {
		return types.Account{}, ErrNotFound
	}
	return account, nil
}

func (r *MemoryAccountRepository) GetByEmail(ctx context.Context, email string) (types.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[email]
	if !ok {
		return types.Account{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryAccountRepository) Create(ctx context.Context, account types.Account) (types.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[account.Email]; exists {
		return types.Account{}, ErrDuplicateEmail
	}

	now := time.Now()
	account.ID = r.nextID
	account.CreatedAt = now
	account.UpdatedAt = now
	r.nextID++
	r.byID[account.ID] = account
	r.byEmail[account.Email] = account.ID
	return account, nil
}

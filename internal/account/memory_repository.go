package account

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use the PostgreSQL
// implementation.
type InMemoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

// NewInMemoryRepository creates a new in-memory account repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{accounts: make(map[string]*Account)}
}

// Get retrieves an account by ID.
func (r *InMemoryRepository) Get(_ context.Context, accountID string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[accountID]
	if !ok {
		return nil, ErrAccountNotFound
	}

	return copyAccount(account), nil
}

// Upsert inserts the account or updates it in place, keeping the stored
// refresh token when the incoming one is nil.
func (r *InMemoryRepository) Upsert(_ context.Context, account *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	incoming := copyAccount(account)
	if existing, ok := r.accounts[account.ID]; ok {
		if incoming.RefreshToken == nil {
			incoming.RefreshToken = existing.RefreshToken
		}
		incoming.CreatedAt = existing.CreatedAt
	}

	r.accounts[account.ID] = incoming
	return nil
}

// UpdateCredentials replaces an account's access token and stamps the
// refresh time.
func (r *InMemoryRepository) UpdateCredentials(_ context.Context, accountID, accessToken string, refreshedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[accountID]
	if !ok {
		return ErrAccountNotFound
	}

	account.AccessToken = accessToken
	account.TokenRefreshedAt = refreshedAt
	account.UpdatedAt = refreshedAt
	return nil
}

// SetMusicAccess records the outcome of a music access probe.
func (r *InMemoryRepository) SetMusicAccess(_ context.Context, accountID string, hasAccess bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[accountID]
	if !ok {
		return ErrAccountNotFound
	}

	account.HasMusicAccess = hasAccess
	account.UpdatedAt = time.Now()
	return nil
}

// ListStaleCredentials returns accounts holding a refresh token whose access
// token predates the cutoff, oldest first.
func (r *InMemoryRepository) ListStaleCredentials(_ context.Context, cutoff time.Time, limit int) ([]*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stale []*Account
	for _, account := range r.accounts {
		if account.RefreshToken == nil {
			continue
		}
		if account.TokenRefreshedAt.Before(cutoff) {
			stale = append(stale, copyAccount(account))
		}
	}

	sort.Slice(stale, func(i, j int) bool {
		return stale[i].TokenRefreshedAt.Before(stale[j].TokenRefreshedAt)
	})

	if len(stale) > limit {
		stale = stale[:limit]
	}
	return stale, nil
}

// copyAccount creates a deep copy of an account.
func copyAccount(a *Account) *Account {
	if a == nil {
		return nil
	}

	accountCopy := *a
	if a.RefreshToken != nil {
		val := *a.RefreshToken
		accountCopy.RefreshToken = &val
	}
	return &accountCopy
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)

package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kidtunes/kidtunes/internal/account"
	"github.com/kidtunes/kidtunes/internal/identity/google"
	"github.com/kidtunes/kidtunes/internal/worker"
)

// fakeRefresher maps refresh tokens to outcomes.
type fakeRefresher struct {
	mu     sync.Mutex
	tokens map[string]string // refresh token -> new access token
	errs   map[string]error
	calls  int
}

func (f *fakeRefresher) Refresh(_ context.Context, refreshToken string) (*google.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if err, ok := f.errs[refreshToken]; ok {
		return nil, err
	}
	if access, ok := f.tokens[refreshToken]; ok {
		return &google.Token{AccessToken: access, ExpiresIn: 3600}, nil
	}
	return nil, errors.New("unknown refresh token")
}

func seedAccount(t *testing.T, accounts *account.InMemoryRepository, id, refreshToken string, refreshedAt time.Time) {
	t.Helper()

	acct := &account.Account{
		ID:               id,
		Email:            id + "@example.com",
		Name:             "Account " + id,
		AccessToken:      "old-access-" + id,
		TokenRefreshedAt: refreshedAt,
		CreatedAt:        refreshedAt,
		UpdatedAt:        refreshedAt,
	}
	if refreshToken != "" {
		acct.RefreshToken = &refreshToken
	}
	require.NoError(t, accounts.Upsert(context.Background(), acct))
}

func TestRefreshJob_Run(t *testing.T) {
	accounts := account.NewInMemoryRepository()
	refresher := &fakeRefresher{
		tokens: map[string]string{
			"rt-1": "new-access-1",
			"rt-2": "new-access-2",
		},
	}

	stale := time.Now().Add(-2 * time.Hour)
	fresh := time.Now()
	seedAccount(t, accounts, "acct1", "rt-1", stale)
	seedAccount(t, accounts, "acct2", "rt-2", stale)
	seedAccount(t, accounts, "acct3", "rt-3", fresh) // not stale
	seedAccount(t, accounts, "acct4", "", stale)     // no refresh token

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Accounts: accounts,
		Provider: refresher,
		Logger:   zerolog.Nop(),
	})

	result := job.Run(context.Background())

	assert.Equal(t, 2, result.Stale)
	assert.Equal(t, 2, result.Refreshed)
	assert.Equal(t, 0, result.Revoked)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 2, refresher.calls)

	refreshed, err := accounts.Get(context.Background(), "acct1")
	require.NoError(t, err)
	assert.Equal(t, "new-access-1", refreshed.AccessToken)

	untouched, err := accounts.Get(context.Background(), "acct3")
	require.NoError(t, err)
	assert.Equal(t, "old-access-acct3", untouched.AccessToken)
}

func TestRefreshJob_Run_RevokedToken(t *testing.T) {
	accounts := account.NewInMemoryRepository()
	refresher := &fakeRefresher{
		tokens: map[string]string{"rt-1": "new-access-1"},
		errs:   map[string]error{"rt-2": google.ErrExchangeRejected},
	}

	stale := time.Now().Add(-2 * time.Hour)
	seedAccount(t, accounts, "acct1", "rt-1", stale)
	seedAccount(t, accounts, "acct2", "rt-2", stale)

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Accounts: accounts,
		Provider: refresher,
		Logger:   zerolog.Nop(),
	})

	result := job.Run(context.Background())

	assert.Equal(t, 1, result.Refreshed)
	assert.Equal(t, 1, result.Revoked)
	assert.Equal(t, 0, result.Failed)

	// The revoked account keeps its old credentials.
	revoked, err := accounts.Get(context.Background(), "acct2")
	require.NoError(t, err)
	assert.Equal(t, "old-access-acct2", revoked.AccessToken)
}

func TestRefreshJob_Run_TransientFailure(t *testing.T) {
	accounts := account.NewInMemoryRepository()
	refresher := &fakeRefresher{
		errs: map[string]error{"rt-1": errors.New("connection reset")},
	}

	seedAccount(t, accounts, "acct1", "rt-1", time.Now().Add(-2*time.Hour))

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Accounts: accounts,
		Provider: refresher,
		Logger:   zerolog.Nop(),
	})

	result := job.Run(context.Background())

	assert.Equal(t, 0, result.Refreshed)
	assert.Equal(t, 1, result.Failed)
}

func TestRefreshJob_Run_BatchSize(t *testing.T) {
	accounts := account.NewInMemoryRepository()
	refresher := &fakeRefresher{
		tokens: map[string]string{"rt-1": "a", "rt-2": "b", "rt-3": "c"},
	}

	base := time.Now().Add(-3 * time.Hour)
	seedAccount(t, accounts, "acct1", "rt-1", base)
	seedAccount(t, accounts, "acct2", "rt-2", base.Add(time.Minute))
	seedAccount(t, accounts, "acct3", "rt-3", base.Add(2*time.Minute))

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:   worker.RefreshConfig{BatchSize: 2},
		Accounts: accounts,
		Provider: refresher,
		Logger:   zerolog.Nop(),
	})

	result := job.Run(context.Background())

	// Oldest two first; the third waits for the next run.
	assert.Equal(t, 2, result.Stale)
	assert.Equal(t, 2, result.Refreshed)
}

func TestRefreshJob_Metrics(t *testing.T) {
	accounts := account.NewInMemoryRepository()
	refresher := &fakeRefresher{tokens: map[string]string{"rt-1": "a"}}

	seedAccount(t, accounts, "acct1", "rt-1", time.Now().Add(-2*time.Hour))

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Accounts: accounts,
		Provider: refresher,
		Logger:   zerolog.Nop(),
	})

	job.Run(context.Background())
	job.Run(context.Background())

	metrics := job.Metrics()
	assert.Equal(t, int64(2), metrics.TotalRuns)
	assert.Equal(t, int64(1), metrics.AccountsRefreshed)
}

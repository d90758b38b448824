package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/kidtunes/kidtunes/internal/account"
	"github.com/kidtunes/kidtunes/internal/identity/google"
)

// TokenRefresher trades a refresh token for a fresh access token.
// Implemented by the Google client.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*google.Token, error)
}

// RefreshJob keeps stored provider credentials usable: it finds accounts
// whose access token is about to expire and refreshes each one with its
// stored refresh token.
type RefreshJob struct {
	config   RefreshConfig
	accounts account.Repository
	provider TokenRefresher
	logger   zerolog.Logger
	metrics  *RefreshMetrics
}

// RefreshMetrics tracks refresh job statistics across runs.
type RefreshMetrics struct {
	TotalRuns         int64
	AccountsRefreshed int64
	AccountsRevoked   int64
	AccountsFailed    int64
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config   RefreshConfig
	Accounts account.Repository
	Provider TokenRefresher
	Logger   zerolog.Logger
}

// NewRefreshJob creates a new credential refresh job.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	return &RefreshJob{
		config:   cfg.Config.withDefaults(),
		accounts: cfg.Accounts,
		provider: cfg.Provider,
		logger:   cfg.Logger,
		metrics:  &RefreshMetrics{},
	}
}

// RefreshResult contains the result of a refresh run.
type RefreshResult struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Stale     int
	Refreshed int
	// Revoked counts accounts whose refresh token the provider rejected.
	// They need a fresh login; retrying will not help.
	Revoked int
	Failed  int
}

// Run executes one refresh pass over stale credentials.
func (j *RefreshJob) Run(ctx context.Context) *RefreshResult {
	startTime := time.Now()
	atomic.AddInt64(&j.metrics.TotalRuns, 1)

	result := &RefreshResult{StartTime: startTime}

	cutoff := startTime.Add(-j.config.Staleness)
	stale, err := j.accounts.ListStaleCredentials(ctx, cutoff, j.config.BatchSize)
	if err != nil {
		j.logger.Error().Err(err).Msg("failed to list stale credentials")
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(startTime)
		return result
	}

	result.Stale = len(stale)
	j.logger.Info().
		Int("stale", len(stale)).
		Int("concurrency", j.config.Concurrency).
		Msg("starting credential refresh run")

	var (
		refreshed, revoked, failed int64
		wg                         sync.WaitGroup
	)

	work := make(chan *account.Account)

	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for acct := range work {
				switch err := j.refreshAccount(ctx, acct); {
				case err == nil:
					atomic.AddInt64(&refreshed, 1)
				case errors.Is(err, google.ErrExchangeRejected):
					atomic.AddInt64(&revoked, 1)
					j.logger.Warn().
						Str("account_id", acct.ID).
						Msg("refresh token revoked, account needs re-login")
				default:
					atomic.AddInt64(&failed, 1)
					j.logger.Error().Err(err).
						Str("account_id", acct.ID).
						Msg("credential refresh failed")
				}
			}
		}()
	}

	for _, acct := range stale {
		select {
		case work <- acct:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(work)
	wg.Wait()

	result.Refreshed = int(refreshed)
	result.Revoked = int(revoked)
	result.Failed = int(failed)
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	atomic.AddInt64(&j.metrics.AccountsRefreshed, refreshed)
	atomic.AddInt64(&j.metrics.AccountsRevoked, revoked)
	atomic.AddInt64(&j.metrics.AccountsFailed, failed)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("refreshed", result.Refreshed).
		Int("revoked", result.Revoked).
		Int("failed", result.Failed).
		Msg("credential refresh run completed")

	return result
}

// refreshAccount refreshes a single account's access token.
func (j *RefreshJob) refreshAccount(ctx context.Context, acct *account.Account) error {
	if acct.RefreshToken == nil {
		// ListStaleCredentials should not return these.
		return errors.New("account has no refresh token")
	}

	refreshCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	token, err := j.provider.Refresh(refreshCtx, *acct.RefreshToken)
	if err != nil {
		return err
	}

	return j.accounts.UpdateCredentials(ctx, acct.ID, token.AccessToken, time.Now())
}

// Metrics returns a snapshot of cumulative job statistics.
func (j *RefreshJob) Metrics() RefreshMetrics {
	return RefreshMetrics{
		TotalRuns:         atomic.LoadInt64(&j.metrics.TotalRuns),
		AccountsRefreshed: atomic.LoadInt64(&j.metrics.AccountsRefreshed),
		AccountsRevoked:   atomic.LoadInt64(&j.metrics.AccountsRevoked),
		AccountsFailed:    atomic.LoadInt64(&j.metrics.AccountsFailed),
	}
}

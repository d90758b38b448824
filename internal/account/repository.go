package account

import (
	"context"
	"time"
)

// Repository defines the interface for account persistence.
type Repository interface {
	// Get retrieves an account by ID. Returns ErrAccountNotFound if no
	// account exists.
	Get(ctx context.Context, accountID string) (*Account, error)

	// Upsert inserts the account or updates it in place. A nil refresh
	// token on the incoming account keeps the stored one; the provider
	// only returns a refresh token on first consent.
	Upsert(ctx context.Context, account *Account) error

	// UpdateCredentials replaces an account's access token and stamps the
	// refresh time. Returns ErrAccountNotFound if no account exists.
	UpdateCredentials(ctx context.Context, accountID, accessToken string, refreshedAt time.Time) error

	// SetMusicAccess records the outcome of a music access probe.
	SetMusicAccess(ctx context.Context, accountID string, hasAccess bool) error

	// ListStaleCredentials returns accounts that hold a refresh token and
	// whose access token was last refreshed before the cutoff, oldest
	// first, capped at limit.
	ListStaleCredentials(ctx context.Context, cutoff time.Time, limit int) ([]*Account, error)
}

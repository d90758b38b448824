// Package account persists authenticated accounts and their provider
// credentials. Accounts are keyed by the identity provider's subject ID, so
// repeat logins upsert rather than duplicate.
package account

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrAccountNotFound = errors.New("account not found")
)

// Account is a stored account with its provider credentials.
type Account struct {
	ID             string
	Email          string
	Name           string
	AvatarURL      string
	AccessToken    string
	RefreshToken   *string
	HasMusicAccess bool
	// TokenRefreshedAt records when the access token was last obtained,
	// either at login or by the background refresh job.
	TokenRefreshedAt time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

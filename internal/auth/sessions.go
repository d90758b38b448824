// Package auth issues and verifies signed session tokens.
//
// A session token is minted once per identity-gateway callback and names the
// account/device pair the client authenticated as. Tokens are signed with
// HS256 using a server-side secret. Verification is optional at the
// transport layer (see middleware.RequireSession); the music access
// credential itself is held by the client and passed per-request, so the
// session token only scopes which device a caller claims to be.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionExpiry is how long session tokens are valid.
const SessionExpiry = 24 * time.Hour

// Predefined session token errors.
var (
	ErrInvalidSessionToken = errors.New("invalid session token")
	ErrSessionExpired      = errors.New("session token has expired")
)

// SessionClaims represents the claims in a session token.
type SessionClaims struct {
	jwt.RegisteredClaims

	// DeviceID is the device the account authenticated from.
	DeviceID string `json:"did"`
}

// Session identifies a verified account/device pair.
type Session struct {
	AccountID string
	DeviceID  string
}

// Sessions handles session token creation and validation.
type Sessions struct {
	signingKey []byte
	issuer     string
}

// SessionsConfig holds configuration for the Sessions service.
type SessionsConfig struct {
	// SigningKey is the secret key used to sign tokens.
	SigningKey string

	// Issuer is the issuer claim for tokens.
	Issuer string
}

// NewSessions creates a new Sessions service.
func NewSessions(cfg SessionsConfig) *Sessions {
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "kidtunes"
	}
	return &Sessions{
		signingKey: []byte(cfg.SigningKey),
		issuer:     issuer,
	}
}

// Issue creates a session token for the given account and device.
func (s *Sessions) Issue(accountID, deviceID string) (string, error) {
	now := time.Now()

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionExpiry)),
			NotBefore: jwt.NewNumericDate(now),
		},
		DeviceID: deviceID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}

	return signed, nil
}

// Verify validates a session token and returns the session it names.
func (s *Sessions) Verify(tokenString string) (*Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidSessionToken, err.Error())
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidSessionToken
	}

	return &Session{AccountID: claims.Subject, DeviceID: claims.DeviceID}, nil
}

// Package identity implements the login gateway: OAuth code exchange,
// account provisioning, device bootstrap, and session issuance.
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/kidtunes/kidtunes/internal/account"
	"github.com/kidtunes/kidtunes/internal/api/models"
	"github.com/kidtunes/kidtunes/internal/auth"
	"github.com/kidtunes/kidtunes/internal/device"
	"github.com/kidtunes/kidtunes/internal/identity/google"
)

// Service errors.
var (
	ErrCodeRequired   = errors.New("authorization code required")
	ErrTokenRequired  = errors.New("access token required")
	ErrExchangeFailed = errors.New("failed to exchange authorization code")
)

// Provider is the identity provider surface the gateway needs. Implemented
// by the Google client.
type Provider interface {
	AuthURL() string
	ExchangeCode(ctx context.Context, code string) (*google.Token, error)
	GetUserInfo(ctx context.Context, accessToken string) (*google.UserInfo, error)
	CheckMusicAccess(ctx context.Context, accessToken string) (bool, error)
}

// DeviceRegistrar is the device surface the login flow needs: probe for an
// account's existing device and bootstrap one when none exists. Implemented
// by the device service.
type DeviceRegistrar interface {
	LatestForUser(ctx context.Context, userID string) (*models.Device, error)
	Register(ctx context.Context, input *models.DeviceRegisterRequest) (*models.Device, error)
}

// Service provides identity gateway operations.
type Service struct {
	provider Provider
	accounts account.Repository
	devices  DeviceRegistrar
	sessions *auth.Sessions
	logger   zerolog.Logger
}

// NewService creates a new identity service.
func NewService(provider Provider, accounts account.Repository, devices DeviceRegistrar, sessions *auth.Sessions, logger zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		accounts: accounts,
		devices:  devices,
		sessions: sessions,
		logger:   logger,
	}
}

// AuthURL returns the provider consent URL.
func (s *Service) AuthURL() models.AuthURLResponse {
	return models.AuthURLResponse{URL: s.provider.AuthURL()}
}

// Callback completes a login: exchanges the authorization code, upserts the
// account with its fresh credentials, resolves or bootstraps the account's
// device, and issues a session token for the pair.
func (s *Service) Callback(ctx context.Context, input *models.AuthCallbackRequest) (*models.AuthCallbackResponse, error) {
	if input.Code == "" {
		return nil, ErrCodeRequired
	}

	token, err := s.provider.ExchangeCode(ctx, input.Code)
	if err != nil {
		if errors.Is(err, google.ErrExchangeRejected) {
			return nil, ErrExchangeFailed
		}
		return nil, err
	}

	info, err := s.provider.GetUserInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	hasMusicAccess, err := s.provider.CheckMusicAccess(ctx, token.AccessToken)
	if err != nil {
		// The probe is best-effort at login; the client can re-check.
		s.logger.Warn().Err(err).Str("account_id", info.ID).Msg("music access probe failed")
		hasMusicAccess = false
	}

	now := time.Now()
	acct := &account.Account{
		ID:               info.ID,
		Email:            info.Email,
		Name:             info.Name,
		AvatarURL:        info.AvatarURL,
		AccessToken:      token.AccessToken,
		HasMusicAccess:   hasMusicAccess,
		TokenRefreshedAt: now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if token.RefreshToken != "" {
		acct.RefreshToken = &token.RefreshToken
	}

	if err := s.accounts.Upsert(ctx, acct); err != nil {
		return nil, err
	}

	dev, err := s.resolveDevice(ctx, info.ID)
	if err != nil {
		return nil, err
	}

	sessionToken, err := s.sessions.Issue(info.ID, dev.ID)
	if err != nil {
		return nil, err
	}

	return &models.AuthCallbackResponse{
		User: models.Account{
			ID:             acct.ID,
			Email:          acct.Email,
			Name:           acct.Name,
			AvatarURL:      acct.AvatarURL,
			AccessToken:    acct.AccessToken,
			RefreshToken:   acct.RefreshToken,
			HasMusicAccess: acct.HasMusicAccess,
		},
		Device:       *dev,
		SessionToken: sessionToken,
	}, nil
}

// CheckMusicAccess probes whether a credential can reach the music catalog.
func (s *Service) CheckMusicAccess(ctx context.Context, input *models.MusicAccessRequest) (*models.MusicAccessResponse, error) {
	if input.AccessToken == "" {
		return nil, ErrTokenRequired
	}

	hasAccess, err := s.provider.CheckMusicAccess(ctx, input.AccessToken)
	if err != nil {
		return nil, err
	}

	return &models.MusicAccessResponse{HasAccess: hasAccess}, nil
}

// resolveDevice returns the account's most recent device, registering a
// fresh unassigned one on first login.
func (s *Service) resolveDevice(ctx context.Context, accountID string) (*models.Device, error) {
	dev, err := s.devices.LatestForUser(ctx, accountID)
	if err == nil {
		return dev, nil
	}
	if !errors.Is(err, device.ErrDeviceNotFound) {
		return nil, err
	}

	return s.devices.Register(ctx, &models.DeviceRegisterRequest{UserID: accountID})
}

package identity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kidtunes/kidtunes/internal/account"
	"github.com/kidtunes/kidtunes/internal/api/models"
	"github.com/kidtunes/kidtunes/internal/auth"
	"github.com/kidtunes/kidtunes/internal/device"
	"github.com/kidtunes/kidtunes/internal/identity"
	"github.com/kidtunes/kidtunes/internal/identity/google"
	"github.com/kidtunes/kidtunes/internal/whitelist"
)

// fakeProvider is a canned identity provider for tests.
type fakeProvider struct {
	token       *google.Token
	exchangeErr error
	info        *google.UserInfo
	musicAccess bool
	probeErr    error
}

func (f *fakeProvider) AuthURL() string {
	return "https://accounts.example.com/consent"
}

func (f *fakeProvider) ExchangeCode(_ context.Context, _ string) (*google.Token, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.token, nil
}

func (f *fakeProvider) GetUserInfo(_ context.Context, _ string) (*google.UserInfo, error) {
	return f.info, nil
}

func (f *fakeProvider) CheckMusicAccess(_ context.Context, _ string) (bool, error) {
	if f.probeErr != nil {
		return false, f.probeErr
	}
	return f.musicAccess, nil
}

func newTestService(t *testing.T, provider *fakeProvider) (*identity.Service, *account.InMemoryRepository, *device.Service) {
	t.Helper()

	accounts := account.NewInMemoryRepository()
	deviceRepo := device.NewInMemoryRepository()
	whitelists := whitelist.NewService(whitelist.NewInMemoryRepository(), deviceRepo)
	devices := device.NewService(deviceRepo, whitelists)
	sessions := auth.NewSessions(auth.SessionsConfig{SigningKey: "test-signing-key"})

	service := identity.NewService(provider, accounts, devices, sessions, zerolog.Nop())
	return service, accounts, devices
}

func validProvider() *fakeProvider {
	return &fakeProvider{
		token: &google.Token{
			AccessToken:  "access-token-1",
			RefreshToken: "refresh-token-1",
			ExpiresIn:    3600,
		},
		info: &google.UserInfo{
			ID:        "google-sub-1",
			Email:     "parent@example.com",
			Name:      "Parent One",
			AvatarURL: "https://example.com/avatar.png",
		},
		musicAccess: true,
	}
}

func TestService_Callback_FirstLogin(t *testing.T) {
	provider := validProvider()
	service, accounts, _ := newTestService(t, provider)
	ctx := context.Background()

	result, err := service.Callback(ctx, &models.AuthCallbackRequest{Code: "auth-code"})
	if err != nil {
		t.Fatalf("callback failed: %v", err)
	}

	if result.User.ID != "google-sub-1" {
		t.Errorf("expected account ID %q, got %q", "google-sub-1", result.User.ID)
	}
	if !result.User.HasMusicAccess {
		t.Error("expected music access to be granted")
	}
	if result.Device.ID == "" {
		t.Error("expected a device to be bootstrapped")
	}
	if result.Device.Type != nil {
		t.Errorf("expected bootstrapped device to have no role, got %q", *result.Device.Type)
	}
	if result.SessionToken == "" {
		t.Error("expected a session token")
	}

	stored, err := accounts.Get(ctx, "google-sub-1")
	if err != nil {
		t.Fatalf("failed to load stored account: %v", err)
	}
	if stored.RefreshToken == nil || *stored.RefreshToken != "refresh-token-1" {
		t.Errorf("expected refresh token to be stored, got %v", stored.RefreshToken)
	}
}

func TestService_Callback_RepeatLoginKeepsDeviceAndRefreshToken(t *testing.T) {
	provider := validProvider()
	service, accounts, _ := newTestService(t, provider)
	ctx := context.Background()

	first, err := service.Callback(ctx, &models.AuthCallbackRequest{Code: "auth-code"})
	if err != nil {
		t.Fatalf("first callback failed: %v", err)
	}

	// Google omits the refresh token on repeat grants.
	provider.token = &google.Token{AccessToken: "access-token-2", ExpiresIn: 3600}

	second, err := service.Callback(ctx, &models.AuthCallbackRequest{Code: "auth-code-2"})
	if err != nil {
		t.Fatalf("second callback failed: %v", err)
	}

	if second.Device.ID != first.Device.ID {
		t.Errorf("expected device %q to be reused, got %q", first.Device.ID, second.Device.ID)
	}

	stored, err := accounts.Get(ctx, "google-sub-1")
	if err != nil {
		t.Fatalf("failed to load stored account: %v", err)
	}
	if stored.AccessToken != "access-token-2" {
		t.Errorf("expected access token to be replaced, got %q", stored.AccessToken)
	}
	if stored.RefreshToken == nil || *stored.RefreshToken != "refresh-token-1" {
		t.Errorf("expected original refresh token to survive, got %v", stored.RefreshToken)
	}
}

func TestService_Callback_Errors(t *testing.T) {
	provider := validProvider()
	service, _, _ := newTestService(t, provider)
	ctx := context.Background()

	if _, err := service.Callback(ctx, &models.AuthCallbackRequest{}); !errors.Is(err, identity.ErrCodeRequired) {
		t.Errorf("expected ErrCodeRequired, got %v", err)
	}

	provider.exchangeErr = google.ErrExchangeRejected
	if _, err := service.Callback(ctx, &models.AuthCallbackRequest{Code: "bad-code"}); !errors.Is(err, identity.ErrExchangeFailed) {
		t.Errorf("expected ErrExchangeFailed, got %v", err)
	}
}

func TestService_Callback_ProbeFailureIsNonFatal(t *testing.T) {
	provider := validProvider()
	provider.probeErr = errors.New("probe timeout")
	service, _, _ := newTestService(t, provider)

	result, err := service.Callback(context.Background(), &models.AuthCallbackRequest{Code: "auth-code"})
	if err != nil {
		t.Fatalf("callback failed: %v", err)
	}
	if result.User.HasMusicAccess {
		t.Error("expected music access to default to false when the probe fails")
	}
}

func TestService_CheckMusicAccess(t *testing.T) {
	provider := validProvider()
	service, _, _ := newTestService(t, provider)
	ctx := context.Background()

	if _, err := service.CheckMusicAccess(ctx, &models.MusicAccessRequest{}); !errors.Is(err, identity.ErrTokenRequired) {
		t.Errorf("expected ErrTokenRequired, got %v", err)
	}

	result, err := service.CheckMusicAccess(ctx, &models.MusicAccessRequest{AccessToken: "access-token-1"})
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !result.HasAccess {
		t.Error("expected access to be granted")
	}
}

func TestService_AuthURL(t *testing.T) {
	service, _, _ := newTestService(t, validProvider())

	result := service.AuthURL()
	if result.URL != "https://accounts.example.com/consent" {
		t.Errorf("unexpected consent URL %q", result.URL)
	}
}

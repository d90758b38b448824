// Package google implements the Google OAuth identity provider client used
// by the identity gateway and the credential refresh worker.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kidtunes/kidtunes/internal/provider/resilience"
)

const (
	// ProviderName identifies this identity provider.
	ProviderName = "google"

	// DefaultAuthURL is the Google OAuth consent endpoint.
	DefaultAuthURL = "https://accounts.google.com/o/oauth2/v2/auth"

	// DefaultTokenURL is the Google OAuth token endpoint.
	DefaultTokenURL = "https://oauth2.googleapis.com/token"

	// DefaultUserInfoURL is the Google userinfo endpoint.
	DefaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

	// DefaultMusicProbeURL is the YouTube channels endpoint used to probe
	// whether a credential can reach the music catalog.
	DefaultMusicProbeURL = "https://www.googleapis.com/youtube/v3/channels"
)

// Scopes requested at consent. The youtube.readonly scope gates catalog
// search; offline access yields the refresh token.
var scopes = []string{
	"openid",
	"email",
	"profile",
	"https://www.googleapis.com/auth/youtube.readonly",
}

// Client errors.
var (
	// ErrExchangeRejected is returned when Google rejects an authorization
	// code or refresh token. Callers treat it as a client fault, not an
	// outage.
	ErrExchangeRejected = errors.New("identity provider rejected the credential")
)

// ClientConfig holds configuration for the Google OAuth client.
type ClientConfig struct {
	// ClientID is the OAuth client ID (required).
	ClientID string

	// ClientSecret is the OAuth client secret (required).
	ClientSecret string

	// RedirectURI is the registered OAuth redirect URI (required).
	RedirectURI string

	// AuthURL overrides the consent endpoint (optional).
	AuthURL string

	// TokenURL overrides the token endpoint (optional).
	TokenURL string

	// UserInfoURL overrides the userinfo endpoint (optional).
	UserInfoURL string

	// MusicProbeURL overrides the music access probe endpoint (optional).
	MusicProbeURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Google OAuth API client.
type Client struct {
	clientID      string
	clientSecret  string
	redirectURI   string
	authURL       string
	tokenURL      string
	userInfoURL   string
	musicProbeURL string
	httpClient    *resilience.Client
	logger        zerolog.Logger
}

// NewClient creates a new Google OAuth client.
func NewClient(cfg ClientConfig) *Client {
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = DefaultAuthURL
	}

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = DefaultUserInfoURL
	}

	musicProbeURL := cfg.MusicProbeURL
	if musicProbeURL == "" {
		musicProbeURL = DefaultMusicProbeURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		clientID:      cfg.ClientID,
		clientSecret:  cfg.ClientSecret,
		redirectURI:   cfg.RedirectURI,
		authURL:       authURL,
		tokenURL:      tokenURL,
		userInfoURL:   userInfoURL,
		musicProbeURL: musicProbeURL,
		httpClient:    httpClient,
		logger:        cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Token is an OAuth token grant. RefreshToken is only present on the first
// consent for a given account.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// UserInfo is the provider's profile for an authenticated account.
type UserInfo struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
}

// AuthURL builds the consent URL the client redirects the user to.
// Offline access and forced consent keep the refresh token flowing.
func (c *Client) AuthURL() string {
	params := url.Values{
		"client_id":     {c.clientID},
		"redirect_uri":  {c.redirectURI},
		"response_type": {"code"},
		"scope":         {strings.Join(scopes, " ")},
		"access_type":   {"offline"},
		"prompt":        {"consent"},
	}
	return c.authURL + "?" + params.Encode()
}

// ExchangeCode trades an authorization code for tokens. A rejection by the
// provider (bad or expired code) returns ErrExchangeRejected.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	form := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {c.redirectURI},
	}

	return c.requestToken(ctx, form)
}

// Refresh trades a refresh token for a fresh access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	form := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"refresh_token": {refreshToken},
		"grant_type":    {"refresh_token"},
	}

	return c.requestToken(ctx, form)
}

func (c *Client) requestToken(ctx context.Context, form url.Values) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		var errResp tokenErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("error", errResp.Error).
			Msg("token grant rejected")
		return nil, ErrExchangeRejected
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var tokenResp tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &Token{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		ExpiresIn:    tokenResp.ExpiresIn,
	}, nil
}

// GetUserInfo fetches the profile for an access token.
func (c *Client) GetUserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var infoResp userInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&infoResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &UserInfo{
		ID:        infoResp.ID,
		Email:     infoResp.Email,
		Name:      infoResp.Name,
		AvatarURL: infoResp.Picture,
	}, nil
}

// CheckMusicAccess probes whether an access token can reach the music
// catalog. Authorization failures mean "no access", not an error.
func (c *Client) CheckMusicAccess(ctx context.Context, accessToken string) (bool, error) {
	probeURL := c.musicProbeURL + "?" + url.Values{
		"part": {"id"},
		"mine": {"true"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, http.NoBody)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
}

// Google API response structures.

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	IDToken      string `json:"id_token"`
}

type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type userInfoResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

package models

// Account represents an authenticated account as returned to the client
// after the identity gateway callback.
type Account struct {
	ID             string  `json:"id"`
	Email          string  `json:"email"`
	Name           string  `json:"name"`
	AvatarURL      string  `json:"avatarUrl"`
	AccessToken    string  `json:"accessToken"`
	RefreshToken   *string `json:"refreshToken,omitempty"`
	HasMusicAccess bool    `json:"hasMusicAccess"`
}

// AuthCallbackRequest is the body of POST /api/auth/callback.
type AuthCallbackRequest struct {
	Code string `json:"code"`
}

// AuthCallbackResponse is returned after a successful code exchange.
// SessionToken is a signed token identifying the account/device pair.
type AuthCallbackResponse struct {
	User         Account `json:"user"`
	Device       Device  `json:"device"`
	SessionToken string  `json:"sessionToken"`
}

// AuthURLResponse carries the identity provider consent URL.
type AuthURLResponse struct {
	URL string `json:"url"`
}

// MusicAccessRequest is the body of POST /api/auth/check-music-access.
type MusicAccessRequest struct {
	AccessToken string `json:"accessToken"`
}

// MusicAccessResponse reports whether the credential can reach the music
// catalog.
type MusicAccessResponse struct {
	HasAccess bool `json:"hasAccess"`
}

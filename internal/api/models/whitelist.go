package models

// Whitelist is the curated allow-list owned by a parent device.
// ChildDeviceIDs is derived from device parent references at read time.
type Whitelist struct {
	ID             string     `json:"id"`
	ParentDeviceID string     `json:"parentDeviceId"`
	ChildDeviceIDs []string   `json:"childDeviceIds"`
	Artists        []Artist   `json:"artists"`
	Tracks         []Track    `json:"tracks"`
	Playlists      []Playlist `json:"playlists"`
	CreatedAt      Timestamp  `json:"createdAt"`
	UpdatedAt      Timestamp  `json:"updatedAt"`
}

// WhitelistUpdateRequest is the body of PUT /api/whitelist/{parentDeviceId}.
// A nil collection means "leave unchanged"; a present (possibly empty)
// collection replaces the stored one wholesale.
type WhitelistUpdateRequest struct {
	Artists   *[]Artist   `json:"artists,omitempty"`
	Tracks    *[]Track    `json:"tracks,omitempty"`
	Playlists *[]Playlist `json:"playlists,omitempty"`
}

// WhitelistResponse wraps a whitelist.
type WhitelistResponse struct {
	Whitelist Whitelist `json:"whitelist"`
}

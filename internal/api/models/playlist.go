package models

// Playlist is a named ordered sequence of track snapshots owned by a device.
// The same shape serves stored child playlists and whitelist playlist
// entries copied from catalog search results.
type Playlist struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description,omitempty"`
	ThumbnailURL  *string   `json:"thumbnailUrl,omitempty"`
	Tracks        []Track   `json:"tracks"`
	OwnerID       string    `json:"ownerId"`
	OwnerDeviceID string    `json:"ownerDeviceId"`
	CreatedAt     Timestamp `json:"createdAt"`
	UpdatedAt     Timestamp `json:"updatedAt"`
}

// PlaylistCreateRequest is the body of POST /api/playlists.
type PlaylistCreateRequest struct {
	Name          string  `json:"name"`
	Description   *string `json:"description,omitempty"`
	ThumbnailURL  *string `json:"thumbnailUrl,omitempty"`
	Tracks        []Track `json:"tracks,omitempty"`
	OwnerID       string  `json:"ownerId"`
	OwnerDeviceID string  `json:"ownerDeviceId"`
}

// PlaylistUpdateRequest is the body of PUT /api/playlists/item/{playlistId}.
// DeviceID identifies the caller; only the owning device may update.
// Absent fields are left unchanged.
type PlaylistUpdateRequest struct {
	DeviceID     string   `json:"deviceId"`
	Name         *string  `json:"name,omitempty"`
	Description  *string  `json:"description,omitempty"`
	ThumbnailURL *string  `json:"thumbnailUrl,omitempty"`
	Tracks       *[]Track `json:"tracks,omitempty"`
}

// PlaylistResponse wraps a single playlist.
type PlaylistResponse struct {
	Playlist Playlist `json:"playlist"`
}

// PlaylistsResponse wraps a list of playlists.
type PlaylistsResponse struct {
	Playlists []Playlist `json:"playlists"`
}

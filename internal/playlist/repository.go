package playlist

import "context"

// Repository defines the interface for playlist persistence.
type Repository interface {
	// Get retrieves a playlist by ID. Returns ErrPlaylistNotFound if no
	// playlist exists.
	Get(ctx context.Context, playlistID string) (*Playlist, error)

	// Create stores a new playlist.
	Create(ctx context.Context, playlist *Playlist) error

	// Update replaces a playlist's mutable fields. Returns
	// ErrPlaylistNotFound if no playlist exists.
	Update(ctx context.Context, playlist *Playlist) error

	// Delete removes a playlist. Returns ErrPlaylistNotFound if no
	// playlist exists.
	Delete(ctx context.Context, playlistID string) error

	// ListByOwners returns all playlists owned by any of the given
	// devices, most recently updated first. An empty owner list yields an
	// empty result.
	ListByOwners(ctx context.Context, ownerDeviceIDs []string) ([]*Playlist, error)
}

// Package playlist manages the named track collections child devices build
// from whitelisted content. Playlists store an ordered snapshot of track
// metadata at add time; they are not re-resolved against the catalog.
package playlist

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/kidtunes/kidtunes/internal/api/models"
)

// Repository errors.
var (
	ErrPlaylistNotFound = errors.New("playlist not found")
)

// Service errors.
var (
	ErrNameRequired    = errors.New("playlist name required")
	ErrOwnerRequired   = errors.New("owner device ID required")
	ErrNotOwner        = errors.New("device does not own this playlist")
	ErrDeviceIDMissing = errors.New("device ID required")
)

// Playlist is a stored track collection owned by a device.
type Playlist struct {
	ID            string
	Name          string
	Description   *string
	ThumbnailURL  *string
	Tracks        []models.Track
	OwnerID       string
	OwnerDeviceID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewID generates a playlist ID.
func NewID() string {
	return "pl_" + uuid.New().String()[:22]
}

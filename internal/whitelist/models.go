// Package whitelist owns the curated allow-list each parent device curates
// for its children.
package whitelist

import (
	"errors"
	"time"

	"github.com/kidtunes/kidtunes/internal/api/models"
)

// Repository errors.
var (
	ErrWhitelistNotFound = errors.New("whitelist not found")
)

// Whitelist is the allow-list owned by exactly one parent device. The
// collections are value snapshots copied from catalog search results at
// add-time; they do not track external catalog state.
//
// Child membership is not stored here: the authoritative relationship is
// each child device's parent reference, and the child-id list is derived
// from it at read time.
type Whitelist struct {
	ID             string
	ParentDeviceID string
	Artists        []models.Artist
	Tracks         []models.Track
	Playlists      []models.Playlist
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IDFor derives the whitelist id for a parent device.
func IDFor(parentDeviceID string) string {
	return "wl_" + parentDeviceID
}

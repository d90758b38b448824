package whitelist

import (
	"context"
	"sync"

	"github.com/kidtunes/kidtunes/internal/api/models"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use the PostgreSQL
// implementation.
type InMemoryRepository struct {
	mu         sync.RWMutex
	whitelists map[string]*Whitelist // keyed by parent device ID
}

// NewInMemoryRepository creates a new in-memory whitelist repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{whitelists: make(map[string]*Whitelist)}
}

// GetByParent retrieves the whitelist owned by a parent device.
func (r *InMemoryRepository) GetByParent(_ context.Context, parentDeviceID string) (*Whitelist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wl, ok := r.whitelists[parentDeviceID]
	if !ok {
		return nil, ErrWhitelistNotFound
	}

	return copyWhitelist(wl), nil
}

// Ensure creates the whitelist if it does not already exist.
func (r *InMemoryRepository) Ensure(_ context.Context, wl *Whitelist) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.whitelists[wl.ParentDeviceID]; ok {
		return nil
	}

	r.whitelists[wl.ParentDeviceID] = copyWhitelist(wl)
	return nil
}

// Update writes all three collections and the update timestamp.
func (r *InMemoryRepository) Update(_ context.Context, wl *Whitelist) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.whitelists[wl.ParentDeviceID]
	if !ok {
		return ErrWhitelistNotFound
	}

	existing.Artists = copySlice(wl.Artists)
	existing.Tracks = copySlice(wl.Tracks)
	existing.Playlists = copySlice(wl.Playlists)
	existing.UpdatedAt = wl.UpdatedAt
	return nil
}

// Count returns the number of stored whitelists. Test helper.
func (r *InMemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.whitelists)
}

func copySlice[T models.Artist | models.Track | models.Playlist](items []T) []T {
	if items == nil {
		return []T{}
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}

// copyWhitelist creates a deep copy of a whitelist.
func copyWhitelist(wl *Whitelist) *Whitelist {
	if wl == nil {
		return nil
	}

	return &Whitelist{
		ID:             wl.ID,
		ParentDeviceID: wl.ParentDeviceID,
		Artists:        copySlice(wl.Artists),
		Tracks:         copySlice(wl.Tracks),
		Playlists:      copySlice(wl.Playlists),
		CreatedAt:      wl.CreatedAt,
		UpdatedAt:      wl.UpdatedAt,
	}
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)

package playlist

import (
	"context"
	"sort"
	"sync"

	"github.com/kidtunes/kidtunes/internal/api/models"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use the PostgreSQL
// implementation.
type InMemoryRepository struct {
	mu        sync.RWMutex
	playlists map[string]*Playlist
}

// NewInMemoryRepository creates a new in-memory playlist repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{playlists: make(map[string]*Playlist)}
}

// Get retrieves a playlist by ID.
func (r *InMemoryRepository) Get(_ context.Context, playlistID string) (*Playlist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	playlist, ok := r.playlists[playlistID]
	if !ok {
		return nil, ErrPlaylistNotFound
	}

	return copyPlaylist(playlist), nil
}

// Create stores a new playlist.
func (r *InMemoryRepository) Create(_ context.Context, playlist *Playlist) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.playlists[playlist.ID] = copyPlaylist(playlist)
	return nil
}

// Update replaces a playlist's mutable fields.
func (r *InMemoryRepository) Update(_ context.Context, playlist *Playlist) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.playlists[playlist.ID]
	if !ok {
		return ErrPlaylistNotFound
	}

	existing.Name = playlist.Name
	existing.Description = copyString(playlist.Description)
	existing.ThumbnailURL = copyString(playlist.ThumbnailURL)
	existing.Tracks = copyTracks(playlist.Tracks)
	existing.UpdatedAt = playlist.UpdatedAt
	return nil
}

// Delete removes a playlist.
func (r *InMemoryRepository) Delete(_ context.Context, playlistID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.playlists[playlistID]; !ok {
		return ErrPlaylistNotFound
	}

	delete(r.playlists, playlistID)
	return nil
}

// ListByOwners returns all playlists owned by any of the given devices, most
// recently updated first.
func (r *InMemoryRepository) ListByOwners(_ context.Context, ownerDeviceIDs []string) ([]*Playlist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owners := make(map[string]bool, len(ownerDeviceIDs))
	for _, id := range ownerDeviceIDs {
		owners[id] = true
	}

	var playlists []*Playlist
	for _, playlist := range r.playlists {
		if owners[playlist.OwnerDeviceID] {
			playlists = append(playlists, copyPlaylist(playlist))
		}
	}

	sort.Slice(playlists, func(i, j int) bool {
		if playlists[i].UpdatedAt.Equal(playlists[j].UpdatedAt) {
			return playlists[i].ID < playlists[j].ID
		}
		return playlists[i].UpdatedAt.After(playlists[j].UpdatedAt)
	})

	return playlists, nil
}

// copyPlaylist creates a deep copy of a playlist.
func copyPlaylist(p *Playlist) *Playlist {
	if p == nil {
		return nil
	}

	playlistCopy := &Playlist{
		ID:            p.ID,
		Name:          p.Name,
		Description:   copyString(p.Description),
		ThumbnailURL:  copyString(p.ThumbnailURL),
		Tracks:        copyTracks(p.Tracks),
		OwnerID:       p.OwnerID,
		OwnerDeviceID: p.OwnerDeviceID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}

	return playlistCopy
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	val := *s
	return &val
}

func copyTracks(tracks []models.Track) []models.Track {
	if tracks == nil {
		return nil
	}
	out := make([]models.Track, len(tracks))
	copy(out, tracks)
	return out
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)

package playlist

import (
	"context"
	"errors"
	"time"

	"github.com/kidtunes/kidtunes/internal/api/models"
	"github.com/kidtunes/kidtunes/internal/device"
)

// DeviceDirectory resolves device relationships for ownership checks and
// child lookups. Implemented by the device repository.
type DeviceDirectory interface {
	Get(ctx context.Context, deviceID string) (*device.Device, error)
	ListChildIDs(ctx context.Context, parentDeviceID string) ([]string, error)
}

// Service provides playlist operations.
type Service struct {
	repo    Repository
	devices DeviceDirectory
}

// NewService creates a new playlist service.
func NewService(repo Repository, devices DeviceDirectory) *Service {
	return &Service{repo: repo, devices: devices}
}

// Create stores a new playlist for a device. The track list is an ordered
// snapshot taken at creation time; an absent list defaults to empty.
func (s *Service) Create(ctx context.Context, input *models.PlaylistCreateRequest) (*models.Playlist, error) {
	if input.Name == "" {
		return nil, ErrNameRequired
	}
	if input.OwnerDeviceID == "" {
		return nil, ErrOwnerRequired
	}

	tracks := input.Tracks
	if tracks == nil {
		tracks = []models.Track{}
	}

	now := time.Now()
	playlist := &Playlist{
		ID:            NewID(),
		Name:          input.Name,
		Description:   input.Description,
		ThumbnailURL:  input.ThumbnailURL,
		Tracks:        tracks,
		OwnerID:       input.OwnerID,
		OwnerDeviceID: input.OwnerDeviceID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, playlist); err != nil {
		return nil, err
	}

	result := toAPIPlaylist(playlist)
	return &result, nil
}

// ListForDevice returns the playlists owned by a device, most recently
// updated first.
func (s *Service) ListForDevice(ctx context.Context, deviceID string) ([]models.Playlist, error) {
	if deviceID == "" {
		return nil, ErrDeviceIDMissing
	}

	playlists, err := s.repo.ListByOwners(ctx, []string{deviceID})
	if err != nil {
		return nil, err
	}

	return toAPIPlaylists(playlists), nil
}

// ListForChildren returns the union of playlists owned by any child of a
// parent device, most recently updated first. A parent with no children gets
// an empty list.
func (s *Service) ListForChildren(ctx context.Context, parentDeviceID string) ([]models.Playlist, error) {
	if parentDeviceID == "" {
		return nil, ErrDeviceIDMissing
	}

	childIDs, err := s.devices.ListChildIDs(ctx, parentDeviceID)
	if err != nil {
		return nil, err
	}
	if len(childIDs) == 0 {
		return []models.Playlist{}, nil
	}

	playlists, err := s.repo.ListByOwners(ctx, childIDs)
	if err != nil {
		return nil, err
	}

	return toAPIPlaylists(playlists), nil
}

// Get retrieves a playlist on behalf of a device. The owning device and the
// owner's parent device may read; any other caller gets ErrNotOwner.
func (s *Service) Get(ctx context.Context, playlistID, deviceID string) (*models.Playlist, error) {
	if deviceID == "" {
		return nil, ErrDeviceIDMissing
	}

	playlist, err := s.repo.Get(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeRead(ctx, playlist, deviceID); err != nil {
		return nil, err
	}

	result := toAPIPlaylist(playlist)
	return &result, nil
}

// Update applies a partial update to a playlist. Only the owning device may
// update; absent fields are left unchanged.
func (s *Service) Update(ctx context.Context, playlistID string, input *models.PlaylistUpdateRequest) (*models.Playlist, error) {
	if input.DeviceID == "" {
		return nil, ErrDeviceIDMissing
	}

	playlist, err := s.repo.Get(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if playlist.OwnerDeviceID != input.DeviceID {
		return nil, ErrNotOwner
	}

	if input.Name != nil && *input.Name != "" {
		playlist.Name = *input.Name
	}
	if input.Description != nil {
		playlist.Description = input.Description
	}
	if input.ThumbnailURL != nil {
		playlist.ThumbnailURL = input.ThumbnailURL
	}
	if input.Tracks != nil {
		playlist.Tracks = *input.Tracks
	}
	playlist.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, playlist); err != nil {
		return nil, err
	}

	result := toAPIPlaylist(playlist)
	return &result, nil
}

// Delete removes a playlist. Only the owning device may delete.
func (s *Service) Delete(ctx context.Context, playlistID, deviceID string) error {
	if deviceID == "" {
		return ErrDeviceIDMissing
	}

	playlist, err := s.repo.Get(ctx, playlistID)
	if err != nil {
		return err
	}
	if playlist.OwnerDeviceID != deviceID {
		return ErrNotOwner
	}

	return s.repo.Delete(ctx, playlistID)
}

// authorizeRead allows the owning device, or the parent of the owning
// device, to read a playlist.
func (s *Service) authorizeRead(ctx context.Context, playlist *Playlist, deviceID string) error {
	if playlist.OwnerDeviceID == deviceID {
		return nil
	}

	owner, err := s.devices.Get(ctx, playlist.OwnerDeviceID)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			return ErrNotOwner
		}
		return err
	}
	if owner.ParentDeviceID != nil && *owner.ParentDeviceID == deviceID {
		return nil
	}

	return ErrNotOwner
}

// toAPIPlaylist converts a domain Playlist to an API Playlist.
func toAPIPlaylist(p *Playlist) models.Playlist {
	tracks := p.Tracks
	if tracks == nil {
		tracks = []models.Track{}
	}

	return models.Playlist{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		ThumbnailURL:  p.ThumbnailURL,
		Tracks:        tracks,
		OwnerID:       p.OwnerID,
		OwnerDeviceID: p.OwnerDeviceID,
		CreatedAt:     models.Timestamp(p.CreatedAt),
		UpdatedAt:     models.Timestamp(p.UpdatedAt),
	}
}

func toAPIPlaylists(playlists []*Playlist) []models.Playlist {
	results := make([]models.Playlist, 0, len(playlists))
	for _, p := range playlists {
		results = append(results, toAPIPlaylist(p))
	}
	return results
}

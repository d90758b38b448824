package whitelist

import (
	"context"
	"time"

	"github.com/kidtunes/kidtunes/internal/api/models"
)

// ChildLister resolves the child device IDs linked to a parent device.
// Implemented by the device repository; the parent reference on each child
// device is the sole authority for membership.
type ChildLister interface {
	ListChildIDs(ctx context.Context, parentDeviceID string) ([]string, error)
}

// Service provides whitelist operations.
type Service struct {
	repo     Repository
	children ChildLister
}

// NewService creates a new whitelist service.
func NewService(repo Repository, children ChildLister) *Service {
	return &Service{repo: repo, children: children}
}

// EnsureForParent creates the whitelist for a device that became a parent.
// Safe to call repeatedly: an existing whitelist is left untouched.
func (s *Service) EnsureForParent(ctx context.Context, parentDeviceID string) error {
	now := time.Now()
	return s.repo.Ensure(ctx, &Whitelist{
		ID:             IDFor(parentDeviceID),
		ParentDeviceID: parentDeviceID,
		Artists:        []models.Artist{},
		Tracks:         []models.Track{},
		Playlists:      []models.Playlist{},
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}

// GetByParent retrieves a parent device's whitelist with its current child
// membership.
func (s *Service) GetByParent(ctx context.Context, parentDeviceID string) (*models.Whitelist, error) {
	wl, err := s.repo.GetByParent(ctx, parentDeviceID)
	if err != nil {
		return nil, err
	}

	return s.toAPIWhitelist(ctx, wl)
}

// Replace overwrites whole collections. A nil collection in the input means
// "leave unchanged"; a present collection replaces the stored one exactly.
//
// There is no concurrency token: two sessions editing the same whitelist
// race and the last writer wins. Accepted for the single-parent editing
// pattern this system serves.
func (s *Service) Replace(ctx context.Context, parentDeviceID string, input *models.WhitelistUpdateRequest) (*models.Whitelist, error) {
	wl, err := s.repo.GetByParent(ctx, parentDeviceID)
	if err != nil {
		return nil, err
	}

	if input.Artists != nil {
		wl.Artists = *input.Artists
	}
	if input.Tracks != nil {
		wl.Tracks = *input.Tracks
	}
	if input.Playlists != nil {
		wl.Playlists = *input.Playlists
	}
	wl.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, wl); err != nil {
		return nil, err
	}

	return s.toAPIWhitelist(ctx, wl)
}

// toAPIWhitelist converts a domain Whitelist to an API Whitelist, deriving
// child membership from device parent references.
func (s *Service) toAPIWhitelist(ctx context.Context, wl *Whitelist) (*models.Whitelist, error) {
	childIDs, err := s.children.ListChildIDs(ctx, wl.ParentDeviceID)
	if err != nil {
		return nil, err
	}
	if childIDs == nil {
		childIDs = []string{}
	}

	return &models.Whitelist{
		ID:             wl.ID,
		ParentDeviceID: wl.ParentDeviceID,
		ChildDeviceIDs: childIDs,
		Artists:        emptyIfNil(wl.Artists),
		Tracks:         emptyIfNil(wl.Tracks),
		Playlists:      emptyIfNil(wl.Playlists),
		CreatedAt:      models.Timestamp(wl.CreatedAt),
		UpdatedAt:      models.Timestamp(wl.UpdatedAt),
	}, nil
}

func emptyIfNil[T models.Artist | models.Track | models.Playlist](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

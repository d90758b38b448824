package whitelist_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kidtunes/kidtunes/internal/api/models"
	"github.com/kidtunes/kidtunes/internal/device"
	"github.com/kidtunes/kidtunes/internal/whitelist"
)

func newTestService(t *testing.T) (*whitelist.Service, *device.InMemoryRepository) {
	t.Helper()
	devices := device.NewInMemoryRepository()
	return whitelist.NewService(whitelist.NewInMemoryRepository(), devices), devices
}

func seedChild(t *testing.T, devices *device.InMemoryRepository, id, parentID string) {
	t.Helper()
	now := time.Now()
	err := devices.Create(context.Background(), &device.Device{
		ID:             id,
		Name:           "Child Device",
		Role:           device.RoleChild,
		UserID:         "user123",
		ParentDeviceID: &parentID,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		t.Fatalf("failed to seed device: %v", err)
	}
}

func TestService_EnsureForParent(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	if err := service.EnsureForParent(ctx, "PARENT1"); err != nil {
		t.Fatalf("failed to ensure whitelist: %v", err)
	}

	wl, err := service.GetByParent(ctx, "PARENT1")
	if err != nil {
		t.Fatalf("failed to get whitelist: %v", err)
	}

	if wl.ID != "wl_PARENT1" {
		t.Errorf("expected whitelist ID wl_PARENT1, got %q", wl.ID)
	}
	if len(wl.Artists) != 0 || len(wl.Tracks) != 0 || len(wl.Playlists) != 0 {
		t.Error("expected a fresh whitelist to have empty collections")
	}
	if wl.Artists == nil || wl.Tracks == nil || wl.Playlists == nil {
		t.Error("expected empty collections, not nil")
	}
}

func TestService_EnsureForParent_Idempotent(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	if err := service.EnsureForParent(ctx, "PARENT1"); err != nil {
		t.Fatalf("failed to ensure whitelist: %v", err)
	}

	artists := []models.Artist{{ID: "ch1", Name: "The Wiggles"}}
	if _, err := service.Replace(ctx, "PARENT1", &models.WhitelistUpdateRequest{Artists: &artists}); err != nil {
		t.Fatalf("failed to update whitelist: %v", err)
	}

	// A repeat ensure must not wipe the curated content.
	if err := service.EnsureForParent(ctx, "PARENT1"); err != nil {
		t.Fatalf("repeat ensure failed: %v", err)
	}

	wl, err := service.GetByParent(ctx, "PARENT1")
	if err != nil {
		t.Fatalf("failed to get whitelist: %v", err)
	}
	if len(wl.Artists) != 1 {
		t.Errorf("expected curated artists to survive, got %d", len(wl.Artists))
	}
}

func TestService_GetByParent_NotFound(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.GetByParent(context.Background(), "UNKNOWN")
	if !errors.Is(err, whitelist.ErrWhitelistNotFound) {
		t.Errorf("expected ErrWhitelistNotFound, got %v", err)
	}
}

func TestService_GetByParent_DerivesChildMembership(t *testing.T) {
	service, devices := newTestService(t)
	ctx := context.Background()

	if err := service.EnsureForParent(ctx, "PARENT1"); err != nil {
		t.Fatalf("failed to ensure whitelist: %v", err)
	}

	wl, err := service.GetByParent(ctx, "PARENT1")
	if err != nil {
		t.Fatalf("failed to get whitelist: %v", err)
	}
	if len(wl.ChildDeviceIDs) != 0 {
		t.Errorf("expected no children yet, got %v", wl.ChildDeviceIDs)
	}

	seedChild(t, devices, "CHILD1", "PARENT1")
	seedChild(t, devices, "CHILD2", "PARENT1")

	wl, err = service.GetByParent(ctx, "PARENT1")
	if err != nil {
		t.Fatalf("failed to get whitelist: %v", err)
	}
	if len(wl.ChildDeviceIDs) != 2 {
		t.Errorf("expected 2 children, got %v", wl.ChildDeviceIDs)
	}
}

func TestService_Replace_PartialUpdate(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	if err := service.EnsureForParent(ctx, "PARENT1"); err != nil {
		t.Fatalf("failed to ensure whitelist: %v", err)
	}

	artists := []models.Artist{{ID: "ch1", Name: "The Wiggles"}}
	tracks := []models.Track{{ID: "vid1", Title: "Hot Potato", ArtistName: "The Wiggles", ArtistID: "ch1"}}

	if _, err := service.Replace(ctx, "PARENT1", &models.WhitelistUpdateRequest{
		Artists: &artists,
		Tracks:  &tracks,
	}); err != nil {
		t.Fatalf("failed to update whitelist: %v", err)
	}

	// Replacing only tracks must leave artists intact.
	newTracks := []models.Track{
		{ID: "vid2", Title: "Fruit Salad", ArtistName: "The Wiggles", ArtistID: "ch1"},
		{ID: "vid3", Title: "Rock-a-Bye Your Bear", ArtistName: "The Wiggles", ArtistID: "ch1"},
	}
	wl, err := service.Replace(ctx, "PARENT1", &models.WhitelistUpdateRequest{Tracks: &newTracks})
	if err != nil {
		t.Fatalf("failed to update whitelist: %v", err)
	}

	if len(wl.Artists) != 1 {
		t.Errorf("expected artists to be unchanged, got %d", len(wl.Artists))
	}
	if len(wl.Tracks) != 2 {
		t.Errorf("expected 2 tracks, got %d", len(wl.Tracks))
	}
	if wl.Tracks[0].ID != "vid2" {
		t.Errorf("expected replacement to overwrite, got first track %q", wl.Tracks[0].ID)
	}
}

func TestService_Replace_EmptyCollectionClears(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	if err := service.EnsureForParent(ctx, "PARENT1"); err != nil {
		t.Fatalf("failed to ensure whitelist: %v", err)
	}

	artists := []models.Artist{{ID: "ch1", Name: "The Wiggles"}}
	if _, err := service.Replace(ctx, "PARENT1", &models.WhitelistUpdateRequest{Artists: &artists}); err != nil {
		t.Fatalf("failed to update whitelist: %v", err)
	}

	// An explicitly empty collection clears; only an absent one is a no-op.
	empty := []models.Artist{}
	wl, err := service.Replace(ctx, "PARENT1", &models.WhitelistUpdateRequest{Artists: &empty})
	if err != nil {
		t.Fatalf("failed to update whitelist: %v", err)
	}
	if len(wl.Artists) != 0 {
		t.Errorf("expected artists to be cleared, got %d", len(wl.Artists))
	}
}

func TestService_Replace_NotFound(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Replace(context.Background(), "UNKNOWN", &models.WhitelistUpdateRequest{})
	if !errors.Is(err, whitelist.ErrWhitelistNotFound) {
		t.Errorf("expected ErrWhitelistNotFound, got %v", err)
	}
}

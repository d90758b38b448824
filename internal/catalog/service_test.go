package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kidtunes/kidtunes/internal/api/models"
	"github.com/kidtunes/kidtunes/internal/catalog"
)

// fakeProvider returns canned results per kind, with independent failures.
type fakeProvider struct {
	artists      []models.Artist
	artistErr    error
	tracks       []models.Track
	trackErr     error
	playlists    []models.Playlist
	playlistErr  error
	artistCalls  int
	trackCalls   int
	playlistCall int
}

func (f *fakeProvider) SearchArtists(_ context.Context, _, _ string) ([]models.Artist, error) {
	f.artistCalls++
	return f.artists, f.artistErr
}

func (f *fakeProvider) SearchTracks(_ context.Context, _, _ string) ([]models.Track, error) {
	f.trackCalls++
	return f.tracks, f.trackErr
}

func (f *fakeProvider) SearchPlaylists(_ context.Context, _, _ string) ([]models.Playlist, error) {
	f.playlistCall++
	return f.playlists, f.playlistErr
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		artists:   []models.Artist{{ID: "ch1", Name: "The Wiggles"}},
		tracks:    []models.Track{{ID: "vid1", Title: "Hot Potato", ArtistName: "The Wiggles", ArtistID: "ch1"}},
		playlists: []models.Playlist{{ID: "plx1", Name: "Kids Hits", Tracks: []models.Track{}}},
	}
}

func search(query string) *models.SearchRequest {
	return &models.SearchRequest{Query: query, AccessToken: "access-token"}
}

func TestService_Search_AllKinds(t *testing.T) {
	provider := newFakeProvider()
	service := catalog.NewService(provider, nil, nil, zerolog.Nop())

	results, err := service.Search(context.Background(), search("wiggles"))
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if len(results.Artists) != 1 || len(results.Tracks) != 1 || len(results.Playlists) != 1 {
		t.Errorf("expected one result per kind, got %d/%d/%d",
			len(results.Artists), len(results.Tracks), len(results.Playlists))
	}
}

func TestService_Search_SingleKind(t *testing.T) {
	provider := newFakeProvider()
	service := catalog.NewService(provider, nil, nil, zerolog.Nop())

	kind := models.SearchTrack
	req := search("wiggles")
	req.Type = &kind

	results, err := service.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if len(results.Tracks) != 1 {
		t.Errorf("expected 1 track, got %d", len(results.Tracks))
	}
	if len(results.Artists) != 0 || len(results.Playlists) != 0 {
		t.Error("expected non-requested kinds to stay empty")
	}
	if provider.artistCalls != 0 || provider.playlistCall != 0 {
		t.Error("expected non-requested kinds not to hit the provider")
	}
}

func TestService_Search_PartialFailureDegrades(t *testing.T) {
	provider := newFakeProvider()
	provider.trackErr = errors.New("quota exceeded")
	service := catalog.NewService(provider, nil, nil, zerolog.Nop())

	results, err := service.Search(context.Background(), search("wiggles"))
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if len(results.Tracks) != 0 {
		t.Errorf("expected failed kind to degrade to empty, got %d tracks", len(results.Tracks))
	}
	if len(results.Artists) != 1 || len(results.Playlists) != 1 {
		t.Error("expected surviving kinds to return results")
	}
}

func TestService_Search_TotalFailure(t *testing.T) {
	provider := newFakeProvider()
	provider.artistErr = errors.New("down")
	provider.trackErr = errors.New("down")
	provider.playlistErr = errors.New("down")
	service := catalog.NewService(provider, nil, nil, zerolog.Nop())

	if _, err := service.Search(context.Background(), search("wiggles")); !errors.Is(err, catalog.ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
}

func TestService_Search_ValidationErrors(t *testing.T) {
	service := catalog.NewService(newFakeProvider(), nil, nil, zerolog.Nop())
	ctx := context.Background()

	if _, err := service.Search(ctx, &models.SearchRequest{AccessToken: "tok"}); !errors.Is(err, catalog.ErrQueryRequired) {
		t.Errorf("expected ErrQueryRequired, got %v", err)
	}

	if _, err := service.Search(ctx, &models.SearchRequest{Query: "wiggles"}); !errors.Is(err, catalog.ErrTokenRequired) {
		t.Errorf("expected ErrTokenRequired, got %v", err)
	}

	bad := models.SearchType("album")
	if _, err := service.Search(ctx, &models.SearchRequest{Query: "wiggles", AccessToken: "tok", Type: &bad}); !errors.Is(err, catalog.ErrInvalidType) {
		t.Errorf("expected ErrInvalidType, got %v", err)
	}
}

// Package youtube implements the music catalog client backed by the YouTube
// Data API. Searches run under the end user's access token, so results
// reflect the account's own catalog access.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/kidtunes/kidtunes/internal/api/models"
	"github.com/kidtunes/kidtunes/internal/provider/resilience"
)

const (
	// ProviderName identifies this catalog provider.
	ProviderName = "youtube"

	// DefaultBaseURL is the YouTube Data API base URL.
	DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

	// musicCategoryID is the YouTube video category for music.
	musicCategoryID = "10"

	// maxResults caps each search kind.
	maxResults = 10
)

// ClientConfig holds configuration for the YouTube client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional, defaults to the YouTube Data
	// API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a YouTube Data API client.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new YouTube client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// SearchArtists searches channels matching the query.
func (c *Client) SearchArtists(ctx context.Context, accessToken, query string) ([]models.Artist, error) {
	items, err := c.search(ctx, accessToken, query, url.Values{"type": {"channel"}})
	if err != nil {
		return nil, err
	}

	artists := make([]models.Artist, 0, len(items))
	for _, item := range items {
		artists = append(artists, models.Artist{
			ID:           item.ID.ChannelID,
			Name:         item.Snippet.Title,
			ThumbnailURL: item.Snippet.thumbnailURL(),
		})
	}
	return artists, nil
}

// SearchTracks searches music-category videos matching the query.
func (c *Client) SearchTracks(ctx context.Context, accessToken, query string) ([]models.Track, error) {
	items, err := c.search(ctx, accessToken, query, url.Values{
		"type":            {"video"},
		"videoCategoryId": {musicCategoryID},
	})
	if err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(items))
	for _, item := range items {
		tracks = append(tracks, models.Track{
			ID:           item.ID.VideoID,
			Title:        item.Snippet.Title,
			ArtistName:   item.Snippet.ChannelTitle,
			ArtistID:     item.Snippet.ChannelID,
			ThumbnailURL: item.Snippet.thumbnailURL(),
		})
	}
	return tracks, nil
}

// SearchPlaylists searches playlists matching the query. Returned playlists
// carry no track snapshots; the client expands them on demand.
func (c *Client) SearchPlaylists(ctx context.Context, accessToken, query string) ([]models.Playlist, error) {
	items, err := c.search(ctx, accessToken, query, url.Values{"type": {"playlist"}})
	if err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, 0, len(items))
	for _, item := range items {
		playlists = append(playlists, models.Playlist{
			ID:           item.ID.PlaylistID,
			Name:         item.Snippet.Title,
			ThumbnailURL: item.Snippet.thumbnailURL(),
			Tracks:       []models.Track{},
		})
	}
	return playlists, nil
}

func (c *Client) search(ctx context.Context, accessToken, query string, extra url.Values) ([]searchItem, error) {
	params := url.Values{
		"part":       {"snippet"},
		"q":          {query},
		"maxResults": {fmt.Sprintf("%d", maxResults)},
	}
	for k, v := range extra {
		params[k] = v
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return searchResp.Items, nil
}

// YouTube API response structures.

type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	ID struct {
		Kind       string `json:"kind"`
		VideoID    string `json:"videoId"`
		ChannelID  string `json:"channelId"`
		PlaylistID string `json:"playlistId"`
	} `json:"id"`
	Snippet snippet `json:"snippet"`
}

type snippet struct {
	Title        string `json:"title"`
	ChannelID    string `json:"channelId"`
	ChannelTitle string `json:"channelTitle"`
	Thumbnails   struct {
		Default struct {
			URL string `json:"url"`
		} `json:"default"`
		Medium struct {
			URL string `json:"url"`
		} `json:"medium"`
	} `json:"thumbnails"`
}

// thumbnailURL prefers the medium thumbnail and falls back to default.
func (s snippet) thumbnailURL() *string {
	if s.Thumbnails.Medium.URL != "" {
		u := s.Thumbnails.Medium.URL
		return &u
	}
	if s.Thumbnails.Default.URL != "" {
		u := s.Thumbnails.Default.URL
		return &u
	}
	return nil
}

// Package catalog exposes music catalog search to parent devices building
// whitelists. Results come from the upstream provider under the caller's own
// access token and are cached briefly, since whitelist curation tends to
// repeat queries while browsing.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kidtunes/kidtunes/internal/api/models"
)

// CacheTTL is how long search results stay cached.
const CacheTTL = 5 * time.Minute

// Service errors.
var (
	ErrQueryRequired = errors.New("search query required")
	ErrTokenRequired = errors.New("access token required")
	ErrInvalidType   = errors.New("invalid search type")
	ErrUpstream      = errors.New("music search failed")
)

// SearchProvider is the catalog surface the service needs. Implemented by
// the YouTube client.
type SearchProvider interface {
	SearchArtists(ctx context.Context, accessToken, query string) ([]models.Artist, error)
	SearchTracks(ctx context.Context, accessToken, query string) ([]models.Track, error)
	SearchPlaylists(ctx context.Context, accessToken, query string) ([]models.Playlist, error)
}

// CacheObserver records cache hit/miss outcomes per gateway operation.
// Implemented by middleware.GatewayMetrics.
type CacheObserver interface {
	RecordCacheHit(operation string)
	RecordCacheMiss(operation string)
}

// searchOperation labels cache metrics emitted by Search.
const searchOperation = "music_search"

// Service provides catalog search with an optional Redis cache.
type Service struct {
	provider SearchProvider
	cache    *redis.Client
	observer CacheObserver
	logger   zerolog.Logger
}

// NewService creates a new catalog service. A nil cache disables caching; a
// nil observer disables cache metrics.
func NewService(provider SearchProvider, cache *redis.Client, observer CacheObserver, logger zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		cache:    cache,
		observer: observer,
		logger:   logger,
	}
}

// Search runs a catalog search. An absent type searches all three kinds; a
// single failing kind degrades to an empty collection, but when every
// requested kind fails the whole search reports ErrUpstream.
//
// Results are cached per (query, type). The access token is deliberately not
// part of the cache key: search results are not personalized beyond catalog
// access, which every caller of this endpoint has.
func (s *Service) Search(ctx context.Context, input *models.SearchRequest) (*models.SearchResults, error) {
	if input.Query == "" {
		return nil, ErrQueryRequired
	}
	if input.AccessToken == "" {
		return nil, ErrTokenRequired
	}
	if input.Type != nil {
		switch *input.Type {
		case models.SearchArtist, models.SearchTrack, models.SearchPlaylist:
		default:
			return nil, ErrInvalidType
		}
	}

	if cached := s.fromCache(ctx, input); cached != nil {
		return cached, nil
	}

	results := &models.SearchResults{
		Artists:   []models.Artist{},
		Tracks:    []models.Track{},
		Playlists: []models.Playlist{},
	}

	var attempted, failed int

	if wants(input.Type, models.SearchArtist) {
		attempted++
		artists, err := s.provider.SearchArtists(ctx, input.AccessToken, input.Query)
		if err != nil {
			failed++
			s.logger.Warn().Err(err).Str("query", input.Query).Msg("artist search failed")
		} else {
			results.Artists = artists
		}
	}

	if wants(input.Type, models.SearchTrack) {
		attempted++
		tracks, err := s.provider.SearchTracks(ctx, input.AccessToken, input.Query)
		if err != nil {
			failed++
			s.logger.Warn().Err(err).Str("query", input.Query).Msg("track search failed")
		} else {
			results.Tracks = tracks
		}
	}

	if wants(input.Type, models.SearchPlaylist) {
		attempted++
		playlists, err := s.provider.SearchPlaylists(ctx, input.AccessToken, input.Query)
		if err != nil {
			failed++
			s.logger.Warn().Err(err).Str("query", input.Query).Msg("playlist search failed")
		} else {
			results.Playlists = playlists
		}
	}

	if attempted > 0 && failed == attempted {
		return nil, ErrUpstream
	}

	s.toCache(ctx, input, results)
	return results, nil
}

// fromCache returns cached results, or nil on miss, cache disablement, or
// cache failure. Cache failures never fail the search.
func (s *Service) fromCache(ctx context.Context, input *models.SearchRequest) *models.SearchResults {
	if s.cache == nil {
		return nil
	}

	data, err := s.cache.Get(ctx, cacheKey(input)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("search cache read failed")
		}
		if s.observer != nil {
			s.observer.RecordCacheMiss(searchOperation)
		}
		return nil
	}

	var results models.SearchResults
	if err := json.Unmarshal(data, &results); err != nil {
		s.logger.Warn().Err(err).Msg("search cache entry corrupt")
		if s.observer != nil {
			s.observer.RecordCacheMiss(searchOperation)
		}
		return nil
	}

	if s.observer != nil {
		s.observer.RecordCacheHit(searchOperation)
	}
	return &results
}

func (s *Service) toCache(ctx context.Context, input *models.SearchRequest, results *models.SearchResults) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(results)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, cacheKey(input), data, CacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("search cache write failed")
	}
}

func cacheKey(input *models.SearchRequest) string {
	kind := "all"
	if input.Type != nil {
		kind = string(*input.Type)
	}
	return "catalog:search:" + kind + ":" + strings.ToLower(input.Query)
}

// wants reports whether the requested type includes the given kind.
func wants(requested *models.SearchType, kind models.SearchType) bool {
	return requested == nil || *requested == kind
}

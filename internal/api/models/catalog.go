package models

// Artist is a snapshot of a music catalog artist. Whitelist entries are value
// copies taken at add-time, not live references into the external catalog.
type Artist struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	ThumbnailURL *string `json:"thumbnailUrl,omitempty"`
}

// Track is a snapshot of a music catalog track.
type Track struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	ArtistName   string  `json:"artistName"`
	ArtistID     string  `json:"artistId"`
	AlbumName    *string `json:"albumName,omitempty"`
	AlbumID      *string `json:"albumId,omitempty"`
	ThumbnailURL *string `json:"thumbnailUrl,omitempty"`
	Duration     *int    `json:"duration,omitempty"`
}

// SearchType narrows a catalog search to a single kind of item.
type SearchType string

const (
	SearchArtist   SearchType = "artist"
	SearchTrack    SearchType = "track"
	SearchPlaylist SearchType = "playlist"
)

// SearchRequest is the body of POST /api/music/search.
type SearchRequest struct {
	Query       string      `json:"query"`
	AccessToken string      `json:"accessToken"`
	Type        *SearchType `json:"type,omitempty"`
}

// SearchResults holds catalog search results, one collection per kind.
// Kinds outside the requested type are left empty.
type SearchResults struct {
	Artists   []Artist   `json:"artists"`
	Tracks    []Track    `json:"tracks"`
	Playlists []Playlist `json:"playlists"`
}

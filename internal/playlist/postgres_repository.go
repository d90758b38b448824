package playlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kidtunes/kidtunes/internal/api/models"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
// The track snapshot is stored as a JSONB document.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL playlist repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const playlistColumns = `id, name, description, thumbnail_url, tracks, owner_id, owner_device_id, created_at, updated_at`

// Get retrieves a playlist by ID.
func (r *PostgresRepository) Get(ctx context.Context, playlistID string) (*Playlist, error) {
	query := `
		SELECT ` + playlistColumns + `
		FROM playlists
		WHERE id = $1
	`

	var (
		p          Playlist
		tracksJSON []byte
	)

	err := r.pool.QueryRow(ctx, query, playlistID).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.ThumbnailURL,
		&tracksJSON,
		&p.OwnerID,
		&p.OwnerDeviceID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlaylistNotFound
		}
		return nil, err
	}

	if err := unmarshalTracks(tracksJSON, &p.Tracks); err != nil {
		return nil, fmt.Errorf("decoding tracks: %w", err)
	}

	return &p, nil
}

// Create stores a new playlist.
func (r *PostgresRepository) Create(ctx context.Context, playlist *Playlist) error {
	query := `
		INSERT INTO playlists (id, name, description, thumbnail_url, tracks, owner_id, owner_device_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	tracksJSON, err := marshalTracks(playlist.Tracks)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, query,
		playlist.ID,
		playlist.Name,
		playlist.Description,
		playlist.ThumbnailURL,
		tracksJSON,
		playlist.OwnerID,
		playlist.OwnerDeviceID,
		playlist.CreatedAt,
		playlist.UpdatedAt,
	)
	return err
}

// Update replaces a playlist's mutable fields.
func (r *PostgresRepository) Update(ctx context.Context, playlist *Playlist) error {
	query := `
		UPDATE playlists SET
			name = $2,
			description = $3,
			thumbnail_url = $4,
			tracks = $5,
			updated_at = $6
		WHERE id = $1
	`

	tracksJSON, err := marshalTracks(playlist.Tracks)
	if err != nil {
		return err
	}

	result, err := r.pool.Exec(ctx, query,
		playlist.ID,
		playlist.Name,
		playlist.Description,
		playlist.ThumbnailURL,
		tracksJSON,
		playlist.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrPlaylistNotFound
	}

	return nil
}

// Delete removes a playlist.
func (r *PostgresRepository) Delete(ctx context.Context, playlistID string) error {
	query := `
		DELETE FROM playlists
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, playlistID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrPlaylistNotFound
	}

	return nil
}

// ListByOwners returns all playlists owned by any of the given devices, most
// recently updated first.
func (r *PostgresRepository) ListByOwners(ctx context.Context, ownerDeviceIDs []string) ([]*Playlist, error) {
	if len(ownerDeviceIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + playlistColumns + `
		FROM playlists
		WHERE owner_device_id = ANY($1)
		ORDER BY updated_at DESC
	`

	rows, err := r.pool.Query(ctx, query, ownerDeviceIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var playlists []*Playlist
	for rows.Next() {
		var (
			p          Playlist
			tracksJSON []byte
		)
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.ThumbnailURL,
			&tracksJSON,
			&p.OwnerID,
			&p.OwnerDeviceID,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if err := unmarshalTracks(tracksJSON, &p.Tracks); err != nil {
			return nil, fmt.Errorf("decoding tracks: %w", err)
		}
		playlists = append(playlists, &p)
	}

	return playlists, rows.Err()
}

// marshalTracks encodes the track snapshot, mapping nil to an empty JSON
// array so the column is never NULL.
func marshalTracks(tracks []models.Track) ([]byte, error) {
	if tracks == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(tracks)
}

func unmarshalTracks(data []byte, dst *[]models.Track) error {
	if len(data) == 0 {
		*dst = []models.Track{}
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return err
	}
	if *dst == nil {
		*dst = []models.Track{}
	}
	return nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)

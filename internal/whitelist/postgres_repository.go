package whitelist

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
// The three collections are stored as JSONB documents.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL whitelist repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetByParent retrieves the whitelist owned by a parent device.
func (r *PostgresRepository) GetByParent(ctx context.Context, parentDeviceID string) (*Whitelist, error) {
	query := `
		SELECT id, parent_device_id, artists, tracks, playlists, created_at, updated_at
		FROM whitelists
		WHERE parent_device_id = $1
	`

	var (
		wl            Whitelist
		artistsJSON   []byte
		tracksJSON    []byte
		playlistsJSON []byte
	)

	err := r.pool.QueryRow(ctx, query, parentDeviceID).Scan(
		&wl.ID,
		&wl.ParentDeviceID,
		&artistsJSON,
		&tracksJSON,
		&playlistsJSON,
		&wl.CreatedAt,
		&wl.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWhitelistNotFound
		}
		return nil, err
	}

	if err := unmarshalCollection(artistsJSON, &wl.Artists); err != nil {
		return nil, fmt.Errorf("decoding artists: %w", err)
	}
	if err := unmarshalCollection(tracksJSON, &wl.Tracks); err != nil {
		return nil, fmt.Errorf("decoding tracks: %w", err)
	}
	if err := unmarshalCollection(playlistsJSON, &wl.Playlists); err != nil {
		return nil, fmt.Errorf("decoding playlists: %w", err)
	}

	return &wl, nil
}

// Ensure creates the whitelist if it does not already exist.
func (r *PostgresRepository) Ensure(ctx context.Context, wl *Whitelist) error {
	query := `
		INSERT INTO whitelists (id, parent_device_id, artists, tracks, playlists, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (parent_device_id) DO NOTHING
	`

	artistsJSON, tracksJSON, playlistsJSON, err := marshalCollections(wl)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, query,
		wl.ID,
		wl.ParentDeviceID,
		artistsJSON,
		tracksJSON,
		playlistsJSON,
		wl.CreatedAt,
		wl.UpdatedAt,
	)
	return err
}

// Update writes all three collections and the update timestamp.
func (r *PostgresRepository) Update(ctx context.Context, wl *Whitelist) error {
	query := `
		UPDATE whitelists SET
			artists = $2,
			tracks = $3,
			playlists = $4,
			updated_at = $5
		WHERE parent_device_id = $1
	`

	artistsJSON, tracksJSON, playlistsJSON, err := marshalCollections(wl)
	if err != nil {
		return err
	}

	result, err := r.pool.Exec(ctx, query,
		wl.ParentDeviceID,
		artistsJSON,
		tracksJSON,
		playlistsJSON,
		wl.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrWhitelistNotFound
	}

	return nil
}

func marshalCollections(wl *Whitelist) (artists, tracks, playlists []byte, err error) {
	artists, err = marshalCollection(wl.Artists)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encoding artists: %w", err)
	}
	tracks, err = marshalCollection(wl.Tracks)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encoding tracks: %w", err)
	}
	playlists, err = marshalCollection(wl.Playlists)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encoding playlists: %w", err)
	}
	return artists, tracks, playlists, nil
}

// marshalCollection encodes a collection, mapping nil to an empty JSON array
// so the column is never NULL.
func marshalCollection[T models.Artist | models.Track | models.Playlist](items []T) ([]byte, error) {
	if items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(items)
}

func unmarshalCollection[T models.Artist | models.Track | models.Playlist](data []byte, dst *[]T) error {
	if len(data) == 0 {
		*dst = []T{}
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return err
	}
	if *dst == nil {
		*dst = []T{}
	}
	return nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)

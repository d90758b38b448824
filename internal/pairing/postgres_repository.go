package pairing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL pairing repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const requestColumns = `id, child_device_id, parent_device_id, status, created_at`

// Get retrieves a request by ID.
func (r *PostgresRepository) Get(ctx context.Context, requestID string) (*Request, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM pairing_requests
		WHERE id = $1
	`

	return r.scanRequest(ctx, query, requestID)
}

// GetPending returns the pending request for a (child, parent) pair.
func (r *PostgresRepository) GetPending(ctx context.Context, childDeviceID, parentDeviceID string) (*Request, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM pairing_requests
		WHERE child_device_id = $1 AND parent_device_id = $2 AND status = 'pending'
		ORDER BY created_at DESC
		LIMIT 1
	`

	return r.scanRequest(ctx, query, childDeviceID, parentDeviceID)
}

func (r *PostgresRepository) scanRequest(ctx context.Context, query string, args ...interface{}) (*Request, error) {
	var req Request

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&req.ID,
		&req.ChildDeviceID,
		&req.ParentDeviceID,
		&req.Status,
		&req.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	return &req, nil
}

// Create stores a new request.
func (r *PostgresRepository) Create(ctx context.Context, req *Request) error {
	query := `
		INSERT INTO pairing_requests (id, child_device_id, parent_device_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		req.ID,
		req.ChildDeviceID,
		req.ParentDeviceID,
		req.Status,
		req.CreatedAt,
	)
	return err
}

// Resolve transitions a request from pending to a terminal status. The WHERE
// clause carries the state guard, so a lost race reports zero rows affected.
func (r *PostgresRepository) Resolve(ctx context.Context, requestID string, status Status) (bool, error) {
	query := `
		UPDATE pairing_requests SET
			status = $2
		WHERE id = $1 AND status = 'pending'
	`

	result, err := r.pool.Exec(ctx, query, requestID, status)
	if err != nil {
		return false, err
	}

	return result.RowsAffected() > 0, nil
}

// ListByParent returns all requests addressed to a parent device, most
// recent first.
func (r *PostgresRepository) ListByParent(ctx context.Context, parentDeviceID string) ([]*Request, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM pairing_requests
		WHERE parent_device_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, parentDeviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*Request
	for rows.Next() {
		var req Request
		err := rows.Scan(
			&req.ID,
			&req.ChildDeviceID,
			&req.ParentDeviceID,
			&req.Status,
			&req.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		requests = append(requests, &req)
	}

	return requests, rows.Err()
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)

package device

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL device repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const deviceColumns = `id, user_id, name, role, parent_device_id, created_at, updated_at`

// Get retrieves a device by ID.
func (r *PostgresRepository) Get(ctx context.Context, deviceID string) (*Device, error) {
	query := `
		SELECT ` + deviceColumns + `
		FROM devices
		WHERE id = $1
	`

	return r.scanDevice(ctx, query, deviceID)
}

// GetLatestByUser retrieves the most recently created device for an account.
func (r *PostgresRepository) GetLatestByUser(ctx context.Context, userID string) (*Device, error) {
	query := `
		SELECT ` + deviceColumns + `
		FROM devices
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	return r.scanDevice(ctx, query, userID)
}

// scanDevice scans a single device from a query.
func (r *PostgresRepository) scanDevice(ctx context.Context, query string, args ...interface{}) (*Device, error) {
	var (
		device Device
		role   *string
	)

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&device.ID,
		&device.UserID,
		&device.Name,
		&role,
		&device.ParentDeviceID,
		&device.CreatedAt,
		&device.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}

	if role != nil {
		device.Role = Role(*role)
	}

	return &device, nil
}

// Create creates a new device.
func (r *PostgresRepository) Create(ctx context.Context, device *Device) error {
	query := `
		INSERT INTO devices (id, user_id, name, role, parent_device_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		device.ID,
		device.UserID,
		device.Name,
		nullableRole(device.Role),
		device.ParentDeviceID,
		device.CreatedAt,
		device.UpdatedAt,
	)
	return err
}

// Update updates an existing device's name and role.
func (r *PostgresRepository) Update(ctx context.Context, device *Device) error {
	query := `
		UPDATE devices SET
			name = $2,
			role = $3,
			updated_at = $4
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		device.ID,
		device.Name,
		nullableRole(device.Role),
		device.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrDeviceNotFound
	}

	return nil
}

// SetParent sets a child device's parent reference.
func (r *PostgresRepository) SetParent(ctx context.Context, childDeviceID, parentDeviceID string, now time.Time) error {
	query := `
		UPDATE devices SET
			parent_device_id = $2,
			updated_at = $3
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, childDeviceID, parentDeviceID, now)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrDeviceNotFound
	}

	return nil
}

// ListByParent retrieves all devices whose parent reference equals the given
// device ID.
func (r *PostgresRepository) ListByParent(ctx context.Context, parentDeviceID string) ([]*Device, error) {
	query := `
		SELECT ` + deviceColumns + `
		FROM devices
		WHERE parent_device_id = $1
		ORDER BY created_at
	`

	return r.scanDevices(ctx, query, parentDeviceID)
}

// ListChildIDs retrieves the IDs of all devices whose parent reference equals
// the given device ID.
func (r *PostgresRepository) ListChildIDs(ctx context.Context, parentDeviceID string) ([]string, error) {
	query := `
		SELECT id
		FROM devices
		WHERE parent_device_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, parentDeviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// ListCoParents retrieves other parent-role devices linked to any of the
// given device's children, excluding the device itself.
func (r *PostgresRepository) ListCoParents(ctx context.Context, parentDeviceID string) ([]*Device, error) {
	query := `
		SELECT DISTINCT d2.id, d2.user_id, d2.name, d2.role, d2.parent_device_id, d2.created_at, d2.updated_at
		FROM devices d1
		JOIN devices d2 ON d2.id = d1.parent_device_id OR d2.parent_device_id = d1.id
		WHERE d1.parent_device_id = $1 AND d2.id <> $1 AND d2.role = 'parent'
	`

	return r.scanDevices(ctx, query, parentDeviceID)
}

func (r *PostgresRepository) scanDevices(ctx context.Context, query string, args ...interface{}) ([]*Device, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []*Device
	for rows.Next() {
		var (
			device Device
			role   *string
		)
		err := rows.Scan(
			&device.ID,
			&device.UserID,
			&device.Name,
			&role,
			&device.ParentDeviceID,
			&device.CreatedAt,
			&device.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if role != nil {
			device.Role = Role(*role)
		}
		devices = append(devices, &device)
	}

	return devices, rows.Err()
}

// nullableRole maps the unset role to NULL.
func nullableRole(role Role) *string {
	if role == RoleUnset {
		return nil
	}
	s := string(role)
	return &s
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)

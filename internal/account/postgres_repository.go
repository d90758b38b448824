package account

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

// NewPostgresRepository creates a new PostgreSQL account repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const accountColumns = `id, email, name, avatar_url, access_token, refresh_token, has_music_access, token_refreshed_at, created_at, updated_at`

// Get retrieves an account by ID.
func (r *PostgresRepository) Get(ctx context.Context, accountID string) (*Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1
	`

	var account Account
	err := r.pool.QueryRow(ctx, query, accountID).Scan(
		&account.ID,
		&account.Email,
		&account.Name,
		&account.AvatarURL,
		&account.AccessToken,
		&account.RefreshToken,
		&account.HasMusicAccess,
		&account.TokenRefreshedAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	return &account, nil
}

// Upsert inserts the account or updates it in place. COALESCE keeps the
// stored refresh token when the incoming one is NULL.
func (r *PostgresRepository) Upsert(ctx context.Context, account *Account) error {
	query := `
		INSERT INTO accounts (id, email, name, avatar_url, access_token, refresh_token, has_music_access, token_refreshed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			avatar_url = EXCLUDED.avatar_url,
			access_token = EXCLUDED.access_token,
			refresh_token = COALESCE(EXCLUDED.refresh_token, accounts.refresh_token),
			has_music_access = EXCLUDED.has_music_access,
			token_refreshed_at = EXCLUDED.token_refreshed_at,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		account.ID,
		account.Email,
		account.Name,
		account.AvatarURL,
		account.AccessToken,
		account.RefreshToken,
		account.HasMusicAccess,
		account.TokenRefreshedAt,
		account.CreatedAt,
		account.UpdatedAt,
	)
	return err
}

// UpdateCredentials replaces an account's access token and stamps the
// refresh time.
func (r *PostgresRepository) UpdateCredentials(ctx context.Context, accountID, accessToken string, refreshedAt time.Time) error {
	query := `
		UPDATE accounts SET
			access_token = $2,
			token_refreshed_at = $3,
			updated_at = $3
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, accountID, accessToken, refreshedAt)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrAccountNotFound
	}

	return nil
}

// SetMusicAccess records the outcome of a music access probe.
func (r *PostgresRepository) SetMusicAccess(ctx context.Context, accountID string, hasAccess bool) error {
	query := `
		UPDATE accounts SET
			has_music_access = $2,
			updated_at = $3
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, accountID, hasAccess, time.Now())
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrAccountNotFound
	}

	return nil
}

// ListStaleCredentials returns accounts holding a refresh token whose access
// token predates the cutoff, oldest first.
func (r *PostgresRepository) ListStaleCredentials(ctx context.Context, cutoff time.Time, limit int) ([]*Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE refresh_token IS NOT NULL AND token_refreshed_at < $1
		ORDER BY token_refreshed_at
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*Account
	for rows.Next() {
		var account Account
		err := rows.Scan(
			&account.ID,
			&account.Email,
			&account.Name,
			&account.AvatarURL,
			&account.AccessToken,
			&account.RefreshToken,
			&account.HasMusicAccess,
			&account.TokenRefreshedAt,
			&account.CreatedAt,
			&account.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, &account)
	}

	return accounts, rows.Err()
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)

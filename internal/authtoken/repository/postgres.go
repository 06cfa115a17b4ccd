package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"content-commerce/backend/internal/authtoken/domain"
	"content-commerce/backend/internal/security"

	"github.com/jmoiron/sqlx"
)

type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a token repository backed by db.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type tokenRow struct {
	Key       string    `db:"key"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

// GetOrCreate inserts a fresh key unless the user already has one, then
// returns the stored token. Concurrent callers observe the same key.
func (r *PostgresRepository) GetOrCreate(ctx context.Context, userID string) (*domain.Token, error) {
	key, err := security.NewTokenKey()
	if err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, `INSERT INTO auth_tokens (key, user_id, created_at)
		VALUES ($1, $2, $3) ON CONFLICT (user_id) DO NOTHING`, key, userID, time.Now().UTC()); err != nil {
		return nil, err
	}
	var row tokenRow
	if err := r.db.GetContext(ctx, &row, `SELECT key, user_id, created_at FROM auth_tokens WHERE user_id = $1`, userID); err != nil {
		return nil, err
	}
	return &domain.Token{Key: row.Key, UserID: row.UserID, CreatedAt: row.CreatedAt}, nil
}

// GetByKey returns the token for key, or nil if not found.
func (r *PostgresRepository) GetByKey(ctx context.Context, key string) (*domain.Token, error) {
	var row tokenRow
	if err := r.db.GetContext(ctx, &row, `SELECT key, user_id, created_at FROM auth_tokens WHERE key = $1`, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &domain.Token{Key: row.Key, UserID: row.UserID, CreatedAt: row.CreatedAt}, nil
}

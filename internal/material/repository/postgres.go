package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"content-commerce/backend/internal/material/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a course repository backed by db.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type courseRow struct {
	ID        string    `db:"id"`
	ServiceID string    `db:"service_id"`
	Title     string    `db:"title"`
	IsPaid    bool      `db:"is_paid"`
	CreatedAt time.Time `db:"created_at"`
}

// GetByID returns the course for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	var row courseRow
	if err := r.db.GetContext(ctx, &row, `SELECT id, service_id, title, is_paid, created_at FROM courses WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &domain.Course{ID: row.ID, ServiceID: row.ServiceID, Title: row.Title, IsPaid: row.IsPaid, CreatedAt: row.CreatedAt}, nil
}

// Create persists c, assigning ID and timestamp when unset.
func (r *PostgresRepository) Create(ctx context.Context, c *domain.Course) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO courses (id, service_id, title, is_paid, created_at)
		VALUES (:id, :service_id, :title, :is_paid, :created_at)`,
		courseRow{ID: c.ID, ServiceID: c.ServiceID, Title: c.Title, IsPaid: c.IsPaid, CreatedAt: c.CreatedAt})
	return err
}

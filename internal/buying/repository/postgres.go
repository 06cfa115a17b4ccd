package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"content-commerce/backend/internal/buying/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a buying repository backed by db.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type packageRow struct {
	ID        string    `db:"id"`
	ServiceID string    `db:"service_id"`
	StoreID   string    `db:"store_id"`
	Label     string    `db:"label"`
	Slug      string    `db:"slug"`
	Price     string    `db:"price"`
	CreatedAt time.Time `db:"created_at"`
}

type storeRow struct {
	ID        string `db:"id"`
	ServiceID string `db:"service_id"`
	Name      string `db:"name"`
	Backend   string `db:"backend"`
}

type contractRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	PackageID string    `db:"package_id"`
	Receipt   string    `db:"receipt"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
}

// GetPackage returns the package for id with its course IDs, or nil if not found.
func (r *PostgresRepository) GetPackage(ctx context.Context, id string) (*domain.Package, error) {
	var row packageRow
	err := r.db.GetContext(ctx, &row, `SELECT id, service_id, store_id, label, slug, price::text AS price, created_at
		FROM packages WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	var courseIDs []string
	if err := r.db.SelectContext(ctx, &courseIDs, `SELECT course_id FROM package_courses WHERE package_id = $1 ORDER BY course_id`, id); err != nil {
		return nil, err
	}
	return &domain.Package{
		ID: row.ID, ServiceID: row.ServiceID, StoreID: row.StoreID, Label: row.Label,
		Slug: row.Slug, Price: row.Price, CourseIDs: courseIDs, CreatedAt: row.CreatedAt,
	}, nil
}

// GetStore returns the store for id, or nil if not found.
func (r *PostgresRepository) GetStore(ctx context.Context, id string) (*domain.Store, error) {
	var row storeRow
	if err := r.db.GetContext(ctx, &row, `SELECT id, service_id, name, backend FROM stores WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &domain.Store{ID: row.ID, ServiceID: row.ServiceID, Name: row.Name, Backend: domain.BackendName(row.Backend)}, nil
}

// CreateStore persists s, assigning an ID when empty.
func (r *PostgresRepository) CreateStore(ctx context.Context, s *domain.Store) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO stores (id, service_id, name, backend)
		VALUES (:id, :service_id, :name, :backend)`,
		storeRow{ID: s.ID, ServiceID: s.ServiceID, Name: s.Name, Backend: string(s.Backend)})
	return err
}

// CreatePackage persists p and its course links in one transaction.
func (r *PostgresRepository) CreatePackage(ctx context.Context, p *domain.Package) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.Price == "" {
		p.Price = "0"
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.NamedExecContext(ctx, `INSERT INTO packages (id, service_id, store_id, label, slug, price, created_at)
		VALUES (:id, :service_id, :store_id, :label, :slug, CAST(:price AS NUMERIC), :created_at)`,
		packageRow{ID: p.ID, ServiceID: p.ServiceID, StoreID: p.StoreID, Label: p.Label, Slug: p.Slug, Price: p.Price, CreatedAt: p.CreatedAt})
	if err != nil {
		return err
	}
	for _, courseID := range p.CourseIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO package_courses (package_id, course_id) VALUES ($1, $2)`, p.ID, courseID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CreateContract persists c, assigning ID and timestamp when unset.
func (r *PostgresRepository) CreateContract(ctx context.Context, c *domain.Contract) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO contracts (id, user_id, package_id, receipt, is_active, created_at)
		VALUES (:id, :user_id, :package_id, :receipt, :is_active, :created_at)`,
		contractRow{ID: c.ID, UserID: c.UserID, PackageID: c.PackageID, Receipt: c.Receipt, IsActive: c.IsActive, CreatedAt: c.CreatedAt})
	return err
}

// ActiveCourseIDs returns the distinct courses covered by the user's active contracts.
func (r *PostgresRepository) ActiveCourseIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `SELECT DISTINCT pc.course_id
		FROM contracts c JOIN package_courses pc ON pc.package_id = c.package_id
		WHERE c.user_id = $1 AND c.is_active
		ORDER BY pc.course_id`, userID)
	return ids, err
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"content-commerce/backend/internal/policy/domain"
)

// PostgresRepository stores access policies in Postgres.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a policy repository that uses the given db for persistence.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type policyRow struct {
	ID        string    `db:"id"`
	ServiceID string    `db:"service_id"`
	Rules     string    `db:"rules"`
	Enabled   bool      `db:"enabled"`
	CreatedAt time.Time `db:"created_at"`
}

const policyColumns = `id, service_id, rules, enabled, created_at`

// GetByID returns the policy for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Policy, error) {
	var row policyRow
	err := r.db.GetContext(ctx, &row, `SELECT `+policyColumns+` FROM access_policies WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rowToDomain(&row), nil
}

// ListByService returns all policies for the given tenant. Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListByService(ctx context.Context, serviceID string) ([]*domain.Policy, error) {
	return r.list(ctx, `SELECT `+policyColumns+` FROM access_policies WHERE service_id = $1 ORDER BY created_at`, serviceID)
}

// GetEnabledPoliciesByService returns the enabled policies for the tenant.
func (r *PostgresRepository) GetEnabledPoliciesByService(ctx context.Context, serviceID string) ([]*domain.Policy, error) {
	return r.list(ctx, `SELECT `+policyColumns+` FROM access_policies WHERE service_id = $1 AND enabled ORDER BY created_at`, serviceID)
}

func (r *PostgresRepository) list(ctx context.Context, query, serviceID string) ([]*domain.Policy, error) {
	var rows []policyRow
	if err := r.db.SelectContext(ctx, &rows, query, serviceID); err != nil {
		return nil, err
	}
	out := make([]*domain.Policy, len(rows))
	for i := range rows {
		out[i] = rowToDomain(&rows[i])
	}
	return out, nil
}

// Create persists the policy, assigning ID and timestamp when unset.
func (r *PostgresRepository) Create(ctx context.Context, p *domain.Policy) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO access_policies (`+policyColumns+`)
		VALUES (:id, :service_id, :rules, :enabled, :created_at)`, policyRow{
		ID: p.ID, ServiceID: p.ServiceID, Rules: p.Rules, Enabled: p.Enabled, CreatedAt: p.CreatedAt,
	})
	return err
}

// Update updates the rules and enabled flag of an existing policy.
func (r *PostgresRepository) Update(ctx context.Context, p *domain.Policy) error {
	_, err := r.db.ExecContext(ctx, `UPDATE access_policies SET rules = $2, enabled = $3 WHERE id = $1`,
		p.ID, p.Rules, p.Enabled)
	return err
}

// Delete removes the policy. Deleting a missing policy is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM access_policies WHERE id = $1`, id)
	return err
}

func rowToDomain(p *policyRow) *domain.Policy {
	if p == nil {
		return nil
	}
	return &domain.Policy{
		ID: p.ID, ServiceID: p.ServiceID, Rules: p.Rules, Enabled: p.Enabled, CreatedAt: p.CreatedAt,
	}
}

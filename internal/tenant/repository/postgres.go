package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"content-commerce/backend/internal/tenant/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a tenant repository backed by db.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type serviceRow struct {
	ID                   string    `db:"id"`
	Name                 string    `db:"name"`
	Slug                 string    `db:"slug"`
	URL                  string    `db:"url"`
	SMTPEmail            string    `db:"smtp_email"`
	ConfirmationRequired bool      `db:"confirmation_required"`
	Language             string    `db:"language"`
	Terms                string    `db:"terms"`
	CreatedAt            time.Time `db:"created_at"`
}

func (r serviceRow) toDomain() *domain.Service {
	return &domain.Service{
		ID:                   r.ID,
		Name:                 r.Name,
		Slug:                 r.Slug,
		URL:                  r.URL,
		SMTPEmail:            r.SMTPEmail,
		ConfirmationRequired: r.ConfirmationRequired,
		Language:             r.Language,
		Terms:                r.Terms,
		CreatedAt:            r.CreatedAt,
	}
}

const serviceColumns = `id, name, slug, url, smtp_email, confirmation_required, language, terms, created_at`

// GetByID returns the tenant for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	return r.getService(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id)
}

// GetBySlug returns the tenant with slug, or nil if not found.
func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*domain.Service, error) {
	return r.getService(ctx, `SELECT `+serviceColumns+` FROM services WHERE slug = $1`, slug)
}

func (r *PostgresRepository) getService(ctx context.Context, query string, arg string) (*domain.Service, error) {
	var row serviceRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.toDomain(), nil
}

// Create persists s, assigning an ID when empty. A tenant created without
// credential configs receives the defaults.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Service) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO services (`+serviceColumns+`)
		VALUES (:id, :name, :slug, :url, :smtp_email, :confirmation_required, :language, :terms, :created_at)`,
		serviceRow{
			ID: s.ID, Name: s.Name, Slug: s.Slug, URL: s.URL, SMTPEmail: s.SMTPEmail,
			ConfirmationRequired: s.ConfirmationRequired, Language: s.Language, Terms: s.Terms, CreatedAt: s.CreatedAt,
		})
	if err != nil {
		return err
	}
	return r.ReplaceCredentialConfigs(ctx, s.ID, domain.DefaultCredentialConfigs(s.ID))
}

type credentialRow struct {
	ID             string `db:"id"`
	ServiceID      string `db:"service_id"`
	Type           string `db:"type"`
	Field          string `db:"field"`
	Label          string `db:"label"`
	HTMLType       string `db:"html_type"`
	Rule           string `db:"rule"`
	NoMatchMessage string `db:"no_match_message"`
	Position       int    `db:"position"`
}

// ListCredentialConfigs returns the tenant's configs ordered by form and position.
func (r *PostgresRepository) ListCredentialConfigs(ctx context.Context, serviceID string) ([]domain.CredentialConfig, error) {
	var rows []credentialRow
	err := r.db.SelectContext(ctx, &rows, `SELECT id, service_id, type, field, label, html_type, rule, no_match_message, position
		FROM credential_configs WHERE service_id = $1 ORDER BY type, position`, serviceID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.CredentialConfig, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.CredentialConfig{
			ID: row.ID, ServiceID: row.ServiceID, Type: domain.CredentialType(row.Type), Field: row.Field,
			Label: row.Label, HTMLType: row.HTMLType, Rule: row.Rule, NoMatchMessage: row.NoMatchMessage, Position: row.Position,
		})
	}
	return out, nil
}

// ReplaceCredentialConfigs validates configs and swaps them in for the tenant.
func (r *PostgresRepository) ReplaceCredentialConfigs(ctx context.Context, serviceID string, configs []domain.CredentialConfig) error {
	if err := domain.ValidateCredentialSetup(configs); err != nil {
		return err
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM credential_configs WHERE service_id = $1`, serviceID); err != nil {
		return err
	}
	for _, c := range configs {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		_, err := tx.NamedExecContext(ctx, `INSERT INTO credential_configs
			(id, service_id, type, field, label, html_type, rule, no_match_message, position)
			VALUES (:id, :service_id, :type, :field, :label, :html_type, :rule, :no_match_message, :position)`,
			credentialRow{
				ID: c.ID, ServiceID: serviceID, Type: string(c.Type), Field: c.Field, Label: c.Label,
				HTMLType: c.HTMLType, Rule: c.Rule, NoMatchMessage: c.NoMatchMessage, Position: c.Position,
			})
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

type emailConfigRow struct {
	ID                  string         `db:"id"`
	ServiceID           sql.NullString `db:"service_id"`
	EventID             sql.NullString `db:"event_id"`
	Type                string         `db:"type"`
	Sender              string         `db:"sender"`
	Subject             string         `db:"subject"`
	HTMLTemplate        string         `db:"html_template"`
	Link                string         `db:"link"`
	LinkExpirationHours int            `db:"link_expiration_hours"`
	CreatedAt           time.Time      `db:"created_at"`
}

// FindEmailConfig returns the config of type typ owned by scope, or nil if none.
func (r *PostgresRepository) FindEmailConfig(ctx context.Context, scope domain.Scope, typ domain.EmailType) (*domain.EmailConfig, error) {
	query := `SELECT id, service_id, event_id, type, sender, subject, html_template, link, link_expiration_hours, created_at
		FROM email_configs WHERE service_id = $1 AND type = $2`
	owner := scope.ServiceID
	if scope.IsEvent() {
		query = `SELECT id, service_id, event_id, type, sender, subject, html_template, link, link_expiration_hours, created_at
		FROM email_configs WHERE event_id = $1 AND type = $2`
		owner = scope.EventID
	}
	var row emailConfigRow
	if err := r.db.GetContext(ctx, &row, query, owner, string(typ)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &domain.EmailConfig{
		ID:                  row.ID,
		Scope:               domain.Scope{ServiceID: row.ServiceID.String, EventID: row.EventID.String},
		Type:                domain.EmailType(row.Type),
		Sender:              row.Sender,
		Subject:             row.Subject,
		HTMLTemplate:        row.HTMLTemplate,
		Link:                row.Link,
		LinkExpirationHours: row.LinkExpirationHours,
		CreatedAt:           row.CreatedAt,
	}, nil
}

// SaveEmailConfig inserts c, or updates the existing config of the same scope and type.
func (r *PostgresRepository) SaveEmailConfig(ctx context.Context, c *domain.EmailConfig) error {
	if !c.Type.Valid() {
		return errors.New("unknown email config type")
	}
	if (c.Scope.ServiceID == "") == (c.Scope.EventID == "") {
		return errors.New("email config needs exactly one of service or event")
	}
	existing, err := r.FindEmailConfig(ctx, c.Scope, c.Type)
	if err != nil {
		return err
	}
	if existing != nil {
		c.ID = existing.ID
		_, err := r.db.ExecContext(ctx, `UPDATE email_configs
			SET sender = $2, subject = $3, html_template = $4, link = $5, link_expiration_hours = $6
			WHERE id = $1`, c.ID, c.Sender, c.Subject, c.HTMLTemplate, c.Link, c.LinkExpirationHours)
		return err
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err = r.db.NamedExecContext(ctx, `INSERT INTO email_configs
		(id, service_id, event_id, type, sender, subject, html_template, link, link_expiration_hours, created_at)
		VALUES (:id, :service_id, :event_id, :type, :sender, :subject, :html_template, :link, :link_expiration_hours, :created_at)`,
		emailConfigRow{
			ID:                  c.ID,
			ServiceID:           sql.NullString{String: c.Scope.ServiceID, Valid: c.Scope.ServiceID != ""},
			EventID:             sql.NullString{String: c.Scope.EventID, Valid: c.Scope.EventID != ""},
			Type:                string(c.Type),
			Sender:              c.Sender,
			Subject:             c.Subject,
			HTMLTemplate:        c.HTMLTemplate,
			Link:                c.Link,
			LinkExpirationHours: c.LinkExpirationHours,
			CreatedAt:           c.CreatedAt,
		})
	return err
}

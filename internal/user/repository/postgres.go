package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"content-commerce/backend/internal/user/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type userRow struct {
	ID           string         `db:"id"`
	ServiceID    string         `db:"service_id"`
	EventID      sql.NullString `db:"event_id"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	FirstName    string         `db:"first_name"`
	LastName     string         `db:"last_name"`
	PasswordHash string         `db:"password_hash"`
	IsVerified   bool           `db:"is_verified"`
	IsPremium    bool           `db:"is_premium"`
	IsDeleted    bool           `db:"is_deleted"`
	Document     string         `db:"document"`
	BirthDate    sql.NullTime   `db:"birth_date"`
	Country      string         `db:"country"`
	ProfileImage string         `db:"profile_image"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

const userColumns = `id, service_id, event_id, username, email, first_name, last_name, password_hash,
	is_verified, is_premium, is_deleted, document, birth_date, country, profile_image, created_at, updated_at`

func (r userRow) toDomain() *domain.User {
	u := &domain.User{
		ID:           r.ID,
		ServiceID:    r.ServiceID,
		EventID:      r.EventID.String,
		Username:     r.Username,
		Email:        r.Email,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		PasswordHash: r.PasswordHash,
		IsVerified:   r.IsVerified,
		IsPremium:    r.IsPremium,
		IsDeleted:    r.IsDeleted,
		Profile: domain.Profile{
			Document:     r.Document,
			Country:      r.Country,
			ProfileImage: r.ProfileImage,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.BirthDate.Valid {
		bd := r.BirthDate.Time
		u.BirthDate = &bd
	}
	return u
}

func fromDomain(u *domain.User) userRow {
	row := userRow{
		ID:           u.ID,
		ServiceID:    u.ServiceID,
		EventID:      sql.NullString{String: u.EventID, Valid: u.EventID != ""},
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PasswordHash: u.PasswordHash,
		IsVerified:   u.IsVerified,
		IsPremium:    u.IsPremium,
		IsDeleted:    u.IsDeleted,
		Document:     u.Document,
		Country:      u.Country,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if u.BirthDate != nil {
		row.BirthDate = sql.NullTime{Time: *u.BirthDate, Valid: true}
	}
	return row
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *PostgresRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var ok bool
	if err := r.db.GetContext(ctx, &ok, `SELECT EXISTS (`+query+`)`, args...); err != nil {
		return false, err
	}
	return ok, nil
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// ListByEmailInService returns the non-deleted users with email in the tenant:
// the tenant member first, then event guests, oldest first.
func (r *PostgresRepository) ListByEmailInService(ctx context.Context, serviceID, email string) ([]*domain.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users
		WHERE service_id = $1 AND lower(email) = lower($2) AND NOT is_deleted
		ORDER BY (event_id IS NOT NULL), created_at, id`, serviceID, email)
}

// ExistsByUsername reports whether any user holds username.
func (r *PostgresRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM users WHERE username = $1`, username)
}

// ExistsByEmailInService reports whether a tenant member (not a guest) uses email.
func (r *PostgresRepository) ExistsByEmailInService(ctx context.Context, serviceID, email string) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM users
		WHERE service_id = $1 AND event_id IS NULL AND lower(email) = lower($2) AND NOT is_deleted`, serviceID, email)
}

// ExistsByDocumentInService reports whether a tenant member uses document.
func (r *PostgresRepository) ExistsByDocumentInService(ctx context.Context, serviceID, document string) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM users
		WHERE service_id = $1 AND event_id IS NULL AND document = $2 AND NOT is_deleted`, serviceID, document)
}

// ExistsByEmailInEvent reports whether the event already has a guest with email.
func (r *PostgresRepository) ExistsByEmailInEvent(ctx context.Context, eventID, email string) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM users WHERE event_id = $1 AND lower(email) = lower($2)`, eventID, email)
}

// ListByEvent returns the event's non-deleted guests ordered by creation.
func (r *PostgresRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users
		WHERE event_id = $1 AND NOT is_deleted ORDER BY created_at`, eventID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*domain.User, error) {
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]*domain.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Create persists u, assigning ID and timestamps when unset.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO users (`+userColumns+`) VALUES (
		:id, :service_id, :event_id, :username, :email, :first_name, :last_name, :password_hash,
		:is_verified, :is_premium, :is_deleted, :document, :birth_date, :country, :profile_image, :created_at, :updated_at)`,
		fromDomain(u))
	return err
}

// SetPremium sets the premium flag. Returns nil if no row was updated.
func (r *PostgresRepository) SetPremium(ctx context.Context, userID string, premium bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET is_premium = $2, updated_at = $3 WHERE id = $1`,
		userID, premium, time.Now().UTC())
	return err
}

// SetVerified sets the verified flag. Returns nil if no row was updated.
func (r *PostgresRepository) SetVerified(ctx context.Context, userID string, verified bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET is_verified = $2, updated_at = $3 WHERE id = $1`,
		userID, verified, time.Now().UTC())
	return err
}

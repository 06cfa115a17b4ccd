package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"content-commerce/backend/internal/social/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a social repository backed by db.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type eventRow struct {
	ID                string    `db:"id"`
	ServiceID         string    `db:"service_id"`
	Title             string    `db:"title"`
	IsOpen            bool      `db:"is_open"`
	Guests            string    `db:"guests"`
	SendEmailToGuests bool      `db:"send_email_to_guests"`
	Link              string    `db:"link"`
	CreatedAt         time.Time `db:"created_at"`
}

type postRow struct {
	ID        string         `db:"id"`
	ServiceID string         `db:"service_id"`
	EventID   sql.NullString `db:"event_id"`
	AuthorID  string         `db:"author_id"`
	Body      string         `db:"body"`
	CreatedAt time.Time      `db:"created_at"`
}

type commentRow struct {
	ID        string    `db:"id"`
	PostID    string    `db:"post_id"`
	AuthorID  string    `db:"author_id"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
}

// GetEvent returns the event for id, or nil if not found.
func (r *PostgresRepository) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	var row eventRow
	err := r.db.GetContext(ctx, &row, `SELECT id, service_id, title, is_open, guests, send_email_to_guests, link, created_at
		FROM events WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &domain.Event{
		ID: row.ID, ServiceID: row.ServiceID, Title: row.Title, IsOpen: row.IsOpen, Guests: row.Guests,
		SendEmailToGuests: row.SendEmailToGuests, Link: row.Link, CreatedAt: row.CreatedAt,
	}, nil
}

// CreateEvent persists e, assigning ID and timestamp when unset.
func (r *PostgresRepository) CreateEvent(ctx context.Context, e *domain.Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO events (id, service_id, title, is_open, guests, send_email_to_guests, link, created_at)
		VALUES (:id, :service_id, :title, :is_open, :guests, :send_email_to_guests, :link, :created_at)`,
		eventRow{
			ID: e.ID, ServiceID: e.ServiceID, Title: e.Title, IsOpen: e.IsOpen, Guests: e.Guests,
			SendEmailToGuests: e.SendEmailToGuests, Link: e.Link, CreatedAt: e.CreatedAt,
		})
	return err
}

// GetPost returns the post for id, or nil if not found.
func (r *PostgresRepository) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	var row postRow
	if err := r.db.GetContext(ctx, &row, `SELECT id, service_id, event_id, author_id, body, created_at FROM posts WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &domain.Post{
		ID: row.ID, ServiceID: row.ServiceID, EventID: row.EventID.String, AuthorID: row.AuthorID,
		Body: row.Body, CreatedAt: row.CreatedAt,
	}, nil
}

// CreatePost persists p, assigning ID and timestamp when unset.
func (r *PostgresRepository) CreatePost(ctx context.Context, p *domain.Post) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO posts (id, service_id, event_id, author_id, body, created_at)
		VALUES (:id, :service_id, :event_id, :author_id, :body, :created_at)`,
		postRow{
			ID: p.ID, ServiceID: p.ServiceID, EventID: sql.NullString{String: p.EventID, Valid: p.EventID != ""},
			AuthorID: p.AuthorID, Body: p.Body, CreatedAt: p.CreatedAt,
		})
	return err
}

// GetComment returns the comment for id with its mentioned user IDs, or nil if not found.
func (r *PostgresRepository) GetComment(ctx context.Context, id string) (*domain.Comment, error) {
	var row commentRow
	if err := r.db.GetContext(ctx, &row, `SELECT id, post_id, author_id, body, created_at FROM comments WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	var mentions []string
	if err := r.db.SelectContext(ctx, &mentions, `SELECT user_id FROM comment_mentions WHERE comment_id = $1 ORDER BY created_at`, id); err != nil {
		return nil, err
	}
	return &domain.Comment{
		ID: row.ID, PostID: row.PostID, AuthorID: row.AuthorID, Body: row.Body,
		MentionIDs: mentions, CreatedAt: row.CreatedAt,
	}, nil
}

// AddMention records that userID is mentioned on the comment. Repeats are ignored.
func (r *PostgresRepository) AddMention(ctx context.Context, commentID, userID string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO comment_mentions (comment_id, user_id, created_at)
		VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`, commentID, userID, time.Now().UTC())
	return err
}

// Package repository persists events, posts, comments and mentions.
package repository

import (
	"context"

	"content-commerce/backend/internal/social/domain"
)

// Repository defines persistence for the social feed.
type Repository interface {
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
	CreateEvent(ctx context.Context, e *domain.Event) error
	GetPost(ctx context.Context, id string) (*domain.Post, error)
	CreatePost(ctx context.Context, p *domain.Post) error
	// GetComment returns the comment with its mentions, or nil if not found.
	GetComment(ctx context.Context, id string) (*domain.Comment, error)
	// AddMention is idempotent.
	AddMention(ctx context.Context, commentID, userID string) error
}

// Package repository persists auth tokens.
package repository

import (
	"context"

	"content-commerce/backend/internal/authtoken/domain"
)

// Repository defines persistence for auth tokens.
type Repository interface {
	// GetOrCreate returns the user's token, creating it on first call.
	GetOrCreate(ctx context.Context, userID string) (*domain.Token, error)
	// GetByKey returns the token for key, or nil if not found.
	GetByKey(ctx context.Context, key string) (*domain.Token, error)
}

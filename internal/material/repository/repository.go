// Package repository persists courses.
package repository

import (
	"context"

	"content-commerce/backend/internal/material/domain"
)

// Repository defines persistence for courses.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Course, error)
	Create(ctx context.Context, c *domain.Course) error
}

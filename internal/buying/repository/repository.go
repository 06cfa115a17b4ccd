// Package repository persists stores, packages and contracts.
package repository

import (
	"context"

	"content-commerce/backend/internal/buying/domain"
)

// Repository defines persistence for the buying records.
type Repository interface {
	// GetPackage returns the package with its course IDs, or nil if not found.
	GetPackage(ctx context.Context, id string) (*domain.Package, error)
	// GetStore returns the store, or nil if not found.
	GetStore(ctx context.Context, id string) (*domain.Store, error)
	CreateStore(ctx context.Context, s *domain.Store) error
	CreatePackage(ctx context.Context, p *domain.Package) error
	CreateContract(ctx context.Context, c *domain.Contract) error
	// ActiveCourseIDs lists the courses covered by the user's active contracts.
	ActiveCourseIDs(ctx context.Context, userID string) ([]string, error)
}

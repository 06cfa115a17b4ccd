package repository

import (
	"context"

	"content-commerce/backend/internal/policy/domain"
)

// Repository defines persistence for access policies.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Policy, error)
	ListByService(ctx context.Context, serviceID string) ([]*domain.Policy, error)
	GetEnabledPoliciesByService(ctx context.Context, serviceID string) ([]*domain.Policy, error)
	Create(ctx context.Context, p *domain.Policy) error
	Update(ctx context.Context, p *domain.Policy) error
	Delete(ctx context.Context, id string) error
}

// Package repository persists tenants, credential configs and email configs.
package repository

import (
	"context"

	"content-commerce/backend/internal/tenant/domain"
)

// Repository defines persistence for tenants and their configuration.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Service, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Service, error)
	Create(ctx context.Context, s *domain.Service) error
	ListCredentialConfigs(ctx context.Context, serviceID string) ([]domain.CredentialConfig, error)
	// ReplaceCredentialConfigs swaps the tenant's configs in one transaction.
	ReplaceCredentialConfigs(ctx context.Context, serviceID string, configs []domain.CredentialConfig) error
	// FindEmailConfig returns nil, nil when no config exists for the scope and type.
	FindEmailConfig(ctx context.Context, scope domain.Scope, typ domain.EmailType) (*domain.EmailConfig, error)
	SaveEmailConfig(ctx context.Context, c *domain.EmailConfig) error
}

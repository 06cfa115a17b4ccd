package repository

import (
	"context"

	"content-commerce/backend/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// ListByEmailInService matches email case-insensitively, tenant member before guests.
	ListByEmailInService(ctx context.Context, serviceID, email string) ([]*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmailInService(ctx context.Context, serviceID, email string) (bool, error)
	ExistsByDocumentInService(ctx context.Context, serviceID, document string) (bool, error)
	ExistsByEmailInEvent(ctx context.Context, eventID, email string) (bool, error)
	ListByEvent(ctx context.Context, eventID string) ([]*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	SetPremium(ctx context.Context, userID string, premium bool) error
	SetVerified(ctx context.Context, userID string, verified bool) error
}

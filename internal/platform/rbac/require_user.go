// Package rbac holds the caller checks shared by the gRPC handlers.
package rbac

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"content-commerce/backend/internal/server/interceptors"
	userdomain "content-commerce/backend/internal/user/domain"
)

// RequireUser ensures the caller is authenticated and not deleted.
// Returns the user on success; returns a gRPC Unauthenticated error on failure.
func RequireUser(ctx context.Context) (*userdomain.User, error) {
	u, ok := interceptors.GetUser(ctx)
	if !ok || u.ID == "" || u.IsDeleted {
		return nil, status.Error(codes.Unauthenticated, "user context required")
	}
	return u, nil
}

// RequireMember ensures the caller is an authenticated tenant member. Event
// guests get PermissionDenied.
func RequireMember(ctx context.Context) (*userdomain.User, error) {
	u, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	if u.IsGuest() {
		return nil, status.Error(codes.PermissionDenied, "event guests cannot perform this action")
	}
	return u, nil
}

// RequireServiceMember ensures the caller is a tenant member of serviceID.
func RequireServiceMember(ctx context.Context, serviceID string) (*userdomain.User, error) {
	u, err := RequireMember(ctx)
	if err != nil {
		return nil, err
	}
	if u.ServiceID != serviceID {
		return nil, status.Error(codes.PermissionDenied, "not a member of this service")
	}
	return u, nil
}

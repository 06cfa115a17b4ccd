package handler

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	commercev1 "content-commerce/backend/api/commerce/v1"
	"content-commerce/backend/internal/buying/domain"
	"content-commerce/backend/internal/buying/service"
	"content-commerce/backend/internal/platform/rbac"
	"content-commerce/backend/internal/policy/engine"
	userdomain "content-commerce/backend/internal/user/domain"
)

// Buying is the buying service used by the handler.
type Buying interface {
	Purchase(ctx context.Context, u *userdomain.User, packageID, receipt string) (*domain.Contract, error)
	CanAccess(ctx context.Context, u *userdomain.User, courseID string) (engine.AccessResult, error)
}

// Server implements BuyingService. Both RPCs act for the authenticated caller.
type Server struct {
	commercev1.UnimplementedBuyingServiceServer
	buying Buying
}

// NewServer returns a new Buying gRPC server. buying may be nil; then all RPCs return Unimplemented.
func NewServer(buying Buying) *Server {
	return &Server{buying: buying}
}

// CreateContract verifies the store receipt and records the caller's purchase of "package_id".
func (s *Server) CreateContract(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.buying == nil {
		return nil, status.Error(codes.Unimplemented, "method CreateContract not implemented")
	}
	u, err := rbac.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	packageID := strings.TrimSpace(commercev1.String(req, "package_id"))
	if packageID == "" {
		return nil, status.Error(codes.InvalidArgument, "package_id required")
	}
	receipt := strings.TrimSpace(commercev1.String(req, "receipt"))
	if receipt == "" {
		return nil, status.Error(codes.InvalidArgument, "receipt required")
	}
	c, err := s.buying.Purchase(ctx, u, packageID, receipt)
	if err != nil {
		return nil, buyingError(err)
	}
	resp, err := structpb.NewStruct(map[string]interface{}{"contract": contractToMap(c)})
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return resp, nil
}

// CheckCourseAccess reports whether the caller may open "course_id".
func (s *Server) CheckCourseAccess(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.buying == nil {
		return nil, status.Error(codes.Unimplemented, "method CheckCourseAccess not implemented")
	}
	u, err := rbac.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	courseID := strings.TrimSpace(commercev1.String(req, "course_id"))
	if courseID == "" {
		return nil, status.Error(codes.InvalidArgument, "course_id required")
	}
	res, err := s.buying.CanAccess(ctx, u, courseID)
	if err != nil {
		return nil, buyingError(err)
	}
	resp, err := structpb.NewStruct(map[string]interface{}{
		"allowed": res.Allowed,
		"reason":  res.Reason,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return resp, nil
}

func buyingError(err error) error {
	switch {
	case errors.Is(err, service.ErrUserRequired):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, service.ErrPackageNotFound), errors.Is(err, service.ErrCourseNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrInvalidReceipt):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrStoreNotFound), errors.Is(err, service.ErrPurchaseStopped):
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	return status.Error(codes.Internal, "buying operation failed")
}

func contractToMap(c *domain.Contract) map[string]interface{} {
	if c == nil {
		return nil
	}
	m := map[string]interface{}{
		"id":         c.ID,
		"user_id":    c.UserID,
		"package_id": c.PackageID,
		"is_active":  c.IsActive,
	}
	if !c.CreatedAt.IsZero() {
		m["created_at"] = c.CreatedAt.UTC().Format(time.RFC3339)
	}
	return m
}

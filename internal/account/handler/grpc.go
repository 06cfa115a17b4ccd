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
	"content-commerce/backend/internal/account/service"
	tenantdomain "content-commerce/backend/internal/tenant/domain"
	userdomain "content-commerce/backend/internal/user/domain"
)

// Accounts is the account service used by the handler.
type Accounts interface {
	Register(ctx context.Context, slug string, fields map[string]string) (*service.AuthResult, error)
	Login(ctx context.Context, slug string, fields map[string]string) (*service.AuthResult, error)
	ConfirmEmail(ctx context.Context, key string) (*userdomain.User, error)
}

// Server implements AccountService for registration, login and email
// confirmation. All three methods are public.
type Server struct {
	commercev1.UnimplementedAccountServiceServer
	accounts Accounts
}

// NewServer returns a new Account gRPC server. accounts may be nil; then all RPCs return Unimplemented.
func NewServer(accounts Accounts) *Server {
	return &Server{accounts: accounts}
}

// Register creates a user in the tenant named by "service" from the submitted
// form "fields".
func (s *Server) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.accounts == nil {
		return nil, status.Error(codes.Unimplemented, "method Register not implemented")
	}
	slug := strings.TrimSpace(commercev1.String(req, "service"))
	if slug == "" {
		return nil, status.Error(codes.InvalidArgument, "service required")
	}
	res, err := s.accounts.Register(ctx, slug, commercev1.StringMap(req, "fields"))
	if err != nil {
		return nil, accountError(err)
	}
	return authResultToStruct(res)
}

// Login checks the submitted credentials and returns the user's token.
func (s *Server) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.accounts == nil {
		return nil, status.Error(codes.Unimplemented, "method Login not implemented")
	}
	slug := strings.TrimSpace(commercev1.String(req, "service"))
	if slug == "" {
		return nil, status.Error(codes.InvalidArgument, "service required")
	}
	res, err := s.accounts.Login(ctx, slug, commercev1.StringMap(req, "fields"))
	if err != nil {
		return nil, accountError(err)
	}
	return authResultToStruct(res)
}

// ConfirmEmail verifies the owner of "token".
func (s *Server) ConfirmEmail(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.accounts == nil {
		return nil, status.Error(codes.Unimplemented, "method ConfirmEmail not implemented")
	}
	key := strings.TrimSpace(commercev1.String(req, "token"))
	if key == "" {
		return nil, status.Error(codes.InvalidArgument, "token required")
	}
	u, err := s.accounts.ConfirmEmail(ctx, key)
	if err != nil {
		return nil, accountError(err)
	}
	resp, err := structpb.NewStruct(map[string]interface{}{"user": userToMap(u)})
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return resp, nil
}

func accountError(err error) error {
	var fieldErr *tenantdomain.FieldError
	var ruleErr *tenantdomain.RuleError
	switch {
	case errors.As(err, &fieldErr):
		return status.Error(codes.InvalidArgument, fieldErr.Error())
	case errors.As(err, &ruleErr):
		return status.Error(codes.FailedPrecondition, "credential configuration is invalid")
	case errors.Is(err, service.ErrPasswordMismatch):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrServiceNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrEmailAlreadyRegistered), errors.Is(err, service.ErrDocumentAlreadyRegistered):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, service.ErrEmailNotConfirmed), errors.Is(err, service.ErrRegistrationStopped):
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	return status.Error(codes.Internal, "account operation failed")
}

func authResultToStruct(res *service.AuthResult) (*structpb.Struct, error) {
	m := map[string]interface{}{"user": userToMap(res.User)}
	if res.Token != nil {
		m["token"] = res.Token.Key
	}
	resp, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return resp, nil
}

func userToMap(u *userdomain.User) map[string]interface{} {
	if u == nil {
		return nil
	}
	m := map[string]interface{}{
		"id":          u.ID,
		"service_id":  u.ServiceID,
		"username":    u.Username,
		"email":       u.Email,
		"first_name":  u.FirstName,
		"last_name":   u.LastName,
		"is_verified": u.IsVerified,
		"is_premium":  u.IsPremium,
	}
	if u.EventID != "" {
		m["event_id"] = u.EventID
	}
	if !u.CreatedAt.IsZero() {
		m["created_at"] = u.CreatedAt.UTC().Format(time.RFC3339)
	}
	return m
}

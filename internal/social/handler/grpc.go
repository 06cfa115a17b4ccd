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
	"content-commerce/backend/internal/platform/rbac"
	"content-commerce/backend/internal/social/domain"
	"content-commerce/backend/internal/social/service"
)

// Social is the social service used by the handler.
type Social interface {
	ProvisionGuests(ctx context.Context, eventID string) (*service.ProvisionResult, error)
	MentionUser(ctx context.Context, commentID, userID string) error
	PublishPost(ctx context.Context, post *domain.Post) (*domain.Post, error)
}

// EventGetter resolves an event so the caller's service can be checked.
type EventGetter interface {
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
}

// Server implements SocialService.
type Server struct {
	commercev1.UnimplementedSocialServiceServer
	social Social
	events EventGetter
}

// NewServer returns a new Social gRPC server. social may be nil; then all RPCs return Unimplemented.
func NewServer(social Social, events EventGetter) *Server {
	return &Server{social: social, events: events}
}

// ProvisionGuests creates the guest users listed on "event_id". The caller must
// be a member of the event's service.
func (s *Server) ProvisionGuests(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.social == nil || s.events == nil {
		return nil, status.Error(codes.Unimplemented, "method ProvisionGuests not implemented")
	}
	eventID := strings.TrimSpace(commercev1.String(req, "event_id"))
	if eventID == "" {
		return nil, status.Error(codes.InvalidArgument, "event_id required")
	}
	ev, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to look up event")
	}
	if ev == nil {
		return nil, status.Error(codes.NotFound, "event not found")
	}
	if _, err := rbac.RequireServiceMember(ctx, ev.ServiceID); err != nil {
		return nil, err
	}
	res, err := s.social.ProvisionGuests(ctx, eventID)
	if err != nil {
		return nil, socialError(err)
	}
	created := make([]interface{}, 0, len(res.Created))
	for _, u := range res.Created {
		created = append(created, map[string]interface{}{
			"id":       u.ID,
			"username": u.Username,
			"email":    u.Email,
		})
	}
	skipped := make([]interface{}, 0, len(res.Skipped))
	for _, email := range res.Skipped {
		skipped = append(skipped, email)
	}
	resp, err := structpb.NewStruct(map[string]interface{}{"created": created, "skipped": skipped})
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return resp, nil
}

// MentionUser records a mention of "user_id" on "comment_id" and notifies the user.
func (s *Server) MentionUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.social == nil {
		return nil, status.Error(codes.Unimplemented, "method MentionUser not implemented")
	}
	if _, err := rbac.RequireUser(ctx); err != nil {
		return nil, err
	}
	commentID := strings.TrimSpace(commercev1.String(req, "comment_id"))
	if commentID == "" {
		return nil, status.Error(codes.InvalidArgument, "comment_id required")
	}
	userID := strings.TrimSpace(commercev1.String(req, "user_id"))
	if userID == "" {
		return nil, status.Error(codes.InvalidArgument, "user_id required")
	}
	if err := s.social.MentionUser(ctx, commentID, userID); err != nil {
		return nil, socialError(err)
	}
	return &structpb.Struct{}, nil
}

// PublishPost publishes a post by the caller, on "event_id" when given.
func (s *Server) PublishPost(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.social == nil {
		return nil, status.Error(codes.Unimplemented, "method PublishPost not implemented")
	}
	u, err := rbac.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	body := strings.TrimSpace(commercev1.String(req, "body"))
	if body == "" {
		return nil, status.Error(codes.InvalidArgument, "body required")
	}
	post, err := s.social.PublishPost(ctx, &domain.Post{
		ServiceID: u.ServiceID,
		EventID:   strings.TrimSpace(commercev1.String(req, "event_id")),
		AuthorID:  u.ID,
		Body:      body,
	})
	if err != nil {
		return nil, socialError(err)
	}
	resp, err := structpb.NewStruct(map[string]interface{}{"post": postToMap(post)})
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return resp, nil
}

func socialError(err error) error {
	var guestErr *domain.GuestListError
	switch {
	case errors.As(err, &guestErr):
		return status.Error(codes.InvalidArgument, guestErr.Error())
	case errors.Is(err, service.ErrEventNotFound), errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrCommentNotFound), errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrServiceNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrNotificationStopped), errors.Is(err, service.ErrGuestCreationStopped):
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	return status.Error(codes.Internal, "social operation failed")
}

func postToMap(p *domain.Post) map[string]interface{} {
	if p == nil {
		return nil
	}
	m := map[string]interface{}{
		"id":         p.ID,
		"service_id": p.ServiceID,
		"author_id":  p.AuthorID,
		"body":       p.Body,
	}
	if p.EventID != "" {
		m["event_id"] = p.EventID
	}
	if !p.CreatedAt.IsZero() {
		m["created_at"] = p.CreatedAt.UTC().Format(time.RFC3339)
	}
	return m
}

// Package service provisions event guests and drives the social notifications:
// mentions on comments and new posts on events.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"content-commerce/backend/internal/notification"
	"content-commerce/backend/internal/social/domain"
	tenantdomain "content-commerce/backend/internal/tenant/domain"
	userdomain "content-commerce/backend/internal/user/domain"
	"content-commerce/backend/internal/workflow"
)

// Sentinel errors for the social service; handlers map them to gRPC codes.
var (
	ErrEventNotFound        = errors.New("event not found")
	ErrPostNotFound         = errors.New("post not found")
	ErrCommentNotFound      = errors.New("comment not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrServiceNotFound      = errors.New("service not found")
	ErrNotificationStopped  = errors.New("notification stopped")
	ErrGuestCreationStopped = errors.New("guest creation stopped")
)

const defaultConcurrency = 4

// Repo is the minimal social repository needed by the service.
type Repo interface {
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
	GetPost(ctx context.Context, id string) (*domain.Post, error)
	CreatePost(ctx context.Context, p *domain.Post) error
	GetComment(ctx context.Context, id string) (*domain.Comment, error)
}

// UserRepo is the minimal user repository needed by the service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	ExistsByEmailInEvent(ctx context.Context, eventID, email string) (bool, error)
	ListByEvent(ctx context.Context, eventID string) ([]*userdomain.User, error)
}

// TenantRepo is the minimal tenant repository needed by the service.
type TenantRepo interface {
	GetByID(ctx context.Context, id string) (*tenantdomain.Service, error)
}

// ProvisionResult lists the guests created and the emails skipped because the
// guest already existed.
type ProvisionResult struct {
	Created []*userdomain.User
	Skipped []string
}

// NotifyResult counts the new-post pipelines that delivered or stopped.
type NotifyResult struct {
	Sent    int
	Stopped int
}

// SocialService implements guest provisioning and the social notifications.
type SocialService struct {
	repo        Repo
	users       UserRepo
	tenants     TenantRepo
	pipelines   *workflow.Pipelines
	producer    notification.Producer
	concurrency int
	logger      *slog.Logger
	intN        func(n int) int
}

// NewSocialService returns a SocialService. With a nil producer, new posts are
// notified inline by PublishPost. concurrency bounds the new-post pipelines run
// at once; zero selects a default.
func NewSocialService(repo Repo, users UserRepo, tenants TenantRepo, pipelines *workflow.Pipelines, producer notification.Producer, concurrency int, logger *slog.Logger) *SocialService {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SocialService{
		repo:        repo,
		users:       users,
		tenants:     tenants,
		pipelines:   pipelines,
		producer:    producer,
		concurrency: concurrency,
		logger:      logger,
		intN:        rand.IntN,
	}
}

// ProvisionGuests creates a verified guest user for every line of the event's
// guest list not yet registered on the event. Guests get an invitation email
// when the event asks for it. The whole list is validated first; nothing is
// created when any line is malformed.
func (s *SocialService) ProvisionGuests(ctx context.Context, eventID string) (*ProvisionResult, error) {
	ev, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, ErrEventNotFound
	}
	guests, err := ev.ParseGuests()
	if err != nil {
		return nil, err
	}
	svc, err := s.tenants.GetByID(ctx, ev.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}

	res := &ProvisionResult{}
	for _, g := range guests {
		exists, err := s.users.ExistsByEmailInEvent(ctx, ev.ID, g.Email)
		if err != nil {
			return res, err
		}
		if exists {
			res.Skipped = append(res.Skipped, g.Email)
			continue
		}
		p := s.pipelines.CreateUser(workflow.UserParams{
			FirstName:  fmt.Sprintf("Guest %d", 10000+s.intN(90000)),
			LastName:   ev.Title,
			Email:      g.Email,
			Password:   g.Password,
			Service:    svc,
			Event:      ev,
			IsVerified: true,
			SendMail:   ev.SendEmailToGuests,
			EmailType:  tenantdomain.EmailGuestInvitation,
		})
		if err := p.Run(ctx); err != nil {
			return res, fmt.Errorf("guest on line %d: %w", g.Line, err)
		}
		if p.Stopped() {
			return res, fmt.Errorf("%w: line %d: %s", ErrGuestCreationStopped, g.Line, p.StopReason())
		}
		res.Created = append(res.Created, p.State.User)
	}
	s.logger.InfoContext(ctx, "social: guests provisioned", "event_id", ev.ID, "created", len(res.Created), "skipped", len(res.Skipped))
	return res, nil
}

// MentionUser records the mention of userID on the comment and notifies the user.
func (s *SocialService) MentionUser(ctx context.Context, commentID, userID string) error {
	c, err := s.repo.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrCommentNotFound
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil || u.IsDeleted {
		return ErrUserNotFound
	}
	p := s.pipelines.MentionGuest(u, c)
	if err := p.Run(ctx); err != nil {
		return err
	}
	if p.Stopped() {
		return fmt.Errorf("%w: %s", ErrNotificationStopped, p.StopReason())
	}
	return nil
}

// PublishPost persists the post. Posts on an event are announced on Kafka when
// a producer is configured, otherwise the guests are notified inline.
func (s *SocialService) PublishPost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	if err := post.Validate(); err != nil {
		return nil, err
	}
	if post.EventID != "" {
		ev, err := s.repo.GetEvent(ctx, post.EventID)
		if err != nil {
			return nil, err
		}
		if ev == nil || ev.ServiceID != post.ServiceID {
			return nil, ErrEventNotFound
		}
	}
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	if post.EventID == "" {
		return post, nil
	}

	if s.producer != nil {
		err := s.producer.Publish(ctx, notification.NewPostPublished(post.ID, post.EventID, post.ServiceID))
		if err == nil {
			return post, nil
		}
		s.logger.WarnContext(ctx, "social: publish failed, notifying inline", "post_id", post.ID, "error", err)
	}
	if _, err := s.NotifyPostGuests(ctx, post.ID); err != nil {
		return post, err
	}
	return post, nil
}

// NotifyPostGuests runs one new-post pipeline per guest of the post's event.
// At most the configured number of pipelines run at once; the first failure
// cancels the remaining ones.
func (s *SocialService) NotifyPostGuests(ctx context.Context, postID string) (NotifyResult, error) {
	post, err := s.repo.GetPost(ctx, postID)
	if err != nil {
		return NotifyResult{}, err
	}
	if post == nil {
		return NotifyResult{}, ErrPostNotFound
	}
	if post.EventID == "" {
		return NotifyResult{}, nil
	}
	guests, err := s.users.ListByEvent(ctx, post.EventID)
	if err != nil {
		return NotifyResult{}, err
	}

	var sent, stopped atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, guest := range guests {
		if guest.IsDeleted || guest.ID == post.AuthorID {
			continue
		}
		g.Go(func() error {
			p := s.pipelines.NotifyNewPost(guest, post)
			if err := p.Run(gctx); err != nil {
				return fmt.Errorf("notify guest %s: %w", guest.ID, err)
			}
			if p.Stopped() {
				stopped.Add(1)
			} else {
				sent.Add(1)
			}
			return nil
		})
	}
	err = g.Wait()
	return NotifyResult{Sent: int(sent.Load()), Stopped: int(stopped.Load())}, err
}

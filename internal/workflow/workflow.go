// Package workflow composes the domain pipelines: user and guest creation,
// purchase contracts, mention notifications and new-post notifications.
package workflow

import (
	"context"
	"log/slog"
	"math/rand/v2"

	authtokendomain "content-commerce/backend/internal/authtoken/domain"
	buyingdomain "content-commerce/backend/internal/buying/domain"
	"content-commerce/backend/internal/mail"
	"content-commerce/backend/internal/pipeline"
	"content-commerce/backend/internal/security"
	socialdomain "content-commerce/backend/internal/social/domain"
	tenantdomain "content-commerce/backend/internal/tenant/domain"
	userdomain "content-commerce/backend/internal/user/domain"
)

// UserRepo is the minimal user repository needed by the pipelines.
type UserRepo interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, u *userdomain.User) error
	SetPremium(ctx context.Context, userID string, premium bool) error
}

// TokenRepo is the minimal auth token repository needed by the pipelines.
type TokenRepo interface {
	GetOrCreate(ctx context.Context, userID string) (*authtokendomain.Token, error)
}

// ContractRepo is the minimal buying repository needed by the pipelines.
type ContractRepo interface {
	CreateContract(ctx context.Context, c *buyingdomain.Contract) error
}

// MentionRepo is the minimal social repository needed by the pipelines.
type MentionRepo interface {
	AddMention(ctx context.Context, commentID, userID string) error
	GetEvent(ctx context.Context, id string) (*socialdomain.Event, error)
}

// TenantRepo is the minimal tenant repository needed by the pipelines.
type TenantRepo interface {
	GetByID(ctx context.Context, id string) (*tenantdomain.Service, error)
	FindEmailConfig(ctx context.Context, scope tenantdomain.Scope, typ tenantdomain.EmailType) (*tenantdomain.EmailConfig, error)
}

// Deps are the collaborators shared by every pipeline built by Pipelines.
type Deps struct {
	Users     UserRepo
	Tokens    TokenRepo
	Contracts ContractRepo
	Social    MentionRepo
	Tenants   TenantRepo
	Hasher    *security.Hasher
	Mail      *mail.Registry
	// DefaultFrom is used when a tenant has no SMTP email.
	DefaultFrom string
	// DevEmail, when set, receives every message instead of the user.
	DevEmail string
	Logger   *slog.Logger
	Observer pipeline.Observer
	// IntN returns a random int in [0, n). Defaults to math/rand/v2.IntN.
	IntN func(n int) int
}

// Pipelines builds domain pipelines bound to one set of dependencies.
type Pipelines struct {
	deps Deps
}

// New returns a Pipelines using d.
func New(d Deps) *Pipelines {
	if d.IntN == nil {
		d.IntN = rand.IntN
	}
	if d.Hasher == nil {
		d.Hasher = security.NewHasher(0)
	}
	if d.Mail == nil {
		d.Mail = mail.NewRegistry(mail.SenderDummy)
		d.Mail.Register(mail.SenderDummy, mail.NewDummySender())
	}
	return &Pipelines{deps: d}
}

func (p *Pipelines) options() []pipeline.Option {
	var opts []pipeline.Option
	if p.deps.Logger != nil {
		opts = append(opts, pipeline.WithRunLogger(p.deps.Logger))
	}
	if p.deps.Observer != nil {
		opts = append(opts, pipeline.WithObserver(p.deps.Observer))
	}
	return opts
}

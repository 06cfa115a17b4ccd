// Package app wires repositories, pipelines and domain services from config.
// It is shared by the server, worker and seed commands.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	accountservice "content-commerce/backend/internal/account/service"
	authtokenrepo "content-commerce/backend/internal/authtoken/repository"
	"content-commerce/backend/internal/buying/backend"
	buyingdomain "content-commerce/backend/internal/buying/domain"
	buyingrepo "content-commerce/backend/internal/buying/repository"
	buyingservice "content-commerce/backend/internal/buying/service"
	"content-commerce/backend/internal/config"
	"content-commerce/backend/internal/mail"
	materialrepo "content-commerce/backend/internal/material/repository"
	"content-commerce/backend/internal/notification"
	"content-commerce/backend/internal/pipeline"
	"content-commerce/backend/internal/policy/engine"
	policyrepo "content-commerce/backend/internal/policy/repository"
	"content-commerce/backend/internal/security"
	socialrepo "content-commerce/backend/internal/social/repository"
	socialservice "content-commerce/backend/internal/social/service"
	tenantrepo "content-commerce/backend/internal/tenant/repository"
	userrepo "content-commerce/backend/internal/user/repository"
	"content-commerce/backend/internal/workflow"
)

// Repositories are the Postgres repositories over one connection.
type Repositories struct {
	Users    *userrepo.PostgresRepository
	Tokens   *authtokenrepo.PostgresRepository
	Tenants  *tenantrepo.PostgresRepository
	Buying   *buyingrepo.PostgresRepository
	Courses  *materialrepo.PostgresRepository
	Social   *socialrepo.PostgresRepository
	Policies *policyrepo.PostgresRepository
}

// NewRepositories returns every repository bound to conn.
func NewRepositories(conn *sqlx.DB) *Repositories {
	return &Repositories{
		Users:    userrepo.NewPostgresRepository(conn),
		Tokens:   authtokenrepo.NewPostgresRepository(conn),
		Tenants:  tenantrepo.NewPostgresRepository(conn),
		Buying:   buyingrepo.NewPostgresRepository(conn),
		Courses:  materialrepo.NewPostgresRepository(conn),
		Social:   socialrepo.NewPostgresRepository(conn),
		Policies: policyrepo.NewPostgresRepository(conn),
	}
}

// App holds the wired domain services.
type App struct {
	Repos     *Repositories
	Pipelines *workflow.Pipelines
	Policy    *engine.OPAEvaluator
	Accounts  *accountservice.AccountService
	Buying    *buyingservice.BuyingService
	Social    *socialservice.SocialService
}

// Options are the optional collaborators of New.
type Options struct {
	Logger   *slog.Logger
	Observer pipeline.Observer
	// Producer announces published posts. A nil *notification.KafkaProducer is
	// treated as absent so posts are then notified inline.
	Producer *notification.KafkaProducer
}

// New wires the services over conn using cfg.
func New(cfg *config.Config, conn *sqlx.DB, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	backends, err := ReceiptBackends(cfg)
	if err != nil {
		return nil, err
	}
	repos := NewRepositories(conn)
	hasher := security.NewHasher(cfg.BcryptCost)
	pipelines := workflow.New(workflow.Deps{
		Users:       repos.Users,
		Tokens:      repos.Tokens,
		Contracts:   repos.Buying,
		Social:      repos.Social,
		Tenants:     repos.Tenants,
		Hasher:      hasher,
		Mail:        MailRegistry(cfg),
		DefaultFrom: cfg.DefaultFromEmail,
		DevEmail:    cfg.DevEmail,
		Logger:      logger,
		Observer:    opts.Observer,
	})
	policy := engine.NewOPAEvaluator(repos.Policies, logger)

	var producer notification.Producer
	if opts.Producer != nil {
		producer = opts.Producer
	}

	return &App{
		Repos:     repos,
		Pipelines: pipelines,
		Policy:    policy,
		Accounts:  accountservice.NewAccountService(repos.Tenants, repos.Users, repos.Tokens, hasher, pipelines),
		Buying:    buyingservice.NewBuyingService(repos.Buying, repos.Courses, backends, pipelines, policy, logger),
		Social:    socialservice.NewSocialService(repos.Social, repos.Users, repos.Tenants, pipelines, producer, cfg.NotifyConcurrency, logger),
	}, nil
}

// MailRegistry returns the mail transports: dummy always, SendGrid when an API
// key is configured. EMAIL_SENDER selects the fallback for configs without a sender.
func MailRegistry(cfg *config.Config) *mail.Registry {
	reg := mail.NewRegistry(cfg.EmailSender)
	reg.Register(mail.SenderDummy, mail.NewDummySender())
	if cfg.SendGridAPIKey != "" {
		reg.Register(mail.SenderSendGrid, mail.NewSendGridSender(cfg.SendGridAPIKey, cfg.SendGridBaseURL))
	}
	return reg
}

// ReceiptBackends returns the receipt verification backends: dummy always,
// Apple when a shared secret or App Store Server API key is configured.
func ReceiptBackends(cfg *config.Config) (*backend.Registry, error) {
	reg := backend.NewRegistry()
	if cfg.AppleSharedSecret == "" && !cfg.AppStoreServerAPIEnabled() {
		return reg, nil
	}
	appleCfg := backend.AppleConfig{
		SharedSecret: cfg.AppleSharedSecret,
		VerifyURL:    cfg.AppleVerifyURL,
		IssuerID:     cfg.AppleIssuerID,
		KeyID:        cfg.AppleKeyID,
		BundleID:     cfg.AppleBundleID,
		ServerURL:    cfg.AppleServerAPIURL,
	}
	if cfg.AppStoreServerAPIEnabled() {
		key, err := security.ParseECPrivateKey(cfg.ApplePrivateKey)
		if err != nil {
			return nil, fmt.Errorf("apple private key: %w", err)
		}
		appleCfg.PrivateKey = key
	}
	reg.Register(buyingdomain.BackendApple, backend.NewApple(appleCfg))
	return reg, nil
}

// NotifyHandler returns the notification consumer handler that fans a published
// post out to its event guests.
func (a *App) NotifyHandler(logger *slog.Logger) notification.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, ev notification.PostPublished) error {
		res, err := a.Social.NotifyPostGuests(ctx, ev.PostID)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "worker: post notified", "post_id", ev.PostID, "event_id", ev.EventID, "sent", res.Sent, "stopped", res.Stopped)
		return nil
	}
}

// Package service implements purchases and content access on top of the
// contract pipeline and the content-access policy.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"content-commerce/backend/internal/buying/backend"
	"content-commerce/backend/internal/buying/domain"
	materialdomain "content-commerce/backend/internal/material/domain"
	"content-commerce/backend/internal/policy/engine"
	userdomain "content-commerce/backend/internal/user/domain"
	"content-commerce/backend/internal/workflow"
)

// Sentinel errors for the buying service; handlers map them to gRPC codes.
var (
	ErrUserRequired    = errors.New("user is required")
	ErrPackageNotFound = errors.New("package not found")
	ErrStoreNotFound   = errors.New("store not found")
	ErrInvalidReceipt  = errors.New("invalid receipt")
	ErrCourseNotFound  = errors.New("course not found")
	ErrPurchaseStopped = errors.New("purchase stopped")
)

// Repo is the minimal buying repository needed by the service.
type Repo interface {
	GetPackage(ctx context.Context, id string) (*domain.Package, error)
	GetStore(ctx context.Context, id string) (*domain.Store, error)
	ActiveCourseIDs(ctx context.Context, userID string) ([]string, error)
}

// CourseRepo is the minimal course repository needed by the service.
type CourseRepo interface {
	GetByID(ctx context.Context, id string) (*materialdomain.Course, error)
}

// BuyingService verifies receipts, records contracts and answers access checks.
type BuyingService struct {
	repo      Repo
	courses   CourseRepo
	backends  *backend.Registry
	pipelines *workflow.Pipelines
	access    engine.Evaluator
	logger    *slog.Logger
}

// NewBuyingService returns a BuyingService. A nil backends registry only knows
// the dummy backend.
func NewBuyingService(repo Repo, courses CourseRepo, backends *backend.Registry, pipelines *workflow.Pipelines, access engine.Evaluator, logger *slog.Logger) *BuyingService {
	if backends == nil {
		backends = backend.NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BuyingService{
		repo:      repo,
		courses:   courses,
		backends:  backends,
		pipelines: pipelines,
		access:    access,
		logger:    logger,
	}
}

// Purchase verifies receipt with the package's store and records the contract.
// The package must belong to the user's service.
func (s *BuyingService) Purchase(ctx context.Context, u *userdomain.User, packageID, receipt string) (*domain.Contract, error) {
	if u == nil {
		return nil, ErrUserRequired
	}
	pkg, err := s.repo.GetPackage(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if pkg == nil || pkg.ServiceID != u.ServiceID {
		return nil, ErrPackageNotFound
	}
	store, err := s.repo.GetStore(ctx, pkg.StoreID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, ErrStoreNotFound
	}
	b, err := s.backends.Get(store.Backend)
	if err != nil {
		return nil, err
	}
	valid, err := b.IsValidReceipt(ctx, receipt)
	if err != nil {
		return nil, fmt.Errorf("verify receipt: %w", err)
	}
	if !valid {
		s.logger.InfoContext(ctx, "buying: receipt rejected", "user_id", u.ID, "package_id", pkg.ID, "backend", string(store.Backend))
		return nil, ErrInvalidReceipt
	}

	p := s.pipelines.CreateContract(receipt, pkg, u)
	if err := p.Run(ctx); err != nil {
		return nil, err
	}
	if p.Stopped() {
		return nil, fmt.Errorf("%w: %s", ErrPurchaseStopped, p.StopReason())
	}
	return p.State.Contract, nil
}

// CanAccess reports whether u may open the course, with the denial reason.
func (s *BuyingService) CanAccess(ctx context.Context, u *userdomain.User, courseID string) (engine.AccessResult, error) {
	if u == nil {
		return engine.AccessResult{}, ErrUserRequired
	}
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return engine.AccessResult{}, err
	}
	if course == nil {
		return engine.AccessResult{}, ErrCourseNotFound
	}
	var active []string
	if course.IsPaid {
		active, err = s.repo.ActiveCourseIDs(ctx, u.ID)
		if err != nil {
			return engine.AccessResult{}, err
		}
	}
	return s.access.EvaluateAccess(ctx, u, course, active)
}

// Package service implements tenant-scoped registration, login and email
// confirmation.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	authtokendomain "content-commerce/backend/internal/authtoken/domain"
	"content-commerce/backend/internal/security"
	tenantdomain "content-commerce/backend/internal/tenant/domain"
	userdomain "content-commerce/backend/internal/user/domain"
	"content-commerce/backend/internal/workflow"
)

// Sentinel errors for the account service; handlers map them to gRPC codes.
var (
	ErrServiceNotFound           = errors.New("service not found")
	ErrPasswordMismatch          = errors.New("passwords do not match")
	ErrEmailAlreadyRegistered    = errors.New("email already registered")
	ErrDocumentAlreadyRegistered = errors.New("document already registered")
	ErrInvalidCredentials        = errors.New("invalid credentials")
	ErrEmailNotConfirmed         = errors.New("email not confirmed")
	ErrInvalidToken              = errors.New("invalid token")
	ErrRegistrationStopped       = errors.New("registration stopped")
)

const birthDateLayout = "2006-01-02"

// AuthResult holds the user and API token returned by Register and Login.
type AuthResult struct {
	User  *userdomain.User
	Token *authtokendomain.Token
}

// TenantRepo is the minimal tenant repository needed by the account service.
type TenantRepo interface {
	GetBySlug(ctx context.Context, slug string) (*tenantdomain.Service, error)
	ListCredentialConfigs(ctx context.Context, serviceID string) ([]tenantdomain.CredentialConfig, error)
}

// UserRepo is the minimal user repository needed by the account service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	ListByEmailInService(ctx context.Context, serviceID, email string) ([]*userdomain.User, error)
	ExistsByEmailInService(ctx context.Context, serviceID, email string) (bool, error)
	ExistsByDocumentInService(ctx context.Context, serviceID, document string) (bool, error)
	SetVerified(ctx context.Context, userID string, verified bool) error
}

// TokenRepo is the minimal auth token repository needed by the account service.
type TokenRepo interface {
	GetOrCreate(ctx context.Context, userID string) (*authtokendomain.Token, error)
	GetByKey(ctx context.Context, key string) (*authtokendomain.Token, error)
}

// AccountService registers and authenticates tenant users.
type AccountService struct {
	tenants   TenantRepo
	users     UserRepo
	tokens    TokenRepo
	hasher    *security.Hasher
	pipelines *workflow.Pipelines
}

// NewAccountService returns an AccountService.
func NewAccountService(tenants TenantRepo, users UserRepo, tokens TokenRepo, hasher *security.Hasher, pipelines *workflow.Pipelines) *AccountService {
	if hasher == nil {
		hasher = security.NewHasher(0)
	}
	return &AccountService{
		tenants:   tenants,
		users:     users,
		tokens:    tokens,
		hasher:    hasher,
		pipelines: pipelines,
	}
}

func (s *AccountService) tenantConfigs(ctx context.Context, slug string) (*tenantdomain.Service, []tenantdomain.CredentialConfig, error) {
	svc, err := s.tenants.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	if svc == nil {
		return nil, nil, ErrServiceNotFound
	}
	configs, err := s.tenants.ListCredentialConfigs(ctx, svc.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(configs) == 0 {
		configs = tenantdomain.DefaultCredentialConfigs(svc.ID)
	}
	return svc, configs, nil
}

// Register validates fields against the tenant's register form and creates the
// user through the user creation pipeline. A confirmation email is sent when the
// tenant requires confirmation.
func (s *AccountService) Register(ctx context.Context, slug string, fields map[string]string) (*AuthResult, error) {
	svc, configs, err := s.tenantConfigs(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := tenantdomain.ValidateCredentialFields(configs, tenantdomain.CredentialRegister, fields); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(fields["email"])
	password := fields["password"]
	if email == "" {
		return nil, &tenantdomain.FieldError{Field: "email", Message: "This field is required."}
	}
	if password == "" {
		return nil, &tenantdomain.FieldError{Field: "password", Message: "This field is required."}
	}
	if confirm, ok := fields["confirm_password"]; ok && confirm != password {
		return nil, ErrPasswordMismatch
	}

	exists, err := s.users.ExistsByEmailInService(ctx, svc.ID, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyRegistered
	}
	profile, err := profileFromFields(fields)
	if err != nil {
		return nil, err
	}
	if profile.Document != "" {
		exists, err := s.users.ExistsByDocumentInService(ctx, svc.ID, profile.Document)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrDocumentAlreadyRegistered
		}
	}

	p := s.pipelines.CreateUser(workflow.UserParams{
		FirstName:  strings.TrimSpace(fields["first_name"]),
		LastName:   strings.TrimSpace(fields["last_name"]),
		Email:      email,
		Password:   password,
		Service:    svc,
		Username:   strings.TrimSpace(fields["username"]),
		SendMail:   svc.ConfirmationRequired,
		EmailType:  tenantdomain.EmailRegister,
		IsVerified: !svc.ConfirmationRequired,
		Profile:    profile,
	})
	if err := p.Run(ctx); err != nil {
		return nil, err
	}
	if p.Stopped() {
		return nil, fmt.Errorf("%w: %s", ErrRegistrationStopped, p.StopReason())
	}
	return &AuthResult{User: p.State.User, Token: p.State.Token}, nil
}

func profileFromFields(fields map[string]string) (userdomain.Profile, error) {
	p := userdomain.Profile{
		Document:     strings.TrimSpace(fields["document"]),
		Country:      strings.TrimSpace(fields["country"]),
		ProfileImage: strings.TrimSpace(fields["profile_image"]),
	}
	if raw := strings.TrimSpace(fields["birth_date"]); raw != "" {
		t, err := time.Parse(birthDateLayout, raw)
		if err != nil {
			return p, &tenantdomain.FieldError{Field: "birth_date", Message: "Use the format YYYY-MM-DD."}
		}
		p.BirthDate = &t
	}
	return p, nil
}

// Login validates fields against the tenant's login form and returns the token
// of the user whose password and extra login fields match. A tenant member and
// event guests may share an email; the member is tried first.
func (s *AccountService) Login(ctx context.Context, slug string, fields map[string]string) (*AuthResult, error) {
	svc, configs, err := s.tenantConfigs(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := tenantdomain.ValidateCredentialFields(configs, tenantdomain.CredentialLogin, fields); err != nil {
		return nil, err
	}
	candidates, err := s.users.ListByEmailInService(ctx, svc.ID, strings.TrimSpace(fields["email"]))
	if err != nil {
		return nil, err
	}
	var u *userdomain.User
	for _, c := range candidates {
		if c == nil || c.IsDeleted {
			continue
		}
		if s.hasher.Compare(c.PasswordHash, fields["password"]) != nil {
			continue
		}
		if !extraLoginFieldsMatch(configs, c, fields) {
			continue
		}
		u = c
		break
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if svc.ConfirmationRequired && !u.IsVerified {
		return nil, ErrEmailNotConfirmed
	}
	tok, err := s.tokens.GetOrCreate(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Token: tok}, nil
}

// extraLoginFieldsMatch reports whether every login field other than email and
// password equals the value stored on u.
func extraLoginFieldsMatch(configs []tenantdomain.CredentialConfig, u *userdomain.User, fields map[string]string) bool {
	for _, c := range configs {
		if c.Type != tenantdomain.CredentialLogin || c.Field == "email" || c.Field == "password" {
			continue
		}
		stored, ok := u.FieldValue(c.Field)
		if !ok || stored != strings.TrimSpace(fields[c.Field]) {
			return false
		}
	}
	return true
}

// ConfirmEmail marks the owner of key as verified.
func (s *AccountService) ConfirmEmail(ctx context.Context, key string) (*userdomain.User, error) {
	u, err := s.Authenticate(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetVerified(ctx, u.ID, true); err != nil {
		return nil, err
	}
	u.IsVerified = true
	return u, nil
}

// Authenticate resolves an API token to its user. Deleted users are rejected.
func (s *AccountService) Authenticate(ctx context.Context, key string) (*userdomain.User, error) {
	if key == "" {
		return nil, ErrInvalidToken
	}
	tok, err := s.tokens.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, ErrInvalidToken
	}
	u, err := s.users.GetByID(ctx, tok.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil || u.IsDeleted {
		return nil, ErrInvalidToken
	}
	return u, nil
}

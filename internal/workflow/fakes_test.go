package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	authtokendomain "content-commerce/backend/internal/authtoken/domain"
	buyingdomain "content-commerce/backend/internal/buying/domain"
	"content-commerce/backend/internal/mail"
	"content-commerce/backend/internal/security"
	socialdomain "content-commerce/backend/internal/social/domain"
	tenantdomain "content-commerce/backend/internal/tenant/domain"
	userdomain "content-commerce/backend/internal/user/domain"
)

type memUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*userdomain.User
	taken   map[string]int // username -> remaining "exists" answers, -1 for always
	checked []string
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: make(map[string]*userdomain.User), taken: make(map[string]int)}
}

func (r *memUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checked = append(r.checked, username)
	for _, u := range r.byID {
		if u.Username == username {
			return true, nil
		}
	}
	if n, ok := r.taken[username]; ok && n != 0 {
		if n > 0 {
			r.taken[username] = n - 1
		}
		return true, nil
	}
	return false, nil
}

func (r *memUserRepo) Create(_ context.Context, u *userdomain.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	r.byID[u.ID] = u
	return nil
}

func (r *memUserRepo) SetPremium(_ context.Context, userID string, premium bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[userID]; ok {
		u.IsPremium = premium
	}
	return nil
}

func (r *memUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

type memTokenRepo struct {
	mu       sync.Mutex
	byUserID map[string]*authtokendomain.Token
	calls    int
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{byUserID: make(map[string]*authtokendomain.Token)}
}

func (r *memTokenRepo) GetOrCreate(_ context.Context, userID string) (*authtokendomain.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if t, ok := r.byUserID[userID]; ok {
		return t, nil
	}
	key, err := security.NewTokenKey()
	if err != nil {
		return nil, err
	}
	t := &authtokendomain.Token{Key: key, UserID: userID}
	r.byUserID[userID] = t
	return t, nil
}

type memContractRepo struct {
	mu        sync.Mutex
	contracts []*buyingdomain.Contract
}

func (r *memContractRepo) CreateContract(_ context.Context, c *buyingdomain.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	r.contracts = append(r.contracts, c)
	return nil
}

type memSocialRepo struct {
	mu       sync.Mutex
	events   map[string]*socialdomain.Event
	mentions map[string][]string
}

func newMemSocialRepo() *memSocialRepo {
	return &memSocialRepo{events: make(map[string]*socialdomain.Event), mentions: make(map[string][]string)}
}

func (r *memSocialRepo) AddMention(_ context.Context, commentID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.mentions[commentID] {
		if id == userID {
			return nil
		}
	}
	r.mentions[commentID] = append(r.mentions[commentID], userID)
	return nil
}

func (r *memSocialRepo) GetEvent(_ context.Context, id string) (*socialdomain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[id], nil
}

type memTenantRepo struct {
	mu       sync.Mutex
	services map[string]*tenantdomain.Service
	configs  []*tenantdomain.EmailConfig
	lookups  []tenantdomain.Scope
}

func newMemTenantRepo(svcs ...*tenantdomain.Service) *memTenantRepo {
	r := &memTenantRepo{services: make(map[string]*tenantdomain.Service)}
	for _, s := range svcs {
		r.services[s.ID] = s
	}
	return r
}

func (r *memTenantRepo) GetByID(_ context.Context, id string) (*tenantdomain.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.services[id], nil
}

func (r *memTenantRepo) FindEmailConfig(_ context.Context, scope tenantdomain.Scope, typ tenantdomain.EmailType) (*tenantdomain.EmailConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups = append(r.lookups, scope)
	for _, c := range r.configs {
		if c.Scope == scope && c.Type == typ {
			return c, nil
		}
	}
	return nil, nil
}

type failingSender struct{ err error }

func (f failingSender) Send(context.Context, mail.Message) error { return f.err }

var errTransport = errors.New("smtp unavailable")

type fixture struct {
	users     *memUserRepo
	tokens    *memTokenRepo
	contracts *memContractRepo
	social    *memSocialRepo
	tenants   *memTenantRepo
	outbox    *mail.DummySender
	registry  *mail.Registry
	service   *tenantdomain.Service
	pipelines *Pipelines
}

func newFixture(opts ...func(*Deps)) *fixture {
	svc := &tenantdomain.Service{ID: "svc-1", Name: "Acme Academy", Slug: "acme", URL: "https://acme.test/confirm/", SMTPEmail: "noreply@acme.test"}
	f := &fixture{
		users:     newMemUserRepo(),
		tokens:    newMemTokenRepo(),
		contracts: &memContractRepo{},
		social:    newMemSocialRepo(),
		tenants:   newMemTenantRepo(svc),
		outbox:    mail.NewDummySender(),
		registry:  mail.NewRegistry(mail.SenderDummy),
		service:   svc,
	}
	f.registry.Register(mail.SenderDummy, f.outbox)
	f.registry.Register(mail.SenderSendGrid, failingSender{err: errTransport})
	d := Deps{
		Users:     f.users,
		Tokens:    f.tokens,
		Contracts: f.contracts,
		Social:    f.social,
		Tenants:   f.tenants,
		Hasher:    security.NewHasher(4),
		Mail:      f.registry,
	}
	for _, o := range opts {
		o(&d)
	}
	f.pipelines = New(d)
	return f
}

func isFourDigits(s string) bool {
	if len(s) != 4 {
		return false
	}
	return strings.Trim(s, "0123456789") == ""
}

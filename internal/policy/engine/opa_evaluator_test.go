package engine

import (
	"context"
	"errors"
	"testing"

	materialdomain "content-commerce/backend/internal/material/domain"
	"content-commerce/backend/internal/policy/domain"
	"content-commerce/backend/internal/policy/repository"
	userdomain "content-commerce/backend/internal/user/domain"
)

func TestOPAEvaluator_HealthCheck(t *testing.T) {
	e := NewOPAEvaluator(nil, nil)
	if err := e.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

// mockPolicyRepo implements repository.Repository for tests.
type mockPolicyRepo struct {
	policies map[string][]*domain.Policy
	err      error
}

var _ repository.Repository = (*mockPolicyRepo)(nil)

func (m *mockPolicyRepo) GetByID(ctx context.Context, id string) (*domain.Policy, error) {
	return nil, nil
}

func (m *mockPolicyRepo) ListByService(ctx context.Context, serviceID string) ([]*domain.Policy, error) {
	return m.policies[serviceID], nil
}

func (m *mockPolicyRepo) GetEnabledPoliciesByService(ctx context.Context, serviceID string) ([]*domain.Policy, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.policies[serviceID], nil
}

func (m *mockPolicyRepo) Create(ctx context.Context, p *domain.Policy) error { return nil }

func (m *mockPolicyRepo) Update(ctx context.Context, p *domain.Policy) error { return nil }

func (m *mockPolicyRepo) Delete(ctx context.Context, id string) error { return nil }

func member() *userdomain.User {
	return &userdomain.User{ID: "u-1", ServiceID: "svc-1", Username: "acme-0001"}
}

func TestOPAEvaluator_DefaultPolicy(t *testing.T) {
	e := NewOPAEvaluator(&mockPolicyRepo{}, nil)
	ctx := context.Background()
	free := &materialdomain.Course{ID: "c-free", ServiceID: "svc-1"}
	paid := &materialdomain.Course{ID: "c-paid", ServiceID: "svc-1", IsPaid: true}
	foreign := &materialdomain.Course{ID: "c-other", ServiceID: "svc-2"}

	cases := []struct {
		name    string
		user    *userdomain.User
		course  *materialdomain.Course
		active  []string
		allowed bool
		reason  string
	}{
		{"free course", member(), free, nil, true, ""},
		{"paid course without contract", member(), paid, []string{"c-free"}, false, "course not purchased"},
		{"paid course with contract", member(), paid, []string{"c-paid"}, true, ""},
		{"other service", member(), foreign, nil, false, "course belongs to another service"},
		{"deleted user", func() *userdomain.User { u := member(); u.IsDeleted = true; return u }(), free, nil, false, "user is deleted"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := e.EvaluateAccess(ctx, tc.user, tc.course, tc.active)
			if err != nil {
				t.Fatalf("EvaluateAccess: %v", err)
			}
			if res.Allowed != tc.allowed {
				t.Errorf("Allowed = %v, want %v", res.Allowed, tc.allowed)
			}
			if res.Reason != tc.reason {
				t.Errorf("Reason = %q, want %q", res.Reason, tc.reason)
			}
		})
	}
}

func TestOPAEvaluator_NilInputsDenied(t *testing.T) {
	e := NewOPAEvaluator(nil, nil)
	res, err := e.EvaluateAccess(context.Background(), nil, &materialdomain.Course{ID: "c"}, nil)
	if err != nil {
		t.Fatalf("EvaluateAccess: %v", err)
	}
	if res.Allowed {
		t.Error("nil user should be denied")
	}
}

func TestOPAEvaluator_TenantPolicy(t *testing.T) {
	premiumOnly := `package commerce.content_access

default allow := false

allow if input.user.is_premium
`
	repo := &mockPolicyRepo{policies: map[string][]*domain.Policy{
		"svc-1": {{ID: "p-1", ServiceID: "svc-1", Rules: premiumOnly, Enabled: true}},
	}}
	e := NewOPAEvaluator(repo, nil)
	course := &materialdomain.Course{ID: "c-paid", ServiceID: "svc-1", IsPaid: true}

	u := member()
	res, err := e.EvaluateAccess(context.Background(), u, course, nil)
	if err != nil {
		t.Fatalf("EvaluateAccess: %v", err)
	}
	if res.Allowed {
		t.Error("non-premium user should be denied by the tenant policy")
	}

	u.IsPremium = true
	res, err = e.EvaluateAccess(context.Background(), u, course, nil)
	if err != nil {
		t.Fatalf("EvaluateAccess: %v", err)
	}
	if !res.Allowed {
		t.Error("premium user should be allowed by the tenant policy")
	}
}

func TestOPAEvaluator_RepoErrorFallsBackToDefault(t *testing.T) {
	e := NewOPAEvaluator(&mockPolicyRepo{err: errors.New("db down")}, nil)
	res, err := e.EvaluateAccess(context.Background(), member(), &materialdomain.Course{ID: "c", ServiceID: "svc-1"}, nil)
	if err != nil {
		t.Fatalf("EvaluateAccess: %v", err)
	}
	if !res.Allowed {
		t.Error("free course should be allowed by the default policy")
	}
}

func TestOPAEvaluator_InvalidTenantPolicy(t *testing.T) {
	repo := &mockPolicyRepo{policies: map[string][]*domain.Policy{
		"svc-1": {{ID: "p-1", ServiceID: "svc-1", Rules: "package broken\nallow if {", Enabled: true}},
	}}
	e := NewOPAEvaluator(repo, nil)
	res, err := e.EvaluateAccess(context.Background(), member(), &materialdomain.Course{ID: "c", ServiceID: "svc-1"}, nil)
	if err == nil {
		t.Fatal("expected compile error")
	}
	if res.Allowed {
		t.Error("failed evaluation must deny")
	}
}

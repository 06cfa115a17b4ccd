package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"

	materialdomain "content-commerce/backend/internal/material/domain"
	"content-commerce/backend/internal/policy/repository"
	userdomain "content-commerce/backend/internal/user/domain"
)

const (
	allowQuery  = "data.commerce.content_access.allow"
	reasonQuery = "data.commerce.content_access.reason"
)

// DefaultPolicy is used when a tenant has no enabled policy: free courses of the
// user's tenant are open, paid ones need an active contract covering the course.
const DefaultPolicy = `package commerce.content_access

default allow := false

same_service if input.course.service_id == input.user.service_id

purchased if input.course.id in input.user.active_course_ids

allow if {
	not input.user.is_deleted
	same_service
	not input.course.is_paid
}

allow if {
	not input.user.is_deleted
	same_service
	purchased
}

reason = "user is deleted" if input.user.is_deleted

reason = "course belongs to another service" if {
	not input.user.is_deleted
	not same_service
}

reason = "course not purchased" if {
	not input.user.is_deleted
	same_service
	input.course.is_paid
	not purchased
}
`

// OPAEvaluator evaluates content-access policies using OPA Rego.
type OPAEvaluator struct {
	policyRepo repository.Repository
	logger     *slog.Logger
}

// NewOPAEvaluator returns an OPA-based policy evaluator. policyRepo may be nil,
// in which case only the default policy is used.
func NewOPAEvaluator(policyRepo repository.Repository, logger *slog.Logger) *OPAEvaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &OPAEvaluator{policyRepo: policyRepo, logger: logger}
}

// HealthCheck verifies that the in-process OPA Rego engine can compile and evaluate the default policy.
// Does not call the policy repo or database. Returns nil on success.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	compiler, err := ast.CompileModules(map[string]string{"policy_0.rego": DefaultPolicy})
	if err != nil {
		return fmt.Errorf("compile default policy: %w", err)
	}
	minimalInput := map[string]interface{}{
		"user":   map[string]interface{}{"id": "", "service_id": "", "is_deleted": false, "active_course_ids": []string{}},
		"course": map[string]interface{}{"id": "", "service_id": "", "is_paid": false},
	}
	rs, err := rego.New(
		rego.Query(allowQuery),
		rego.Compiler(compiler),
		rego.Input(minimalInput),
	).Eval(ctx)
	if err != nil {
		return fmt.Errorf("eval default policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return fmt.Errorf("policy query returned no result")
	}
	return nil
}

// EvaluateAccess evaluates the tenant's enabled policies, or the default policy
// when the tenant has none. A nil user or course is denied.
func (e *OPAEvaluator) EvaluateAccess(
	ctx context.Context,
	user *userdomain.User,
	course *materialdomain.Course,
	activeCourseIDs []string,
) (AccessResult, error) {
	if user == nil || course == nil {
		return AccessResult{Allowed: false, Reason: "missing user or course"}, nil
	}

	var policies []string
	if e.policyRepo != nil {
		enabled, err := e.policyRepo.GetEnabledPoliciesByService(ctx, user.ServiceID)
		if err != nil {
			e.logger.WarnContext(ctx, "policy: failed to load policies", "service_id", user.ServiceID, "error", err)
		} else {
			for _, p := range enabled {
				if p.Enabled && p.Rules != "" {
					policies = append(policies, p.Rules)
				}
			}
		}
	}
	if len(policies) == 0 {
		policies = []string{DefaultPolicy}
	}

	result, err := e.evaluatePolicies(ctx, policies, buildInput(user, course, activeCourseIDs))
	if err != nil {
		return AccessResult{Allowed: false, Reason: "policy evaluation failed"}, err
	}
	return result, nil
}

func buildInput(user *userdomain.User, course *materialdomain.Course, activeCourseIDs []string) map[string]interface{} {
	if activeCourseIDs == nil {
		activeCourseIDs = []string{}
	}
	return map[string]interface{}{
		"user": map[string]interface{}{
			"id":                user.ID,
			"service_id":        user.ServiceID,
			"is_premium":        user.IsPremium,
			"is_deleted":        user.IsDeleted,
			"is_guest":          user.IsGuest(),
			"active_course_ids": activeCourseIDs,
		},
		"course": map[string]interface{}{
			"id":         course.ID,
			"service_id": course.ServiceID,
			"is_paid":    course.IsPaid,
		},
	}
}

func (e *OPAEvaluator) evaluatePolicies(ctx context.Context, policies []string, input map[string]interface{}) (AccessResult, error) {
	modules := make(map[string]string)
	for i, policy := range policies {
		modules[fmt.Sprintf("policy_%d.rego", i)] = policy
	}
	compiler, err := ast.CompileModules(modules)
	if err != nil {
		return AccessResult{}, fmt.Errorf("compile policies: %w", err)
	}

	out := AccessResult{}
	allowRS, err := rego.New(
		rego.Query(allowQuery),
		rego.Compiler(compiler),
		rego.Input(input),
	).Eval(ctx)
	if err != nil {
		return AccessResult{}, fmt.Errorf("eval allow: %w", err)
	}
	if len(allowRS) > 0 && len(allowRS[0].Expressions) > 0 {
		if v, ok := allowRS[0].Expressions[0].Value.(bool); ok {
			out.Allowed = v
		}
	}
	if out.Allowed {
		return out, nil
	}

	// reason is optional in tenant policies.
	reasonRS, err := rego.New(
		rego.Query(reasonQuery),
		rego.Compiler(compiler),
		rego.Input(input),
	).Eval(ctx)
	if err == nil && len(reasonRS) > 0 && len(reasonRS[0].Expressions) > 0 {
		if v, ok := reasonRS[0].Expressions[0].Value.(string); ok {
			out.Reason = v
		}
	}
	return out, nil
}

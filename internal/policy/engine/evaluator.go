package engine

import (
	"context"

	materialdomain "content-commerce/backend/internal/material/domain"
	userdomain "content-commerce/backend/internal/user/domain"
)

// AccessResult holds the result of content-access policy evaluation.
type AccessResult struct {
	Allowed bool
	// Reason is set by policies that explain a denial.
	Reason string
}

// Evaluator evaluates content-access policies using OPA or other engines.
type Evaluator interface {
	// EvaluateAccess decides whether user may open course. activeCourseIDs are the
	// courses covered by the user's active contracts.
	EvaluateAccess(
		ctx context.Context,
		user *userdomain.User,
		course *materialdomain.Course,
		activeCourseIDs []string,
	) (AccessResult, error)
}

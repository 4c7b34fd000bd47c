package auth

import (
	"context"

	"conocida/internal/platform/middleware"
	dErrors "conocida/pkg/domain-errors"
)

// RoleAuthorizer grants moderation to actors whose token carries the admin
// role and who have passed the PIN step-up for this request. The rule is
// claim-driven; no identity is hard-coded.
type RoleAuthorizer struct {
	ModeratorRole string
}

// NewRoleAuthorizer uses the conventional "admin" role.
func NewRoleAuthorizer() *RoleAuthorizer {
	return &RoleAuthorizer{ModeratorRole: "admin"}
}

func (a *RoleAuthorizer) CanModerate(ctx context.Context) error {
	if middleware.GetRole(ctx) != a.ModeratorRole {
		return dErrors.New(dErrors.CodeUnauthorized, "moderation requires the admin role")
	}
	if !StepUpVerified(ctx) {
		return dErrors.New(dErrors.CodeUnauthorized, "moderation requires a step-up session")
	}
	return nil
}

package auth

import (
	"fmt"

	"quizbank-service/internal/domain"
)

// Roles is a set of roles allowed to perform an action.
type Roles map[domain.Role]struct{}

// Allow builds a role set.
func Allow(roles ...domain.Role) Roles {
	set := make(Roles, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return set
}

var (
	AnyRole    = Allow(domain.RoleOwner, domain.RoleAdmin, domain.RolePupil)
	Privileged = Allow(domain.RoleOwner, domain.RoleAdmin)
	OwnerOnly  = Allow(domain.RoleOwner)
)

// Authorize permits the action iff the identity's role is in required.
// It is a pure membership test; the identity must already be verified.
func Authorize(identity domain.Identity, required Roles) error {
	if _, ok := required[identity.Role]; ok {
		return nil
	}
	return fmt.Errorf("%w: role %s may not perform this action", domain.ErrForbidden, identity.Role)
}

// caller.go - Authenticated caller identity passed explicitly into every mutation

package services

import (
	"go-marketplace-backend/models"
)

// Caller is the identity on whose behalf a service operation runs.
// Role must come from the users table, never from a token claim or a URL.
type Caller struct {
	UserID string
	Email  string
	Role   models.Role
}

// requireRole fails with ErrUnauthenticated for a nil caller and ErrUnauthorized
// when the caller's role is not one of roles.
func requireRole(caller *Caller, roles ...models.Role) error {
	if caller == nil || caller.UserID == "" {
		return ErrUnauthenticated
	}
	for _, r := range roles {
		if caller.Role == r {
			return nil
		}
	}
	return ErrUnauthorized
}

// RequireAdmin is the admin guard used by catalog and user-management mutations.
func RequireAdmin(caller *Caller) error {
	return requireRole(caller, models.RoleAdmin)
}

// RequireSeller is the guard used by store mutations.
func RequireSeller(caller *Caller) error {
	return requireRole(caller, models.RoleSeller)
}

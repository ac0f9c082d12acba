package models

import (
	"fmt"

	"taskhive/internal/domain"
)

// Role is a workspace-level role. The set is closed: adding a variant
// requires updating every switch below, which the compiler enforces by
// the error return on the default branch.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleGuest  Role = "guest"
)

// ParseRole validates a raw role string against the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleOwner, RoleAdmin, RoleMember, RoleGuest:
		return Role(s), nil
	default:
		return "", fmt.Errorf("role %q: %w", s, domain.ErrUnexpectedRole)
	}
}

// Valid reports whether the role is in the closed set.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// DefaultPermission maps a workspace role to the permission level a
// member holds on a descendant resource when no resource-specific
// record overrides it. Guests get read-only access; everyone else
// gets full edit.
func DefaultPermission(r Role) (PermissionLevel, error) {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return PermissionFullEdit, nil
	case RoleGuest:
		return PermissionView, nil
	default:
		return "", fmt.Errorf("role %q: %w", r, domain.ErrUnexpectedRole)
	}
}

// CanManageRoles reports whether a member with this role may change
// other members' roles. Only owners and admins may.
func (r Role) CanManageRoles() bool {
	return r == RoleOwner || r == RoleAdmin
}

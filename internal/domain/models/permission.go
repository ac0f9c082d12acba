package models

import (
	"fmt"
	"time"

	"taskhive/internal/domain"
)

// PermissionLevel is the capability an actor holds on a resource.
type PermissionLevel string

const (
	PermissionFullEdit PermissionLevel = "full_edit"
	PermissionComment  PermissionLevel = "comment"
	PermissionView     PermissionLevel = "view"
)

// ParsePermissionLevel validates a raw level string against the closed set.
func ParsePermissionLevel(s string) (PermissionLevel, error) {
	switch PermissionLevel(s) {
	case PermissionFullEdit, PermissionComment, PermissionView:
		return PermissionLevel(s), nil
	default:
		return "", fmt.Errorf("permission level %q: %w", s, domain.ErrValidation)
	}
}

// rank orders levels for Satisfies. Higher rank grants more capability.
func (p PermissionLevel) rank() int {
	switch p {
	case PermissionFullEdit:
		return 3
	case PermissionComment:
		return 2
	case PermissionView:
		return 1
	default:
		return 0
	}
}

// Satisfies reports whether this level grants at least the required one.
func (p PermissionLevel) Satisfies(required PermissionLevel) bool {
	return p.rank() >= required.rank()
}

// ResourcePermission is a per-resource permission record for one user.
// One shape serves spaces, folders and lists; the owning store determines
// the resource kind. Records are never deleted - deactivation is the only
// removal path, which keeps the audit trail and makes re-grants idempotent.
type ResourcePermission struct {
	ID         string          `json:"id" db:"id"`
	ResourceID string          `json:"resource_id" db:"resource_id"`
	UserID     string          `json:"user_id" db:"user_id"`
	Level      PermissionLevel `json:"permission_type" db:"permission_type"`
	IsActive   bool            `json:"is_active" db:"is_active"`
	AddedBy    string          `json:"added_by" db:"added_by"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}

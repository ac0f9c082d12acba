package services

import (
	"context"

	"taskhive/internal/domain/models"
)

// Authorizer resolves what an actor may do to a resource. Services call
// it after entity-state validation and before any mutation; it is the
// only gate that may permit a write.
type Authorizer interface {
	// EffectivePermission resolves the level governing the actor on the
	// resource: the resource-specific record when one is active,
	// otherwise the workspace role's default. Fails with ErrForbidden
	// when the actor is not an active member of the owning workspace.
	EffectivePermission(ctx context.Context, actorID string, ref models.ResourceRef) (models.PermissionLevel, error)

	// Require fails with ErrForbidden unless the actor's effective
	// permission satisfies the required level.
	Require(ctx context.Context, actorID string, ref models.ResourceRef, required models.PermissionLevel) error

	// RequireFullEdit is shorthand for Require(..., PermissionFullEdit).
	RequireFullEdit(ctx context.Context, actorID string, ref models.ResourceRef) error
}

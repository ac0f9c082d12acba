package repositories

import (
	"context"

	"taskhive/internal/domain/models"
)

// PermissionStore defines data access for per-resource permission
// records. One store exists per resource kind that carries permissions
// (space, folder, list); the shape is uniform so the cascade engine can
// fan out over all three identically. Records are never deleted -
// deactivation is the only removal path.
type PermissionStore interface {
	// Get retrieves the record for (resource, user), active or not.
	// At most one record exists per pair.
	Get(ctx context.Context, resourceID, userID string) (*models.ResourcePermission, error)

	// Create persists a new record.
	Create(ctx context.Context, p *models.ResourcePermission) error

	// CreateBulk persists a batch of records in one round trip. Used by
	// the cascade engine's fan-out write phase.
	CreateBulk(ctx context.Context, ps []models.ResourcePermission) error

	// Update persists level, active flag and addedBy of an existing record.
	Update(ctx context.Context, p *models.ResourcePermission) error

	// Deactivate soft-removes the record for (resource, user).
	Deactivate(ctx context.Context, resourceID, userID string) error

	// DeactivateForUser soft-removes the user's records across a set of
	// resources. Fan-out removal.
	DeactivateForUser(ctx context.Context, resourceIDs []string, userID string) error

	// UpdateLevelForUser rewrites the level of the user's existing
	// records across a set of resources. Fan-out role change; no new
	// records are created.
	UpdateLevelForUser(ctx context.Context, resourceIDs []string, userID string, level models.PermissionLevel) error

	// ListForResource lists all records of one resource.
	ListForResource(ctx context.Context, resourceID string) ([]models.ResourcePermission, error)
}

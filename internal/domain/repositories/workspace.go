package repositories

import (
	"context"

	"taskhive/internal/domain/models"
)

// WorkspaceRepository defines data access for workspaces.
type WorkspaceRepository interface {
	// Create persists a new workspace.
	Create(ctx context.Context, ws *models.Workspace) error

	// GetByID retrieves a workspace by id, active or not.
	GetByID(ctx context.Context, id string) (*models.Workspace, error)

	// Update persists mutable fields (name, account).
	Update(ctx context.Context, ws *models.Workspace) error

	// SetActive flips the soft-delete flag.
	SetActive(ctx context.Context, id string, active bool) error

	// ListByAccount lists active workspaces owned by an account.
	ListByAccount(ctx context.Context, accountID string) ([]models.Workspace, error)
}

// MemberRepository defines data access for workspace memberships.
type MemberRepository interface {
	// Create persists a new membership record.
	Create(ctx context.Context, m *models.WorkspaceMember) error

	// Get retrieves the membership record for (workspace, user),
	// active or not. At most one record exists per pair.
	Get(ctx context.Context, workspaceID, userID string) (*models.WorkspaceMember, error)

	// GetByID retrieves a membership record by its own id.
	GetByID(ctx context.Context, id string) (*models.WorkspaceMember, error)

	// Reactivate re-enables a soft-removed membership with a new role.
	Reactivate(ctx context.Context, id string, role models.Role, addedBy string) error

	// UpdateRole changes the role of an active membership.
	UpdateRole(ctx context.Context, id string, role models.Role) error

	// Deactivate soft-removes a membership.
	Deactivate(ctx context.Context, id string) error

	// ListActiveByWorkspace lists the active members of a workspace.
	ListActiveByWorkspace(ctx context.Context, workspaceID string) ([]models.WorkspaceMember, error)
}

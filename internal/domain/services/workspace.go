package services

import (
	"context"

	"taskhive/internal/domain/models"
)

// WorkspaceService handles workspace lifecycle.
type WorkspaceService interface {
	// CreateWorkspace creates a workspace owned by the actor's account,
	// with the actor as its Owner member.
	CreateWorkspace(ctx context.Context, req *CreateWorkspaceRequest) (*models.Workspace, error)

	// GetWorkspace retrieves a workspace the actor can see.
	GetWorkspace(ctx context.Context, id, actorID string) (*models.Workspace, error)

	// ListWorkspaces lists active workspaces owned by the actor's account.
	ListWorkspaces(ctx context.Context, actorID string) ([]models.Workspace, error)

	// RenameWorkspace renames a workspace.
	RenameWorkspace(ctx context.Context, id, actorID, name string) (*models.Workspace, error)

	// DeactivateWorkspace soft-deletes a workspace. Owner only.
	DeactivateWorkspace(ctx context.Context, id, actorID string) error

	// TransferOwnership moves the Owner role to another active member.
	TransferOwnership(ctx context.Context, id, actorID, newOwnerID string) (*models.Workspace, error)
}

// CreateWorkspaceRequest carries workspace creation input.
type CreateWorkspaceRequest struct {
	ActorID string `json:"-"`
	Name    string `json:"name"`
}

// MembershipService handles workspace membership and the permission
// fan-out that keeps per-resource records consistent with it.
type MembershipService interface {
	// AddMember adds a user to a workspace and fans permission records
	// out to every space, folder and list under it. Idempotent:
	// re-inviting an active member returns the record unchanged;
	// re-inviting a removed member reactivates it.
	AddMember(ctx context.Context, req *AddMemberRequest) (*models.WorkspaceMember, error)

	// RemoveMember soft-removes a member and deactivates every
	// permission record fanned out for them.
	RemoveMember(ctx context.Context, memberID, actedBy string) error

	// ChangeRole changes a member's role and rewrites the level of
	// every existing permission record for them. Owner/Admin only.
	ChangeRole(ctx context.Context, req *ChangeRoleRequest) (*models.WorkspaceMember, error)

	// ListMembers lists the active members of a workspace.
	ListMembers(ctx context.Context, workspaceID, actorID string) ([]models.WorkspaceMember, error)
}

// AddMemberRequest carries membership creation input.
type AddMemberRequest struct {
	WorkspaceID string `json:"-"`
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
	ActedBy     string `json:"-"`
}

// ChangeRoleRequest carries a role change.
type ChangeRoleRequest struct {
	WorkspaceID string `json:"-"`
	UserID      string `json:"user_id"`
	NewRole     string `json:"role"`
	ActedBy     string `json:"-"`
}

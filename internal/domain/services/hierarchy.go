package services

import (
	"context"

	"taskhive/internal/domain/models"
)

// SpaceService handles spaces: ordered top-level groupings of a workspace.
type SpaceService interface {
	CreateSpace(ctx context.Context, req *CreateSpaceRequest) (*models.Space, error)
	GetSpace(ctx context.Context, id, actorID string) (*models.Space, error)
	ListSpaces(ctx context.Context, workspaceID, actorID string) ([]models.Space, error)

	// UpdateSpace renames and/or changes visibility. Fails with
	// ErrNothingToUpdate when no mutable field is supplied.
	UpdateSpace(ctx context.Context, id string, req *UpdateSpaceRequest) (*models.Space, error)

	// ReorderSpace moves a space to a new position among its siblings.
	ReorderSpace(ctx context.Context, id, actorID string, newOrder int) (*models.Space, error)

	// DeleteSpace soft-deletes a space and closes the order gap.
	DeleteSpace(ctx context.Context, id, actorID string) error

	// SetPermission grants or adjusts a user's permission on the space.
	SetPermission(ctx context.Context, req *SetPermissionRequest) (*models.ResourcePermission, error)

	// RevokePermission deactivates a user's permission record on the space.
	RevokePermission(ctx context.Context, id, userID, actorID string) error
}

// FolderService handles folders: ordered groupings of lists in a space.
type FolderService interface {
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)
	GetFolder(ctx context.Context, id, actorID string) (*models.Folder, error)
	ListFolders(ctx context.Context, spaceID, actorID string) ([]models.Folder, error)
	UpdateFolder(ctx context.Context, id string, req *UpdateFolderRequest) (*models.Folder, error)
	ReorderFolder(ctx context.Context, id, actorID string, newOrder int) (*models.Folder, error)
	DeleteFolder(ctx context.Context, id, actorID string) error
	SetPermission(ctx context.Context, req *SetPermissionRequest) (*models.ResourcePermission, error)
	RevokePermission(ctx context.Context, id, userID, actorID string) error
}

// ListService handles lists, which live either in a folder or directly
// in a space; the parent determines the sibling set the list is
// ordered in.
type ListService interface {
	CreateList(ctx context.Context, req *CreateListRequest) (*models.List, error)
	GetList(ctx context.Context, id, actorID string) (*models.List, error)

	// ListLists lists the active lists of one parent: the folder when
	// folderID is non-nil, otherwise the space's direct lists.
	ListLists(ctx context.Context, spaceID string, folderID *string, actorID string) ([]models.List, error)

	UpdateList(ctx context.Context, id string, req *UpdateListRequest) (*models.List, error)
	ReorderList(ctx context.Context, id, actorID string, newOrder int) (*models.List, error)
	DeleteList(ctx context.Context, id, actorID string) error
	SetPermission(ctx context.Context, req *SetPermissionRequest) (*models.ResourcePermission, error)
	RevokePermission(ctx context.Context, id, userID, actorID string) error
}

// CreateSpaceRequest carries space creation input.
type CreateSpaceRequest struct {
	WorkspaceID string `json:"-"`
	Name        string `json:"name"`
	IsPrivate   bool   `json:"is_private"`
	ActorID     string `json:"-"`
}

// UpdateSpaceRequest carries a partial space update.
type UpdateSpaceRequest struct {
	Name      *string `json:"name,omitempty"`
	IsPrivate *bool   `json:"is_private,omitempty"`
	ActorID   string  `json:"-"`
}

// CreateFolderRequest carries folder creation input.
type CreateFolderRequest struct {
	SpaceID   string `json:"space_id"`
	Name      string `json:"name"`
	IsPrivate bool   `json:"is_private"`
	ActorID   string `json:"-"`
}

// UpdateFolderRequest carries a partial folder update.
type UpdateFolderRequest struct {
	Name      *string `json:"name,omitempty"`
	IsPrivate *bool   `json:"is_private,omitempty"`
	ActorID   string  `json:"-"`
}

// CreateListRequest carries list creation input. FolderID nil creates
// the list directly under the space.
type CreateListRequest struct {
	SpaceID   string  `json:"space_id"`
	FolderID  *string `json:"folder_id,omitempty"`
	Name      string  `json:"name"`
	IsPrivate bool    `json:"is_private"`
	ActorID   string  `json:"-"`
}

// UpdateListRequest carries a partial list update.
type UpdateListRequest struct {
	Name      *string `json:"name,omitempty"`
	IsPrivate *bool   `json:"is_private,omitempty"`
	ActorID   string  `json:"-"`
}

// SetPermissionRequest grants or adjusts a user's permission on one
// resource.
type SetPermissionRequest struct {
	ResourceID string `json:"-"`
	UserID     string `json:"user_id"`
	Level      string `json:"permission_type"`
	ActorID    string `json:"-"`
}

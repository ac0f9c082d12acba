package repositories

import (
	"context"

	"taskhive/internal/domain/models"
)

// SpaceRepository defines data access for spaces. The sibling set of a
// space is all active spaces of the same workspace.
type SpaceRepository interface {
	Create(ctx context.Context, s *models.Space) error
	GetByID(ctx context.Context, id string) (*models.Space, error)

	// Update persists name and visibility.
	Update(ctx context.Context, s *models.Space) error

	// SetOrder writes the position of one space. Only the ordered
	// collection manager may drive this.
	SetOrder(ctx context.Context, id string, order int) error

	SetActive(ctx context.Context, id string, active bool) error

	// CountActiveSiblings counts active spaces under a workspace.
	CountActiveSiblings(ctx context.Context, workspaceID string) (int, error)

	// ListActiveSiblings lists active spaces under a workspace ordered
	// by position.
	ListActiveSiblings(ctx context.Context, workspaceID string) ([]models.Space, error)
}

// FolderRepository defines data access for folders. The sibling set of
// a folder is all active folders of the same space.
type FolderRepository interface {
	Create(ctx context.Context, f *models.Folder) error
	GetByID(ctx context.Context, id string) (*models.Folder, error)
	Update(ctx context.Context, f *models.Folder) error
	SetOrder(ctx context.Context, id string, order int) error
	SetActive(ctx context.Context, id string, active bool) error
	CountActiveSiblings(ctx context.Context, spaceID string) (int, error)
	ListActiveSiblings(ctx context.Context, spaceID string) ([]models.Folder, error)
}

// ListRepository defines data access for lists. A list belongs to
// exactly one sibling set at a time: lists of its folder, or lists
// hanging directly off its space when it has no folder.
type ListRepository interface {
	Create(ctx context.Context, l *models.List) error
	GetByID(ctx context.Context, id string) (*models.List, error)
	Update(ctx context.Context, l *models.List) error
	SetOrder(ctx context.Context, id string, order int) error
	SetActive(ctx context.Context, id string, active bool) error

	// CountActiveSiblings counts the active lists sharing the given
	// parent: the folder when folderID is non-nil, otherwise the
	// space's direct lists.
	CountActiveSiblings(ctx context.Context, spaceID string, folderID *string) (int, error)

	// ListActiveSiblings lists the active lists of the parent ordered
	// by position.
	ListActiveSiblings(ctx context.Context, spaceID string, folderID *string) ([]models.List, error)

	// ListActiveByFolder lists active lists inside a folder.
	ListActiveByFolder(ctx context.Context, folderID string) ([]models.List, error)

	// ListActiveDirect lists active lists hanging directly off a space
	// (no folder).
	ListActiveDirect(ctx context.Context, spaceID string) ([]models.List, error)
}

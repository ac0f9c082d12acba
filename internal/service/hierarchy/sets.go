package hierarchy

import (
	"context"

	"github.com/samber/lo"

	"taskhive/internal/domain/models"
	"taskhive/internal/domain/repositories"
	"taskhive/internal/service/ordering"
)

// spaceSet binds the ordered collection manager to the active spaces of
// one workspace.
func spaceSet(repo repositories.SpaceRepository, workspaceID string) ordering.Set {
	return ordering.SetFuncs{
		CountFn: func(ctx context.Context) (int, error) {
			return repo.CountActiveSiblings(ctx, workspaceID)
		},
		MembersFn: func(ctx context.Context) ([]ordering.Member, error) {
			spaces, err := repo.ListActiveSiblings(ctx, workspaceID)
			if err != nil {
				return nil, err
			}
			return lo.Map(spaces, func(s models.Space, _ int) ordering.Member {
				return ordering.Member{ID: s.ID, Order: s.Order}
			}), nil
		},
		SetOrderFn: repo.SetOrder,
	}
}

// folderSet binds the manager to the active folders of one space.
func folderSet(repo repositories.FolderRepository, spaceID string) ordering.Set {
	return ordering.SetFuncs{
		CountFn: func(ctx context.Context) (int, error) {
			return repo.CountActiveSiblings(ctx, spaceID)
		},
		MembersFn: func(ctx context.Context) ([]ordering.Member, error) {
			folders, err := repo.ListActiveSiblings(ctx, spaceID)
			if err != nil {
				return nil, err
			}
			return lo.Map(folders, func(f models.Folder, _ int) ordering.Member {
				return ordering.Member{ID: f.ID, Order: f.Order}
			}), nil
		},
		SetOrderFn: repo.SetOrder,
	}
}

// listSet binds the manager to one list sibling set: the folder's lists
// when folderID is non-nil, the space's direct lists otherwise.
func listSet(repo repositories.ListRepository, spaceID string, folderID *string) ordering.Set {
	return ordering.SetFuncs{
		CountFn: func(ctx context.Context) (int, error) {
			return repo.CountActiveSiblings(ctx, spaceID, folderID)
		},
		MembersFn: func(ctx context.Context) ([]ordering.Member, error) {
			lists, err := repo.ListActiveSiblings(ctx, spaceID, folderID)
			if err != nil {
				return nil, err
			}
			return lo.Map(lists, func(l models.List, _ int) ordering.Member {
				return ordering.Member{ID: l.ID, Order: l.Order}
			}), nil
		},
		SetOrderFn: repo.SetOrder,
	}
}

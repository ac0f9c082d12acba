package tasks

import (
	"context"

	"github.com/samber/lo"

	"taskhive/internal/domain/models"
	"taskhive/internal/domain/repositories"
	"taskhive/internal/service/ordering"
)

// taskSet binds the ordered collection manager to the non-deleted tasks
// of one list.
func taskSet(repo repositories.TaskRepository, listID string) ordering.Set {
	return ordering.SetFuncs{
		CountFn: func(ctx context.Context) (int, error) {
			return repo.CountActiveSiblings(ctx, listID)
		},
		MembersFn: func(ctx context.Context) ([]ordering.Member, error) {
			siblings, err := repo.ListActiveSiblings(ctx, listID)
			if err != nil {
				return nil, err
			}
			return lo.Map(siblings, func(t models.Task, _ int) ordering.Member {
				return ordering.Member{ID: t.ID, Order: t.Order}
			}), nil
		},
		SetOrderFn: repo.SetOrder,
	}
}

// fieldSet binds the manager to the active fields of one template.
func fieldSet(repo repositories.FieldRepository, templateID string) ordering.Set {
	return ordering.SetFuncs{
		CountFn: func(ctx context.Context) (int, error) {
			return repo.CountActiveSiblings(ctx, templateID)
		},
		MembersFn: func(ctx context.Context) ([]ordering.Member, error) {
			siblings, err := repo.ListActiveSiblings(ctx, templateID)
			if err != nil {
				return nil, err
			}
			return lo.Map(siblings, func(f models.Field, _ int) ordering.Member {
				return ordering.Member{ID: f.ID, Order: f.Order}
			}), nil
		},
		SetOrderFn: repo.SetOrder,
	}
}

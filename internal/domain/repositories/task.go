package repositories

import (
	"context"

	"taskhive/internal/domain/models"
)

// TaskRepository defines data access for tasks. The sibling set of a
// task is all non-deleted tasks of the same list.
type TaskRepository interface {
	Create(ctx context.Context, t *models.Task) error
	GetByID(ctx context.Context, id string) (*models.Task, error)
	Update(ctx context.Context, t *models.Task) error
	SetOrder(ctx context.Context, id string, order int) error

	// SetDeleted flips the soft-delete flag.
	SetDeleted(ctx context.Context, id string, deleted bool) error

	CountActiveSiblings(ctx context.Context, listID string) (int, error)
	ListActiveSiblings(ctx context.Context, listID string) ([]models.Task, error)
}

// TaskFieldValueRepository defines data access for per-task field values.
type TaskFieldValueRepository interface {
	// Get retrieves the value record for (task, field).
	Get(ctx context.Context, taskID, fieldID string) (*models.TaskFieldValue, error)

	// Upsert creates or replaces the value for (task, field).
	Upsert(ctx context.Context, v *models.TaskFieldValue) error

	// ListByTask lists all value records of a task.
	ListByTask(ctx context.Context, taskID string) ([]models.TaskFieldValue, error)
}

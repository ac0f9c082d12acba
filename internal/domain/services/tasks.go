package services

import (
	"context"

	"taskhive/internal/domain/models"
)

// TaskService handles tasks and their field values.
type TaskService interface {
	CreateTask(ctx context.Context, req *CreateTaskRequest) (*models.Task, error)
	GetTask(ctx context.Context, id, actorID string) (*models.Task, error)
	ListTasks(ctx context.Context, listID, actorID string) ([]models.Task, error)
	UpdateTask(ctx context.Context, id string, req *UpdateTaskRequest) (*models.Task, error)
	ReorderTask(ctx context.Context, id, actorID string, newOrder int) (*models.Task, error)
	DeleteTask(ctx context.Context, id, actorID string) error

	// SetFieldValue writes a field value on a task, validated against
	// the field's type and config.
	SetFieldValue(ctx context.Context, req *SetFieldValueRequest) (*models.TaskFieldValue, error)

	// ListFieldValues lists the field values of a task.
	ListFieldValues(ctx context.Context, taskID, actorID string) ([]models.TaskFieldValue, error)
}

// TemplateService handles list templates and their fields.
type TemplateService interface {
	// GetTemplate retrieves the template of a list with its active
	// fields, creating the template on first access (one-to-one with
	// the list).
	GetTemplate(ctx context.Context, listID, actorID string) (*TemplateWithFields, error)

	CreateField(ctx context.Context, req *CreateFieldRequest) (*models.Field, error)
	UpdateField(ctx context.Context, id string, req *UpdateFieldRequest) (*models.Field, error)
	ReorderField(ctx context.Context, id, actorID string, newOrder int) (*models.Field, error)

	// DeactivateField soft-deletes a field and closes the order gap.
	DeactivateField(ctx context.Context, id, actorID string) error
}

// TemplateWithFields is a template and its active fields in order.
type TemplateWithFields struct {
	Template *models.Template `json:"template"`
	Fields   []models.Field   `json:"fields"`
}

// CreateTaskRequest carries task creation input.
type CreateTaskRequest struct {
	ListID  string `json:"list_id"`
	Title   string `json:"title"`
	ActorID string `json:"-"`
}

// UpdateTaskRequest carries a partial task update.
type UpdateTaskRequest struct {
	Title   *string `json:"title,omitempty"`
	ActorID string  `json:"-"`
}

// SetFieldValueRequest writes one field value on a task.
type SetFieldValueRequest struct {
	TaskID  string `json:"-"`
	FieldID string `json:"field_id"`
	Value   any    `json:"value"`
	ActorID string `json:"-"`
}

// CreateFieldRequest carries field creation input.
type CreateFieldRequest struct {
	ListID     string             `json:"list_id"`
	Name       string             `json:"name"`
	FieldType  string             `json:"field_type"`
	Config     models.FieldConfig `json:"config,omitempty"`
	IsRequired bool               `json:"is_required"`
	ActorID    string             `json:"-"`
}

// UpdateFieldRequest carries a partial field update.
type UpdateFieldRequest struct {
	Name       *string            `json:"name,omitempty"`
	Config     models.FieldConfig `json:"config,omitempty"`
	IsRequired *bool              `json:"is_required,omitempty"`
	ActorID    string             `json:"-"`
}

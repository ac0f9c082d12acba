// Package tasks implements the leaf level of the workspace tree: tasks
// in a list, the list's field template, and per-task field values
// validated against the template's field types.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"taskhive/internal/domain"
	"taskhive/internal/domain/models"
	"taskhive/internal/domain/repositories"
	"taskhive/internal/domain/services"
	"taskhive/internal/service/fieldtypes"
	"taskhive/internal/service/ordering"
	"taskhive/internal/service/validate"
)

const maxTitleLength = 500

type taskService struct {
	tasks     repositories.TaskRepository
	values    repositories.TaskFieldValueRepository
	templates repositories.TemplateRepository
	validator *validate.ResourceValidator
	rules     *fieldtypes.Engine
	ordering  *ordering.Manager
	authorizer services.Authorizer
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewTaskService creates a new task service.
func NewTaskService(
	tasks repositories.TaskRepository,
	values repositories.TaskFieldValueRepository,
	templates repositories.TemplateRepository,
	validator *validate.ResourceValidator,
	rules *fieldtypes.Engine,
	orderManager *ordering.Manager,
	authorizer services.Authorizer,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.TaskService {
	return &taskService{
		tasks:      tasks,
		values:     values,
		templates:  templates,
		validator:  validator,
		rules:      rules,
		ordering:   orderManager,
		authorizer: authorizer,
		txManager:  txManager,
		logger:     logger,
	}
}

// CreateTask creates a task at the tail of the list's task order.
func (s *taskService) CreateTask(ctx context.Context, req *services.CreateTaskRequest) (*models.Task, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	list, err := s.validator.EnsureList(ctx, req.ListID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireFullEdit(ctx, req.ActorID, models.ListRef(list.ID)); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:        uuid.NewString(),
		ListID:    list.ID,
		Title:     strings.TrimSpace(req.Title),
		CreatedAt: now,
		UpdatedAt: now,
	}

	set := taskSet(s.tasks, list.ID)
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		order, err := s.ordering.NextOrder(txCtx, set)
		if err != nil {
			return err
		}
		task.Order = order
		return s.tasks.Create(txCtx, task)
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.logger.Info("task created",
		"id", task.ID, "list_id", list.ID, "title", task.Title, "order", task.Order)
	return task, nil
}

// GetTask retrieves a task the actor can see.
func (s *taskService) GetTask(ctx context.Context, id, actorID string) (*models.Task, error) {
	task, err := s.validator.EnsureTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.Require(ctx, actorID, models.TaskRef(task.ID), models.PermissionView); err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks lists the non-deleted tasks of a list in order.
func (s *taskService) ListTasks(ctx context.Context, listID, actorID string) ([]models.Task, error) {
	list, err := s.validator.EnsureList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.Require(ctx, actorID, models.ListRef(list.ID), models.PermissionView); err != nil {
		return nil, err
	}
	return s.tasks.ListActiveSiblings(ctx, list.ID)
}

// UpdateTask retitles a task.
func (s *taskService) UpdateTask(ctx context.Context, id string, req *services.UpdateTaskRequest) (*models.Task, error) {
	if req.Title == nil {
		return nil, domain.ErrNothingToUpdate
	}
	if err := validation.Validate(*req.Title, validation.Required, validation.Length(1, maxTitleLength)); err != nil {
		return nil, fmt.Errorf("%w: title: %v", domain.ErrValidation, err)
	}

	task, err := s.validator.EnsureTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireFullEdit(ctx, req.ActorID, models.TaskRef(task.ID)); err != nil {
		return nil, err
	}

	task.Title = strings.TrimSpace(*req.Title)
	task.UpdatedAt = time.Now().UTC()

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.tasks.Update(txCtx, task)
	})
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	s.logger.Info("task updated", "id", task.ID, "title", task.Title)
	return task, nil
}

// ReorderTask moves a task to a new position among the list's
// non-deleted tasks.
func (s *taskService) ReorderTask(ctx context.Context, id, actorID string, newOrder int) (*models.Task, error) {
	task, err := s.validator.EnsureTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireFullEdit(ctx, actorID, models.TaskRef(task.ID)); err != nil {
		return nil, err
	}

	set := taskSet(s.tasks, task.ListID)
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.ordering.Reorder(txCtx, set, task.ID, task.Order, newOrder)
	})
	if err != nil {
		return nil, err
	}

	return s.tasks.GetByID(ctx, task.ID)
}

// DeleteTask soft-deletes a task and closes the order gap it leaves.
// Field values stay in place for restoration.
func (s *taskService) DeleteTask(ctx context.Context, id, actorID string) error {
	task, err := s.validator.EnsureTask(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizer.RequireFullEdit(ctx, actorID, models.TaskRef(task.ID)); err != nil {
		return err
	}

	set := taskSet(s.tasks, task.ListID)
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.tasks.SetDeleted(txCtx, task.ID, true); err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		return s.ordering.CloseGap(txCtx, set, task.Order)
	})
	if err != nil {
		return err
	}

	s.logger.Info("task deleted", "id", task.ID, "actor", actorID)
	return nil
}

// SetFieldValue writes a field value on a task after validating it
// against the field's type and config. The field must belong to the
// template of the task's list.
func (s *taskService) SetFieldValue(ctx context.Context, req *services.SetFieldValueRequest) (*models.TaskFieldValue, error) {
	task, err := s.validator.EnsureTask(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireFullEdit(ctx, req.ActorID, models.TaskRef(task.ID)); err != nil {
		return nil, err
	}

	field, err := s.validator.EnsureField(ctx, req.FieldID)
	if err != nil {
		return nil, err
	}

	template, err := s.templates.GetByList(ctx, task.ListID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: field %s does not belong to the task's list", domain.ErrValidation, field.ID)
		}
		return nil, err
	}
	if field.TemplateID != template.ID {
		return nil, fmt.Errorf("%w: field %s does not belong to the task's list", domain.ErrValidation, field.ID)
	}

	if req.Value == nil {
		if field.IsRequired {
			return nil, fmt.Errorf("field %q is required: %w", field.Name, domain.ErrInvalidFieldValue)
		}
	} else if err := s.rules.ValidateValue(field.Type, req.Value, field.Config); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	value := &models.TaskFieldValue{
		TaskID:    task.ID,
		FieldID:   field.ID,
		Value:     req.Value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.values.Upsert(txCtx, value)
	})
	if err != nil {
		return nil, fmt.Errorf("set field value: %w", err)
	}

	s.logger.Info("field value set",
		"task_id", task.ID, "field_id", field.ID, "type", string(field.Type))
	return value, nil
}

// ListFieldValues lists the field values of a task.
func (s *taskService) ListFieldValues(ctx context.Context, taskID, actorID string) ([]models.TaskFieldValue, error) {
	task, err := s.validator.EnsureTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.Require(ctx, actorID, models.TaskRef(task.ID), models.PermissionView); err != nil {
		return nil, err
	}
	return s.values.ListByTask(ctx, task.ID)
}

func (s *taskService) validateCreateRequest(req *services.CreateTaskRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ListID, validation.Required),
		validation.Field(&req.Title, validation.Required, validation.Length(1, maxTitleLength)),
	)
}

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

type templateService struct {
	templates  repositories.TemplateRepository
	fields     repositories.FieldRepository
	validator  *validate.ResourceValidator
	rules      *fieldtypes.Engine
	ordering   *ordering.Manager
	authorizer services.Authorizer
	txManager  repositories.TransactionManager
	logger     *slog.Logger
}

// NewTemplateService creates a new template service.
func NewTemplateService(
	templates repositories.TemplateRepository,
	fields repositories.FieldRepository,
	validator *validate.ResourceValidator,
	rules *fieldtypes.Engine,
	orderManager *ordering.Manager,
	authorizer services.Authorizer,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.TemplateService {
	return &templateService{
		templates:  templates,
		fields:     fields,
		validator:  validator,
		rules:      rules,
		ordering:   orderManager,
		authorizer: authorizer,
		txManager:  txManager,
		logger:     logger,
	}
}

// GetTemplate retrieves the template of a list with its active fields
// in order, creating the template on first access.
func (s *templateService) GetTemplate(ctx context.Context, listID, actorID string) (*services.TemplateWithFields, error) {
	list, err := s.validator.EnsureList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.Require(ctx, actorID, models.ListRef(list.ID), models.PermissionView); err != nil {
		return nil, err
	}

	template, err := s.ensureTemplate(ctx, list)
	if err != nil {
		return nil, err
	}

	fields, err := s.fields.ListActiveSiblings(ctx, template.ID)
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}

	return &services.TemplateWithFields{Template: template, Fields: fields}, nil
}

// CreateField adds a field at the tail of the template's field order.
// The field's config must pass the type's rules before anything is
// written.
func (s *templateService) CreateField(ctx context.Context, req *services.CreateFieldRequest) (*models.Field, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	ft, err := models.ParseFieldType(req.FieldType)
	if err != nil {
		return nil, err
	}
	if err := s.rules.CheckConfig(ft, req.Config); err != nil {
		return nil, err
	}

	list, err := s.validator.EnsureList(ctx, req.ListID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireFullEdit(ctx, req.ActorID, models.ListRef(list.ID)); err != nil {
		return nil, err
	}

	template, err := s.ensureTemplate(ctx, list)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if err := s.checkDuplicateName(ctx, template.ID, name, ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	field := &models.Field{
		ID:         uuid.NewString(),
		TemplateID: template.ID,
		Type:       ft,
		Name:       name,
		Config:     req.Config,
		IsRequired: req.IsRequired,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	set := fieldSet(s.fields, template.ID)
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		order, err := s.ordering.NextOrder(txCtx, set)
		if err != nil {
			return err
		}
		field.Order = order
		return s.fields.Create(txCtx, field)
	})
	if err != nil {
		return nil, fmt.Errorf("create field: %w", err)
	}

	s.logger.Info("field created",
		"id", field.ID, "template_id", template.ID,
		"name", field.Name, "type", string(ft), "order", field.Order)
	return field, nil
}

// UpdateField changes a field's name, config and/or required flag. The
// type is immutable; a new config is validated against the existing
// type.
func (s *templateService) UpdateField(ctx context.Context, id string, req *services.UpdateFieldRequest) (*models.Field, error) {
	if req.Name == nil && req.Config == nil && req.IsRequired == nil {
		return nil, domain.ErrNothingToUpdate
	}
	if req.Name != nil {
		if err := validation.Validate(*req.Name, validation.Required, validation.Length(1, maxTitleLength)); err != nil {
			return nil, fmt.Errorf("%w: name: %v", domain.ErrValidation, err)
		}
	}

	field, err := s.validator.EnsureField(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireFullEdit(ctx, req.ActorID, models.FieldRef(field.ID)); err != nil {
		return nil, err
	}

	if req.Config != nil {
		if err := s.rules.CheckConfig(field.Type, req.Config); err != nil {
			return nil, err
		}
		field.Config = req.Config
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := s.checkDuplicateName(ctx, field.TemplateID, name, field.ID); err != nil {
			return nil, err
		}
		field.Name = name
	}
	if req.IsRequired != nil {
		field.IsRequired = *req.IsRequired
	}
	field.UpdatedAt = time.Now().UTC()

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.fields.Update(txCtx, field)
	})
	if err != nil {
		return nil, fmt.Errorf("update field: %w", err)
	}

	s.logger.Info("field updated", "id", field.ID, "name", field.Name)
	return field, nil
}

// ReorderField moves a field to a new position among the template's
// active fields.
func (s *templateService) ReorderField(ctx context.Context, id, actorID string, newOrder int) (*models.Field, error) {
	field, err := s.validator.EnsureField(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireFullEdit(ctx, actorID, models.FieldRef(field.ID)); err != nil {
		return nil, err
	}

	set := fieldSet(s.fields, field.TemplateID)
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.ordering.Reorder(txCtx, set, field.ID, field.Order, newOrder)
	})
	if err != nil {
		return nil, err
	}

	return s.fields.GetByID(ctx, field.ID)
}

// DeactivateField soft-deletes a field and closes the order gap it
// leaves. Values written for it stay in place.
func (s *templateService) DeactivateField(ctx context.Context, id, actorID string) error {
	field, err := s.validator.EnsureField(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizer.RequireFullEdit(ctx, actorID, models.FieldRef(field.ID)); err != nil {
		return err
	}

	set := fieldSet(s.fields, field.TemplateID)
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.fields.SetActive(txCtx, field.ID, false); err != nil {
			return fmt.Errorf("deactivate field: %w", err)
		}
		return s.ordering.CloseGap(txCtx, set, field.Order)
	})
	if err != nil {
		return err
	}

	s.logger.Info("field deactivated", "id", field.ID, "actor", actorID)
	return nil
}

// ensureTemplate returns the list's template, creating it on first
// access. One template exists per list.
func (s *templateService) ensureTemplate(ctx context.Context, list *models.List) (*models.Template, error) {
	template, err := s.templates.GetByList(ctx, list.ID)
	if err == nil {
		return template, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	template = &models.Template{
		ID:        uuid.NewString(),
		ListID:    list.ID,
		Name:      list.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.templates.Create(txCtx, template)
	})
	if err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}

	s.logger.Info("template created", "id", template.ID, "list_id", list.ID)
	return template, nil
}

func (s *templateService) checkDuplicateName(ctx context.Context, templateID, name, excludeID string) error {
	siblings, err := s.fields.ListActiveSiblings(ctx, templateID)
	if err != nil {
		return fmt.Errorf("check for duplicate names: %w", err)
	}
	for _, sibling := range siblings {
		if sibling.ID != excludeID && sibling.Name == name {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a field named %q already exists in this template", name),
				ResourceType: string(models.KindField),
				ResourceID:   sibling.ID,
			}
		}
	}
	return nil
}

func (s *templateService) validateCreateRequest(req *services.CreateFieldRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ListID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, maxTitleLength)),
		validation.Field(&req.FieldType, validation.Required),
	)
}

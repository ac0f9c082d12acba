// Package validate guards every operation: a resource referenced by a
// request must exist and be in an active lifecycle state before the
// operation proceeds.
package validate

import (
	"context"

	"taskhive/internal/domain"
	"taskhive/internal/domain/models"
	"taskhive/internal/domain/repositories"
)

// ResourceValidator confirms referenced resources exist and are active.
// Each Ensure method fails with ErrNotFound when the resource is absent
// and ErrInactive when it is soft-deleted; it has no side effects.
// Dependencies are explicit constructor parameters - a service composes
// the validator with whatever else it needs instead of inheriting a
// flattened method set.
type ResourceValidator struct {
	workspaces repositories.WorkspaceRepository
	members    repositories.MemberRepository
	spaces     repositories.SpaceRepository
	folders    repositories.FolderRepository
	lists      repositories.ListRepository
	templates  repositories.TemplateRepository
	fields     repositories.FieldRepository
	tasks      repositories.TaskRepository
}

// NewResourceValidator creates a resource validator.
func NewResourceValidator(
	workspaces repositories.WorkspaceRepository,
	members repositories.MemberRepository,
	spaces repositories.SpaceRepository,
	folders repositories.FolderRepository,
	lists repositories.ListRepository,
	templates repositories.TemplateRepository,
	fields repositories.FieldRepository,
	tasks repositories.TaskRepository,
) *ResourceValidator {
	return &ResourceValidator{
		workspaces: workspaces,
		members:    members,
		spaces:     spaces,
		folders:    folders,
		lists:      lists,
		templates:  templates,
		fields:     fields,
		tasks:      tasks,
	}
}

// EnsureWorkspace returns the workspace if it exists and is active.
func (v *ResourceValidator) EnsureWorkspace(ctx context.Context, id string) (*models.Workspace, error) {
	ws, err := v.workspaces.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ws.IsActive {
		return nil, &domain.InactiveError{Kind: string(models.KindWorkspace), ID: id}
	}
	return ws, nil
}

// EnsureMember returns the membership record if it exists and is active.
func (v *ResourceValidator) EnsureMember(ctx context.Context, id string) (*models.WorkspaceMember, error) {
	m, err := v.members.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.IsActive {
		return nil, &domain.InactiveError{Kind: string(models.KindMember), ID: id}
	}
	return m, nil
}

// EnsureSpace returns the space if it exists and is active.
func (v *ResourceValidator) EnsureSpace(ctx context.Context, id string) (*models.Space, error) {
	s, err := v.spaces.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.IsActive {
		return nil, &domain.InactiveError{Kind: string(models.KindSpace), ID: id}
	}
	return s, nil
}

// EnsureFolder returns the folder if it exists and is active.
func (v *ResourceValidator) EnsureFolder(ctx context.Context, id string) (*models.Folder, error) {
	f, err := v.folders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !f.IsActive {
		return nil, &domain.InactiveError{Kind: string(models.KindFolder), ID: id}
	}
	return f, nil
}

// EnsureList returns the list if it exists and is active.
func (v *ResourceValidator) EnsureList(ctx context.Context, id string) (*models.List, error) {
	l, err := v.lists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !l.IsActive {
		return nil, &domain.InactiveError{Kind: string(models.KindList), ID: id}
	}
	return l, nil
}

// EnsureTemplate returns the template if it exists. Templates carry no
// lifecycle flag; their list does.
func (v *ResourceValidator) EnsureTemplate(ctx context.Context, id string) (*models.Template, error) {
	return v.templates.GetByID(ctx, id)
}

// EnsureField returns the field if it exists and is active.
func (v *ResourceValidator) EnsureField(ctx context.Context, id string) (*models.Field, error) {
	f, err := v.fields.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !f.IsActive {
		return nil, &domain.InactiveError{Kind: string(models.KindField), ID: id}
	}
	return f, nil
}

// EnsureTask returns the task if it exists and is not deleted.
func (v *ResourceValidator) EnsureTask(ctx context.Context, id string) (*models.Task, error) {
	t, err := v.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.IsDeleted {
		return nil, &domain.InactiveError{Kind: string(models.KindTask), ID: id}
	}
	return t, nil
}

// Package workspace implements workspace lifecycle: creation with the
// founding Owner membership, rename, soft-deletion and ownership
// transfer.
package workspace

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
	"taskhive/internal/service/validate"
)

const maxNameLength = 255

type workspaceService struct {
	workspaces repositories.WorkspaceRepository
	members    repositories.MemberRepository
	validator  *validate.ResourceValidator
	authorizer services.Authorizer
	txManager  repositories.TransactionManager
	logger     *slog.Logger
}

// NewWorkspaceService creates a new workspace service.
func NewWorkspaceService(
	workspaces repositories.WorkspaceRepository,
	members repositories.MemberRepository,
	validator *validate.ResourceValidator,
	authorizer services.Authorizer,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.WorkspaceService {
	return &workspaceService{
		workspaces: workspaces,
		members:    members,
		validator:  validator,
		authorizer: authorizer,
		txManager:  txManager,
		logger:     logger,
	}
}

// CreateWorkspace creates a workspace with the actor as its Owner
// member. The workspace and the founding membership land in one
// transaction, so a workspace without an owner cannot be observed.
func (s *workspaceService) CreateWorkspace(ctx context.Context, req *services.CreateWorkspaceRequest) (*models.Workspace, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := time.Now().UTC()
	ws := &models.Workspace{
		ID:        uuid.NewString(),
		AccountID: req.ActorID,
		Name:      strings.TrimSpace(req.Name),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	owner := &models.WorkspaceMember{
		ID:          uuid.NewString(),
		WorkspaceID: ws.ID,
		UserID:      req.ActorID,
		Role:        models.RoleOwner,
		IsActive:    true,
		AddedBy:     req.ActorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.workspaces.Create(txCtx, ws); err != nil {
			return fmt.Errorf("create workspace: %w", err)
		}
		if err := s.members.Create(txCtx, owner); err != nil {
			return fmt.Errorf("create owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("workspace created", "id", ws.ID, "name", ws.Name, "owner", req.ActorID)
	return ws, nil
}

// GetWorkspace retrieves a workspace the actor can see.
func (s *workspaceService) GetWorkspace(ctx context.Context, id, actorID string) (*models.Workspace, error) {
	ws, err := s.validator.EnsureWorkspace(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.Require(ctx, actorID, models.WorkspaceRef(ws.ID), models.PermissionView); err != nil {
		return nil, err
	}
	return ws, nil
}

// ListWorkspaces lists active workspaces owned by the actor's account.
func (s *workspaceService) ListWorkspaces(ctx context.Context, actorID string) ([]models.Workspace, error) {
	return s.workspaces.ListByAccount(ctx, actorID)
}

// RenameWorkspace renames a workspace.
func (s *workspaceService) RenameWorkspace(ctx context.Context, id, actorID, name string) (*models.Workspace, error) {
	name = strings.TrimSpace(name)
	if err := validation.Validate(name, validation.Required, validation.Length(1, maxNameLength)); err != nil {
		return nil, fmt.Errorf("%w: name: %v", domain.ErrValidation, err)
	}

	ws, err := s.validator.EnsureWorkspace(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireFullEdit(ctx, actorID, models.WorkspaceRef(ws.ID)); err != nil {
		return nil, err
	}

	ws.Name = name
	ws.UpdatedAt = time.Now().UTC()
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.workspaces.Update(txCtx, ws)
	})
	if err != nil {
		return nil, fmt.Errorf("rename workspace: %w", err)
	}

	s.logger.Info("workspace renamed", "id", ws.ID, "name", ws.Name)
	return ws, nil
}

// DeactivateWorkspace soft-deletes a workspace. Only the Owner may do
// this; descendants become unreachable through the ancestor walk
// without being touched themselves.
func (s *workspaceService) DeactivateWorkspace(ctx context.Context, id, actorID string) error {
	ws, err := s.validator.EnsureWorkspace(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireOwner(ctx, ws.ID, actorID); err != nil {
		return err
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.workspaces.SetActive(txCtx, ws.ID, false)
	})
	if err != nil {
		return fmt.Errorf("deactivate workspace: %w", err)
	}

	s.logger.Info("workspace deactivated", "id", ws.ID, "actor", actorID)
	return nil
}

// TransferOwnership moves the Owner role to another active member; the
// previous owner becomes an Admin. Both roles default to full edit, so
// no permission records need rewriting.
func (s *workspaceService) TransferOwnership(ctx context.Context, id, actorID, newOwnerID string) (*models.Workspace, error) {
	ws, err := s.validator.EnsureWorkspace(ctx, id)
	if err != nil {
		return nil, err
	}

	actor, err := s.members.Get(ctx, ws.ID, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.ForbiddenError{ActorID: actorID}
		}
		return nil, err
	}
	if !actor.IsActive || actor.Role != models.RoleOwner {
		return nil, &domain.ForbiddenError{ActorID: actorID, Message: "only the owner may transfer ownership"}
	}
	if actorID == newOwnerID {
		return ws, nil
	}

	target, err := s.members.Get(ctx, ws.ID, newOwnerID)
	if err != nil {
		return nil, err
	}
	if !target.IsActive {
		return nil, &domain.InactiveError{Kind: string(models.KindMember), ID: target.ID}
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.members.UpdateRole(txCtx, target.ID, models.RoleOwner); err != nil {
			return fmt.Errorf("promote new owner: %w", err)
		}
		if err := s.members.UpdateRole(txCtx, actor.ID, models.RoleAdmin); err != nil {
			return fmt.Errorf("demote previous owner: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("workspace ownership transferred",
		"id", ws.ID, "from", actorID, "to", newOwnerID)
	return ws, nil
}

func (s *workspaceService) requireOwner(ctx context.Context, workspaceID, actorID string) error {
	m, err := s.members.Get(ctx, workspaceID, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.ForbiddenError{ActorID: actorID}
		}
		return err
	}
	if !m.IsActive || m.Role != models.RoleOwner {
		return &domain.ForbiddenError{ActorID: actorID, Message: "owner only"}
	}
	return nil
}

func (s *workspaceService) validateCreateRequest(req *services.CreateWorkspaceRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, maxNameLength)),
	)
}

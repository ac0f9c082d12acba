// Package hierarchy implements the container levels of the workspace
// tree: spaces, folders and lists. Each level is an ordered collection
// of its parent, permission-bearing, and soft-deleted on removal with
// the order gap closed in the same transaction.
package hierarchy

import (
	"context"
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
	"taskhive/internal/service/ordering"
	"taskhive/internal/service/validate"
)

const maxNameLength = 255

type spaceService struct {
	spaces    repositories.SpaceRepository
	validator *validate.ResourceValidator
	ordering  *ordering.Manager
	grants    *grants
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewSpaceService creates a new space service.
func NewSpaceService(
	spaces repositories.SpaceRepository,
	members repositories.MemberRepository,
	perms repositories.PermissionStore,
	validator *validate.ResourceValidator,
	authorizer services.Authorizer,
	orderManager *ordering.Manager,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.SpaceService {
	return &spaceService{
		spaces:    spaces,
		validator: validator,
		ordering:  orderManager,
		grants: &grants{
			store:      perms,
			members:    members,
			authorizer: authorizer,
			txManager:  txManager,
			logger:     logger,
		},
		txManager: txManager,
		logger:    logger,
	}
}

// CreateSpace creates a space at the tail of the workspace's space
// order.
func (s *spaceService) CreateSpace(ctx context.Context, req *services.CreateSpaceRequest) (*models.Space, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	ws, err := s.validator.EnsureWorkspace(ctx, req.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if err := s.grants.authorizer.RequireFullEdit(ctx, req.ActorID, models.WorkspaceRef(ws.ID)); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if err := s.checkDuplicateName(ctx, ws.ID, name, ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	space := &models.Space{
		ID:          uuid.NewString(),
		WorkspaceID: ws.ID,
		Name:        name,
		IsActive:    true,
		IsPrivate:   req.IsPrivate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	set := spaceSet(s.spaces, ws.ID)
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		order, err := s.ordering.NextOrder(txCtx, set)
		if err != nil {
			return err
		}
		space.Order = order
		return s.spaces.Create(txCtx, space)
	})
	if err != nil {
		return nil, fmt.Errorf("create space: %w", err)
	}

	s.logger.Info("space created",
		"id", space.ID, "workspace_id", ws.ID, "name", space.Name, "order", space.Order)
	return space, nil
}

// GetSpace retrieves a space the actor can see.
func (s *spaceService) GetSpace(ctx context.Context, id, actorID string) (*models.Space, error) {
	space, err := s.validator.EnsureSpace(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.grants.authorizer.Require(ctx, actorID, models.SpaceRef(space.ID), models.PermissionView); err != nil {
		return nil, err
	}
	return space, nil
}

// ListSpaces lists the active spaces of a workspace in order.
func (s *spaceService) ListSpaces(ctx context.Context, workspaceID, actorID string) ([]models.Space, error) {
	ws, err := s.validator.EnsureWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if err := s.grants.authorizer.Require(ctx, actorID, models.WorkspaceRef(ws.ID), models.PermissionView); err != nil {
		return nil, err
	}
	return s.spaces.ListActiveSiblings(ctx, ws.ID)
}

// UpdateSpace renames and/or changes visibility.
func (s *spaceService) UpdateSpace(ctx context.Context, id string, req *services.UpdateSpaceRequest) (*models.Space, error) {
	if req.Name == nil && req.IsPrivate == nil {
		return nil, domain.ErrNothingToUpdate
	}
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	space, err := s.validator.EnsureSpace(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.grants.authorizer.RequireFullEdit(ctx, req.ActorID, models.SpaceRef(space.ID)); err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := s.checkDuplicateName(ctx, space.WorkspaceID, name, space.ID); err != nil {
			return nil, err
		}
		space.Name = name
	}
	if req.IsPrivate != nil {
		space.IsPrivate = *req.IsPrivate
	}
	space.UpdatedAt = time.Now().UTC()

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.spaces.Update(txCtx, space)
	})
	if err != nil {
		return nil, fmt.Errorf("update space: %w", err)
	}

	s.logger.Info("space updated", "id", space.ID, "name", space.Name)
	return space, nil
}

// ReorderSpace moves a space to a new position among the workspace's
// active spaces.
func (s *spaceService) ReorderSpace(ctx context.Context, id, actorID string, newOrder int) (*models.Space, error) {
	space, err := s.validator.EnsureSpace(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.grants.authorizer.RequireFullEdit(ctx, actorID, models.SpaceRef(space.ID)); err != nil {
		return nil, err
	}

	set := spaceSet(s.spaces, space.WorkspaceID)
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.ordering.Reorder(txCtx, set, space.ID, space.Order, newOrder)
	})
	if err != nil {
		return nil, err
	}

	return s.spaces.GetByID(ctx, space.ID)
}

// DeleteSpace soft-deletes a space and closes the order gap it leaves.
func (s *spaceService) DeleteSpace(ctx context.Context, id, actorID string) error {
	space, err := s.validator.EnsureSpace(ctx, id)
	if err != nil {
		return err
	}
	if err := s.grants.authorizer.RequireFullEdit(ctx, actorID, models.SpaceRef(space.ID)); err != nil {
		return err
	}

	set := spaceSet(s.spaces, space.WorkspaceID)
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.spaces.SetActive(txCtx, space.ID, false); err != nil {
			return fmt.Errorf("deactivate space: %w", err)
		}
		return s.ordering.CloseGap(txCtx, set, space.Order)
	})
	if err != nil {
		return err
	}

	s.logger.Info("space deleted", "id", space.ID, "actor", actorID)
	return nil
}

// SetPermission grants or adjusts a user's permission on the space.
func (s *spaceService) SetPermission(ctx context.Context, req *services.SetPermissionRequest) (*models.ResourcePermission, error) {
	space, err := s.validator.EnsureSpace(ctx, req.ResourceID)
	if err != nil {
		return nil, err
	}
	return s.grants.set(ctx, models.SpaceRef(space.ID), space.WorkspaceID, req)
}

// RevokePermission deactivates a user's permission record on the space.
func (s *spaceService) RevokePermission(ctx context.Context, id, userID, actorID string) error {
	space, err := s.validator.EnsureSpace(ctx, id)
	if err != nil {
		return err
	}
	return s.grants.revoke(ctx, models.SpaceRef(space.ID), userID, actorID)
}

func (s *spaceService) checkDuplicateName(ctx context.Context, workspaceID, name, excludeID string) error {
	siblings, err := s.spaces.ListActiveSiblings(ctx, workspaceID)
	if err != nil {
		return fmt.Errorf("check for duplicate names: %w", err)
	}
	for _, sibling := range siblings {
		if sibling.ID != excludeID && sibling.Name == name {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a space named %q already exists in this workspace", name),
				ResourceType: string(models.KindSpace),
				ResourceID:   sibling.ID,
			}
		}
	}
	return nil
}

func (s *spaceService) validateCreateRequest(req *services.CreateSpaceRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.WorkspaceID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, maxNameLength)),
	)
}

func (s *spaceService) validateUpdateRequest(req *services.UpdateSpaceRequest) error {
	if req.Name != nil {
		return validation.Validate(*req.Name, validation.Required, validation.Length(1, maxNameLength))
	}
	return nil
}

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

type folderService struct {
	folders   repositories.FolderRepository
	validator *validate.ResourceValidator
	ordering  *ordering.Manager
	grants    *grants
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewFolderService creates a new folder service.
func NewFolderService(
	folders repositories.FolderRepository,
	members repositories.MemberRepository,
	perms repositories.PermissionStore,
	validator *validate.ResourceValidator,
	authorizer services.Authorizer,
	orderManager *ordering.Manager,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folders:   folders,
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

// CreateFolder creates a folder at the tail of the space's folder order.
func (s *folderService) CreateFolder(ctx context.Context, req *services.CreateFolderRequest) (*models.Folder, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	space, err := s.validator.EnsureSpace(ctx, req.SpaceID)
	if err != nil {
		return nil, err
	}
	if err := s.grants.authorizer.RequireFullEdit(ctx, req.ActorID, models.SpaceRef(space.ID)); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if err := s.checkDuplicateName(ctx, space.ID, name, ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	folder := &models.Folder{
		ID:        uuid.NewString(),
		SpaceID:   space.ID,
		Name:      name,
		IsActive:  true,
		IsPrivate: req.IsPrivate,
		CreatedAt: now,
		UpdatedAt: now,
	}

	set := folderSet(s.folders, space.ID)
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		order, err := s.ordering.NextOrder(txCtx, set)
		if err != nil {
			return err
		}
		folder.Order = order
		return s.folders.Create(txCtx, folder)
	})
	if err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}

	s.logger.Info("folder created",
		"id", folder.ID, "space_id", space.ID, "name", folder.Name, "order", folder.Order)
	return folder, nil
}

// GetFolder retrieves a folder the actor can see.
func (s *folderService) GetFolder(ctx context.Context, id, actorID string) (*models.Folder, error) {
	folder, err := s.validator.EnsureFolder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.grants.authorizer.Require(ctx, actorID, models.FolderRef(folder.ID), models.PermissionView); err != nil {
		return nil, err
	}
	return folder, nil
}

// ListFolders lists the active folders of a space in order.
func (s *folderService) ListFolders(ctx context.Context, spaceID, actorID string) ([]models.Folder, error) {
	space, err := s.validator.EnsureSpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if err := s.grants.authorizer.Require(ctx, actorID, models.SpaceRef(space.ID), models.PermissionView); err != nil {
		return nil, err
	}
	return s.folders.ListActiveSiblings(ctx, space.ID)
}

// UpdateFolder renames and/or changes visibility.
func (s *folderService) UpdateFolder(ctx context.Context, id string, req *services.UpdateFolderRequest) (*models.Folder, error) {
	if req.Name == nil && req.IsPrivate == nil {
		return nil, domain.ErrNothingToUpdate
	}
	if req.Name != nil {
		if err := validation.Validate(*req.Name, validation.Required, validation.Length(1, maxNameLength)); err != nil {
			return nil, fmt.Errorf("%w: name: %v", domain.ErrValidation, err)
		}
	}

	folder, err := s.validator.EnsureFolder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.grants.authorizer.RequireFullEdit(ctx, req.ActorID, models.FolderRef(folder.ID)); err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := s.checkDuplicateName(ctx, folder.SpaceID, name, folder.ID); err != nil {
			return nil, err
		}
		folder.Name = name
	}
	if req.IsPrivate != nil {
		folder.IsPrivate = *req.IsPrivate
	}
	folder.UpdatedAt = time.Now().UTC()

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.folders.Update(txCtx, folder)
	})
	if err != nil {
		return nil, fmt.Errorf("update folder: %w", err)
	}

	s.logger.Info("folder updated", "id", folder.ID, "name", folder.Name)
	return folder, nil
}

// ReorderFolder moves a folder to a new position among the space's
// active folders.
func (s *folderService) ReorderFolder(ctx context.Context, id, actorID string, newOrder int) (*models.Folder, error) {
	folder, err := s.validator.EnsureFolder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.grants.authorizer.RequireFullEdit(ctx, actorID, models.FolderRef(folder.ID)); err != nil {
		return nil, err
	}

	set := folderSet(s.folders, folder.SpaceID)
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.ordering.Reorder(txCtx, set, folder.ID, folder.Order, newOrder)
	})
	if err != nil {
		return nil, err
	}

	return s.folders.GetByID(ctx, folder.ID)
}

// DeleteFolder soft-deletes a folder and closes the order gap it leaves.
func (s *folderService) DeleteFolder(ctx context.Context, id, actorID string) error {
	folder, err := s.validator.EnsureFolder(ctx, id)
	if err != nil {
		return err
	}
	if err := s.grants.authorizer.RequireFullEdit(ctx, actorID, models.FolderRef(folder.ID)); err != nil {
		return err
	}

	set := folderSet(s.folders, folder.SpaceID)
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.folders.SetActive(txCtx, folder.ID, false); err != nil {
			return fmt.Errorf("deactivate folder: %w", err)
		}
		return s.ordering.CloseGap(txCtx, set, folder.Order)
	})
	if err != nil {
		return err
	}

	s.logger.Info("folder deleted", "id", folder.ID, "actor", actorID)
	return nil
}

// SetPermission grants or adjusts a user's permission on the folder.
func (s *folderService) SetPermission(ctx context.Context, req *services.SetPermissionRequest) (*models.ResourcePermission, error) {
	folder, err := s.validator.EnsureFolder(ctx, req.ResourceID)
	if err != nil {
		return nil, err
	}
	space, err := s.validator.EnsureSpace(ctx, folder.SpaceID)
	if err != nil {
		return nil, err
	}
	return s.grants.set(ctx, models.FolderRef(folder.ID), space.WorkspaceID, req)
}

// RevokePermission deactivates a user's permission record on the folder.
func (s *folderService) RevokePermission(ctx context.Context, id, userID, actorID string) error {
	folder, err := s.validator.EnsureFolder(ctx, id)
	if err != nil {
		return err
	}
	return s.grants.revoke(ctx, models.FolderRef(folder.ID), userID, actorID)
}

func (s *folderService) checkDuplicateName(ctx context.Context, spaceID, name, excludeID string) error {
	siblings, err := s.folders.ListActiveSiblings(ctx, spaceID)
	if err != nil {
		return fmt.Errorf("check for duplicate names: %w", err)
	}
	for _, sibling := range siblings {
		if sibling.ID != excludeID && sibling.Name == name {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a folder named %q already exists in this space", name),
				ResourceType: string(models.KindFolder),
				ResourceID:   sibling.ID,
			}
		}
	}
	return nil
}

func (s *folderService) validateCreateRequest(req *services.CreateFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.SpaceID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, maxNameLength)),
	)
}

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

type listService struct {
	lists     repositories.ListRepository
	validator *validate.ResourceValidator
	ordering  *ordering.Manager
	grants    *grants
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewListService creates a new list service.
func NewListService(
	lists repositories.ListRepository,
	members repositories.MemberRepository,
	perms repositories.PermissionStore,
	validator *validate.ResourceValidator,
	authorizer services.Authorizer,
	orderManager *ordering.Manager,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.ListService {
	return &listService{
		lists:     lists,
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

// CreateList creates a list at the tail of its parent's list order: the
// folder's lists when FolderID is set, the space's direct lists
// otherwise.
func (s *listService) CreateList(ctx context.Context, req *services.CreateListRequest) (*models.List, error) {
	// Normalize empty string to nil for direct lists
	if req.FolderID != nil && *req.FolderID == "" {
		req.FolderID = nil
	}

	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	space, err := s.validator.EnsureSpace(ctx, req.SpaceID)
	if err != nil {
		return nil, err
	}

	parent := models.SpaceRef(space.ID)
	if req.FolderID != nil {
		folder, err := s.validator.EnsureFolder(ctx, *req.FolderID)
		if err != nil {
			return nil, err
		}
		if folder.SpaceID != space.ID {
			return nil, fmt.Errorf("%w: folder %s does not belong to space %s", domain.ErrValidation, folder.ID, space.ID)
		}
		parent = models.FolderRef(folder.ID)
	}
	if err := s.grants.authorizer.RequireFullEdit(ctx, req.ActorID, parent); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if err := s.checkDuplicateName(ctx, space.ID, req.FolderID, name, ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	list := &models.List{
		ID:        uuid.NewString(),
		SpaceID:   space.ID,
		FolderID:  req.FolderID,
		Name:      name,
		IsActive:  true,
		IsPrivate: req.IsPrivate,
		CreatedAt: now,
		UpdatedAt: now,
	}

	set := listSet(s.lists, space.ID, req.FolderID)
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		order, err := s.ordering.NextOrder(txCtx, set)
		if err != nil {
			return err
		}
		list.Order = order
		return s.lists.Create(txCtx, list)
	})
	if err != nil {
		return nil, fmt.Errorf("create list: %w", err)
	}

	s.logger.Info("list created",
		"id", list.ID, "space_id", space.ID, "folder_id", req.FolderID,
		"name", list.Name, "order", list.Order)
	return list, nil
}

// GetList retrieves a list the actor can see.
func (s *listService) GetList(ctx context.Context, id, actorID string) (*models.List, error) {
	list, err := s.validator.EnsureList(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.grants.authorizer.Require(ctx, actorID, models.ListRef(list.ID), models.PermissionView); err != nil {
		return nil, err
	}
	return list, nil
}

// ListLists lists the active lists of one parent in order.
func (s *listService) ListLists(ctx context.Context, spaceID string, folderID *string, actorID string) ([]models.List, error) {
	space, err := s.validator.EnsureSpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}

	parent := models.SpaceRef(space.ID)
	if folderID != nil {
		folder, err := s.validator.EnsureFolder(ctx, *folderID)
		if err != nil {
			return nil, err
		}
		parent = models.FolderRef(folder.ID)
	}
	if err := s.grants.authorizer.Require(ctx, actorID, parent, models.PermissionView); err != nil {
		return nil, err
	}

	return s.lists.ListActiveSiblings(ctx, space.ID, folderID)
}

// UpdateList renames and/or changes visibility.
func (s *listService) UpdateList(ctx context.Context, id string, req *services.UpdateListRequest) (*models.List, error) {
	if req.Name == nil && req.IsPrivate == nil {
		return nil, domain.ErrNothingToUpdate
	}
	if req.Name != nil {
		if err := validation.Validate(*req.Name, validation.Required, validation.Length(1, maxNameLength)); err != nil {
			return nil, fmt.Errorf("%w: name: %v", domain.ErrValidation, err)
		}
	}

	list, err := s.validator.EnsureList(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.grants.authorizer.RequireFullEdit(ctx, req.ActorID, models.ListRef(list.ID)); err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := s.checkDuplicateName(ctx, list.SpaceID, list.FolderID, name, list.ID); err != nil {
			return nil, err
		}
		list.Name = name
	}
	if req.IsPrivate != nil {
		list.IsPrivate = *req.IsPrivate
	}
	list.UpdatedAt = time.Now().UTC()

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.lists.Update(txCtx, list)
	})
	if err != nil {
		return nil, fmt.Errorf("update list: %w", err)
	}

	s.logger.Info("list updated", "id", list.ID, "name", list.Name)
	return list, nil
}

// ReorderList moves a list to a new position among its parent's active
// lists.
func (s *listService) ReorderList(ctx context.Context, id, actorID string, newOrder int) (*models.List, error) {
	list, err := s.validator.EnsureList(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.grants.authorizer.RequireFullEdit(ctx, actorID, models.ListRef(list.ID)); err != nil {
		return nil, err
	}

	set := listSet(s.lists, list.SpaceID, list.FolderID)
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.ordering.Reorder(txCtx, set, list.ID, list.Order, newOrder)
	})
	if err != nil {
		return nil, err
	}

	return s.lists.GetByID(ctx, list.ID)
}

// DeleteList soft-deletes a list and closes the order gap it leaves.
func (s *listService) DeleteList(ctx context.Context, id, actorID string) error {
	list, err := s.validator.EnsureList(ctx, id)
	if err != nil {
		return err
	}
	if err := s.grants.authorizer.RequireFullEdit(ctx, actorID, models.ListRef(list.ID)); err != nil {
		return err
	}

	set := listSet(s.lists, list.SpaceID, list.FolderID)
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.lists.SetActive(txCtx, list.ID, false); err != nil {
			return fmt.Errorf("deactivate list: %w", err)
		}
		return s.ordering.CloseGap(txCtx, set, list.Order)
	})
	if err != nil {
		return err
	}

	s.logger.Info("list deleted", "id", list.ID, "actor", actorID)
	return nil
}

// SetPermission grants or adjusts a user's permission on the list.
func (s *listService) SetPermission(ctx context.Context, req *services.SetPermissionRequest) (*models.ResourcePermission, error) {
	list, err := s.validator.EnsureList(ctx, req.ResourceID)
	if err != nil {
		return nil, err
	}
	space, err := s.validator.EnsureSpace(ctx, list.SpaceID)
	if err != nil {
		return nil, err
	}
	return s.grants.set(ctx, models.ListRef(list.ID), space.WorkspaceID, req)
}

// RevokePermission deactivates a user's permission record on the list.
func (s *listService) RevokePermission(ctx context.Context, id, userID, actorID string) error {
	list, err := s.validator.EnsureList(ctx, id)
	if err != nil {
		return err
	}
	return s.grants.revoke(ctx, models.ListRef(list.ID), userID, actorID)
}

func (s *listService) checkDuplicateName(ctx context.Context, spaceID string, folderID *string, name, excludeID string) error {
	siblings, err := s.lists.ListActiveSiblings(ctx, spaceID, folderID)
	if err != nil {
		return fmt.Errorf("check for duplicate names: %w", err)
	}
	for _, sibling := range siblings {
		if sibling.ID != excludeID && sibling.Name == name {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a list named %q already exists in this location", name),
				ResourceType: string(models.KindList),
				ResourceID:   sibling.ID,
			}
		}
	}
	return nil
}

func (s *listService) validateCreateRequest(req *services.CreateListRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.SpaceID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, maxNameLength)),
	)
}

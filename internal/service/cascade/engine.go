// Package cascade keeps per-resource permission records consistent with
// workspace membership. Every membership mutation fans out to every
// space, folder and list under the workspace: creation on add,
// deactivation on remove, level rewrite on role change. The fan-out and
// the membership write land in one transaction, so a reader never sees
// a membership without its permission records or vice versa.
package cascade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"taskhive/internal/domain"
	"taskhive/internal/domain/models"
	"taskhive/internal/domain/repositories"
	"taskhive/internal/domain/services"
	"taskhive/internal/service/validate"
)

// Engine implements services.MembershipService.
type Engine struct {
	validator   *validate.ResourceValidator
	members     repositories.MemberRepository
	spaces      repositories.SpaceRepository
	folders     repositories.FolderRepository
	lists       repositories.ListRepository
	spacePerms  repositories.PermissionStore
	folderPerms repositories.PermissionStore
	listPerms   repositories.PermissionStore
	authorizer  services.Authorizer
	txManager   repositories.TransactionManager
	logger      *slog.Logger
}

// NewEngine creates a permission cascade engine.
func NewEngine(
	validator *validate.ResourceValidator,
	members repositories.MemberRepository,
	spaces repositories.SpaceRepository,
	folders repositories.FolderRepository,
	lists repositories.ListRepository,
	spacePerms repositories.PermissionStore,
	folderPerms repositories.PermissionStore,
	listPerms repositories.PermissionStore,
	authorizer services.Authorizer,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.MembershipService {
	return &Engine{
		validator:   validator,
		members:     members,
		spaces:      spaces,
		folders:     folders,
		lists:       lists,
		spacePerms:  spacePerms,
		folderPerms: folderPerms,
		listPerms:   listPerms,
		authorizer:  authorizer,
		txManager:   txManager,
		logger:      logger,
	}
}

// fanOut is the read-phase result: every descendant resource id the
// cascade touches. Gathering first and writing second makes partial
// fan-out impossible by construction.
type fanOut struct {
	spaceIDs  []string
	folderIDs []string
	listIDs   []string
}

func (f fanOut) total() int {
	return len(f.spaceIDs) + len(f.folderIDs) + len(f.listIDs)
}

// gather enumerates the workspace's descendants. Lists are enumerated
// once, keyed by id: through their folder when they have one, through
// the space otherwise - a foldered list must not be visited twice.
func (e *Engine) gather(ctx context.Context, workspaceID string) (fanOut, error) {
	var out fanOut

	spaces, err := e.spaces.ListActiveSiblings(ctx, workspaceID)
	if err != nil {
		return out, fmt.Errorf("list spaces: %w", err)
	}

	var lists []models.List
	for _, space := range spaces {
		out.spaceIDs = append(out.spaceIDs, space.ID)

		folders, err := e.folders.ListActiveSiblings(ctx, space.ID)
		if err != nil {
			return out, fmt.Errorf("list folders of space %s: %w", space.ID, err)
		}
		for _, folder := range folders {
			out.folderIDs = append(out.folderIDs, folder.ID)

			foldered, err := e.lists.ListActiveByFolder(ctx, folder.ID)
			if err != nil {
				return out, fmt.Errorf("list lists of folder %s: %w", folder.ID, err)
			}
			lists = append(lists, foldered...)
		}

		direct, err := e.lists.ListActiveDirect(ctx, space.ID)
		if err != nil {
			return out, fmt.Errorf("list lists of space %s: %w", space.ID, err)
		}
		lists = append(lists, direct...)
	}

	lists = lo.UniqBy(lists, func(l models.List) string { return l.ID })
	out.listIDs = lo.Map(lists, func(l models.List, _ int) string { return l.ID })
	return out, nil
}

func permissionRecords(resourceIDs []string, userID string, level models.PermissionLevel, addedBy string) []models.ResourcePermission {
	now := time.Now().UTC()
	records := make([]models.ResourcePermission, 0, len(resourceIDs))
	for _, rid := range resourceIDs {
		records = append(records, models.ResourcePermission{
			ID:         uuid.NewString(),
			ResourceID: rid,
			UserID:     userID,
			Level:      level,
			IsActive:   true,
			AddedBy:    addedBy,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	return records
}

// AddMember adds a user to a workspace and fans out permission records
// across every descendant. Re-inviting is idempotent: an active member
// is returned unchanged, a removed one is reactivated with the
// requested role.
func (e *Engine) AddMember(ctx context.Context, req *services.AddMemberRequest) (*models.WorkspaceMember, error) {
	role, err := models.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	ws, err := e.validator.EnsureWorkspace(ctx, req.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if err := e.authorizer.RequireFullEdit(ctx, req.ActedBy, models.WorkspaceRef(ws.ID)); err != nil {
		return nil, err
	}

	existing, err := e.members.Get(ctx, ws.ID, req.UserID)
	switch {
	case err == nil && existing.IsActive:
		return existing, nil
	case err == nil:
		// Removed earlier: reactivate the membership record. The old
		// permission records stay deactivated, so the role default
		// governs until resource-specific access is granted again.
		if err := e.txManager.ExecTx(ctx, func(txCtx context.Context) error {
			return e.members.Reactivate(txCtx, existing.ID, role, req.ActedBy)
		}); err != nil {
			return nil, fmt.Errorf("reactivate member: %w", err)
		}
		e.logger.Info("member reactivated",
			"workspace_id", ws.ID, "user_id", req.UserID, "role", string(role))
		return e.members.GetByID(ctx, existing.ID)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	level, err := models.DefaultPermission(role)
	if err != nil {
		return nil, err
	}

	fan, err := e.gather(ctx, ws.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	member := &models.WorkspaceMember{
		ID:          uuid.NewString(),
		WorkspaceID: ws.ID,
		UserID:      req.UserID,
		Role:        role,
		IsActive:    true,
		AddedBy:     req.ActedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = e.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := e.members.Create(txCtx, member); err != nil {
			return fmt.Errorf("create member: %w", err)
		}
		if err := e.spacePerms.CreateBulk(txCtx, permissionRecords(fan.spaceIDs, req.UserID, level, req.ActedBy)); err != nil {
			return fmt.Errorf("fan out space permissions: %w", err)
		}
		if err := e.folderPerms.CreateBulk(txCtx, permissionRecords(fan.folderIDs, req.UserID, level, req.ActedBy)); err != nil {
			return fmt.Errorf("fan out folder permissions: %w", err)
		}
		if err := e.listPerms.CreateBulk(txCtx, permissionRecords(fan.listIDs, req.UserID, level, req.ActedBy)); err != nil {
			return fmt.Errorf("fan out list permissions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("member added",
		"workspace_id", ws.ID, "user_id", req.UserID,
		"role", string(role), "records", fan.total())
	return member, nil
}

// RemoveMember soft-removes a member and deactivates every permission
// record fanned out for them. No rows are deleted.
func (e *Engine) RemoveMember(ctx context.Context, memberID, actedBy string) error {
	member, err := e.validator.EnsureMember(ctx, memberID)
	if err != nil {
		return err
	}
	ws, err := e.validator.EnsureWorkspace(ctx, member.WorkspaceID)
	if err != nil {
		return err
	}
	if err := e.authorizer.RequireFullEdit(ctx, actedBy, models.WorkspaceRef(ws.ID)); err != nil {
		return err
	}

	fan, err := e.gather(ctx, ws.ID)
	if err != nil {
		return err
	}

	err = e.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := e.members.Deactivate(txCtx, member.ID); err != nil {
			return fmt.Errorf("deactivate member: %w", err)
		}
		if err := e.spacePerms.DeactivateForUser(txCtx, fan.spaceIDs, member.UserID); err != nil {
			return fmt.Errorf("deactivate space permissions: %w", err)
		}
		if err := e.folderPerms.DeactivateForUser(txCtx, fan.folderIDs, member.UserID); err != nil {
			return fmt.Errorf("deactivate folder permissions: %w", err)
		}
		if err := e.listPerms.DeactivateForUser(txCtx, fan.listIDs, member.UserID); err != nil {
			return fmt.Errorf("deactivate list permissions: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.logger.Info("member removed",
		"workspace_id", ws.ID, "user_id", member.UserID, "records", fan.total())
	return nil
}

// ChangeRole changes a member's role and rewrites the level of every
// existing permission record for them. Only owners and admins may
// change roles.
func (e *Engine) ChangeRole(ctx context.Context, req *services.ChangeRoleRequest) (*models.WorkspaceMember, error) {
	newRole, err := models.ParseRole(req.NewRole)
	if err != nil {
		return nil, err
	}

	ws, err := e.validator.EnsureWorkspace(ctx, req.WorkspaceID)
	if err != nil {
		return nil, err
	}

	actor, err := e.members.Get(ctx, ws.ID, req.ActedBy)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.ForbiddenError{ActorID: req.ActedBy}
		}
		return nil, err
	}
	if !actor.IsActive || !actor.Role.CanManageRoles() {
		return nil, &domain.ForbiddenError{ActorID: req.ActedBy, Message: "only owners and admins may change roles"}
	}

	target, err := e.members.Get(ctx, ws.ID, req.UserID)
	if err != nil {
		return nil, err
	}
	if !target.IsActive {
		return nil, &domain.InactiveError{Kind: string(models.KindMember), ID: target.ID}
	}

	level, err := models.DefaultPermission(newRole)
	if err != nil {
		return nil, err
	}

	fan, err := e.gather(ctx, ws.ID)
	if err != nil {
		return nil, err
	}

	err = e.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := e.members.UpdateRole(txCtx, target.ID, newRole); err != nil {
			return fmt.Errorf("update role: %w", err)
		}
		if err := e.spacePerms.UpdateLevelForUser(txCtx, fan.spaceIDs, target.UserID, level); err != nil {
			return fmt.Errorf("update space permissions: %w", err)
		}
		if err := e.folderPerms.UpdateLevelForUser(txCtx, fan.folderIDs, target.UserID, level); err != nil {
			return fmt.Errorf("update folder permissions: %w", err)
		}
		if err := e.listPerms.UpdateLevelForUser(txCtx, fan.listIDs, target.UserID, level); err != nil {
			return fmt.Errorf("update list permissions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("member role changed",
		"workspace_id", ws.ID, "user_id", target.UserID,
		"role", string(newRole), "records", fan.total())
	return e.members.GetByID(ctx, target.ID)
}

// ListMembers lists the active members of a workspace the actor can see.
func (e *Engine) ListMembers(ctx context.Context, workspaceID, actorID string) ([]models.WorkspaceMember, error) {
	ws, err := e.validator.EnsureWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if err := e.authorizer.Require(ctx, actorID, models.WorkspaceRef(ws.ID), models.PermissionView); err != nil {
		return nil, err
	}
	return e.members.ListActiveByWorkspace(ctx, ws.ID)
}

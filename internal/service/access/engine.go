// Package access resolves what an actor may do to a resource. The
// decision walks the resource's ancestor chain to its workspace,
// requires an active membership there, and lets an active
// resource-specific permission record override the role's default.
package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"taskhive/internal/domain"
	"taskhive/internal/domain/models"
	"taskhive/internal/domain/repositories"
	"taskhive/internal/domain/services"
	"taskhive/internal/service/validate"
)

// Engine implements services.Authorizer.
type Engine struct {
	validator   *validate.ResourceValidator
	members     repositories.MemberRepository
	spacePerms  repositories.PermissionStore
	folderPerms repositories.PermissionStore
	listPerms   repositories.PermissionStore
	logger      *slog.Logger
}

// NewEngine creates an access decision engine.
func NewEngine(
	validator *validate.ResourceValidator,
	members repositories.MemberRepository,
	spacePerms repositories.PermissionStore,
	folderPerms repositories.PermissionStore,
	listPerms repositories.PermissionStore,
	logger *slog.Logger,
) services.Authorizer {
	return &Engine{
		validator:   validator,
		members:     members,
		spacePerms:  spacePerms,
		folderPerms: folderPerms,
		listPerms:   listPerms,
		logger:      logger,
	}
}

// bearing is the nearest ancestor (or the resource itself) that carries
// per-resource permission records: a space, folder or list.
type bearing struct {
	kind models.ResourceKind
	id   string
}

// resolve walks the ancestor chain of ref up to its workspace, ensuring
// every ancestor on the way is active. An inactive ancestor is
// decision-terminal: the walk stops there and the error surfaces.
func (e *Engine) resolve(ctx context.Context, ref models.ResourceRef) (string, *bearing, error) {
	switch ref.Kind {
	case models.KindWorkspace:
		ws, err := e.validator.EnsureWorkspace(ctx, ref.ID)
		if err != nil {
			return "", nil, err
		}
		return ws.ID, nil, nil

	case models.KindSpace:
		s, err := e.validator.EnsureSpace(ctx, ref.ID)
		if err != nil {
			return "", nil, err
		}
		if _, err := e.validator.EnsureWorkspace(ctx, s.WorkspaceID); err != nil {
			return "", nil, err
		}
		return s.WorkspaceID, &bearing{kind: models.KindSpace, id: s.ID}, nil

	case models.KindFolder:
		f, err := e.validator.EnsureFolder(ctx, ref.ID)
		if err != nil {
			return "", nil, err
		}
		wsID, err := e.resolveSpaceChain(ctx, f.SpaceID)
		if err != nil {
			return "", nil, err
		}
		return wsID, &bearing{kind: models.KindFolder, id: f.ID}, nil

	case models.KindList:
		return e.resolveList(ctx, ref.ID)

	case models.KindTemplate:
		t, err := e.validator.EnsureTemplate(ctx, ref.ID)
		if err != nil {
			return "", nil, err
		}
		return e.resolveList(ctx, t.ListID)

	case models.KindField:
		f, err := e.validator.EnsureField(ctx, ref.ID)
		if err != nil {
			return "", nil, err
		}
		t, err := e.validator.EnsureTemplate(ctx, f.TemplateID)
		if err != nil {
			return "", nil, err
		}
		return e.resolveList(ctx, t.ListID)

	case models.KindTask:
		t, err := e.validator.EnsureTask(ctx, ref.ID)
		if err != nil {
			return "", nil, err
		}
		return e.resolveList(ctx, t.ListID)

	default:
		return "", nil, fmt.Errorf("resource kind %q: %w", ref.Kind, domain.ErrValidation)
	}
}

// resolveList walks list -> (folder) -> space -> workspace. The list is
// the permission-bearing resource for everything at or below it.
func (e *Engine) resolveList(ctx context.Context, listID string) (string, *bearing, error) {
	l, err := e.validator.EnsureList(ctx, listID)
	if err != nil {
		return "", nil, err
	}
	if l.FolderID != nil {
		if _, err := e.validator.EnsureFolder(ctx, *l.FolderID); err != nil {
			return "", nil, err
		}
	}
	wsID, err := e.resolveSpaceChain(ctx, l.SpaceID)
	if err != nil {
		return "", nil, err
	}
	return wsID, &bearing{kind: models.KindList, id: l.ID}, nil
}

func (e *Engine) resolveSpaceChain(ctx context.Context, spaceID string) (string, error) {
	s, err := e.validator.EnsureSpace(ctx, spaceID)
	if err != nil {
		return "", err
	}
	if _, err := e.validator.EnsureWorkspace(ctx, s.WorkspaceID); err != nil {
		return "", err
	}
	return s.WorkspaceID, nil
}

func (e *Engine) storeFor(kind models.ResourceKind) repositories.PermissionStore {
	switch kind {
	case models.KindSpace:
		return e.spacePerms
	case models.KindFolder:
		return e.folderPerms
	default:
		return e.listPerms
	}
}

// EffectivePermission resolves the level governing the actor on the
// resource. An active resource-specific record is authoritative and
// overrides the role default; deactivated records are ignored entirely.
func (e *Engine) EffectivePermission(ctx context.Context, actorID string, ref models.ResourceRef) (models.PermissionLevel, error) {
	wsID, bear, err := e.resolve(ctx, ref)
	if err != nil {
		return "", err
	}

	member, err := e.members.Get(ctx, wsID, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			e.logger.Debug("access denied: not a member",
				"actor_id", actorID, "workspace_id", wsID, "resource", ref.ID)
			return "", &domain.ForbiddenError{ActorID: actorID}
		}
		return "", err
	}
	if !member.IsActive {
		e.logger.Debug("access denied: membership inactive",
			"actor_id", actorID, "workspace_id", wsID, "resource", ref.ID)
		return "", &domain.ForbiddenError{ActorID: actorID}
	}

	if bear != nil {
		rec, err := e.storeFor(bear.kind).Get(ctx, bear.id, actorID)
		switch {
		case err == nil && rec.IsActive:
			return rec.Level, nil
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return "", err
		}
	}

	return models.DefaultPermission(member.Role)
}

// Require fails with ErrForbidden unless the actor's effective
// permission satisfies the required level.
func (e *Engine) Require(ctx context.Context, actorID string, ref models.ResourceRef, required models.PermissionLevel) error {
	level, err := e.EffectivePermission(ctx, actorID, ref)
	if err != nil {
		return err
	}
	if !level.Satisfies(required) {
		e.logger.Debug("access denied: insufficient level",
			"actor_id", actorID, "resource", ref.ID,
			"have", string(level), "need", string(required))
		return &domain.ForbiddenError{ActorID: actorID}
	}
	return nil
}

// RequireFullEdit is shorthand for Require with PermissionFullEdit.
func (e *Engine) RequireFullEdit(ctx context.Context, actorID string, ref models.ResourceRef) error {
	return e.Require(ctx, actorID, ref, models.PermissionFullEdit)
}

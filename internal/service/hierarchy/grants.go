package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"taskhive/internal/domain"
	"taskhive/internal/domain/models"
	"taskhive/internal/domain/repositories"
	"taskhive/internal/domain/services"
)

// grants holds the permission grant/revoke logic shared by the space,
// folder and list services. At most one record exists per
// (resource, user) pair: granting over an existing record updates it in
// place (reactivating a deactivated one), and revoking deactivates it
// without deleting.
type grants struct {
	store      repositories.PermissionStore
	members    repositories.MemberRepository
	authorizer services.Authorizer
	txManager  repositories.TransactionManager
	logger     *slog.Logger
}

// set grants or adjusts the user's permission on the resource. The
// grantee must be an active member of the owning workspace; a
// resource-specific record for a non-member would never be consulted.
func (g *grants) set(ctx context.Context, ref models.ResourceRef, workspaceID string, req *services.SetPermissionRequest) (*models.ResourcePermission, error) {
	level, err := models.ParsePermissionLevel(req.Level)
	if err != nil {
		return nil, err
	}
	if err := g.authorizer.RequireFullEdit(ctx, req.ActorID, ref); err != nil {
		return nil, err
	}

	member, err := g.members.Get(ctx, workspaceID, req.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s is not a member of the workspace", domain.ErrValidation, req.UserID)
		}
		return nil, err
	}
	if !member.IsActive {
		return nil, fmt.Errorf("%w: user %s is not an active member of the workspace", domain.ErrValidation, req.UserID)
	}

	now := time.Now().UTC()
	existing, err := g.store.Get(ctx, ref.ID, req.UserID)
	switch {
	case err == nil:
		existing.Level = level
		existing.IsActive = true
		existing.AddedBy = req.ActorID
		existing.UpdatedAt = now
		if err := g.txManager.ExecTx(ctx, func(txCtx context.Context) error {
			return g.store.Update(txCtx, existing)
		}); err != nil {
			return nil, fmt.Errorf("update permission: %w", err)
		}
		g.logger.Info("permission updated",
			"kind", string(ref.Kind), "resource_id", ref.ID,
			"user_id", req.UserID, "level", string(level))
		return existing, nil

	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	record := &models.ResourcePermission{
		ID:         uuid.NewString(),
		ResourceID: ref.ID,
		UserID:     req.UserID,
		Level:      level,
		IsActive:   true,
		AddedBy:    req.ActorID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := g.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return g.store.Create(txCtx, record)
	}); err != nil {
		return nil, fmt.Errorf("create permission: %w", err)
	}

	g.logger.Info("permission granted",
		"kind", string(ref.Kind), "resource_id", ref.ID,
		"user_id", req.UserID, "level", string(level))
	return record, nil
}

// revoke deactivates the user's permission record on the resource. The
// user falls back to their workspace role's default level.
func (g *grants) revoke(ctx context.Context, ref models.ResourceRef, userID, actorID string) error {
	if err := g.authorizer.RequireFullEdit(ctx, actorID, ref); err != nil {
		return err
	}

	record, err := g.store.Get(ctx, ref.ID, userID)
	if err != nil {
		return err
	}
	if !record.IsActive {
		return &domain.InactiveError{Kind: "permission", ID: record.ID}
	}

	if err := g.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return g.store.Deactivate(txCtx, ref.ID, userID)
	}); err != nil {
		return fmt.Errorf("revoke permission: %w", err)
	}

	g.logger.Info("permission revoked",
		"kind", string(ref.Kind), "resource_id", ref.ID, "user_id", userID)
	return nil
}

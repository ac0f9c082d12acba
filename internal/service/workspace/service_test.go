package workspace

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhive/internal/domain"
	"taskhive/internal/domain/models"
	"taskhive/internal/domain/services"
	"taskhive/internal/service/access"
	"taskhive/internal/service/enginetest"
)

func newService(f *enginetest.Fixture) services.WorkspaceService {
	authorizer := access.NewEngine(f.Validator(), f.Members, f.SpacePerms, f.FolderPerms, f.ListPerms, slog.Default())
	return NewWorkspaceService(f.Workspaces, f.Members, f.Validator(), authorizer, f.Tx, slog.Default())
}

func TestCreateWorkspaceSeedsOwnerMembership(t *testing.T) {
	f := enginetest.NewFixture()
	svc := newService(f)
	ctx := context.Background()

	ws, err := svc.CreateWorkspace(ctx, &services.CreateWorkspaceRequest{
		ActorID: "alice", Name: "Acme",
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme", ws.Name)
	assert.Equal(t, "alice", ws.AccountID)
	assert.True(t, ws.IsActive)
	assert.Equal(t, 1, f.Tx.Calls)

	member, err := f.Members.Get(ctx, ws.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, member.Role)
	assert.True(t, member.IsActive)
}

func TestCreateWorkspaceRequiresName(t *testing.T) {
	f := enginetest.NewFixture()
	svc := newService(f)

	_, err := svc.CreateWorkspace(context.Background(), &services.CreateWorkspaceRequest{
		ActorID: "alice", Name: "",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRenameWorkspace(t *testing.T) {
	f := enginetest.NewFixture()
	svc := newService(f)
	ctx := context.Background()

	ws, err := svc.CreateWorkspace(ctx, &services.CreateWorkspaceRequest{ActorID: "alice", Name: "Acme"})
	require.NoError(t, err)

	renamed, err := svc.RenameWorkspace(ctx, ws.ID, "alice", "Acme Corp")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", renamed.Name)

	stored, err := f.Workspaces.GetByID(ctx, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", stored.Name)
}

func TestRenameWorkspaceGuestForbidden(t *testing.T) {
	f := enginetest.NewFixture()
	svc := newService(f)
	ctx := context.Background()

	ws, err := svc.CreateWorkspace(ctx, &services.CreateWorkspaceRequest{ActorID: "alice", Name: "Acme"})
	require.NoError(t, err)
	f.AddMember("m-g1", ws.ID, "g1", models.RoleGuest)

	_, err = svc.RenameWorkspace(ctx, ws.ID, "g1", "Hijacked")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestDeactivateWorkspaceOwnerOnly(t *testing.T) {
	f := enginetest.NewFixture()
	svc := newService(f)
	ctx := context.Background()

	ws, err := svc.CreateWorkspace(ctx, &services.CreateWorkspaceRequest{ActorID: "alice", Name: "Acme"})
	require.NoError(t, err)
	f.AddMember("m-bob", ws.ID, "bob", models.RoleAdmin)

	// Admin is not enough.
	err = svc.DeactivateWorkspace(ctx, ws.ID, "bob")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, svc.DeactivateWorkspace(ctx, ws.ID, "alice"))

	_, err = svc.GetWorkspace(ctx, ws.ID, "alice")
	assert.ErrorIs(t, err, domain.ErrInactive)
}

func TestTransferOwnership(t *testing.T) {
	f := enginetest.NewFixture()
	svc := newService(f)
	ctx := context.Background()

	ws, err := svc.CreateWorkspace(ctx, &services.CreateWorkspaceRequest{ActorID: "alice", Name: "Acme"})
	require.NoError(t, err)
	f.AddMember("m-bob", ws.ID, "bob", models.RoleMember)

	_, err = svc.TransferOwnership(ctx, ws.ID, "alice", "bob")
	require.NoError(t, err)

	bob, err := f.Members.Get(ctx, ws.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, bob.Role)

	alice, err := f.Members.Get(ctx, ws.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, alice.Role)
}

func TestTransferOwnershipRequiresOwner(t *testing.T) {
	f := enginetest.NewFixture()
	svc := newService(f)
	ctx := context.Background()

	ws, err := svc.CreateWorkspace(ctx, &services.CreateWorkspaceRequest{ActorID: "alice", Name: "Acme"})
	require.NoError(t, err)
	f.AddMember("m-bob", ws.ID, "bob", models.RoleAdmin)
	f.AddMember("m-carol", ws.ID, "carol", models.RoleMember)

	_, err = svc.TransferOwnership(ctx, ws.ID, "bob", "carol")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestTransferOwnershipToInactiveMember(t *testing.T) {
	f := enginetest.NewFixture()
	svc := newService(f)
	ctx := context.Background()

	ws, err := svc.CreateWorkspace(ctx, &services.CreateWorkspaceRequest{ActorID: "alice", Name: "Acme"})
	require.NoError(t, err)
	bob := f.AddMember("m-bob", ws.ID, "bob", models.RoleMember)
	require.NoError(t, f.Members.Deactivate(ctx, bob.ID))

	_, err = svc.TransferOwnership(ctx, ws.ID, "alice", "bob")
	assert.ErrorIs(t, err, domain.ErrInactive)
}

func TestListWorkspacesByAccount(t *testing.T) {
	f := enginetest.NewFixture()
	svc := newService(f)
	ctx := context.Background()

	_, err := svc.CreateWorkspace(ctx, &services.CreateWorkspaceRequest{ActorID: "alice", Name: "Acme"})
	require.NoError(t, err)
	_, err = svc.CreateWorkspace(ctx, &services.CreateWorkspaceRequest{ActorID: "alice", Name: "Side Project"})
	require.NoError(t, err)
	_, err = svc.CreateWorkspace(ctx, &services.CreateWorkspaceRequest{ActorID: "bob", Name: "Bobs"})
	require.NoError(t, err)

	mine, err := svc.ListWorkspaces(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

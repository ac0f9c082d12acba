package hierarchy

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
	"taskhive/internal/service/ordering"
)

type harness struct {
	f       *enginetest.Fixture
	spaces  services.SpaceService
	folders services.FolderService
	lists   services.ListService
}

func newHarness() *harness {
	f := enginetest.NewFixture()
	authorizer := access.NewEngine(f.Validator(), f.Members, f.SpacePerms, f.FolderPerms, f.ListPerms, slog.Default())
	manager := ordering.NewManager(slog.Default())
	return &harness{
		f: f,
		spaces: NewSpaceService(
			f.Spaces, f.Members, f.SpacePerms, f.Validator(),
			authorizer, manager, f.Tx, slog.Default(),
		),
		folders: NewFolderService(
			f.Folders, f.Members, f.FolderPerms, f.Validator(),
			authorizer, manager, f.Tx, slog.Default(),
		),
		lists: NewListService(
			f.Lists, f.Members, f.ListPerms, f.Validator(),
			authorizer, manager, f.Tx, slog.Default(),
		),
	}
}

func (h *harness) seed() {
	h.f.AddWorkspace("ws1", "acct1")
	h.f.AddMember("m-owner", "ws1", "owner", models.RoleOwner)
}

func TestCreateSpaceAssignsTailOrder(t *testing.T) {
	h := newHarness()
	h.seed()
	ctx := context.Background()

	first, err := h.spaces.CreateSpace(ctx, &services.CreateSpaceRequest{
		WorkspaceID: "ws1", Name: "Engineering", ActorID: "owner",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Order)

	second, err := h.spaces.CreateSpace(ctx, &services.CreateSpaceRequest{
		WorkspaceID: "ws1", Name: "Design", ActorID: "owner",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Order)
	assert.True(t, second.IsActive)
}

func TestCreateSpaceDuplicateName(t *testing.T) {
	h := newHarness()
	h.seed()
	ctx := context.Background()

	_, err := h.spaces.CreateSpace(ctx, &services.CreateSpaceRequest{
		WorkspaceID: "ws1", Name: "Engineering", ActorID: "owner",
	})
	require.NoError(t, err)

	_, err = h.spaces.CreateSpace(ctx, &services.CreateSpaceRequest{
		WorkspaceID: "ws1", Name: "Engineering", ActorID: "owner",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreateSpaceRequiresFullEdit(t *testing.T) {
	h := newHarness()
	h.seed()
	h.f.AddMember("m-guest", "ws1", "guest1", models.RoleGuest)

	_, err := h.spaces.CreateSpace(context.Background(), &services.CreateSpaceRequest{
		WorkspaceID: "ws1", Name: "Engineering", ActorID: "guest1",
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdateSpaceNothingToUpdate(t *testing.T) {
	h := newHarness()
	h.seed()
	h.f.AddSpace("sp1", "ws1")

	_, err := h.spaces.UpdateSpace(context.Background(), "sp1", &services.UpdateSpaceRequest{ActorID: "owner"})
	assert.ErrorIs(t, err, domain.ErrNothingToUpdate)
}

func TestReorderSpaceKeepsDensity(t *testing.T) {
	h := newHarness()
	h.seed()
	h.f.AddSpace("sp1", "ws1")
	h.f.AddSpace("sp2", "ws1")
	h.f.AddSpace("sp3", "ws1")
	ctx := context.Background()

	moved, err := h.spaces.ReorderSpace(ctx, "sp1", "owner", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, moved.Order)

	siblings, err := h.f.Spaces.ListActiveSiblings(ctx, "ws1")
	require.NoError(t, err)
	require.Len(t, siblings, 3)
	for i, s := range siblings {
		assert.Equal(t, i+1, s.Order)
	}
	assert.Equal(t, "sp2", siblings[0].ID)
	assert.Equal(t, "sp3", siblings[1].ID)
	assert.Equal(t, "sp1", siblings[2].ID)
}

func TestReorderSpaceOutOfRange(t *testing.T) {
	h := newHarness()
	h.seed()
	h.f.AddSpace("sp1", "ws1")
	h.f.AddSpace("sp2", "ws1")

	_, err := h.spaces.ReorderSpace(context.Background(), "sp1", "owner", 5)
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)
}

func TestDeleteSpaceClosesGap(t *testing.T) {
	h := newHarness()
	h.seed()
	h.f.AddSpace("sp1", "ws1")
	h.f.AddSpace("sp2", "ws1")
	h.f.AddSpace("sp3", "ws1")
	ctx := context.Background()

	require.NoError(t, h.spaces.DeleteSpace(ctx, "sp2", "owner"))

	siblings, err := h.f.Spaces.ListActiveSiblings(ctx, "ws1")
	require.NoError(t, err)
	require.Len(t, siblings, 2)
	assert.Equal(t, "sp1", siblings[0].ID)
	assert.Equal(t, 1, siblings[0].Order)
	assert.Equal(t, "sp3", siblings[1].ID)
	assert.Equal(t, 2, siblings[1].Order)

	_, err = h.spaces.GetSpace(ctx, "sp2", "owner")
	assert.ErrorIs(t, err, domain.ErrInactive)
}

func TestListsOrderIndependentlyPerParent(t *testing.T) {
	h := newHarness()
	h.seed()
	h.f.AddSpace("sp1", "ws1")
	h.f.AddFolder("fo1", "sp1")
	ctx := context.Background()

	folder := "fo1"
	inFolder, err := h.lists.CreateList(ctx, &services.CreateListRequest{
		SpaceID: "sp1", FolderID: &folder, Name: "Backlog", ActorID: "owner",
	})
	require.NoError(t, err)
	direct, err := h.lists.CreateList(ctx, &services.CreateListRequest{
		SpaceID: "sp1", Name: "Inbox", ActorID: "owner",
	})
	require.NoError(t, err)

	// Each parent starts its own order sequence.
	assert.Equal(t, 1, inFolder.Order)
	assert.Equal(t, 1, direct.Order)
	assert.Nil(t, direct.FolderID)
}

func TestCreateListFolderFromOtherSpace(t *testing.T) {
	h := newHarness()
	h.seed()
	h.f.AddSpace("sp1", "ws1")
	h.f.AddSpace("sp2", "ws1")
	h.f.AddFolder("fo1", "sp1")

	folder := "fo1"
	_, err := h.lists.CreateList(context.Background(), &services.CreateListRequest{
		SpaceID: "sp2", FolderID: &folder, Name: "Backlog", ActorID: "owner",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSetPermissionCreatesThenUpdatesInPlace(t *testing.T) {
	h := newHarness()
	h.seed()
	h.f.AddMember("m-u1", "ws1", "u1", models.RoleMember)
	h.f.AddSpace("sp1", "ws1")
	ctx := context.Background()

	granted, err := h.spaces.SetPermission(ctx, &services.SetPermissionRequest{
		ResourceID: "sp1", UserID: "u1", Level: "view", ActorID: "owner",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PermissionView, granted.Level)
	assert.True(t, granted.IsActive)

	// Granting again updates the same record rather than adding one.
	regranted, err := h.spaces.SetPermission(ctx, &services.SetPermissionRequest{
		ResourceID: "sp1", UserID: "u1", Level: "comment", ActorID: "owner",
	})
	require.NoError(t, err)
	assert.Equal(t, granted.ID, regranted.ID)
	assert.Equal(t, models.PermissionComment, regranted.Level)
	assert.Len(t, h.f.SpacePerms.All(), 1)
}

func TestSetPermissionRejectsNonMember(t *testing.T) {
	h := newHarness()
	h.seed()
	h.f.AddSpace("sp1", "ws1")

	_, err := h.spaces.SetPermission(context.Background(), &services.SetPermissionRequest{
		ResourceID: "sp1", UserID: "stranger", Level: "view", ActorID: "owner",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRevokePermissionFallsBackToRoleDefault(t *testing.T) {
	h := newHarness()
	h.seed()
	h.f.AddMember("m-g1", "ws1", "g1", models.RoleGuest)
	h.f.AddSpace("sp1", "ws1")
	ctx := context.Background()

	_, err := h.spaces.SetPermission(ctx, &services.SetPermissionRequest{
		ResourceID: "sp1", UserID: "g1", Level: "full_edit", ActorID: "owner",
	})
	require.NoError(t, err)

	require.NoError(t, h.spaces.RevokePermission(ctx, "sp1", "g1", "owner"))

	// The record is deactivated, not deleted, and the guest default
	// governs again.
	assert.Empty(t, h.f.SpacePerms.ActiveFor("g1"))
	assert.Len(t, h.f.SpacePerms.All(), 1)

	_, err = h.spaces.UpdateSpace(ctx, "sp1", &services.UpdateSpaceRequest{
		Name: strPtr("Renamed"), ActorID: "g1",
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRevokePermissionTwice(t *testing.T) {
	h := newHarness()
	h.seed()
	h.f.AddMember("m-u1", "ws1", "u1", models.RoleMember)
	h.f.AddSpace("sp1", "ws1")
	ctx := context.Background()

	_, err := h.spaces.SetPermission(ctx, &services.SetPermissionRequest{
		ResourceID: "sp1", UserID: "u1", Level: "view", ActorID: "owner",
	})
	require.NoError(t, err)
	require.NoError(t, h.spaces.RevokePermission(ctx, "sp1", "u1", "owner"))

	err = h.spaces.RevokePermission(ctx, "sp1", "u1", "owner")
	assert.ErrorIs(t, err, domain.ErrInactive)
}

func TestFolderOverrideScopedToFolder(t *testing.T) {
	h := newHarness()
	h.seed()
	h.f.AddMember("m-g1", "ws1", "g1", models.RoleGuest)
	h.f.AddSpace("sp1", "ws1")
	h.f.AddFolder("fo1", "sp1")
	folder := "fo1"
	h.f.AddList("li1", "sp1", &folder)
	ctx := context.Background()

	_, err := h.folders.SetPermission(ctx, &services.SetPermissionRequest{
		ResourceID: "fo1", UserID: "g1", Level: "full_edit", ActorID: "owner",
	})
	require.NoError(t, err)

	// The override governs the folder itself.
	_, err = h.folders.UpdateFolder(ctx, "fo1", &services.UpdateFolderRequest{
		Name: strPtr("Archive"), ActorID: "g1",
	})
	assert.NoError(t, err)

	// A list under it carries its own bearing record; without one the
	// guest's role default governs.
	_, err = h.lists.UpdateList(ctx, "li1", &services.UpdateListRequest{
		Name: strPtr("Sprint"), ActorID: "g1",
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestMutationsOpenOneTransaction(t *testing.T) {
	h := newHarness()
	h.seed()
	ctx := context.Background()

	_, err := h.spaces.CreateSpace(ctx, &services.CreateSpaceRequest{
		WorkspaceID: "ws1", Name: "Engineering", ActorID: "owner",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, h.f.Tx.Calls)

	_, err = h.spaces.CreateSpace(ctx, &services.CreateSpaceRequest{
		WorkspaceID: "ws1", Name: "Design", ActorID: "owner",
	})
	require.NoError(t, err)

	sp, err := h.f.Spaces.GetByID(ctx, findSpace(t, h, "Design"))
	require.NoError(t, err)
	_, err = h.spaces.ReorderSpace(ctx, sp.ID, "owner", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, h.f.Tx.Calls)
}

func findSpace(t *testing.T, h *harness, name string) string {
	t.Helper()
	siblings, err := h.f.Spaces.ListActiveSiblings(context.Background(), "ws1")
	require.NoError(t, err)
	for _, s := range siblings {
		if s.Name == name {
			return s.ID
		}
	}
	t.Fatalf("space %q not seeded", name)
	return ""
}

func strPtr(s string) *string { return &s }

package cascade

import (
	"context"
	"errors"
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

func newEngine(f *enginetest.Fixture) services.MembershipService {
	authorizer := access.NewEngine(f.Validator(), f.Members, f.SpacePerms, f.FolderPerms, f.ListPerms, slog.Default())
	return NewEngine(
		f.Validator(), f.Members, f.Spaces, f.Folders, f.Lists,
		f.SpacePerms, f.FolderPerms, f.ListPerms,
		authorizer, f.Tx, slog.Default(),
	)
}

// seedWorkspace builds ws1 owned by "owner": 2 spaces, 1 folder in sp1,
// a foldered list, and a direct list in sp2. S=2, F=1, L=2.
func seedWorkspace(f *enginetest.Fixture) {
	f.AddWorkspace("ws1", "acct1")
	f.AddMember("m-owner", "ws1", "owner", models.RoleOwner)
	f.AddSpace("sp1", "ws1")
	f.AddSpace("sp2", "ws1")
	f.AddFolder("fo1", "sp1")
	folder := "fo1"
	f.AddList("li1", "sp1", &folder)
	f.AddList("li2", "sp2", nil)
}

func TestAddMemberFanOutCompleteness(t *testing.T) {
	f := enginetest.NewFixture()
	seedWorkspace(f)
	eng := newEngine(f)

	member, err := eng.AddMember(context.Background(), &services.AddMemberRequest{
		WorkspaceID: "ws1", UserID: "u1", Role: "member", ActedBy: "owner",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, member.Role)
	assert.True(t, member.IsActive)

	// S+F+L records, all FullEdit for a Member.
	assert.Len(t, f.SpacePerms.ActiveFor("u1"), 2)
	assert.Len(t, f.FolderPerms.ActiveFor("u1"), 1)
	assert.Len(t, f.ListPerms.ActiveFor("u1"), 2)
	for _, store := range []*enginetest.PermStore{f.SpacePerms, f.FolderPerms, f.ListPerms} {
		for _, p := range store.ActiveFor("u1") {
			assert.Equal(t, models.PermissionFullEdit, p.Level)
			assert.Equal(t, "owner", p.AddedBy)
		}
	}
}

func TestAddGuestDerivesViewLevel(t *testing.T) {
	f := enginetest.NewFixture()
	seedWorkspace(f)
	eng := newEngine(f)

	_, err := eng.AddMember(context.Background(), &services.AddMemberRequest{
		WorkspaceID: "ws1", UserID: "g1", Role: "guest", ActedBy: "owner",
	})
	require.NoError(t, err)

	for _, store := range []*enginetest.PermStore{f.SpacePerms, f.FolderPerms, f.ListPerms} {
		for _, p := range store.ActiveFor("g1") {
			assert.Equal(t, models.PermissionView, p.Level)
		}
	}
}

func TestAddMemberThreeSpacesScenario(t *testing.T) {
	// Workspace with 3 spaces, no folders, no lists: adding a Member
	// creates exactly 3 active space permissions, each FullEdit.
	f := enginetest.NewFixture()
	f.AddWorkspace("ws1", "acct1")
	f.AddMember("m-owner", "ws1", "owner", models.RoleOwner)
	f.AddSpace("sp1", "ws1")
	f.AddSpace("sp2", "ws1")
	f.AddSpace("sp3", "ws1")
	eng := newEngine(f)

	_, err := eng.AddMember(context.Background(), &services.AddMemberRequest{
		WorkspaceID: "ws1", UserID: "u1", Role: "member", ActedBy: "owner",
	})
	require.NoError(t, err)

	got := f.SpacePerms.ActiveFor("u1")
	require.Len(t, got, 3)
	for _, p := range got {
		assert.Equal(t, models.PermissionFullEdit, p.Level)
	}
	assert.Empty(t, f.FolderPerms.ActiveFor("u1"))
	assert.Empty(t, f.ListPerms.ActiveFor("u1"))
}

func TestAddMemberIdempotentOnActiveMember(t *testing.T) {
	f := enginetest.NewFixture()
	seedWorkspace(f)
	eng := newEngine(f)
	ctx := context.Background()

	first, err := eng.AddMember(ctx, &services.AddMemberRequest{
		WorkspaceID: "ws1", UserID: "u1", Role: "member", ActedBy: "owner",
	})
	require.NoError(t, err)
	recordsBefore := len(f.SpacePerms.All()) + len(f.FolderPerms.All()) + len(f.ListPerms.All())

	second, err := eng.AddMember(ctx, &services.AddMemberRequest{
		WorkspaceID: "ws1", UserID: "u1", Role: "admin", ActedBy: "owner",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.RoleMember, second.Role, "active member returned unchanged")

	recordsAfter := len(f.SpacePerms.All()) + len(f.FolderPerms.All()) + len(f.ListPerms.All())
	assert.Equal(t, recordsBefore, recordsAfter, "no duplicate records")
}

func TestRemoveMemberReversibility(t *testing.T) {
	f := enginetest.NewFixture()
	seedWorkspace(f)
	eng := newEngine(f)
	ctx := context.Background()

	member, err := eng.AddMember(ctx, &services.AddMemberRequest{
		WorkspaceID: "ws1", UserID: "u1", Role: "member", ActedBy: "owner",
	})
	require.NoError(t, err)
	totalBefore := len(f.SpacePerms.All()) + len(f.FolderPerms.All()) + len(f.ListPerms.All())

	require.NoError(t, eng.RemoveMember(ctx, member.ID, "owner"))

	// Zero active records, total unchanged: soft-deactivation, not deletion.
	assert.Empty(t, f.SpacePerms.ActiveFor("u1"))
	assert.Empty(t, f.FolderPerms.ActiveFor("u1"))
	assert.Empty(t, f.ListPerms.ActiveFor("u1"))
	totalAfter := len(f.SpacePerms.All()) + len(f.FolderPerms.All()) + len(f.ListPerms.All())
	assert.Equal(t, totalBefore, totalAfter)

	got, err := f.Members.GetByID(ctx, member.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestRemoveMemberTwiceFails(t *testing.T) {
	f := enginetest.NewFixture()
	seedWorkspace(f)
	eng := newEngine(f)
	ctx := context.Background()

	member, err := eng.AddMember(ctx, &services.AddMemberRequest{
		WorkspaceID: "ws1", UserID: "u1", Role: "member", ActedBy: "owner",
	})
	require.NoError(t, err)
	require.NoError(t, eng.RemoveMember(ctx, member.ID, "owner"))

	err = eng.RemoveMember(ctx, member.ID, "owner")
	assert.ErrorIs(t, err, domain.ErrInactive)
}

func TestReinviteReactivatesMembership(t *testing.T) {
	f := enginetest.NewFixture()
	seedWorkspace(f)
	eng := newEngine(f)
	ctx := context.Background()

	member, err := eng.AddMember(ctx, &services.AddMemberRequest{
		WorkspaceID: "ws1", UserID: "u1", Role: "member", ActedBy: "owner",
	})
	require.NoError(t, err)
	require.NoError(t, eng.RemoveMember(ctx, member.ID, "owner"))

	again, err := eng.AddMember(ctx, &services.AddMemberRequest{
		WorkspaceID: "ws1", UserID: "u1", Role: "guest", ActedBy: "owner",
	})
	require.NoError(t, err)
	assert.Equal(t, member.ID, again.ID, "same membership record, reactivated")
	assert.True(t, again.IsActive)
	assert.Equal(t, models.RoleGuest, again.Role)
}

func TestChangeRoleRewritesLevels(t *testing.T) {
	f := enginetest.NewFixture()
	seedWorkspace(f)
	eng := newEngine(f)
	ctx := context.Background()

	_, err := eng.AddMember(ctx, &services.AddMemberRequest{
		WorkspaceID: "ws1", UserID: "u1", Role: "member", ActedBy: "owner",
	})
	require.NoError(t, err)
	totalBefore := len(f.SpacePerms.All()) + len(f.FolderPerms.All()) + len(f.ListPerms.All())

	updated, err := eng.ChangeRole(ctx, &services.ChangeRoleRequest{
		WorkspaceID: "ws1", UserID: "u1", NewRole: "guest", ActedBy: "owner",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleGuest, updated.Role)

	// Existing records rewritten in place, none created.
	totalAfter := len(f.SpacePerms.All()) + len(f.FolderPerms.All()) + len(f.ListPerms.All())
	assert.Equal(t, totalBefore, totalAfter)
	for _, store := range []*enginetest.PermStore{f.SpacePerms, f.FolderPerms, f.ListPerms} {
		for _, p := range store.ActiveFor("u1") {
			assert.Equal(t, models.PermissionView, p.Level)
		}
	}
}

func TestChangeRoleRequiresOwnerOrAdmin(t *testing.T) {
	f := enginetest.NewFixture()
	seedWorkspace(f)
	eng := newEngine(f)
	ctx := context.Background()

	for _, u := range []struct {
		id   string
		role string
	}{{"mem1", "member"}, {"gue1", "guest"}} {
		_, err := eng.AddMember(ctx, &services.AddMemberRequest{
			WorkspaceID: "ws1", UserID: u.id, Role: u.role, ActedBy: "owner",
		})
		require.NoError(t, err)
	}

	_, err := eng.ChangeRole(ctx, &services.ChangeRoleRequest{
		WorkspaceID: "ws1", UserID: "gue1", NewRole: "member", ActedBy: "mem1",
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Admins may.
	_, err = eng.AddMember(ctx, &services.AddMemberRequest{
		WorkspaceID: "ws1", UserID: "adm1", Role: "admin", ActedBy: "owner",
	})
	require.NoError(t, err)
	_, err = eng.ChangeRole(ctx, &services.ChangeRoleRequest{
		WorkspaceID: "ws1", UserID: "gue1", NewRole: "member", ActedBy: "adm1",
	})
	assert.NoError(t, err)
}

func TestAddMemberRejectsUnknownRole(t *testing.T) {
	f := enginetest.NewFixture()
	seedWorkspace(f)
	eng := newEngine(f)

	_, err := eng.AddMember(context.Background(), &services.AddMemberRequest{
		WorkspaceID: "ws1", UserID: "u1", Role: "superuser", ActedBy: "owner",
	})
	assert.ErrorIs(t, err, domain.ErrUnexpectedRole)
}

func TestAddMemberGuestActorForbidden(t *testing.T) {
	f := enginetest.NewFixture()
	seedWorkspace(f)
	eng := newEngine(f)
	ctx := context.Background()

	_, err := eng.AddMember(ctx, &services.AddMemberRequest{
		WorkspaceID: "ws1", UserID: "g1", Role: "guest", ActedBy: "owner",
	})
	require.NoError(t, err)

	_, err = eng.AddMember(ctx, &services.AddMemberRequest{
		WorkspaceID: "ws1", UserID: "u2", Role: "member", ActedBy: "g1",
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAddMemberInactiveWorkspace(t *testing.T) {
	f := enginetest.NewFixture()
	seedWorkspace(f)
	require.NoError(t, f.Workspaces.SetActive(context.Background(), "ws1", false))
	eng := newEngine(f)

	_, err := eng.AddMember(context.Background(), &services.AddMemberRequest{
		WorkspaceID: "ws1", UserID: "u1", Role: "member", ActedBy: "owner",
	})
	assert.ErrorIs(t, err, domain.ErrInactive)
}

func TestFanOutFailureRollsBackNothingObservable(t *testing.T) {
	f := enginetest.NewFixture()
	seedWorkspace(f)
	eng := newEngine(f)

	f.Tx.FailWith = errors.New("write conflict")
	_, err := eng.AddMember(context.Background(), &services.AddMemberRequest{
		WorkspaceID: "ws1", UserID: "u1", Role: "member", ActedBy: "owner",
	})
	require.Error(t, err)

	// The membership mutation and fan-out share one boundary: nothing
	// was written outside it.
	_, err = f.Members.Get(context.Background(), "ws1", "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.SpacePerms.ActiveFor("u1"))
}

func TestMutationsOpenExactlyOneTransaction(t *testing.T) {
	f := enginetest.NewFixture()
	seedWorkspace(f)
	eng := newEngine(f)
	ctx := context.Background()

	member, err := eng.AddMember(ctx, &services.AddMemberRequest{
		WorkspaceID: "ws1", UserID: "u1", Role: "member", ActedBy: "owner",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.Tx.Calls)

	_, err = eng.ChangeRole(ctx, &services.ChangeRoleRequest{
		WorkspaceID: "ws1", UserID: "u1", NewRole: "guest", ActedBy: "owner",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, f.Tx.Calls)

	require.NoError(t, eng.RemoveMember(ctx, member.ID, "owner"))
	assert.Equal(t, 3, f.Tx.Calls)
}

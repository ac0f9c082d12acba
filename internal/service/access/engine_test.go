package access

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhive/internal/domain"
	"taskhive/internal/domain/models"
	"taskhive/internal/domain/services"
	"taskhive/internal/service/enginetest"
)

func newEngine(f *enginetest.Fixture) services.Authorizer {
	return NewEngine(f.Validator(), f.Members, f.SpacePerms, f.FolderPerms, f.ListPerms, slog.Default())
}

// seedTree builds ws1 with one space, one folder, a foldered list and a
// direct list.
func seedTree(f *enginetest.Fixture) {
	f.AddWorkspace("ws1", "acct1")
	f.AddSpace("sp1", "ws1")
	f.AddFolder("fo1", "sp1")
	folder := "fo1"
	f.AddList("li1", "sp1", &folder)
	f.AddList("li2", "sp1", nil)
}

func TestEffectivePermissionRoleDefaults(t *testing.T) {
	tests := []struct {
		name string
		role models.Role
		want models.PermissionLevel
	}{
		{"owner gets full edit", models.RoleOwner, models.PermissionFullEdit},
		{"admin gets full edit", models.RoleAdmin, models.PermissionFullEdit},
		{"member gets full edit", models.RoleMember, models.PermissionFullEdit},
		{"guest gets view", models.RoleGuest, models.PermissionView},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := enginetest.NewFixture()
			seedTree(f)
			f.AddMember("m1", "ws1", "u1", tt.role)

			eng := newEngine(f)
			got, err := eng.EffectivePermission(context.Background(), "u1", models.SpaceRef("sp1"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResourceRecordOverridesRoleDefault(t *testing.T) {
	// A resource-specific record is authoritative regardless of the
	// actor's workspace role, in both directions.
	f := enginetest.NewFixture()
	seedTree(f)
	f.AddMember("m1", "ws1", "guest1", models.RoleGuest)
	f.AddMember("m2", "ws1", "member1", models.RoleMember)

	// Guest elevated on one list, member restricted on one space.
	enginetest.GrantPermission(f.ListPerms, "p1", "li1", "guest1", models.PermissionFullEdit)
	enginetest.GrantPermission(f.SpacePerms, "p2", "sp1", "member1", models.PermissionView)

	eng := newEngine(f)
	ctx := context.Background()

	got, err := eng.EffectivePermission(ctx, "guest1", models.ListRef("li1"))
	require.NoError(t, err)
	assert.Equal(t, models.PermissionFullEdit, got)

	got, err = eng.EffectivePermission(ctx, "member1", models.SpaceRef("sp1"))
	require.NoError(t, err)
	assert.Equal(t, models.PermissionView, got)

	// The override is scoped to its resource: elsewhere the defaults hold.
	got, err = eng.EffectivePermission(ctx, "guest1", models.ListRef("li2"))
	require.NoError(t, err)
	assert.Equal(t, models.PermissionView, got)
}

func TestDeactivatedRecordIsIgnored(t *testing.T) {
	f := enginetest.NewFixture()
	seedTree(f)
	f.AddMember("m1", "ws1", "u1", models.RoleMember)

	p := enginetest.GrantPermission(f.SpacePerms, "p1", "sp1", "u1", models.PermissionView)
	p.IsActive = false
	require.NoError(t, f.SpacePerms.Update(context.Background(), p))

	eng := newEngine(f)
	got, err := eng.EffectivePermission(context.Background(), "u1", models.SpaceRef("sp1"))
	require.NoError(t, err)
	assert.Equal(t, models.PermissionFullEdit, got, "deactivated record must not restrict the role default")
}

func TestNonMemberForbidden(t *testing.T) {
	f := enginetest.NewFixture()
	seedTree(f)

	eng := newEngine(f)
	_, err := eng.EffectivePermission(context.Background(), "stranger", models.SpaceRef("sp1"))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	var forbidden *domain.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	assert.Equal(t, "stranger", forbidden.ActorID)
}

func TestInactiveMemberForbidden(t *testing.T) {
	f := enginetest.NewFixture()
	seedTree(f)
	f.AddMember("m1", "ws1", "u1", models.RoleAdmin)
	require.NoError(t, f.Members.Deactivate(context.Background(), "m1"))

	eng := newEngine(f)
	_, err := eng.EffectivePermission(context.Background(), "u1", models.SpaceRef("sp1"))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestInactiveAncestorIsDecisionTerminal(t *testing.T) {
	f := enginetest.NewFixture()
	seedTree(f)
	f.AddMember("m1", "ws1", "u1", models.RoleOwner)
	// Even an owner with an explicit list record cannot pass a
	// deactivated space.
	enginetest.GrantPermission(f.ListPerms, "p1", "li1", "u1", models.PermissionFullEdit)
	require.NoError(t, f.Spaces.SetActive(context.Background(), "sp1", false))

	eng := newEngine(f)
	_, err := eng.EffectivePermission(context.Background(), "u1", models.ListRef("li1"))
	assert.ErrorIs(t, err, domain.ErrInactive)
}

func TestAncestorWalkFromLeafKinds(t *testing.T) {
	f := enginetest.NewFixture()
	seedTree(f)
	f.AddMember("m1", "ws1", "u1", models.RoleGuest)
	f.AddTemplate("tp1", "li1")
	f.AddField("fd1", "tp1", models.FieldText, nil)
	f.AddTask("tk1", "li1")

	// The list carries the override; field and task inherit it.
	enginetest.GrantPermission(f.ListPerms, "p1", "li1", "u1", models.PermissionComment)

	eng := newEngine(f)
	ctx := context.Background()

	for _, ref := range []models.ResourceRef{
		models.FieldRef("fd1"),
		models.TaskRef("tk1"),
		models.ListRef("li1"),
	} {
		got, err := eng.EffectivePermission(ctx, "u1", ref)
		require.NoError(t, err, "kind %s", ref.Kind)
		assert.Equal(t, models.PermissionComment, got, "kind %s", ref.Kind)
	}
}

func TestRequire(t *testing.T) {
	f := enginetest.NewFixture()
	seedTree(f)
	f.AddMember("m1", "ws1", "guest1", models.RoleGuest)
	f.AddMember("m2", "ws1", "member1", models.RoleMember)

	eng := newEngine(f)
	ctx := context.Background()

	// Guest without an override never satisfies FullEdit.
	err := eng.RequireFullEdit(ctx, "guest1", models.SpaceRef("sp1"))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	assert.NoError(t, eng.Require(ctx, "guest1", models.SpaceRef("sp1"), models.PermissionView))
	assert.NoError(t, eng.RequireFullEdit(ctx, "member1", models.SpaceRef("sp1")))
}

func TestUnknownResourceSurfacesNotFound(t *testing.T) {
	f := enginetest.NewFixture()
	seedTree(f)
	f.AddMember("m1", "ws1", "u1", models.RoleOwner)

	eng := newEngine(f)
	_, err := eng.EffectivePermission(context.Background(), "u1", models.ListRef("missing"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

package enginetest

import (
	"context"
	"time"

	"taskhive/internal/domain/models"
	"taskhive/internal/service/validate"
)

var now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

// Validator builds a ResourceValidator over the fixture's repositories.
func (f *Fixture) Validator() *validate.ResourceValidator {
	return validate.NewResourceValidator(
		f.Workspaces, f.Members, f.Spaces, f.Folders,
		f.Lists, f.Templates, f.Fields, f.Tasks,
	)
}

// AddWorkspace seeds an active workspace.
func (f *Fixture) AddWorkspace(id, accountID string) *models.Workspace {
	ws := &models.Workspace{
		ID: id, AccountID: accountID, Name: "ws " + id,
		IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	_ = f.Workspaces.Create(context.Background(), ws)
	return ws
}

// AddMember seeds an active membership.
func (f *Fixture) AddMember(id, workspaceID, userID string, role models.Role) *models.WorkspaceMember {
	m := &models.WorkspaceMember{
		ID: id, WorkspaceID: workspaceID, UserID: userID, Role: role,
		IsActive: true, AddedBy: userID, CreatedAt: now, UpdatedAt: now,
	}
	_ = f.Members.Create(context.Background(), m)
	return m
}

// AddSpace seeds an active space at the tail of its sibling set.
func (f *Fixture) AddSpace(id, workspaceID string) *models.Space {
	count, _ := f.Spaces.CountActiveSiblings(context.Background(), workspaceID)
	s := &models.Space{
		ID: id, WorkspaceID: workspaceID, Name: "space " + id, Order: count + 1,
		IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	_ = f.Spaces.Create(context.Background(), s)
	return s
}

// AddFolder seeds an active folder at the tail of its sibling set.
func (f *Fixture) AddFolder(id, spaceID string) *models.Folder {
	count, _ := f.Folders.CountActiveSiblings(context.Background(), spaceID)
	fo := &models.Folder{
		ID: id, SpaceID: spaceID, Name: "folder " + id, Order: count + 1,
		IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	_ = f.Folders.Create(context.Background(), fo)
	return fo
}

// AddList seeds an active list at the tail of its sibling set; folderID
// nil places it directly under the space.
func (f *Fixture) AddList(id, spaceID string, folderID *string) *models.List {
	count, _ := f.Lists.CountActiveSiblings(context.Background(), spaceID, folderID)
	l := &models.List{
		ID: id, SpaceID: spaceID, FolderID: folderID, Name: "list " + id, Order: count + 1,
		IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	_ = f.Lists.Create(context.Background(), l)
	return l
}

// AddTemplate seeds a template for a list.
func (f *Fixture) AddTemplate(id, listID string) *models.Template {
	t := &models.Template{
		ID: id, ListID: listID, Name: "template " + id,
		CreatedAt: now, UpdatedAt: now,
	}
	_ = f.Templates.Create(context.Background(), t)
	return t
}

// AddField seeds an active field at the tail of its sibling set.
func (f *Fixture) AddField(id, templateID string, ft models.FieldType, cfg models.FieldConfig) *models.Field {
	count, _ := f.Fields.CountActiveSiblings(context.Background(), templateID)
	fl := &models.Field{
		ID: id, TemplateID: templateID, Type: ft, Name: "field " + id,
		Order: count + 1, Config: cfg, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}
	_ = f.Fields.Create(context.Background(), fl)
	return fl
}

// AddTask seeds a task at the tail of its list.
func (f *Fixture) AddTask(id, listID string) *models.Task {
	count, _ := f.Tasks.CountActiveSiblings(context.Background(), listID)
	t := &models.Task{
		ID: id, ListID: listID, Title: "task " + id, Order: count + 1,
		CreatedAt: now, UpdatedAt: now,
	}
	_ = f.Tasks.Create(context.Background(), t)
	return t
}

// GrantPermission seeds an active permission record in the given store.
func GrantPermission(store *PermStore, id, resourceID, userID string, level models.PermissionLevel) *models.ResourcePermission {
	p := &models.ResourcePermission{
		ID: id, ResourceID: resourceID, UserID: userID, Level: level,
		IsActive: true, AddedBy: userID, CreatedAt: now, UpdatedAt: now,
	}
	_ = store.Create(context.Background(), p)
	return p
}

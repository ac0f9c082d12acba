// Package enginetest provides in-memory fakes of the repository
// interfaces for exercising the engines without a database.
package enginetest

import (
	"context"
	"fmt"
	"sort"

	"taskhive/internal/domain"
	"taskhive/internal/domain/models"
	"taskhive/internal/domain/repositories"
)

// Fixture bundles one in-memory instance of every collaborator the
// engines consume.
type Fixture struct {
	Workspaces  *WorkspaceRepo
	Members     *MemberRepo
	Spaces      *SpaceRepo
	Folders     *FolderRepo
	Lists       *ListRepo
	Templates   *TemplateRepo
	Fields      *FieldRepo
	Tasks       *TaskRepo
	SpacePerms  *PermStore
	FolderPerms *PermStore
	ListPerms   *PermStore
	Values      *ValueRepo
	Tx          *TxManager
}

// NewFixture creates an empty fixture.
func NewFixture() *Fixture {
	return &Fixture{
		Workspaces:  &WorkspaceRepo{byID: map[string]*models.Workspace{}},
		Members:     &MemberRepo{byID: map[string]*models.WorkspaceMember{}},
		Spaces:      &SpaceRepo{byID: map[string]*models.Space{}},
		Folders:     &FolderRepo{byID: map[string]*models.Folder{}},
		Lists:       &ListRepo{byID: map[string]*models.List{}},
		Templates:   &TemplateRepo{byID: map[string]*models.Template{}},
		Fields:      &FieldRepo{byID: map[string]*models.Field{}},
		Tasks:       &TaskRepo{byID: map[string]*models.Task{}},
		SpacePerms:  &PermStore{byKey: map[string]*models.ResourcePermission{}},
		FolderPerms: &PermStore{byKey: map[string]*models.ResourcePermission{}},
		ListPerms:   &PermStore{byKey: map[string]*models.ResourcePermission{}},
		Values:      &ValueRepo{byKey: map[string]*models.TaskFieldValue{}},
		Tx:          &TxManager{},
	}
}

func notFound(kind, id string) error {
	return &domain.NotFoundError{Kind: kind, ID: id}
}

// TxManager runs the function directly; the fakes have no transactional
// semantics to enforce.
type TxManager struct {
	// Calls counts opened boundaries, letting tests assert an operation
	// opened exactly one.
	Calls int
	// FailWith, when set, aborts ExecTx before running fn, simulating a
	// transaction that cannot complete.
	FailWith error
}

func (t *TxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	t.Calls++
	if t.FailWith != nil {
		return t.FailWith
	}
	return fn(ctx)
}

// WorkspaceRepo is an in-memory WorkspaceRepository.
type WorkspaceRepo struct {
	byID map[string]*models.Workspace
}

func (r *WorkspaceRepo) Create(ctx context.Context, ws *models.Workspace) error {
	cp := *ws
	r.byID[ws.ID] = &cp
	return nil
}

func (r *WorkspaceRepo) GetByID(ctx context.Context, id string) (*models.Workspace, error) {
	ws, ok := r.byID[id]
	if !ok {
		return nil, notFound("workspace", id)
	}
	cp := *ws
	return &cp, nil
}

func (r *WorkspaceRepo) Update(ctx context.Context, ws *models.Workspace) error {
	if _, ok := r.byID[ws.ID]; !ok {
		return notFound("workspace", ws.ID)
	}
	cp := *ws
	r.byID[ws.ID] = &cp
	return nil
}

func (r *WorkspaceRepo) SetActive(ctx context.Context, id string, active bool) error {
	ws, ok := r.byID[id]
	if !ok {
		return notFound("workspace", id)
	}
	ws.IsActive = active
	return nil
}

func (r *WorkspaceRepo) ListByAccount(ctx context.Context, accountID string) ([]models.Workspace, error) {
	var out []models.Workspace
	for _, ws := range r.byID {
		if ws.AccountID == accountID && ws.IsActive {
			out = append(out, *ws)
		}
	}
	return out, nil
}

// MemberRepo is an in-memory MemberRepository.
type MemberRepo struct {
	byID map[string]*models.WorkspaceMember
}

func (r *MemberRepo) Create(ctx context.Context, m *models.WorkspaceMember) error {
	cp := *m
	r.byID[m.ID] = &cp
	return nil
}

func (r *MemberRepo) Get(ctx context.Context, workspaceID, userID string) (*models.WorkspaceMember, error) {
	for _, m := range r.byID {
		if m.WorkspaceID == workspaceID && m.UserID == userID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, notFound("member", workspaceID+"/"+userID)
}

func (r *MemberRepo) GetByID(ctx context.Context, id string) (*models.WorkspaceMember, error) {
	m, ok := r.byID[id]
	if !ok {
		return nil, notFound("member", id)
	}
	cp := *m
	return &cp, nil
}

func (r *MemberRepo) Reactivate(ctx context.Context, id string, role models.Role, addedBy string) error {
	m, ok := r.byID[id]
	if !ok {
		return notFound("member", id)
	}
	m.IsActive = true
	m.Role = role
	m.AddedBy = addedBy
	return nil
}

func (r *MemberRepo) UpdateRole(ctx context.Context, id string, role models.Role) error {
	m, ok := r.byID[id]
	if !ok {
		return notFound("member", id)
	}
	m.Role = role
	return nil
}

func (r *MemberRepo) Deactivate(ctx context.Context, id string) error {
	m, ok := r.byID[id]
	if !ok {
		return notFound("member", id)
	}
	m.IsActive = false
	return nil
}

func (r *MemberRepo) ListActiveByWorkspace(ctx context.Context, workspaceID string) ([]models.WorkspaceMember, error) {
	var out []models.WorkspaceMember
	for _, m := range r.byID {
		if m.WorkspaceID == workspaceID && m.IsActive {
			out = append(out, *m)
		}
	}
	return out, nil
}

// SpaceRepo is an in-memory SpaceRepository.
type SpaceRepo struct {
	byID map[string]*models.Space
}

func (r *SpaceRepo) Create(ctx context.Context, s *models.Space) error {
	cp := *s
	r.byID[s.ID] = &cp
	return nil
}

func (r *SpaceRepo) GetByID(ctx context.Context, id string) (*models.Space, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, notFound("space", id)
	}
	cp := *s
	return &cp, nil
}

func (r *SpaceRepo) Update(ctx context.Context, s *models.Space) error {
	if _, ok := r.byID[s.ID]; !ok {
		return notFound("space", s.ID)
	}
	cp := *s
	r.byID[s.ID] = &cp
	return nil
}

func (r *SpaceRepo) SetOrder(ctx context.Context, id string, order int) error {
	s, ok := r.byID[id]
	if !ok {
		return notFound("space", id)
	}
	s.Order = order
	return nil
}

func (r *SpaceRepo) SetActive(ctx context.Context, id string, active bool) error {
	s, ok := r.byID[id]
	if !ok {
		return notFound("space", id)
	}
	s.IsActive = active
	return nil
}

func (r *SpaceRepo) CountActiveSiblings(ctx context.Context, workspaceID string) (int, error) {
	n := 0
	for _, s := range r.byID {
		if s.WorkspaceID == workspaceID && s.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *SpaceRepo) ListActiveSiblings(ctx context.Context, workspaceID string) ([]models.Space, error) {
	var out []models.Space
	for _, s := range r.byID {
		if s.WorkspaceID == workspaceID && s.IsActive {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// FolderRepo is an in-memory FolderRepository.
type FolderRepo struct {
	byID map[string]*models.Folder
}

func (r *FolderRepo) Create(ctx context.Context, f *models.Folder) error {
	cp := *f
	r.byID[f.ID] = &cp
	return nil
}

func (r *FolderRepo) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	f, ok := r.byID[id]
	if !ok {
		return nil, notFound("folder", id)
	}
	cp := *f
	return &cp, nil
}

func (r *FolderRepo) Update(ctx context.Context, f *models.Folder) error {
	if _, ok := r.byID[f.ID]; !ok {
		return notFound("folder", f.ID)
	}
	cp := *f
	r.byID[f.ID] = &cp
	return nil
}

func (r *FolderRepo) SetOrder(ctx context.Context, id string, order int) error {
	f, ok := r.byID[id]
	if !ok {
		return notFound("folder", id)
	}
	f.Order = order
	return nil
}

func (r *FolderRepo) SetActive(ctx context.Context, id string, active bool) error {
	f, ok := r.byID[id]
	if !ok {
		return notFound("folder", id)
	}
	f.IsActive = active
	return nil
}

func (r *FolderRepo) CountActiveSiblings(ctx context.Context, spaceID string) (int, error) {
	n := 0
	for _, f := range r.byID {
		if f.SpaceID == spaceID && f.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *FolderRepo) ListActiveSiblings(ctx context.Context, spaceID string) ([]models.Folder, error) {
	var out []models.Folder
	for _, f := range r.byID {
		if f.SpaceID == spaceID && f.IsActive {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// ListRepo is an in-memory ListRepository.
type ListRepo struct {
	byID map[string]*models.List
}

func (r *ListRepo) Create(ctx context.Context, l *models.List) error {
	cp := *l
	r.byID[l.ID] = &cp
	return nil
}

func (r *ListRepo) GetByID(ctx context.Context, id string) (*models.List, error) {
	l, ok := r.byID[id]
	if !ok {
		return nil, notFound("list", id)
	}
	cp := *l
	return &cp, nil
}

func (r *ListRepo) Update(ctx context.Context, l *models.List) error {
	if _, ok := r.byID[l.ID]; !ok {
		return notFound("list", l.ID)
	}
	cp := *l
	r.byID[l.ID] = &cp
	return nil
}

func (r *ListRepo) SetOrder(ctx context.Context, id string, order int) error {
	l, ok := r.byID[id]
	if !ok {
		return notFound("list", id)
	}
	l.Order = order
	return nil
}

func (r *ListRepo) SetActive(ctx context.Context, id string, active bool) error {
	l, ok := r.byID[id]
	if !ok {
		return notFound("list", id)
	}
	l.IsActive = active
	return nil
}

func sameParent(l *models.List, spaceID string, folderID *string) bool {
	if folderID != nil {
		return l.FolderID != nil && *l.FolderID == *folderID
	}
	return l.FolderID == nil && l.SpaceID == spaceID
}

func (r *ListRepo) CountActiveSiblings(ctx context.Context, spaceID string, folderID *string) (int, error) {
	n := 0
	for _, l := range r.byID {
		if l.IsActive && sameParent(l, spaceID, folderID) {
			n++
		}
	}
	return n, nil
}

func (r *ListRepo) ListActiveSiblings(ctx context.Context, spaceID string, folderID *string) ([]models.List, error) {
	var out []models.List
	for _, l := range r.byID {
		if l.IsActive && sameParent(l, spaceID, folderID) {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *ListRepo) ListActiveByFolder(ctx context.Context, folderID string) ([]models.List, error) {
	var out []models.List
	for _, l := range r.byID {
		if l.IsActive && l.FolderID != nil && *l.FolderID == folderID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *ListRepo) ListActiveDirect(ctx context.Context, spaceID string) ([]models.List, error) {
	var out []models.List
	for _, l := range r.byID {
		if l.IsActive && l.FolderID == nil && l.SpaceID == spaceID {
			out = append(out, *l)
		}
	}
	return out, nil
}

// TemplateRepo is an in-memory TemplateRepository.
type TemplateRepo struct {
	byID map[string]*models.Template
}

func (r *TemplateRepo) Create(ctx context.Context, t *models.Template) error {
	cp := *t
	r.byID[t.ID] = &cp
	return nil
}

func (r *TemplateRepo) GetByID(ctx context.Context, id string) (*models.Template, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, notFound("template", id)
	}
	cp := *t
	return &cp, nil
}

func (r *TemplateRepo) GetByList(ctx context.Context, listID string) (*models.Template, error) {
	for _, t := range r.byID {
		if t.ListID == listID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, notFound("template", "list:"+listID)
}

func (r *TemplateRepo) Update(ctx context.Context, t *models.Template) error {
	if _, ok := r.byID[t.ID]; !ok {
		return notFound("template", t.ID)
	}
	cp := *t
	r.byID[t.ID] = &cp
	return nil
}

// FieldRepo is an in-memory FieldRepository.
type FieldRepo struct {
	byID map[string]*models.Field
}

func (r *FieldRepo) Create(ctx context.Context, f *models.Field) error {
	cp := *f
	r.byID[f.ID] = &cp
	return nil
}

func (r *FieldRepo) GetByID(ctx context.Context, id string) (*models.Field, error) {
	f, ok := r.byID[id]
	if !ok {
		return nil, notFound("field", id)
	}
	cp := *f
	return &cp, nil
}

func (r *FieldRepo) Update(ctx context.Context, f *models.Field) error {
	if _, ok := r.byID[f.ID]; !ok {
		return notFound("field", f.ID)
	}
	cp := *f
	r.byID[f.ID] = &cp
	return nil
}

func (r *FieldRepo) SetOrder(ctx context.Context, id string, order int) error {
	f, ok := r.byID[id]
	if !ok {
		return notFound("field", id)
	}
	f.Order = order
	return nil
}

func (r *FieldRepo) SetActive(ctx context.Context, id string, active bool) error {
	f, ok := r.byID[id]
	if !ok {
		return notFound("field", id)
	}
	f.IsActive = active
	return nil
}

func (r *FieldRepo) CountActiveSiblings(ctx context.Context, templateID string) (int, error) {
	n := 0
	for _, f := range r.byID {
		if f.TemplateID == templateID && f.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *FieldRepo) ListActiveSiblings(ctx context.Context, templateID string) ([]models.Field, error) {
	var out []models.Field
	for _, f := range r.byID {
		if f.TemplateID == templateID && f.IsActive {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// TaskRepo is an in-memory TaskRepository.
type TaskRepo struct {
	byID map[string]*models.Task
}

func (r *TaskRepo) Create(ctx context.Context, t *models.Task) error {
	cp := *t
	r.byID[t.ID] = &cp
	return nil
}

func (r *TaskRepo) GetByID(ctx context.Context, id string) (*models.Task, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, notFound("task", id)
	}
	cp := *t
	return &cp, nil
}

func (r *TaskRepo) Update(ctx context.Context, t *models.Task) error {
	if _, ok := r.byID[t.ID]; !ok {
		return notFound("task", t.ID)
	}
	cp := *t
	r.byID[t.ID] = &cp
	return nil
}

func (r *TaskRepo) SetOrder(ctx context.Context, id string, order int) error {
	t, ok := r.byID[id]
	if !ok {
		return notFound("task", id)
	}
	t.Order = order
	return nil
}

func (r *TaskRepo) SetDeleted(ctx context.Context, id string, deleted bool) error {
	t, ok := r.byID[id]
	if !ok {
		return notFound("task", id)
	}
	t.IsDeleted = deleted
	return nil
}

func (r *TaskRepo) CountActiveSiblings(ctx context.Context, listID string) (int, error) {
	n := 0
	for _, t := range r.byID {
		if t.ListID == listID && !t.IsDeleted {
			n++
		}
	}
	return n, nil
}

func (r *TaskRepo) ListActiveSiblings(ctx context.Context, listID string) ([]models.Task, error) {
	var out []models.Task
	for _, t := range r.byID {
		if t.ListID == listID && !t.IsDeleted {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// PermStore is an in-memory PermissionStore. One record per
// (resource, user) pair, matching the uniqueness the schema enforces.
type PermStore struct {
	byKey map[string]*models.ResourcePermission
}

func permKey(resourceID, userID string) string {
	return fmt.Sprintf("%s|%s", resourceID, userID)
}

func (r *PermStore) Get(ctx context.Context, resourceID, userID string) (*models.ResourcePermission, error) {
	p, ok := r.byKey[permKey(resourceID, userID)]
	if !ok {
		return nil, notFound("permission", permKey(resourceID, userID))
	}
	cp := *p
	return &cp, nil
}

func (r *PermStore) Create(ctx context.Context, p *models.ResourcePermission) error {
	cp := *p
	r.byKey[permKey(p.ResourceID, p.UserID)] = &cp
	return nil
}

func (r *PermStore) CreateBulk(ctx context.Context, ps []models.ResourcePermission) error {
	for i := range ps {
		cp := ps[i]
		r.byKey[permKey(cp.ResourceID, cp.UserID)] = &cp
	}
	return nil
}

func (r *PermStore) Update(ctx context.Context, p *models.ResourcePermission) error {
	key := permKey(p.ResourceID, p.UserID)
	if _, ok := r.byKey[key]; !ok {
		return notFound("permission", key)
	}
	cp := *p
	r.byKey[key] = &cp
	return nil
}

func (r *PermStore) Deactivate(ctx context.Context, resourceID, userID string) error {
	p, ok := r.byKey[permKey(resourceID, userID)]
	if !ok {
		return notFound("permission", permKey(resourceID, userID))
	}
	p.IsActive = false
	return nil
}

func (r *PermStore) DeactivateForUser(ctx context.Context, resourceIDs []string, userID string) error {
	for _, rid := range resourceIDs {
		if p, ok := r.byKey[permKey(rid, userID)]; ok {
			p.IsActive = false
		}
	}
	return nil
}

func (r *PermStore) UpdateLevelForUser(ctx context.Context, resourceIDs []string, userID string, level models.PermissionLevel) error {
	for _, rid := range resourceIDs {
		if p, ok := r.byKey[permKey(rid, userID)]; ok {
			p.Level = level
		}
	}
	return nil
}

func (r *PermStore) ListForResource(ctx context.Context, resourceID string) ([]models.ResourcePermission, error) {
	var out []models.ResourcePermission
	for _, p := range r.byKey {
		if p.ResourceID == resourceID {
			out = append(out, *p)
		}
	}
	return out, nil
}

// All returns every record in the store, active or not.
func (r *PermStore) All() []models.ResourcePermission {
	out := make([]models.ResourcePermission, 0, len(r.byKey))
	for _, p := range r.byKey {
		out = append(out, *p)
	}
	return out
}

// ActiveFor returns the user's active records.
func (r *PermStore) ActiveFor(userID string) []models.ResourcePermission {
	var out []models.ResourcePermission
	for _, p := range r.byKey {
		if p.UserID == userID && p.IsActive {
			out = append(out, *p)
		}
	}
	return out
}

// ValueRepo is an in-memory TaskFieldValueRepository.
type ValueRepo struct {
	byKey map[string]*models.TaskFieldValue
}

func (r *ValueRepo) Get(ctx context.Context, taskID, fieldID string) (*models.TaskFieldValue, error) {
	v, ok := r.byKey[permKey(taskID, fieldID)]
	if !ok {
		return nil, notFound("task field value", permKey(taskID, fieldID))
	}
	cp := *v
	return &cp, nil
}

func (r *ValueRepo) Upsert(ctx context.Context, v *models.TaskFieldValue) error {
	cp := *v
	r.byKey[permKey(v.TaskID, v.FieldID)] = &cp
	return nil
}

func (r *ValueRepo) ListByTask(ctx context.Context, taskID string) ([]models.TaskFieldValue, error) {
	var out []models.TaskFieldValue
	for _, v := range r.byKey {
		if v.TaskID == taskID {
			out = append(out, *v)
		}
	}
	return out, nil
}

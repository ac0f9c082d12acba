package tasks

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
	"taskhive/internal/service/fieldtypes"
	"taskhive/internal/service/ordering"
)

type harness struct {
	f         *enginetest.Fixture
	tasks     services.TaskService
	templates services.TemplateService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	f := enginetest.NewFixture()
	authorizer := access.NewEngine(f.Validator(), f.Members, f.SpacePerms, f.FolderPerms, f.ListPerms, slog.Default())
	manager := ordering.NewManager(slog.Default())
	registry, err := fieldtypes.NewRegistry()
	require.NoError(t, err)
	rules := fieldtypes.NewEngine(registry)
	return &harness{
		f: f,
		tasks: NewTaskService(
			f.Tasks, f.Values, f.Templates, f.Validator(),
			rules, manager, authorizer, f.Tx, slog.Default(),
		),
		templates: NewTemplateService(
			f.Templates, f.Fields, f.Validator(),
			rules, manager, authorizer, f.Tx, slog.Default(),
		),
	}
}

// seed builds ws1 with one space and one direct list, owned by "owner".
func (h *harness) seed() {
	h.f.AddWorkspace("ws1", "acct1")
	h.f.AddMember("m-owner", "ws1", "owner", models.RoleOwner)
	h.f.AddSpace("sp1", "ws1")
	h.f.AddList("li1", "sp1", nil)
}

func TestCreateTaskAssignsTailOrder(t *testing.T) {
	h := newHarness(t)
	h.seed()
	ctx := context.Background()

	first, err := h.tasks.CreateTask(ctx, &services.CreateTaskRequest{
		ListID: "li1", Title: "Write proposal", ActorID: "owner",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Order)

	second, err := h.tasks.CreateTask(ctx, &services.CreateTaskRequest{
		ListID: "li1", Title: "Review proposal", ActorID: "owner",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Order)
}

func TestReorderTaskKeepsDensity(t *testing.T) {
	h := newHarness(t)
	h.seed()
	h.f.AddTask("t1", "li1")
	h.f.AddTask("t2", "li1")
	h.f.AddTask("t3", "li1")
	h.f.AddTask("t4", "li1")
	ctx := context.Background()

	moved, err := h.tasks.ReorderTask(ctx, "t2", "owner", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, moved.Order)

	siblings, err := h.f.Tasks.ListActiveSiblings(ctx, "li1")
	require.NoError(t, err)
	require.Len(t, siblings, 4)
	assert.Equal(t, []string{"t1", "t3", "t4", "t2"}, []string{
		siblings[0].ID, siblings[1].ID, siblings[2].ID, siblings[3].ID,
	})
	for i, task := range siblings {
		assert.Equal(t, i+1, task.Order)
	}
}

func TestDeleteTaskClosesGap(t *testing.T) {
	h := newHarness(t)
	h.seed()
	h.f.AddTask("t1", "li1")
	h.f.AddTask("t2", "li1")
	h.f.AddTask("t3", "li1")
	ctx := context.Background()

	require.NoError(t, h.tasks.DeleteTask(ctx, "t1", "owner"))

	siblings, err := h.f.Tasks.ListActiveSiblings(ctx, "li1")
	require.NoError(t, err)
	require.Len(t, siblings, 2)
	assert.Equal(t, 1, siblings[0].Order)
	assert.Equal(t, 2, siblings[1].Order)

	_, err = h.tasks.GetTask(ctx, "t1", "owner")
	assert.ErrorIs(t, err, domain.ErrInactive)
}

func TestUpdateTaskNothingToUpdate(t *testing.T) {
	h := newHarness(t)
	h.seed()
	h.f.AddTask("t1", "li1")

	_, err := h.tasks.UpdateTask(context.Background(), "t1", &services.UpdateTaskRequest{ActorID: "owner"})
	assert.ErrorIs(t, err, domain.ErrNothingToUpdate)
}

func TestGetTemplateCreatesOnFirstAccess(t *testing.T) {
	h := newHarness(t)
	h.seed()
	ctx := context.Background()

	first, err := h.templates.GetTemplate(ctx, "li1", "owner")
	require.NoError(t, err)
	require.NotNil(t, first.Template)
	assert.Equal(t, "li1", first.Template.ListID)
	assert.Empty(t, first.Fields)

	// Second access returns the same template.
	second, err := h.templates.GetTemplate(ctx, "li1", "owner")
	require.NoError(t, err)
	assert.Equal(t, first.Template.ID, second.Template.ID)
}

func TestCreateFieldValidatesConfig(t *testing.T) {
	h := newHarness(t)
	h.seed()
	ctx := context.Background()

	_, err := h.templates.CreateField(ctx, &services.CreateFieldRequest{
		ListID: "li1", Name: "Estimate", FieldType: "number",
		Config:  models.FieldConfig{"min": 10, "max": 5},
		ActorID: "owner",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidFieldConfig)

	field, err := h.templates.CreateField(ctx, &services.CreateFieldRequest{
		ListID: "li1", Name: "Estimate", FieldType: "number",
		Config:  models.FieldConfig{"min": 1, "max": 13},
		ActorID: "owner",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, field.Order)
	assert.Equal(t, models.FieldNumber, field.Type)
}

func TestCreateFieldDuplicateName(t *testing.T) {
	h := newHarness(t)
	h.seed()
	ctx := context.Background()

	_, err := h.templates.CreateField(ctx, &services.CreateFieldRequest{
		ListID: "li1", Name: "Status", FieldType: "text", ActorID: "owner",
	})
	require.NoError(t, err)

	_, err = h.templates.CreateField(ctx, &services.CreateFieldRequest{
		ListID: "li1", Name: "Status", FieldType: "dropdown",
		Config:  models.FieldConfig{"options": []any{"Open", "Done"}},
		ActorID: "owner",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestDeactivateFieldClosesGap(t *testing.T) {
	h := newHarness(t)
	h.seed()
	h.f.AddTemplate("tp1", "li1")
	h.f.AddField("f1", "tp1", models.FieldText, nil)
	h.f.AddField("f2", "tp1", models.FieldCheckbox, nil)
	h.f.AddField("f3", "tp1", models.FieldDate, nil)
	ctx := context.Background()

	require.NoError(t, h.templates.DeactivateField(ctx, "f2", "owner"))

	fields, err := h.f.Fields.ListActiveSiblings(ctx, "tp1")
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, "f1", fields[0].ID)
	assert.Equal(t, 1, fields[0].Order)
	assert.Equal(t, "f3", fields[1].ID)
	assert.Equal(t, 2, fields[1].Order)
}

func TestUpdateFieldRevalidatesConfig(t *testing.T) {
	h := newHarness(t)
	h.seed()
	h.f.AddTemplate("tp1", "li1")
	h.f.AddField("f1", "tp1", models.FieldDropdown, models.FieldConfig{"options": []any{"Low", "High"}})
	ctx := context.Background()

	_, err := h.templates.UpdateField(ctx, "f1", &services.UpdateFieldRequest{
		Config:  models.FieldConfig{"options": []any{"Low", "High"}, "default": "Medium"},
		ActorID: "owner",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidFieldDefault)

	updated, err := h.templates.UpdateField(ctx, "f1", &services.UpdateFieldRequest{
		Config:  models.FieldConfig{"options": []any{"Low", "Medium", "High"}, "default": "Medium"},
		ActorID: "owner",
	})
	require.NoError(t, err)
	assert.Equal(t, "Medium", updated.Config["default"])
}

func TestSetFieldValueValidatesAgainstType(t *testing.T) {
	h := newHarness(t)
	h.seed()
	h.f.AddTemplate("tp1", "li1")
	h.f.AddField("f1", "tp1", models.FieldNumber, models.FieldConfig{"min": 1, "max": 10})
	h.f.AddTask("t1", "li1")
	ctx := context.Background()

	_, err := h.tasks.SetFieldValue(ctx, &services.SetFieldValueRequest{
		TaskID: "t1", FieldID: "f1", Value: 42, ActorID: "owner",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidFieldValue)

	value, err := h.tasks.SetFieldValue(ctx, &services.SetFieldValueRequest{
		TaskID: "t1", FieldID: "f1", Value: 7, ActorID: "owner",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, value.Value)

	values, err := h.tasks.ListFieldValues(ctx, "t1", "owner")
	require.NoError(t, err)
	require.Len(t, values, 1)
}

func TestSetFieldValueRejectsForeignField(t *testing.T) {
	h := newHarness(t)
	h.seed()
	h.f.AddList("li2", "sp1", nil)
	h.f.AddTemplate("tp1", "li1")
	h.f.AddTemplate("tp2", "li2")
	h.f.AddField("f2", "tp2", models.FieldText, nil)
	h.f.AddTask("t1", "li1")

	_, err := h.tasks.SetFieldValue(context.Background(), &services.SetFieldValueRequest{
		TaskID: "t1", FieldID: "f2", Value: "hello", ActorID: "owner",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSetFieldValueRequiredNotClearable(t *testing.T) {
	h := newHarness(t)
	h.seed()
	h.f.AddTemplate("tp1", "li1")
	h.f.AddField("f1", "tp1", models.FieldText, nil)
	h.f.AddTask("t1", "li1")
	ctx := context.Background()

	required := true
	_, err := h.templates.UpdateField(ctx, "f1", &services.UpdateFieldRequest{
		IsRequired: &required, ActorID: "owner",
	})
	require.NoError(t, err)

	_, err = h.tasks.SetFieldValue(ctx, &services.SetFieldValueRequest{
		TaskID: "t1", FieldID: "f1", Value: nil, ActorID: "owner",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidFieldValue)
}

func TestGuestCannotMutateTasks(t *testing.T) {
	h := newHarness(t)
	h.seed()
	h.f.AddMember("m-g1", "ws1", "g1", models.RoleGuest)
	h.f.AddTask("t1", "li1")
	ctx := context.Background()

	_, err := h.tasks.CreateTask(ctx, &services.CreateTaskRequest{
		ListID: "li1", Title: "Sneaky", ActorID: "g1",
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Reads are still allowed at the guest's View default.
	_, err = h.tasks.GetTask(ctx, "t1", "g1")
	assert.NoError(t, err)
}

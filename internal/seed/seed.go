// Package seed loads a demo workspace tree from an embedded YAML
// definition and applies it through the service layer, so every seeded
// row passes the same validation, ordering and permission fan-out as a
// live request.
package seed

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"taskhive/internal/domain/services"
)

//go:embed data/demo.yaml
var dataFiles embed.FS

// Definition is the YAML shape of a seedable workspace tree.
type Definition struct {
	Workspace struct {
		Name    string `yaml:"name"`
		OwnerID string `yaml:"owner_id"`
	} `yaml:"workspace"`
	Members []MemberDef `yaml:"members"`
	Spaces  []SpaceDef  `yaml:"spaces"`
}

type MemberDef struct {
	UserID string `yaml:"user_id"`
	Role   string `yaml:"role"`
}

type SpaceDef struct {
	Name    string      `yaml:"name"`
	Private bool        `yaml:"private"`
	Folders []FolderDef `yaml:"folders"`
	Lists   []ListDef   `yaml:"lists"` // direct lists
}

type FolderDef struct {
	Name  string    `yaml:"name"`
	Lists []ListDef `yaml:"lists"`
}

type ListDef struct {
	Name   string     `yaml:"name"`
	Fields []FieldDef `yaml:"fields"`
	Tasks  []TaskDef  `yaml:"tasks"`
}

type FieldDef struct {
	Name     string         `yaml:"name"`
	Type     string         `yaml:"type"`
	Config   map[string]any `yaml:"config"`
	Required bool           `yaml:"required"`
}

type TaskDef struct {
	Title  string         `yaml:"title"`
	Values map[string]any `yaml:"values"` // field name -> value
}

// LoadDemo parses the embedded demo definition.
func LoadDemo() (*Definition, error) {
	data, err := dataFiles.ReadFile("data/demo.yaml")
	if err != nil {
		return nil, fmt.Errorf("read demo definition: %w", err)
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("unmarshal demo definition: %w", err)
	}
	return &def, nil
}

// Seeder applies a Definition through the services.
type Seeder struct {
	workspaces  services.WorkspaceService
	memberships services.MembershipService
	spaces      services.SpaceService
	folders     services.FolderService
	lists       services.ListService
	templates   services.TemplateService
	tasks       services.TaskService
	logger      *slog.Logger
}

// NewSeeder creates a seeder over the given services.
func NewSeeder(
	workspaces services.WorkspaceService,
	memberships services.MembershipService,
	spaces services.SpaceService,
	folders services.FolderService,
	lists services.ListService,
	templates services.TemplateService,
	tasks services.TaskService,
	logger *slog.Logger,
) *Seeder {
	return &Seeder{
		workspaces:  workspaces,
		memberships: memberships,
		spaces:      spaces,
		folders:     folders,
		lists:       lists,
		templates:   templates,
		tasks:       tasks,
		logger:      logger,
	}
}

// Apply creates the whole tree. Members are added after the tree is
// built so the membership cascade fans permission records out across
// every seeded space, folder and list.
func (s *Seeder) Apply(ctx context.Context, def *Definition) error {
	owner := def.Workspace.OwnerID

	ws, err := s.workspaces.CreateWorkspace(ctx, &services.CreateWorkspaceRequest{
		ActorID: owner,
		Name:    def.Workspace.Name,
	})
	if err != nil {
		return fmt.Errorf("create workspace %q: %w", def.Workspace.Name, err)
	}
	s.logger.Info("seeded workspace", "workspace_id", ws.ID, "name", ws.Name)

	for _, spaceDef := range def.Spaces {
		space, err := s.spaces.CreateSpace(ctx, &services.CreateSpaceRequest{
			WorkspaceID: ws.ID,
			Name:        spaceDef.Name,
			IsPrivate:   spaceDef.Private,
			ActorID:     owner,
		})
		if err != nil {
			return fmt.Errorf("create space %q: %w", spaceDef.Name, err)
		}

		for _, folderDef := range spaceDef.Folders {
			folder, err := s.folders.CreateFolder(ctx, &services.CreateFolderRequest{
				SpaceID: space.ID,
				Name:    folderDef.Name,
				ActorID: owner,
			})
			if err != nil {
				return fmt.Errorf("create folder %q: %w", folderDef.Name, err)
			}

			for _, listDef := range folderDef.Lists {
				if err := s.applyList(ctx, space.ID, &folder.ID, listDef, owner); err != nil {
					return err
				}
			}
		}

		for _, listDef := range spaceDef.Lists {
			if err := s.applyList(ctx, space.ID, nil, listDef, owner); err != nil {
				return err
			}
		}
	}

	for _, memberDef := range def.Members {
		if _, err := s.memberships.AddMember(ctx, &services.AddMemberRequest{
			WorkspaceID: ws.ID,
			UserID:      memberDef.UserID,
			Role:        memberDef.Role,
			ActedBy:     owner,
		}); err != nil {
			return fmt.Errorf("add member %s: %w", memberDef.UserID, err)
		}
	}

	s.logger.Info("seed complete", "workspace_id", ws.ID,
		"spaces", len(def.Spaces), "members", len(def.Members))
	return nil
}

func (s *Seeder) applyList(ctx context.Context, spaceID string, folderID *string, def ListDef, owner string) error {
	list, err := s.lists.CreateList(ctx, &services.CreateListRequest{
		SpaceID:  spaceID,
		FolderID: folderID,
		Name:     def.Name,
		ActorID:  owner,
	})
	if err != nil {
		return fmt.Errorf("create list %q: %w", def.Name, err)
	}

	fieldIDs := make(map[string]string, len(def.Fields))
	for _, fieldDef := range def.Fields {
		field, err := s.templates.CreateField(ctx, &services.CreateFieldRequest{
			ListID:     list.ID,
			Name:       fieldDef.Name,
			FieldType:  fieldDef.Type,
			Config:     fieldDef.Config,
			IsRequired: fieldDef.Required,
			ActorID:    owner,
		})
		if err != nil {
			return fmt.Errorf("create field %q on list %q: %w", fieldDef.Name, def.Name, err)
		}
		fieldIDs[fieldDef.Name] = field.ID
	}

	for _, taskDef := range def.Tasks {
		task, err := s.tasks.CreateTask(ctx, &services.CreateTaskRequest{
			ListID:  list.ID,
			Title:   taskDef.Title,
			ActorID: owner,
		})
		if err != nil {
			return fmt.Errorf("create task %q: %w", taskDef.Title, err)
		}

		for fieldName, value := range taskDef.Values {
			fieldID, ok := fieldIDs[fieldName]
			if !ok {
				return fmt.Errorf("task %q references undeclared field %q", taskDef.Title, fieldName)
			}
			if _, err := s.tasks.SetFieldValue(ctx, &services.SetFieldValueRequest{
				TaskID:  task.ID,
				FieldID: fieldID,
				Value:   value,
				ActorID: owner,
			}); err != nil {
				return fmt.Errorf("set %q on task %q: %w", fieldName, taskDef.Title, err)
			}
		}
	}

	return nil
}

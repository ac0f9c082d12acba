package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"taskhive/internal/config"
	"taskhive/internal/repository/postgres"
	"taskhive/internal/seed"
	"taskhive/internal/service/access"
	"taskhive/internal/service/cascade"
	"taskhive/internal/service/fieldtypes"
	"taskhive/internal/service/hierarchy"
	"taskhive/internal/service/ordering"
	"taskhive/internal/service/tasks"
	"taskhive/internal/service/validate"
	"taskhive/internal/service/workspace"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed demo data")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	// SAFETY: prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("BLOCKED: cannot run --drop-tables in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log.Printf("Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("Tables dropped")
	}

	log.Println("Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("Schema ready")

	if *schemaOnly {
		log.Println("Schema setup complete (schema-only mode)")
		return
	}

	def, err := seed.LoadDemo()
	if err != nil {
		log.Fatalf("Failed to load demo definition: %v", err)
	}

	repoConfig := &postgres.RepositoryConfig{Pool: pool, Tables: tables, Logger: logger}
	workspaceRepo := postgres.NewWorkspaceRepository(repoConfig)
	memberRepo := postgres.NewMemberRepository(repoConfig)
	spaceRepo := postgres.NewSpaceRepository(repoConfig)
	folderRepo := postgres.NewFolderRepository(repoConfig)
	listRepo := postgres.NewListRepository(repoConfig)
	templateRepo := postgres.NewTemplateRepository(repoConfig)
	fieldRepo := postgres.NewFieldRepository(repoConfig)
	taskRepo := postgres.NewTaskRepository(repoConfig)
	valueRepo := postgres.NewTaskFieldValueRepository(repoConfig)
	spacePerms := postgres.NewSpacePermissionRepository(repoConfig)
	folderPerms := postgres.NewFolderPermissionRepository(repoConfig)
	listPerms := postgres.NewListPermissionRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	validator := validate.NewResourceValidator(
		workspaceRepo, memberRepo, spaceRepo, folderRepo,
		listRepo, templateRepo, fieldRepo, taskRepo,
	)
	authorizer := access.NewEngine(validator, memberRepo, spacePerms, folderPerms, listPerms, logger)
	orderManager := ordering.NewManager(logger)

	fieldRegistry, err := fieldtypes.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load field type registry: %v", err)
	}
	rules := fieldtypes.NewEngine(fieldRegistry)

	seeder := seed.NewSeeder(
		workspace.NewWorkspaceService(workspaceRepo, memberRepo, validator, authorizer, txManager, logger),
		cascade.NewEngine(validator, memberRepo, spaceRepo, folderRepo, listRepo,
			spacePerms, folderPerms, listPerms, authorizer, txManager, logger),
		hierarchy.NewSpaceService(spaceRepo, memberRepo, spacePerms, validator, authorizer, orderManager, txManager, logger),
		hierarchy.NewFolderService(folderRepo, memberRepo, folderPerms, validator, authorizer, orderManager, txManager, logger),
		hierarchy.NewListService(listRepo, memberRepo, listPerms, validator, authorizer, orderManager, txManager, logger),
		tasks.NewTemplateService(templateRepo, fieldRepo, validator, rules, orderManager, authorizer, txManager, logger),
		tasks.NewTaskService(taskRepo, valueRepo, templateRepo, validator, rules, orderManager, authorizer, txManager, logger),
		logger,
	)

	if err := seeder.Apply(ctx, def); err != nil {
		log.Fatalf("Failed to seed demo data: %v", err)
	}

	log.Println("Seeding complete")
}

// runSchema creates tables if they don't exist
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + tables.Workspaces + ` (
			id UUID PRIMARY KEY,
			account_id UUID NOT NULL,
			name TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Members + ` (
			id UUID PRIMARY KEY,
			workspace_id UUID NOT NULL REFERENCES ` + tables.Workspaces + `(id) ON DELETE CASCADE,
			user_id UUID NOT NULL,
			role TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			added_by UUID NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE(workspace_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Spaces + ` (
			id UUID PRIMARY KEY,
			workspace_id UUID NOT NULL REFERENCES ` + tables.Workspaces + `(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			sort_order INTEGER NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			is_private BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Folders + ` (
			id UUID PRIMARY KEY,
			space_id UUID NOT NULL REFERENCES ` + tables.Spaces + `(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			sort_order INTEGER NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			is_private BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Lists + ` (
			id UUID PRIMARY KEY,
			space_id UUID NOT NULL REFERENCES ` + tables.Spaces + `(id) ON DELETE CASCADE,
			folder_id UUID REFERENCES ` + tables.Folders + `(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			sort_order INTEGER NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			is_private BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Templates + ` (
			id UUID PRIMARY KEY,
			list_id UUID NOT NULL UNIQUE REFERENCES ` + tables.Lists + `(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Fields + ` (
			id UUID PRIMARY KEY,
			template_id UUID NOT NULL REFERENCES ` + tables.Templates + `(id) ON DELETE CASCADE,
			field_type TEXT NOT NULL,
			name TEXT NOT NULL,
			sort_order INTEGER NOT NULL,
			config JSONB,
			is_required BOOLEAN NOT NULL DEFAULT FALSE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Tasks + ` (
			id UUID PRIMARY KEY,
			list_id UUID NOT NULL REFERENCES ` + tables.Lists + `(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			sort_order INTEGER NOT NULL,
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.TaskFieldValues + ` (
			task_id UUID NOT NULL REFERENCES ` + tables.Tasks + `(id) ON DELETE CASCADE,
			field_id UUID NOT NULL REFERENCES ` + tables.Fields + `(id) ON DELETE CASCADE,
			value JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (task_id, field_id)
		)`,
	}

	for _, table := range []string{tables.SpacePermissions, tables.FolderPermissions, tables.ListPermissions} {
		statements = append(statements, `CREATE TABLE IF NOT EXISTS `+table+` (
			id UUID PRIMARY KEY,
			resource_id UUID NOT NULL,
			user_id UUID NOT NULL,
			permission_type TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			added_by UUID NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE(resource_id, user_id)
		)`)
	}

	// Sibling-name uniqueness applies to active rows only, so a deleted
	// name can be reused.
	statements = append(statements,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_`+tablePrefix+`spaces_sibling_name
			ON `+tables.Spaces+`(workspace_id, name) WHERE is_active = TRUE`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_`+tablePrefix+`folders_sibling_name
			ON `+tables.Folders+`(space_id, name) WHERE is_active = TRUE`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_`+tablePrefix+`lists_folder_name
			ON `+tables.Lists+`(folder_id, name) WHERE is_active = TRUE AND folder_id IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_`+tablePrefix+`lists_direct_name
			ON `+tables.Lists+`(space_id, name) WHERE is_active = TRUE AND folder_id IS NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_`+tablePrefix+`fields_sibling_name
			ON `+tables.Fields+`(template_id, name) WHERE is_active = TRUE`,
		`CREATE INDEX IF NOT EXISTS idx_`+tablePrefix+`tasks_list
			ON `+tables.Tasks+`(list_id) WHERE is_deleted = FALSE`,
	)

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// dropAllTables drops all tables in reverse order (to respect foreign keys)
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.TaskFieldValues,
		tables.Tasks,
		tables.Fields,
		tables.Templates,
		tables.ListPermissions,
		tables.FolderPermissions,
		tables.SpacePermissions,
		tables.Lists,
		tables.Folders,
		tables.Spaces,
		tables.Members,
		tables.Workspaces,
	}

	for _, table := range tableNames {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return err
		}
		log.Printf("  dropped %s", table)
	}
	return nil
}

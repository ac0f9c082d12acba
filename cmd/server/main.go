package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"taskhive/internal/auth"
	"taskhive/internal/config"
	"taskhive/internal/handler"
	"taskhive/internal/middleware"
	"taskhive/internal/repository/postgres"
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
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, 10)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	verifier, err := auth.NewJWKSVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create token verifier: %v", err)
	}
	defer verifier.Close()

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected")

	// Repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
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

	// Shared service collaborators
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

	// Services
	workspaceService := workspace.NewWorkspaceService(workspaceRepo, memberRepo, validator, authorizer, txManager, logger)
	membershipService := cascade.NewEngine(
		validator, memberRepo, spaceRepo, folderRepo, listRepo,
		spacePerms, folderPerms, listPerms, authorizer, txManager, logger,
	)
	spaceService := hierarchy.NewSpaceService(spaceRepo, memberRepo, spacePerms, validator, authorizer, orderManager, txManager, logger)
	folderService := hierarchy.NewFolderService(folderRepo, memberRepo, folderPerms, validator, authorizer, orderManager, txManager, logger)
	listService := hierarchy.NewListService(listRepo, memberRepo, listPerms, validator, authorizer, orderManager, txManager, logger)
	templateService := tasks.NewTemplateService(templateRepo, fieldRepo, validator, rules, orderManager, authorizer, txManager, logger)
	taskService := tasks.NewTaskService(taskRepo, valueRepo, templateRepo, validator, rules, orderManager, authorizer, txManager, logger)

	// Handlers
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService, logger)
	memberHandler := handler.NewMemberHandler(membershipService, logger)
	spaceHandler := handler.NewSpaceHandler(spaceService, logger)
	folderHandler := handler.NewFolderHandler(folderService, logger)
	listHandler := handler.NewListHandler(listService, logger)
	templateHandler := handler.NewTemplateHandler(templateService, logger)
	taskHandler := handler.NewTaskHandler(taskService, logger)

	logger.Info("services initialized")

	// HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.Health)

	// Workspace routes
	mux.HandleFunc("POST /api/workspaces", workspaceHandler.CreateWorkspace)
	mux.HandleFunc("GET /api/workspaces", workspaceHandler.ListWorkspaces)
	mux.HandleFunc("GET /api/workspaces/{id}", workspaceHandler.GetWorkspace)
	mux.HandleFunc("PATCH /api/workspaces/{id}", workspaceHandler.RenameWorkspace)
	mux.HandleFunc("DELETE /api/workspaces/{id}", workspaceHandler.DeactivateWorkspace)
	mux.HandleFunc("POST /api/workspaces/{id}/transfer-ownership", workspaceHandler.TransferOwnership)

	// Membership routes
	mux.HandleFunc("POST /api/workspaces/{id}/members", memberHandler.AddMember)
	mux.HandleFunc("GET /api/workspaces/{id}/members", memberHandler.ListMembers)
	mux.HandleFunc("PATCH /api/workspaces/{id}/members", memberHandler.ChangeRole)
	mux.HandleFunc("DELETE /api/members/{id}", memberHandler.RemoveMember)

	// Space routes
	mux.HandleFunc("POST /api/workspaces/{id}/spaces", spaceHandler.CreateSpace)
	mux.HandleFunc("GET /api/workspaces/{id}/spaces", spaceHandler.ListSpaces)
	mux.HandleFunc("GET /api/spaces/{id}", spaceHandler.GetSpace)
	mux.HandleFunc("PATCH /api/spaces/{id}", spaceHandler.UpdateSpace)
	mux.HandleFunc("POST /api/spaces/{id}/reorder", spaceHandler.ReorderSpace)
	mux.HandleFunc("DELETE /api/spaces/{id}", spaceHandler.DeleteSpace)
	mux.HandleFunc("PUT /api/spaces/{id}/permissions", spaceHandler.SetPermission)
	mux.HandleFunc("DELETE /api/spaces/{id}/permissions/{userID}", spaceHandler.RevokePermission)

	// Folder routes
	mux.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	mux.HandleFunc("GET /api/spaces/{id}/folders", folderHandler.ListFolders)
	mux.HandleFunc("GET /api/folders/{id}", folderHandler.GetFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", folderHandler.UpdateFolder)
	mux.HandleFunc("POST /api/folders/{id}/reorder", folderHandler.ReorderFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.DeleteFolder)
	mux.HandleFunc("PUT /api/folders/{id}/permissions", folderHandler.SetPermission)
	mux.HandleFunc("DELETE /api/folders/{id}/permissions/{userID}", folderHandler.RevokePermission)

	// List routes
	mux.HandleFunc("POST /api/lists", listHandler.CreateList)
	mux.HandleFunc("GET /api/spaces/{id}/lists", listHandler.ListLists)
	mux.HandleFunc("GET /api/lists/{id}", listHandler.GetList)
	mux.HandleFunc("PATCH /api/lists/{id}", listHandler.UpdateList)
	mux.HandleFunc("POST /api/lists/{id}/reorder", listHandler.ReorderList)
	mux.HandleFunc("DELETE /api/lists/{id}", listHandler.DeleteList)
	mux.HandleFunc("PUT /api/lists/{id}/permissions", listHandler.SetPermission)
	mux.HandleFunc("DELETE /api/lists/{id}/permissions/{userID}", listHandler.RevokePermission)

	// Template and field routes
	mux.HandleFunc("GET /api/lists/{id}/template", templateHandler.GetTemplate)
	mux.HandleFunc("POST /api/lists/{id}/fields", templateHandler.CreateField)
	mux.HandleFunc("PATCH /api/fields/{id}", templateHandler.UpdateField)
	mux.HandleFunc("POST /api/fields/{id}/reorder", templateHandler.ReorderField)
	mux.HandleFunc("DELETE /api/fields/{id}", templateHandler.DeactivateField)

	// Task routes
	mux.HandleFunc("POST /api/tasks", taskHandler.CreateTask)
	mux.HandleFunc("GET /api/lists/{id}/tasks", taskHandler.ListTasks)
	mux.HandleFunc("GET /api/tasks/{id}", taskHandler.GetTask)
	mux.HandleFunc("PATCH /api/tasks/{id}", taskHandler.UpdateTask)
	mux.HandleFunc("POST /api/tasks/{id}/reorder", taskHandler.ReorderTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", taskHandler.DeleteTask)
	mux.HandleFunc("PUT /api/tasks/{id}/values", taskHandler.SetFieldValue)
	mux.HandleFunc("GET /api/tasks/{id}/values", taskHandler.ListFieldValues)

	// Middleware chain, applied in reverse order: CORS -> Recovery -> Auth
	var root http.Handler = mux
	root = middleware.Auth(verifier)(root)
	root = middleware.Recovery(logger)(root)

	// CORS must run before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

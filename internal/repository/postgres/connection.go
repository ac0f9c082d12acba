// Package postgres implements the repository interfaces over pgx.
// Repositories run against the pool directly, or join the caller's
// transaction when one is open in the context.
package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskhive/internal/domain/repositories"
)

// RepositoryConfig holds the shared collaborators of every repository.
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds environment-prefixed table names. The prefix is
// interpolated before the SQL reaches the database, so each environment
// gets its own statements.
type TableNames struct {
	Workspaces        string
	Members           string
	Spaces            string
	Folders           string
	Lists             string
	Templates         string
	Fields            string
	Tasks             string
	TaskFieldValues   string
	SpacePermissions  string
	FolderPermissions string
	ListPermissions   string
}

// NewTableNames creates table names with the given prefix.
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Workspaces:        prefix + "workspaces",
		Members:           prefix + "workspace_members",
		Spaces:            prefix + "spaces",
		Folders:           prefix + "folders",
		Lists:             prefix + "lists",
		Templates:         prefix + "templates",
		Fields:            prefix + "fields",
		Tasks:             prefix + "tasks",
		TaskFieldValues:   prefix + "task_field_values",
		SpacePermissions:  prefix + "space_permissions",
		FolderPermissions: prefix + "folder_permissions",
		ListPermissions:   prefix + "list_permissions",
	}
}

// CreateConnectionPool creates a pgx connection pool.
//
// PgBouncer in transaction pooling mode (port 6543) does not support
// prepared statements. When that port is detected and the user has not
// set an explicit mode, QueryExecModeCacheDescribe is used: it keeps
// the extended protocol (needed for JSONB encoding of map values)
// while caching only statement descriptions, which the pooler accepts.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction from the context when one is
// open, otherwise the pool. Repositories call this on every query so
// they automatically participate in the caller's boundary.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskhive/internal/domain"
	"taskhive/internal/domain/models"
	"taskhive/internal/domain/repositories"
)

// PermissionRepository implements repositories.PermissionStore over one
// permission table. Construct it three times - once each for the space,
// folder and list tables - so the cascade engine can treat all kinds
// uniformly.
type PermissionRepository struct {
	pool  *pgxpool.Pool
	table string
}

// NewSpacePermissionRepository creates a store over the space permission table.
func NewSpacePermissionRepository(config *RepositoryConfig) repositories.PermissionStore {
	return &PermissionRepository{pool: config.Pool, table: config.Tables.SpacePermissions}
}

// NewFolderPermissionRepository creates a store over the folder permission table.
func NewFolderPermissionRepository(config *RepositoryConfig) repositories.PermissionStore {
	return &PermissionRepository{pool: config.Pool, table: config.Tables.FolderPermissions}
}

// NewListPermissionRepository creates a store over the list permission table.
func NewListPermissionRepository(config *RepositoryConfig) repositories.PermissionStore {
	return &PermissionRepository{pool: config.Pool, table: config.Tables.ListPermissions}
}

const permissionColumns = "id, resource_id, user_id, permission_type, is_active, added_by, created_at, updated_at"

func scanPermission(row interface{ Scan(...any) error }) (*models.ResourcePermission, error) {
	var p models.ResourcePermission
	err := row.Scan(
		&p.ID, &p.ResourceID, &p.UserID, &p.Level,
		&p.IsActive, &p.AddedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PermissionRepository) Get(ctx context.Context, resourceID, userID string) (*models.ResourcePermission, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE resource_id = $1 AND user_id = $2
	`, permissionColumns, r.table)

	executor := GetExecutor(ctx, r.pool)
	p, err := scanPermission(executor.QueryRow(ctx, query, resourceID, userID))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Kind: "permission", ID: resourceID + "/" + userID}
		}
		return nil, fmt.Errorf("get permission: %w", err)
	}
	return p, nil
}

func (r *PermissionRepository) Create(ctx context.Context, p *models.ResourcePermission) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, resource_id, user_id, permission_type, is_active, added_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.table)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		p.ID, p.ResourceID, p.UserID, p.Level, p.IsActive, p.AddedBy, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("user %s already has a permission record on resource %s", p.UserID, p.ResourceID),
				ResourceType: "permission",
				ResourceID:   p.ID,
			}
		}
		return fmt.Errorf("create permission: %w", err)
	}
	return nil
}

func (r *PermissionRepository) CreateBulk(ctx context.Context, ps []models.ResourcePermission) error {
	if len(ps) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, resource_id, user_id, permission_type, is_active, added_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.table)

	batch := &pgx.Batch{}
	for _, p := range ps {
		batch.Queue(query,
			p.ID, p.ResourceID, p.UserID, p.Level, p.IsActive, p.AddedBy, p.CreatedAt, p.UpdatedAt,
		)
	}

	executor := GetExecutor(ctx, r.pool)
	results := executor.SendBatch(ctx, batch)
	defer results.Close()

	for range ps {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("create permissions bulk: %w", err)
		}
	}
	return nil
}

func (r *PermissionRepository) Update(ctx context.Context, p *models.ResourcePermission) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET permission_type = $1, is_active = $2, added_by = $3, updated_at = $4
		WHERE id = $5
	`, r.table)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, p.Level, p.IsActive, p.AddedBy, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("update permission: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: "permission", ID: p.ID}
	}
	return nil
}

func (r *PermissionRepository) Deactivate(ctx context.Context, resourceID, userID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET is_active = FALSE, updated_at = NOW()
		WHERE resource_id = $1 AND user_id = $2
	`, r.table)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, resourceID, userID)
	if err != nil {
		return fmt.Errorf("deactivate permission: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: "permission", ID: resourceID + "/" + userID}
	}
	return nil
}

func (r *PermissionRepository) DeactivateForUser(ctx context.Context, resourceIDs []string, userID string) error {
	if len(resourceIDs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET is_active = FALSE, updated_at = NOW()
		WHERE resource_id = ANY($1) AND user_id = $2
	`, r.table)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, resourceIDs, userID); err != nil {
		return fmt.Errorf("deactivate permissions for user: %w", err)
	}
	return nil
}

func (r *PermissionRepository) UpdateLevelForUser(ctx context.Context, resourceIDs []string, userID string, level models.PermissionLevel) error {
	if len(resourceIDs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET permission_type = $1, updated_at = NOW()
		WHERE resource_id = ANY($2) AND user_id = $3 AND is_active = TRUE
	`, r.table)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, level, resourceIDs, userID); err != nil {
		return fmt.Errorf("update permission levels for user: %w", err)
	}
	return nil
}

func (r *PermissionRepository) ListForResource(ctx context.Context, resourceID string) ([]models.ResourcePermission, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE resource_id = $1
		ORDER BY created_at
	`, permissionColumns, r.table)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, resourceID)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()

	perms := []models.ResourcePermission{}
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		perms = append(perms, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permissions: %w", err)
	}
	return perms, nil
}

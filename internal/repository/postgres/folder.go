package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskhive/internal/domain"
	"taskhive/internal/domain/models"
	"taskhive/internal/domain/repositories"
)

// FolderRepository implements repositories.FolderRepository.
type FolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFolderRepository creates a new folder repository.
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &FolderRepository{pool: config.Pool, tables: config.Tables}
}

const folderColumns = "id, space_id, name, sort_order, is_active, is_private, created_at, updated_at"

func scanFolder(row interface{ Scan(...any) error }) (*models.Folder, error) {
	var f models.Folder
	err := row.Scan(
		&f.ID, &f.SpaceID, &f.Name, &f.Order,
		&f.IsActive, &f.IsPrivate, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FolderRepository) Create(ctx context.Context, f *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, space_id, name, sort_order, is_active, is_private, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		f.ID, f.SpaceID, f.Name, f.Order, f.IsActive, f.IsPrivate, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a folder named %q already exists in this space", f.Name),
				ResourceType: string(models.KindFolder),
				ResourceID:   f.ID,
			}
		}
		return fmt.Errorf("create folder: %w", err)
	}
	return nil
}

func (r *FolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = $1
	`, folderColumns, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	f, err := scanFolder(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Kind: string(models.KindFolder), ID: id}
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}
	return f, nil
}

func (r *FolderRepository) Update(ctx context.Context, f *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, is_private = $2, updated_at = $3
		WHERE id = $4
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, f.Name, f.IsPrivate, f.UpdatedAt, f.ID)
	if err != nil {
		return fmt.Errorf("update folder: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: string(models.KindFolder), ID: f.ID}
	}
	return nil
}

func (r *FolderRepository) SetOrder(ctx context.Context, id string, order int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET sort_order = $1, updated_at = NOW()
		WHERE id = $2
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, order, id)
	if err != nil {
		return fmt.Errorf("set folder order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: string(models.KindFolder), ID: id}
	}
	return nil
}

func (r *FolderRepository) SetActive(ctx context.Context, id string, active bool) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET is_active = $1, updated_at = NOW()
		WHERE id = $2
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("set folder active: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: string(models.KindFolder), ID: id}
	}
	return nil
}

func (r *FolderRepository) CountActiveSiblings(ctx context.Context, spaceID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s
		WHERE space_id = $1 AND is_active = TRUE
	`, r.tables.Folders)

	var count int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, spaceID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count folders: %w", err)
	}
	return count, nil
}

func (r *FolderRepository) ListActiveSiblings(ctx context.Context, spaceID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE space_id = $1 AND is_active = TRUE
		ORDER BY sort_order
	`, folderColumns, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, spaceID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}
	return folders, nil
}

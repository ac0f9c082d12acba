package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskhive/internal/domain"
	"taskhive/internal/domain/models"
	"taskhive/internal/domain/repositories"
)

// SpaceRepository implements repositories.SpaceRepository.
type SpaceRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewSpaceRepository creates a new space repository.
func NewSpaceRepository(config *RepositoryConfig) repositories.SpaceRepository {
	return &SpaceRepository{pool: config.Pool, tables: config.Tables}
}

const spaceColumns = "id, workspace_id, name, sort_order, is_active, is_private, created_at, updated_at"

func scanSpace(row interface{ Scan(...any) error }) (*models.Space, error) {
	var s models.Space
	err := row.Scan(
		&s.ID, &s.WorkspaceID, &s.Name, &s.Order,
		&s.IsActive, &s.IsPrivate, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SpaceRepository) Create(ctx context.Context, s *models.Space) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, workspace_id, name, sort_order, is_active, is_private, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.Spaces)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		s.ID, s.WorkspaceID, s.Name, s.Order, s.IsActive, s.IsPrivate, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a space named %q already exists in this workspace", s.Name),
				ResourceType: string(models.KindSpace),
				ResourceID:   s.ID,
			}
		}
		return fmt.Errorf("create space: %w", err)
	}
	return nil
}

func (r *SpaceRepository) GetByID(ctx context.Context, id string) (*models.Space, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = $1
	`, spaceColumns, r.tables.Spaces)

	executor := GetExecutor(ctx, r.pool)
	s, err := scanSpace(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Kind: string(models.KindSpace), ID: id}
		}
		return nil, fmt.Errorf("get space: %w", err)
	}
	return s, nil
}

func (r *SpaceRepository) Update(ctx context.Context, s *models.Space) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, is_private = $2, updated_at = $3
		WHERE id = $4
	`, r.tables.Spaces)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, s.Name, s.IsPrivate, s.UpdatedAt, s.ID)
	if err != nil {
		return fmt.Errorf("update space: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: string(models.KindSpace), ID: s.ID}
	}
	return nil
}

func (r *SpaceRepository) SetOrder(ctx context.Context, id string, order int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET sort_order = $1, updated_at = NOW()
		WHERE id = $2
	`, r.tables.Spaces)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, order, id)
	if err != nil {
		return fmt.Errorf("set space order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: string(models.KindSpace), ID: id}
	}
	return nil
}

func (r *SpaceRepository) SetActive(ctx context.Context, id string, active bool) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET is_active = $1, updated_at = NOW()
		WHERE id = $2
	`, r.tables.Spaces)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("set space active: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: string(models.KindSpace), ID: id}
	}
	return nil
}

func (r *SpaceRepository) CountActiveSiblings(ctx context.Context, workspaceID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s
		WHERE workspace_id = $1 AND is_active = TRUE
	`, r.tables.Spaces)

	var count int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, workspaceID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count spaces: %w", err)
	}
	return count, nil
}

func (r *SpaceRepository) ListActiveSiblings(ctx context.Context, workspaceID string) ([]models.Space, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE workspace_id = $1 AND is_active = TRUE
		ORDER BY sort_order
	`, spaceColumns, r.tables.Spaces)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list spaces: %w", err)
	}
	defer rows.Close()

	spaces := []models.Space{}
	for rows.Next() {
		s, err := scanSpace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan space: %w", err)
		}
		spaces = append(spaces, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spaces: %w", err)
	}
	return spaces, nil
}

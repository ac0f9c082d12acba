package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskhive/internal/domain"
	"taskhive/internal/domain/models"
	"taskhive/internal/domain/repositories"
)

// ListRepository implements repositories.ListRepository. The sibling
// predicate matches the parent shape: folder lists when folder_id is
// set, the space's direct lists otherwise.
type ListRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewListRepository creates a new list repository.
func NewListRepository(config *RepositoryConfig) repositories.ListRepository {
	return &ListRepository{pool: config.Pool, tables: config.Tables}
}

const listColumns = "id, space_id, folder_id, name, sort_order, is_active, is_private, created_at, updated_at"

func scanList(row interface{ Scan(...any) error }) (*models.List, error) {
	var l models.List
	err := row.Scan(
		&l.ID, &l.SpaceID, &l.FolderID, &l.Name, &l.Order,
		&l.IsActive, &l.IsPrivate, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *ListRepository) Create(ctx context.Context, l *models.List) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, space_id, folder_id, name, sort_order, is_active, is_private, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.tables.Lists)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		l.ID, l.SpaceID, l.FolderID, l.Name, l.Order, l.IsActive, l.IsPrivate, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a list named %q already exists in this location", l.Name),
				ResourceType: string(models.KindList),
				ResourceID:   l.ID,
			}
		}
		return fmt.Errorf("create list: %w", err)
	}
	return nil
}

func (r *ListRepository) GetByID(ctx context.Context, id string) (*models.List, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = $1
	`, listColumns, r.tables.Lists)

	executor := GetExecutor(ctx, r.pool)
	l, err := scanList(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Kind: string(models.KindList), ID: id}
		}
		return nil, fmt.Errorf("get list: %w", err)
	}
	return l, nil
}

func (r *ListRepository) Update(ctx context.Context, l *models.List) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, is_private = $2, updated_at = $3
		WHERE id = $4
	`, r.tables.Lists)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, l.Name, l.IsPrivate, l.UpdatedAt, l.ID)
	if err != nil {
		return fmt.Errorf("update list: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: string(models.KindList), ID: l.ID}
	}
	return nil
}

func (r *ListRepository) SetOrder(ctx context.Context, id string, order int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET sort_order = $1, updated_at = NOW()
		WHERE id = $2
	`, r.tables.Lists)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, order, id)
	if err != nil {
		return fmt.Errorf("set list order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: string(models.KindList), ID: id}
	}
	return nil
}

func (r *ListRepository) SetActive(ctx context.Context, id string, active bool) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET is_active = $1, updated_at = NOW()
		WHERE id = $2
	`, r.tables.Lists)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("set list active: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: string(models.KindList), ID: id}
	}
	return nil
}

// siblingPredicate returns the WHERE fragment and arguments selecting
// one parent's active lists. Argument numbering starts at $1.
func siblingPredicate(spaceID string, folderID *string) (string, []any) {
	if folderID != nil {
		return "folder_id = $1 AND is_active = TRUE", []any{*folderID}
	}
	return "space_id = $1 AND folder_id IS NULL AND is_active = TRUE", []any{spaceID}
}

func (r *ListRepository) CountActiveSiblings(ctx context.Context, spaceID string, folderID *string) (int, error) {
	where, args := siblingPredicate(spaceID, folderID)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, r.tables.Lists, where)

	var count int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count lists: %w", err)
	}
	return count, nil
}

func (r *ListRepository) ListActiveSiblings(ctx context.Context, spaceID string, folderID *string) ([]models.List, error) {
	where, args := siblingPredicate(spaceID, folderID)
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s
		ORDER BY sort_order
	`, listColumns, r.tables.Lists, where)

	return r.queryLists(ctx, query, args...)
}

func (r *ListRepository) ListActiveByFolder(ctx context.Context, folderID string) ([]models.List, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE folder_id = $1 AND is_active = TRUE
		ORDER BY sort_order
	`, listColumns, r.tables.Lists)

	return r.queryLists(ctx, query, folderID)
}

func (r *ListRepository) ListActiveDirect(ctx context.Context, spaceID string) ([]models.List, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE space_id = $1 AND folder_id IS NULL AND is_active = TRUE
		ORDER BY sort_order
	`, listColumns, r.tables.Lists)

	return r.queryLists(ctx, query, spaceID)
}

func (r *ListRepository) queryLists(ctx context.Context, query string, args ...any) ([]models.List, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	lists := []models.List{}
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lists: %w", err)
	}
	return lists, nil
}

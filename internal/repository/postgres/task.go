package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskhive/internal/domain"
	"taskhive/internal/domain/models"
	"taskhive/internal/domain/repositories"
)

// TaskRepository implements repositories.TaskRepository.
type TaskRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(config *RepositoryConfig) repositories.TaskRepository {
	return &TaskRepository{pool: config.Pool, tables: config.Tables}
}

const taskColumns = "id, list_id, title, sort_order, is_deleted, created_at, updated_at"

func scanTask(row interface{ Scan(...any) error }) (*models.Task, error) {
	var t models.Task
	err := row.Scan(
		&t.ID, &t.ListID, &t.Title, &t.Order,
		&t.IsDeleted, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) Create(ctx context.Context, t *models.Task) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, list_id, title, sort_order, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.tables.Tasks)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		t.ID, t.ListID, t.Title, t.Order, t.IsDeleted, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = $1
	`, taskColumns, r.tables.Tasks)

	executor := GetExecutor(ctx, r.pool)
	t, err := scanTask(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Kind: string(models.KindTask), ID: id}
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (r *TaskRepository) Update(ctx context.Context, t *models.Task) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, updated_at = $2
		WHERE id = $3
	`, r.tables.Tasks)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, t.Title, t.UpdatedAt, t.ID)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: string(models.KindTask), ID: t.ID}
	}
	return nil
}

func (r *TaskRepository) SetOrder(ctx context.Context, id string, order int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET sort_order = $1, updated_at = NOW()
		WHERE id = $2
	`, r.tables.Tasks)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, order, id)
	if err != nil {
		return fmt.Errorf("set task order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: string(models.KindTask), ID: id}
	}
	return nil
}

func (r *TaskRepository) SetDeleted(ctx context.Context, id string, deleted bool) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET is_deleted = $1, updated_at = NOW()
		WHERE id = $2
	`, r.tables.Tasks)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, deleted, id)
	if err != nil {
		return fmt.Errorf("set task deleted: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: string(models.KindTask), ID: id}
	}
	return nil
}

func (r *TaskRepository) CountActiveSiblings(ctx context.Context, listID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s
		WHERE list_id = $1 AND is_deleted = FALSE
	`, r.tables.Tasks)

	var count int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, listID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}

func (r *TaskRepository) ListActiveSiblings(ctx context.Context, listID string) ([]models.Task, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE list_id = $1 AND is_deleted = FALSE
		ORDER BY sort_order
	`, taskColumns, r.tables.Tasks)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, listID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// TaskFieldValueRepository implements
// repositories.TaskFieldValueRepository. Values are stored as JSONB.
type TaskFieldValueRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewTaskFieldValueRepository creates a new task field value repository.
func NewTaskFieldValueRepository(config *RepositoryConfig) repositories.TaskFieldValueRepository {
	return &TaskFieldValueRepository{pool: config.Pool, tables: config.Tables}
}

func (r *TaskFieldValueRepository) Get(ctx context.Context, taskID, fieldID string) (*models.TaskFieldValue, error) {
	query := fmt.Sprintf(`
		SELECT task_id, field_id, value, created_at, updated_at
		FROM %s
		WHERE task_id = $1 AND field_id = $2
	`, r.tables.TaskFieldValues)

	var v models.TaskFieldValue
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, taskID, fieldID).Scan(
		&v.TaskID, &v.FieldID, &v.Value, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Kind: "task field value", ID: taskID + "/" + fieldID}
		}
		return nil, fmt.Errorf("get task field value: %w", err)
	}
	return &v, nil
}

func (r *TaskFieldValueRepository) Upsert(ctx context.Context, v *models.TaskFieldValue) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (task_id, field_id, value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (task_id, field_id)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, r.tables.TaskFieldValues)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query, v.TaskID, v.FieldID, v.Value, v.CreatedAt, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert task field value: %w", err)
	}
	return nil
}

func (r *TaskFieldValueRepository) ListByTask(ctx context.Context, taskID string) ([]models.TaskFieldValue, error) {
	query := fmt.Sprintf(`
		SELECT task_id, field_id, value, created_at, updated_at
		FROM %s
		WHERE task_id = $1
	`, r.tables.TaskFieldValues)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("list task field values: %w", err)
	}
	defer rows.Close()

	values := []models.TaskFieldValue{}
	for rows.Next() {
		var v models.TaskFieldValue
		if err := rows.Scan(&v.TaskID, &v.FieldID, &v.Value, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task field value: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task field values: %w", err)
	}
	return values, nil
}

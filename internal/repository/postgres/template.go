package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskhive/internal/domain"
	"taskhive/internal/domain/models"
	"taskhive/internal/domain/repositories"
)

// TemplateRepository implements repositories.TemplateRepository.
type TemplateRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewTemplateRepository creates a new template repository.
func NewTemplateRepository(config *RepositoryConfig) repositories.TemplateRepository {
	return &TemplateRepository{pool: config.Pool, tables: config.Tables}
}

func (r *TemplateRepository) Create(ctx context.Context, t *models.Template) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, list_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, r.tables.Templates)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query, t.ID, t.ListID, t.Name, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if IsPgDuplicateError(err) {
			// One template per list; a concurrent first access lost the race.
			return &domain.ConflictError{
				Message:      fmt.Sprintf("list %s already has a template", t.ListID),
				ResourceType: string(models.KindTemplate),
				ResourceID:   t.ID,
			}
		}
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*models.Template, error) {
	query := fmt.Sprintf(`
		SELECT id, list_id, name, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Templates)

	var t models.Template
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(&t.ID, &t.ListID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Kind: string(models.KindTemplate), ID: id}
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	return &t, nil
}

func (r *TemplateRepository) GetByList(ctx context.Context, listID string) (*models.Template, error) {
	query := fmt.Sprintf(`
		SELECT id, list_id, name, created_at, updated_at
		FROM %s
		WHERE list_id = $1
	`, r.tables.Templates)

	var t models.Template
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, listID).Scan(&t.ID, &t.ListID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Kind: string(models.KindTemplate), ID: "list:" + listID}
		}
		return nil, fmt.Errorf("get template by list: %w", err)
	}
	return &t, nil
}

func (r *TemplateRepository) Update(ctx context.Context, t *models.Template) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, updated_at = $2
		WHERE id = $3
	`, r.tables.Templates)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, t.Name, t.UpdatedAt, t.ID)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: string(models.KindTemplate), ID: t.ID}
	}
	return nil
}

// FieldRepository implements repositories.FieldRepository. Config is
// stored as JSONB and round-trips through pgx's map encoding.
type FieldRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFieldRepository creates a new field repository.
func NewFieldRepository(config *RepositoryConfig) repositories.FieldRepository {
	return &FieldRepository{pool: config.Pool, tables: config.Tables}
}

const fieldColumns = "id, template_id, field_type, name, sort_order, config, is_required, is_active, created_at, updated_at"

func scanField(row interface{ Scan(...any) error }) (*models.Field, error) {
	var f models.Field
	err := row.Scan(
		&f.ID, &f.TemplateID, &f.Type, &f.Name, &f.Order,
		&f.Config, &f.IsRequired, &f.IsActive, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FieldRepository) Create(ctx context.Context, f *models.Field) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, template_id, field_type, name, sort_order, config, is_required, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, r.tables.Fields)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		f.ID, f.TemplateID, f.Type, f.Name, f.Order,
		f.Config, f.IsRequired, f.IsActive, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a field named %q already exists in this template", f.Name),
				ResourceType: string(models.KindField),
				ResourceID:   f.ID,
			}
		}
		return fmt.Errorf("create field: %w", err)
	}
	return nil
}

func (r *FieldRepository) GetByID(ctx context.Context, id string) (*models.Field, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = $1
	`, fieldColumns, r.tables.Fields)

	executor := GetExecutor(ctx, r.pool)
	f, err := scanField(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Kind: string(models.KindField), ID: id}
		}
		return nil, fmt.Errorf("get field: %w", err)
	}
	return f, nil
}

func (r *FieldRepository) Update(ctx context.Context, f *models.Field) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, config = $2, is_required = $3, updated_at = $4
		WHERE id = $5
	`, r.tables.Fields)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, f.Name, f.Config, f.IsRequired, f.UpdatedAt, f.ID)
	if err != nil {
		return fmt.Errorf("update field: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: string(models.KindField), ID: f.ID}
	}
	return nil
}

func (r *FieldRepository) SetOrder(ctx context.Context, id string, order int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET sort_order = $1, updated_at = NOW()
		WHERE id = $2
	`, r.tables.Fields)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, order, id)
	if err != nil {
		return fmt.Errorf("set field order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: string(models.KindField), ID: id}
	}
	return nil
}

func (r *FieldRepository) SetActive(ctx context.Context, id string, active bool) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET is_active = $1, updated_at = NOW()
		WHERE id = $2
	`, r.tables.Fields)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("set field active: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: string(models.KindField), ID: id}
	}
	return nil
}

func (r *FieldRepository) CountActiveSiblings(ctx context.Context, templateID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s
		WHERE template_id = $1 AND is_active = TRUE
	`, r.tables.Fields)

	var count int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, templateID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count fields: %w", err)
	}
	return count, nil
}

func (r *FieldRepository) ListActiveSiblings(ctx context.Context, templateID string) ([]models.Field, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE template_id = $1 AND is_active = TRUE
		ORDER BY sort_order
	`, fieldColumns, r.tables.Fields)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, templateID)
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}
	defer rows.Close()

	fields := []models.Field{}
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, fmt.Errorf("scan field: %w", err)
		}
		fields = append(fields, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fields: %w", err)
	}
	return fields, nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskhive/internal/domain"
	"taskhive/internal/domain/models"
	"taskhive/internal/domain/repositories"
)

// WorkspaceRepository implements repositories.WorkspaceRepository.
type WorkspaceRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewWorkspaceRepository creates a new workspace repository.
func NewWorkspaceRepository(config *RepositoryConfig) repositories.WorkspaceRepository {
	return &WorkspaceRepository{pool: config.Pool, tables: config.Tables}
}

func (r *WorkspaceRepository) Create(ctx context.Context, ws *models.Workspace) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, account_id, name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.tables.Workspaces)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		ws.ID, ws.AccountID, ws.Name, ws.IsActive, ws.CreatedAt, ws.UpdatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("workspace %q already exists", ws.Name),
				ResourceType: string(models.KindWorkspace),
				ResourceID:   ws.ID,
			}
		}
		return fmt.Errorf("create workspace: %w", err)
	}
	return nil
}

func (r *WorkspaceRepository) GetByID(ctx context.Context, id string) (*models.Workspace, error) {
	query := fmt.Sprintf(`
		SELECT id, account_id, name, is_active, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Workspaces)

	var ws models.Workspace
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&ws.ID, &ws.AccountID, &ws.Name, &ws.IsActive, &ws.CreatedAt, &ws.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Kind: string(models.KindWorkspace), ID: id}
		}
		return nil, fmt.Errorf("get workspace: %w", err)
	}
	return &ws, nil
}

func (r *WorkspaceRepository) Update(ctx context.Context, ws *models.Workspace) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, account_id = $2, updated_at = $3
		WHERE id = $4
	`, r.tables.Workspaces)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, ws.Name, ws.AccountID, ws.UpdatedAt, ws.ID)
	if err != nil {
		return fmt.Errorf("update workspace: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: string(models.KindWorkspace), ID: ws.ID}
	}
	return nil
}

func (r *WorkspaceRepository) SetActive(ctx context.Context, id string, active bool) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET is_active = $1, updated_at = NOW()
		WHERE id = $2
	`, r.tables.Workspaces)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("set workspace active: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: string(models.KindWorkspace), ID: id}
	}
	return nil
}

func (r *WorkspaceRepository) ListByAccount(ctx context.Context, accountID string) ([]models.Workspace, error) {
	query := fmt.Sprintf(`
		SELECT id, account_id, name, is_active, created_at, updated_at
		FROM %s
		WHERE account_id = $1 AND is_active = TRUE
		ORDER BY created_at
	`, r.tables.Workspaces)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	defer rows.Close()

	workspaces := []models.Workspace{}
	for rows.Next() {
		var ws models.Workspace
		if err := rows.Scan(&ws.ID, &ws.AccountID, &ws.Name, &ws.IsActive, &ws.CreatedAt, &ws.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan workspace: %w", err)
		}
		workspaces = append(workspaces, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workspaces: %w", err)
	}
	return workspaces, nil
}

// MemberRepository implements repositories.MemberRepository.
type MemberRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewMemberRepository creates a new membership repository.
func NewMemberRepository(config *RepositoryConfig) repositories.MemberRepository {
	return &MemberRepository{pool: config.Pool, tables: config.Tables}
}

const memberColumns = "id, workspace_id, user_id, role, is_active, added_by, created_at, updated_at"

func scanMember(row interface{ Scan(...any) error }) (*models.WorkspaceMember, error) {
	var m models.WorkspaceMember
	err := row.Scan(
		&m.ID, &m.WorkspaceID, &m.UserID, &m.Role,
		&m.IsActive, &m.AddedBy, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MemberRepository) Create(ctx context.Context, m *models.WorkspaceMember) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, workspace_id, user_id, role, is_active, added_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.Members)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		m.ID, m.WorkspaceID, m.UserID, m.Role, m.IsActive, m.AddedBy, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("user %s is already a member of workspace %s", m.UserID, m.WorkspaceID),
				ResourceType: string(models.KindMember),
				ResourceID:   m.ID,
			}
		}
		return fmt.Errorf("create member: %w", err)
	}
	return nil
}

func (r *MemberRepository) Get(ctx context.Context, workspaceID, userID string) (*models.WorkspaceMember, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE workspace_id = $1 AND user_id = $2
	`, memberColumns, r.tables.Members)

	executor := GetExecutor(ctx, r.pool)
	m, err := scanMember(executor.QueryRow(ctx, query, workspaceID, userID))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Kind: string(models.KindMember), ID: workspaceID + "/" + userID}
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func (r *MemberRepository) GetByID(ctx context.Context, id string) (*models.WorkspaceMember, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = $1
	`, memberColumns, r.tables.Members)

	executor := GetExecutor(ctx, r.pool)
	m, err := scanMember(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Kind: string(models.KindMember), ID: id}
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func (r *MemberRepository) Reactivate(ctx context.Context, id string, role models.Role, addedBy string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET is_active = TRUE, role = $1, added_by = $2, updated_at = NOW()
		WHERE id = $3
	`, r.tables.Members)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, role, addedBy, id)
	if err != nil {
		return fmt.Errorf("reactivate member: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: string(models.KindMember), ID: id}
	}
	return nil
}

func (r *MemberRepository) UpdateRole(ctx context.Context, id string, role models.Role) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET role = $1, updated_at = NOW()
		WHERE id = $2
	`, r.tables.Members)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, role, id)
	if err != nil {
		return fmt.Errorf("update member role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: string(models.KindMember), ID: id}
	}
	return nil
}

func (r *MemberRepository) Deactivate(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1
	`, r.tables.Members)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate member: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: string(models.KindMember), ID: id}
	}
	return nil
}

func (r *MemberRepository) ListActiveByWorkspace(ctx context.Context, workspaceID string) ([]models.WorkspaceMember, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE workspace_id = $1 AND is_active = TRUE
		ORDER BY created_at
	`, memberColumns, r.tables.Members)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	members := []models.WorkspaceMember{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return members, nil
}

package repositories

import (
	"context"

	"taskhive/internal/domain/models"
)

// TemplateRepository defines data access for list templates.
type TemplateRepository interface {
	Create(ctx context.Context, t *models.Template) error
	GetByID(ctx context.Context, id string) (*models.Template, error)

	// GetByList retrieves the template of a list (one-to-one).
	GetByList(ctx context.Context, listID string) (*models.Template, error)

	Update(ctx context.Context, t *models.Template) error
}

// FieldRepository defines data access for template fields. The sibling
// set of a field is all active fields of the same template.
type FieldRepository interface {
	Create(ctx context.Context, f *models.Field) error
	GetByID(ctx context.Context, id string) (*models.Field, error)

	// Update persists name, config and required flag.
	Update(ctx context.Context, f *models.Field) error

	SetOrder(ctx context.Context, id string, order int) error
	SetActive(ctx context.Context, id string, active bool) error
	CountActiveSiblings(ctx context.Context, templateID string) (int, error)
	ListActiveSiblings(ctx context.Context, templateID string) ([]models.Field, error)
}

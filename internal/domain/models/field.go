package models

import (
	"fmt"
	"time"

	"taskhive/internal/domain"
)

// FieldType is the closed variant set of field kinds a template can carry.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldDropdown FieldType = "dropdown"
	FieldDate     FieldType = "date"
	FieldCheckbox FieldType = "checkbox"
	FieldEmail    FieldType = "email"
)

// ParseFieldType validates a raw field type against the closed set.
func ParseFieldType(s string) (FieldType, error) {
	switch FieldType(s) {
	case FieldText, FieldNumber, FieldDropdown, FieldDate, FieldCheckbox, FieldEmail:
		return FieldType(s), nil
	default:
		return "", fmt.Errorf("field type %q: %w", s, domain.ErrUnexpectedFieldType)
	}
}

// FieldConfig holds type-specific settings (maxLength, min, max,
// options, default). Allowed keys per type are enforced by the field
// type rule engine.
type FieldConfig map[string]any

// Template is the field schema of a list, one-to-one with it.
type Template struct {
	ID        string    `json:"id" db:"id"`
	ListID    string    `json:"list_id" db:"list_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Field is one column of a template. Sibling set: fields sharing the
// same template.
type Field struct {
	ID         string      `json:"id" db:"id"`
	TemplateID string      `json:"template_id" db:"template_id"`
	Type       FieldType   `json:"field_type" db:"field_type"`
	Name       string      `json:"name" db:"name"`
	Order      int         `json:"order" db:"sort_order"`
	Config     FieldConfig `json:"config" db:"config"`
	IsRequired bool        `json:"is_required" db:"is_required"`
	IsActive   bool        `json:"is_active" db:"is_active"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`
}

package fieldtypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhive/internal/domain"
	"taskhive/internal/domain/models"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	registry, err := NewRegistry()
	require.NoError(t, err)
	return NewEngine(registry)
}

func TestCheckConfig(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name    string
		ft      models.FieldType
		cfg     models.FieldConfig
		wantErr error
	}{
		{
			name: "text with valid keys",
			ft:   models.FieldText,
			cfg:  models.FieldConfig{"maxLength": 50, "default": "todo"},
		},
		{
			name:    "text with unknown key",
			ft:      models.FieldText,
			cfg:     models.FieldConfig{"pattern": ".*"},
			wantErr: domain.ErrInvalidFieldConfig,
		},
		{
			name:    "text default exceeds maxLength",
			ft:      models.FieldText,
			cfg:     models.FieldConfig{"maxLength": 3, "default": "too long"},
			wantErr: domain.ErrInvalidFieldDefault,
		},
		{
			name: "number with bounds and default",
			ft:   models.FieldNumber,
			cfg:  models.FieldConfig{"min": 1, "max": 10, "default": 5},
		},
		{
			name:    "number max less than min",
			ft:      models.FieldNumber,
			cfg:     models.FieldConfig{"min": 10, "max": 5},
			wantErr: domain.ErrInvalidFieldConfig,
		},
		{
			name:    "number default outside bounds",
			ft:      models.FieldNumber,
			cfg:     models.FieldConfig{"min": 1, "max": 10, "default": 11},
			wantErr: domain.ErrInvalidFieldDefault,
		},
		{
			name:    "number non-numeric min",
			ft:      models.FieldNumber,
			cfg:     models.FieldConfig{"min": "low"},
			wantErr: domain.ErrInvalidFieldConfig,
		},
		{
			name: "dropdown with options",
			ft:   models.FieldDropdown,
			cfg:  models.FieldConfig{"options": []any{"Low", "High"}, "default": "Low"},
		},
		{
			name:    "dropdown without options",
			ft:      models.FieldDropdown,
			cfg:     models.FieldConfig{},
			wantErr: domain.ErrDropdownOptionsMissing,
		},
		{
			name:    "dropdown with empty options",
			ft:      models.FieldDropdown,
			cfg:     models.FieldConfig{"options": []any{}},
			wantErr: domain.ErrDropdownOptionsMissing,
		},
		{
			name:    "dropdown default not among options",
			ft:      models.FieldDropdown,
			cfg:     models.FieldConfig{"options": []any{"Low", "High"}, "default": "Medium"},
			wantErr: domain.ErrInvalidFieldDefault,
		},
		{
			name: "date takes no keys",
			ft:   models.FieldDate,
			cfg:  models.FieldConfig{},
		},
		{
			name:    "date rejects any key",
			ft:      models.FieldDate,
			cfg:     models.FieldConfig{"format": "RFC3339"},
			wantErr: domain.ErrInvalidFieldConfig,
		},
		{
			name: "checkbox takes no keys",
			ft:   models.FieldCheckbox,
			cfg:  nil,
		},
		{
			name:    "unknown type",
			ft:      models.FieldType("rating"),
			cfg:     nil,
			wantErr: domain.ErrUnexpectedFieldType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.CheckConfig(tt.ft, tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckConfigMaxLessThanMinMessage(t *testing.T) {
	e := newTestEngine(t)
	err := e.CheckConfig(models.FieldNumber, models.FieldConfig{"min": 10, "max": 5})
	require.ErrorIs(t, err, domain.ErrInvalidFieldConfig)
	assert.Contains(t, err.Error(), "max (5) is less than min (10)")
}

func TestValidateValue(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name    string
		ft      models.FieldType
		value   any
		cfg     models.FieldConfig
		wantErr error
	}{
		{
			name:  "number within bounds",
			ft:    models.FieldNumber,
			value: 7.5,
			cfg:   models.FieldConfig{"min": 1, "max": 10},
		},
		{
			name:    "number below min",
			ft:      models.FieldNumber,
			value:   0,
			cfg:     models.FieldConfig{"min": 1, "max": 10},
			wantErr: domain.ErrInvalidFieldValue,
		},
		{
			name:    "number above max",
			ft:      models.FieldNumber,
			value:   11,
			cfg:     models.FieldConfig{"min": 1, "max": 10},
			wantErr: domain.ErrInvalidFieldValue,
		},
		{
			name:    "number not numeric",
			ft:      models.FieldNumber,
			value:   "seven",
			cfg:     nil,
			wantErr: domain.ErrInvalidFieldValue,
		},
		{
			name:  "text within maxLength",
			ft:    models.FieldText,
			value: "ok",
			cfg:   models.FieldConfig{"maxLength": 5},
		},
		{
			name:    "text over maxLength",
			ft:      models.FieldText,
			value:   "much too long",
			cfg:     models.FieldConfig{"maxLength": 5},
			wantErr: domain.ErrInvalidFieldValue,
		},
		{
			name:  "dropdown member",
			ft:    models.FieldDropdown,
			value: "High",
			cfg:   models.FieldConfig{"options": []any{"Low", "High"}},
		},
		{
			name:    "dropdown non-member",
			ft:      models.FieldDropdown,
			value:   "Medium",
			cfg:     models.FieldConfig{"options": []any{"Low", "High"}},
			wantErr: domain.ErrInvalidFieldValue,
		},
		{
			name:  "date accepts any well-formed value",
			ft:    models.FieldDate,
			value: "2026-08-01",
			cfg:   nil,
		},
		{
			name:  "checkbox accepts any well-formed value",
			ft:    models.FieldCheckbox,
			value: true,
			cfg:   nil,
		},
		{
			name:  "email format validation is external",
			ft:    models.FieldEmail,
			value: "someone@example.com",
			cfg:   nil,
		},
		{
			name:    "unknown type",
			ft:      models.FieldType("rating"),
			value:   3,
			cfg:     nil,
			wantErr: domain.ErrUnexpectedFieldType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.ValidateValue(tt.ft, tt.value, tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegistryDeclaresAllTypes(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)

	keys, err := registry.ConfigKeys(models.FieldNumber)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"min", "max", "default"}, keys)

	keys, err = registry.ConfigKeys(models.FieldEmail)
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = registry.ConfigKeys(models.FieldType("rating"))
	assert.ErrorIs(t, err, domain.ErrUnexpectedFieldType)
}

package fieldtypes

import (
	"encoding/json"
	"fmt"
	"slices"

	"taskhive/internal/domain"
	"taskhive/internal/domain/models"
)

// Engine validates field configuration and field values. Each decision
// is an exhaustive switch over the closed variant set, so a new field
// type cannot be added without updating every rule site.
type Engine struct {
	registry *Registry
}

// NewEngine creates a field type rule engine.
func NewEngine(registry *Registry) *Engine {
	return &Engine{registry: registry}
}

// CheckConfig validates a field's configuration against its type's
// rules: allowed keys, required keys, and default-value constraints.
func (e *Engine) CheckConfig(ft models.FieldType, cfg models.FieldConfig) error {
	allowed, err := e.registry.ConfigKeys(ft)
	if err != nil {
		return err
	}
	for key := range cfg {
		if !slices.Contains(allowed, key) {
			return fmt.Errorf("key %q not allowed for %s fields: %w", key, ft, domain.ErrInvalidFieldConfig)
		}
	}

	switch ft {
	case models.FieldText:
		return checkTextConfig(cfg)
	case models.FieldNumber:
		return checkNumberConfig(cfg)
	case models.FieldDropdown:
		return checkDropdownConfig(cfg)
	case models.FieldDate, models.FieldCheckbox, models.FieldEmail:
		// No keys are allowed, which the allow-list above already
		// enforced.
		return nil
	default:
		return fmt.Errorf("field type %q: %w", ft, domain.ErrUnexpectedFieldType)
	}
}

// ValidateValue validates a field value against the field's type and
// configuration. Date, checkbox and email values pass as long as they
// are present; format validation is external.
func (e *Engine) ValidateValue(ft models.FieldType, value any, cfg models.FieldConfig) error {
	switch ft {
	case models.FieldText:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("text field expects a string: %w", domain.ErrInvalidFieldValue)
		}
		if maxLen, ok, err := configNumber(cfg, "maxLength"); err != nil {
			return err
		} else if ok && float64(len(s)) > maxLen {
			return fmt.Errorf("value length %d exceeds maxLength %v: %w", len(s), maxLen, domain.ErrInvalidFieldValue)
		}
		return nil

	case models.FieldNumber:
		v, ok := asNumber(value)
		if !ok {
			return fmt.Errorf("number field expects a numeric value: %w", domain.ErrInvalidFieldValue)
		}
		return checkNumberBounds(cfg, v, domain.ErrInvalidFieldValue)

	case models.FieldDropdown:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("dropdown field expects a string: %w", domain.ErrInvalidFieldValue)
		}
		options, err := configOptions(cfg)
		if err != nil {
			return err
		}
		if !slices.Contains(options, s) {
			return fmt.Errorf("value %q not among options: %w", s, domain.ErrInvalidFieldValue)
		}
		return nil

	case models.FieldDate, models.FieldCheckbox, models.FieldEmail:
		return nil

	default:
		return fmt.Errorf("field type %q: %w", ft, domain.ErrUnexpectedFieldType)
	}
}

func checkTextConfig(cfg models.FieldConfig) error {
	maxLen, hasMax, err := configNumber(cfg, "maxLength")
	if err != nil {
		return err
	}

	if def, ok := cfg["default"]; ok {
		s, isStr := def.(string)
		if !isStr {
			return fmt.Errorf("text default must be a string: %w", domain.ErrInvalidFieldDefault)
		}
		if hasMax && float64(len(s)) > maxLen {
			return fmt.Errorf("default length %d exceeds maxLength %v: %w", len(s), maxLen, domain.ErrInvalidFieldDefault)
		}
	}
	return nil
}

func checkNumberConfig(cfg models.FieldConfig) error {
	minV, hasMin, err := configNumber(cfg, "min")
	if err != nil {
		return err
	}
	maxV, hasMax, err := configNumber(cfg, "max")
	if err != nil {
		return err
	}
	if hasMin && hasMax && maxV < minV {
		return fmt.Errorf("max (%v) is less than min (%v): %w", maxV, minV, domain.ErrInvalidFieldConfig)
	}

	if def, ok := cfg["default"]; ok {
		v, isNum := asNumber(def)
		if !isNum {
			return fmt.Errorf("number default must be numeric: %w", domain.ErrInvalidFieldDefault)
		}
		if err := checkNumberBounds(cfg, v, domain.ErrInvalidFieldDefault); err != nil {
			return err
		}
	}
	return nil
}

func checkDropdownConfig(cfg models.FieldConfig) error {
	options, err := configOptions(cfg)
	if err != nil {
		return err
	}

	if def, ok := cfg["default"]; ok {
		s, isStr := def.(string)
		if !isStr {
			return fmt.Errorf("dropdown default must be a string: %w", domain.ErrInvalidFieldDefault)
		}
		if !slices.Contains(options, s) {
			return fmt.Errorf("default %q not among options: %w", s, domain.ErrInvalidFieldDefault)
		}
	}
	return nil
}

// checkNumberBounds verifies v against the min/max bounds in cfg,
// wrapping violations in the given sentinel so the same check serves
// defaults and values.
func checkNumberBounds(cfg models.FieldConfig, v float64, sentinel error) error {
	minV, hasMin, err := configNumber(cfg, "min")
	if err != nil {
		return err
	}
	maxV, hasMax, err := configNumber(cfg, "max")
	if err != nil {
		return err
	}
	if hasMin && v < minV {
		return fmt.Errorf("%v below min %v: %w", v, minV, sentinel)
	}
	if hasMax && v > maxV {
		return fmt.Errorf("%v above max %v: %w", v, maxV, sentinel)
	}
	return nil
}

// configNumber reads a numeric config entry. A present but non-numeric
// entry is invalid config.
func configNumber(cfg models.FieldConfig, key string) (float64, bool, error) {
	raw, ok := cfg[key]
	if !ok {
		return 0, false, nil
	}
	v, isNum := asNumber(raw)
	if !isNum {
		return 0, false, fmt.Errorf("%q must be numeric: %w", key, domain.ErrInvalidFieldConfig)
	}
	return v, true, nil
}

// configOptions reads the dropdown options list. Absent or empty fails
// DropdownOptionsMissing; non-string entries are invalid config.
func configOptions(cfg models.FieldConfig) ([]string, error) {
	raw, ok := cfg["options"]
	if !ok {
		return nil, domain.ErrDropdownOptionsMissing
	}

	var out []string
	switch vs := raw.(type) {
	case []string:
		out = vs
	case []any:
		for _, v := range vs {
			s, isStr := v.(string)
			if !isStr {
				return nil, fmt.Errorf("options must be strings: %w", domain.ErrInvalidFieldConfig)
			}
			out = append(out, s)
		}
	default:
		return nil, fmt.Errorf("options must be a list: %w", domain.ErrInvalidFieldConfig)
	}

	if len(out) == 0 {
		return nil, domain.ErrDropdownOptionsMissing
	}
	return out, nil
}

// asNumber normalizes the numeric shapes a JSON body or a stored JSONB
// column can produce.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

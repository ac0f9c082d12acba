// Package fieldtypes validates field configuration and field values
// against the closed variant set of field kinds. The per-type rules
// that are pure data - which configuration keys each type accepts -
// live in an embedded YAML file; the value/range semantics live in the
// rule engine.
package fieldtypes

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"taskhive/internal/domain"
	"taskhive/internal/domain/models"
)

//go:embed config/types.yaml
var configFiles embed.FS

// Registry holds the per-type configuration key allow-lists.
type Registry struct {
	types map[models.FieldType]typeSpec
}

type typeSpec struct {
	ConfigKeys []string `yaml:"config_keys"`
}

type registryFile struct {
	Types map[string]typeSpec `yaml:"types"`
}

// NewRegistry loads the embedded type declarations. Every member of the
// closed variant set must be declared; a missing one is a build-time
// mistake surfaced at startup.
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/types.yaml")
	if err != nil {
		return nil, fmt.Errorf("read field type config: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal field type config: %w", err)
	}

	r := &Registry{types: make(map[models.FieldType]typeSpec, len(file.Types))}
	for name, spec := range file.Types {
		ft, err := models.ParseFieldType(name)
		if err != nil {
			return nil, fmt.Errorf("field type config declares %q: %w", name, err)
		}
		r.types[ft] = spec
	}

	for _, ft := range []models.FieldType{
		models.FieldText, models.FieldNumber, models.FieldDropdown,
		models.FieldDate, models.FieldCheckbox, models.FieldEmail,
	} {
		if _, ok := r.types[ft]; !ok {
			return nil, fmt.Errorf("field type config missing declaration for %q", ft)
		}
	}

	return r, nil
}

// ConfigKeys returns the configuration keys the type accepts.
func (r *Registry) ConfigKeys(ft models.FieldType) ([]string, error) {
	spec, ok := r.types[ft]
	if !ok {
		return nil, fmt.Errorf("field type %q: %w", ft, domain.ErrUnexpectedFieldType)
	}
	return spec.ConfigKeys, nil
}

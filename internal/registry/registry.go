// Package registry provides the component schema registry: the static,
// data-driven catalog of component types the visual editor knows how to
// render as typed property panels.
//
// Schemas are loaded once at process start from the embedded catalog and are
// immutable afterwards. Unknown component types are legal: a component whose
// type has no schema is still stored and re-serialized verbatim, the editor
// just falls back to an unstructured key/value listing for it.
package registry

import (
	_ "embed"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/mailframe/mailframe/internal/types"
)

//go:embed schemas.yaml
var catalogYAML []byte

// SchemaRegistry holds the loaded component schemas, looked up by type name.
type SchemaRegistry struct {
	schemas map[string]*types.ComponentSchema
	order   []string
}

// NewSchemaRegistry loads the embedded catalog. The catalog is a build-time
// artifact, so a malformed catalog is a programming error, not a runtime
// condition.
func NewSchemaRegistry() (*SchemaRegistry, error) {
	return loadCatalog(catalogYAML)
}

func loadCatalog(raw []byte) (*SchemaRegistry, error) {
	var catalog struct {
		Components []*types.ComponentSchema `yaml:"components"`
	}
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("parsing schema catalog: %w", err)
	}

	titler := cases.Title(language.English)
	r := &SchemaRegistry{schemas: make(map[string]*types.ComponentSchema)}
	for _, schema := range catalog.Components {
		if schema.Name == "" {
			return nil, fmt.Errorf("schema catalog entry missing name")
		}
		if _, exists := r.schemas[schema.Name]; exists {
			return nil, fmt.Errorf("duplicate schema %q in catalog", schema.Name)
		}
		if schema.Label == "" {
			schema.Label = titler.String(schema.Name)
		}
		for i := range schema.Props {
			if schema.Props[i].Label == "" {
				schema.Props[i].Label = titler.String(schema.Props[i].Key)
			}
		}
		r.schemas[schema.Name] = schema
		r.order = append(r.order, schema.Name)
	}
	return r, nil
}

// Lookup retrieves the schema for a component type. The second return is
// false for unknown types.
func (r *SchemaRegistry) Lookup(componentType string) (*types.ComponentSchema, bool) {
	schema, ok := r.schemas[componentType]
	return schema, ok
}

// All returns every schema in catalog order.
func (r *SchemaRegistry) All() []*types.ComponentSchema {
	out := make([]*types.ComponentSchema, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.schemas[name])
	}
	return out
}

// Count returns the number of registered schemas.
func (r *SchemaRegistry) Count() int {
	return len(r.schemas)
}

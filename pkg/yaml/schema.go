package yaml

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaGenerator reflects a JSON schema from a Go value.
// Uses [github.com/invopop/jsonschema].
type SchemaGenerator struct {
	v    any
	base string
	dirs []string
}

// NewSchemaGenerator creates a [SchemaGenerator] for v. Doc comments in dirs,
// given relative to the module root base, become schema descriptions.
func NewSchemaGenerator(v any, base string, dirs ...string) *SchemaGenerator {
	return &SchemaGenerator{v: v, base: base, dirs: dirs}
}

// Generate returns the indented JSON schema.
func (g *SchemaGenerator) Generate() ([]byte, error) {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
	}

	for _, dir := range g.dirs {
		err := r.AddGoComments(g.base, dir)
		if err != nil {
			return nil, fmt.Errorf("add comments from %s: %w", dir, err)
		}
	}

	b, err := json.MarshalIndent(r.Reflect(g.v), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return append(b, '\n'), nil
}

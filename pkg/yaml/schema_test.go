package yaml_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/gitprof/pkg/yaml"
)

type schemaDoc struct {
	Name    string   `json:"name" jsonschema:"title=Name,minLength=1"`
	Repos   []string `json:"repos,omitempty"`
	Enabled bool     `json:"enabled,omitempty"`
}

func TestSchemaGenerator_Generate(t *testing.T) {
	t.Parallel()

	b, err := yaml.NewSchemaGenerator(&schemaDoc{}, "github.com/macropower/gitprof").Generate()
	require.NoError(t, err)

	v, err := yaml.NewValidator("generated", b)
	require.NoError(t, err)

	require.NoError(t, v.Validate(map[string]any{"name": "work", "repos": []any{"a"}}))

	err = v.Validate(map[string]any{"name": ""})
	var yamlErr *yaml.Error
	require.ErrorAs(t, err, &yamlErr)
	assert.Equal(t, "$.name", yamlErr.Path.String())

	err = v.Validate(map[string]any{"name": "work", "unknown": true})
	require.Error(t, err)

	err = v.Validate(map[string]any{"repos": []any{}})
	require.Error(t, err)
}

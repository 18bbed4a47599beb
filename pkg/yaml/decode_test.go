package yaml_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/gitprof/pkg/yaml"
)

type document struct {
	Name  string   `json:"name"`
	Repos []string `json:"repos,omitempty"`
	Size  int      `json:"size,omitempty"`
}

func TestDecoder_Decode(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input   string
		want    document
		wantErr bool
	}{
		"valid": {
			input: "name: work\nrepos: [\"git@github.com:company/*\"]\nsize: 3\n",
			want: document{
				Name:  "work",
				Repos: []string{"git@github.com:company/*"},
				Size:  3,
			},
		},
		"duplicate keys": {
			input: "name: a\nname: b\n",
			want:  document{Name: "b"},
		},
		"type error": {
			input:   "name: work\nsize: many\n",
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var got document

			err := yaml.NewDecoder(strings.NewReader(tc.input)).Decode(&got)
			if tc.wantErr {
				var yamlErr *yaml.Error
				require.ErrorAs(t, err, &yamlErr)
				assert.NotNil(t, yamlErr.Token)
				assert.Contains(t, err.Error(), "[2:")

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEncoder_Encode(t *testing.T) {
	t.Parallel()

	doc := document{Name: "work", Repos: []string{"a", "b"}}

	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	require.NoError(t, enc.Encode(doc))
	require.NoError(t, enc.Close())

	assert.Equal(t, "name: work\nrepos:\n  - a\n  - b\n", buf.String())

	b, err := yaml.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, buf.String(), string(b))

	var got document
	require.NoError(t, yaml.NewDecoder(bytes.NewReader(b)).Decode(&got))
	assert.Equal(t, doc, got)
}

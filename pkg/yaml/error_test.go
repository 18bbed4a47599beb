package yaml_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	goyaml "github.com/goccy/go-yaml"

	"github.com/macropower/gitprof/pkg/yaml"
)

func mustPath(t *testing.T, s string) *goyaml.Path {
	t.Helper()

	p, err := goyaml.PathString(s)
	require.NoError(t, err)

	return p
}

func TestError_Error(t *testing.T) {
	t.Parallel()

	source := []byte("detection:\n  minConfidence: 2\n  cache:\n    size: -1\n")

	tcs := map[string]struct {
		err      *yaml.Error
		want     string
		contains []string
	}{
		"nil error": {
			err:  &yaml.Error{},
			want: "",
		},
		"no location": {
			err:  yaml.NewError(errors.New("value is required")),
			want: "value is required",
		},
		"path without source": {
			err: yaml.NewError(errors.New("value is required"),
				yaml.WithPath(mustPath(t, "$.field.subfield"))),
			want: "error at $.field.subfield: value is required",
		},
		"path missing from source": {
			err: yaml.NewError(errors.New("value is required"),
				yaml.WithPath(mustPath(t, "$.matching.algorithm")),
				yaml.WithSource(source)),
			want: "error at $.matching.algorithm: value is required",
		},
		"annotated key": {
			err: yaml.NewError(errors.New("out of range"),
				yaml.WithPath(mustPath(t, "$.detection.minConfidence")),
				yaml.WithSource(source)),
			contains: []string{"[2:3] out of range", "minConfidence"},
		},
		"annotated nested key": {
			err: yaml.NewError(errors.New("must be positive"),
				yaml.WithPath(mustPath(t, "$.detection.cache.size")),
				yaml.WithSource(source)),
			contains: []string{"[4:5] must be positive", "size"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := tc.err.Error()
			if tc.contains == nil {
				assert.Equal(t, tc.want, got)
				return
			}

			for _, s := range tc.contains {
				assert.Contains(t, got, s)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("sentinel")
	err := yaml.NewError(sentinel, yaml.WithPath(mustPath(t, "$.a")))

	require.ErrorIs(t, err, sentinel)
}

func TestErrorWrapper_Wrap(t *testing.T) {
	t.Parallel()

	source := []byte("git:\n  command: \"\"\n")
	ew := yaml.NewErrorWrapper(yaml.WithSource(source))

	t.Run("nil", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, ew.Wrap(nil))
	})

	t.Run("other error", func(t *testing.T) {
		t.Parallel()

		plain := errors.New("plain")
		assert.Equal(t, plain, ew.Wrap(plain))
	})

	t.Run("yaml error", func(t *testing.T) {
		t.Parallel()

		err := ew.Wrap(yaml.NewError(errors.New("empty command"),
			yaml.WithPath(mustPath(t, "$.git.command"))))

		var yamlErr *yaml.Error
		require.ErrorAs(t, err, &yamlErr)
		assert.Equal(t, source, yamlErr.Source)
		assert.Contains(t, err.Error(), "[2:3] empty command")
	})
}

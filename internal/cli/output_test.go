package cli_test

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/gitprof/internal/cli"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input string
		want  cli.Format
		err   error
	}{
		"empty is text": {input: "", want: cli.FormatText},
		"json":          {input: "json", want: cli.FormatJSON},
		"mixed case":    {input: " YAML ", want: cli.FormatYAML},
		"unknown":       {input: "xml", err: cli.ErrUnknownFormat},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := cli.ParseFormat(tc.input)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPrinter(t *testing.T) {
	t.Parallel()

	type item struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	v := item{Name: "work", Count: 2}
	text := func(w io.Writer) error {
		_, err := io.WriteString(w, "work (2)\n")

		return err
	}

	tcs := map[string]struct {
		format string
		want   string
	}{
		"text": {format: "text", want: "work (2)\n"},
		"json": {format: "json", want: "{\n  \"name\": \"work\",\n  \"count\": 2\n}\n"},
		"yaml": {format: "yaml", want: "name: work\ncount: 2\n"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			p, err := cli.NewPrinter(&buf, tc.format)
			require.NoError(t, err)
			require.NoError(t, p.Print(v, text))
			assert.Equal(t, tc.want, buf.String())
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()

		_, err := cli.NewPrinter(io.Discard, "toml")
		require.ErrorIs(t, err, cli.ErrUnknownFormat)
	})

	t.Run("json is valid", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		p, err := cli.NewPrinter(&buf, "json")
		require.NoError(t, err)
		require.NoError(t, p.Print([]item{v, v}, text))

		var got []item
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Len(t, got, 2)
	})
}

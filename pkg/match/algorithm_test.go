package match_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/gitprof/pkg/match"
)

var allAlgorithms = []match.Algorithm{
	match.Levenshtein{},
	match.Substring{},
	match.Fuzzy{},
}

func TestAlgorithms_EdgeCases(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		query  string
		target string
		want   float64
	}{
		"both empty":       {query: "", target: "", want: 1.0},
		"empty query":      {query: "", target: "work", want: 0.0},
		"empty target":     {query: "work", target: "", want: 0.0},
		"exact":            {query: "work", target: "work", want: 1.0},
		"case insensitive": {query: "WORK", target: "Work", want: 1.0},
		"unicode exact":    {query: "\u00c9COLE", target: "\u00e9cole", want: 1.0},
		"normalized forms": {query: "cafe\u0301", target: "caf\u00e9", want: 1.0},
	}

	for name, tc := range tcs {
		for _, a := range allAlgorithms {
			t.Run(name+"/"+a.Name(), func(t *testing.T) {
				t.Parallel()

				assert.InDelta(t, tc.want, a.Score(tc.query, tc.target), 1e-9)
			})
		}
	}
}

func TestLevenshtein_Score(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		query  string
		target string
		want   float64
	}{
		"one substitution":     {query: "test", target: "text", want: 0.75},
		"kitten sitting":       {query: "kitten", target: "sitting", want: 4.0 / 7.0},
		"code points":          {query: "caf\u00e9", target: "cafe", want: 0.75},
		"completely different": {query: "abc", target: "xyz", want: 0.0},
		"insertion":            {query: "work", target: "works", want: 0.8},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.InDelta(t, tc.want, match.Levenshtein{}.Score(tc.query, tc.target), 1e-4)
		})
	}
}

func TestSubstring_Score(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		query  string
		target string
		want   float64
	}{
		"prefix":            {query: "work", target: "workspace", want: 0.6 + 0.4*4.0/9.0},
		"suffix":            {query: "space", target: "workspace", want: 0.6*(1-4.0/9.0) + 0.4*5.0/9.0},
		"case insensitive":  {query: "WORK", target: "workspace", want: 0.6 + 0.4*4.0/9.0},
		"sequence fallback": {query: "wrk", target: "work", want: 0.7},
		"partial sequence":  {query: "ax", target: "abc", want: 0.35},
		"no characters":     {query: "xyz", target: "abc", want: 0.0},
		"position in runes": {query: "\u00fc", target: "m\u00fcller", want: 0.6*(1-1.0/6.0) + 0.4*1.0/6.0},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.InDelta(t, tc.want, match.Substring{}.Score(tc.query, tc.target), 1e-4)
		})
	}
}

func TestSubstring_WorkWorkspace(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.7778, match.Substring{}.Score("work", "workspace"), 1e-4)
}

func TestFuzzy_Score(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		query  string
		target string
		want   float64
	}{
		"substring delegates": {query: "work", target: "workspace", want: 0.6 + 0.4*4.0/9.0},
		"skipped characters":  {query: "wrk", target: "work", want: 1.0},
		"missing character":   {query: "xwk", target: "work", want: 0.475},
		"short query":         {query: "wk", target: "work", want: 0.8},
		"long query":          {query: "workzz", target: "work", want: 0.1875},
		"no match":            {query: "xyz", target: "abc", want: 0.0},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.InDelta(t, tc.want, match.Fuzzy{}.Score(tc.query, tc.target), 1e-4)
		})
	}
}

func TestFuzzy_WordBoundaryBonus(t *testing.T) {
	t.Parallel()

	// "d" starts a word in "jane doe" but not in "jandoeee".
	boundary := match.Fuzzy{}.Score("jdx", "jane doe")
	inner := match.Fuzzy{}.Score("jdx", "jandoeee")
	assert.Greater(t, boundary, inner)
}

func TestFuzzy_NumbersAreWordCharacters(t *testing.T) {
	t.Parallel()

	// "²" and "Ⅻ" continue a word like a digit would; "-" ends it.
	separated := match.Fuzzy{}.Score("jdx", "jan-doe")
	for _, target := range []string{"jan²doe", "janⅫdoe", "jan7doe"} {
		assert.Greater(t, separated, match.Fuzzy{}.Score("jdx", target), target)
	}
}

func TestAlgorithms_Bounds(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		{"personal", "personal@example.com"},
		{"xyzzyx", "work"},
		{"a", "abc"},
		{"abcdefghijklmnop", "a"},
		{"zz", "z"},
		{"git@github.com:company/*", "git@github.com:company/project.git"},
		{"日本", "日本語のプロジェクト"},
		{"   ", "work"},
		{"w-o-r-k", "work"},
	}

	for _, a := range allAlgorithms {
		for _, p := range pairs {
			got := a.Score(p[0], p[1])
			assert.GreaterOrEqual(t, got, 0.0, "%s(%q, %q)", a.Name(), p[0], p[1])
			assert.LessOrEqual(t, got, 1.0, "%s(%q, %q)", a.Name(), p[0], p[1])
			assert.Equal(t, got, a.Score(p[0], p[1]), "%s is not deterministic", a.Name())
		}
	}
}

func TestByName(t *testing.T) {
	t.Parallel()

	for _, name := range match.AllAlgorithms {
		a, err := match.ByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, a.Name())
	}

	a, err := match.ByName(" Fuzzy ")
	require.NoError(t, err)
	assert.Equal(t, match.AlgorithmFuzzy, a.Name())

	_, err = match.ByName("soundex")
	require.ErrorIs(t, err, match.ErrUnknownAlgorithm)
}

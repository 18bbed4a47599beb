package glob_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/gitprof/pkg/glob"
)

func TestTranslate(t *testing.T) {
	t.Parallel()

	tcs := map[string]string{
		"":                         "^$",
		"*":                        "^.*$",
		"a?c":                      "^a.c$",
		"git@github.com:company/*": `^git@github\.com:company/.*$`,
		"(x)+[y]":                  `^\(x\)\+\[y\]$`,
	}

	for in, want := range tcs {
		t.Run(in, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, want, glob.Translate(in))
		})
	}
}

func TestMatch(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		pattern string
		s       string
		want    bool
	}{
		"literal":             {pattern: "work", s: "work", want: true},
		"anchored start":      {pattern: "work", s: "my-work", want: false},
		"anchored end":        {pattern: "work", s: "works", want: false},
		"star":                {pattern: "git@github.com:company/*", s: "git@github.com:company/project.git", want: true},
		"star crosses slash":  {pattern: "*/src/*", s: "/home/me/src/a/b", want: true},
		"star matches empty":  {pattern: "work*", s: "work", want: true},
		"question":            {pattern: "laptop-?", s: "laptop-3", want: true},
		"question needs one":  {pattern: "laptop-?", s: "laptop-", want: false},
		"dot is literal":      {pattern: "a.c", s: "abc", want: false},
		"dot matches dot":     {pattern: "a.c", s: "a.c", want: true},
		"metacharacters":      {pattern: "repo(1)", s: "repo(1)", want: true},
		"question is a rune":  {pattern: "caf?", s: "café", want: true},
		"empty pattern":       {pattern: "", s: "", want: true},
		"empty pattern value": {pattern: "", s: "x", want: false},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, glob.Match(tc.pattern, tc.s))
		})
	}
}

func TestHasWildcard(t *testing.T) {
	t.Parallel()

	assert.True(t, glob.HasWildcard("a*"))
	assert.True(t, glob.HasWildcard("a?"))
	assert.False(t, glob.HasWildcard("a.b"))
}

func TestCache_Concurrent(t *testing.T) {
	t.Parallel()

	var (
		c  glob.Cache
		wg sync.WaitGroup
	)

	for range 50 {
		wg.Go(func() {
			assert.True(t, c.Match("*.git", "repo.git"))
		})
	}

	wg.Wait()

	p := c.Get("*.git")
	assert.Same(t, p, c.Get("*.git"))

	re, err := p.Get()
	require.NoError(t, err)
	assert.Equal(t, `^.*\.git$`, re.String())
	assert.Equal(t, "*.git", p.String())
}

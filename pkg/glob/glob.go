// Package glob matches strings against simple wildcard patterns.
//
// A pattern matches the whole string. "*" matches any run of characters,
// including path separators, and "?" matches exactly one character. Every
// other character, including ".", matches itself.
package glob

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Translate returns the anchored regular expression for pattern.
func Translate(pattern string) string {
	var sb strings.Builder

	sb.WriteString("^")

	for _, r := range pattern {
		switch r {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}

	sb.WriteString("$")

	return sb.String()
}

// HasWildcard reports whether pattern contains "*" or "?".
func HasWildcard(pattern string) bool {
	return strings.ContainsAny(pattern, "*?")
}

// Pattern lazily compiles a wildcard pattern. It is compiled at most once,
// even when accessed concurrently.
type Pattern struct {
	err     error
	regex   *regexp.Regexp
	pattern string
	once    sync.Once
}

// NewPattern creates a new [Pattern] that will be compiled when first used.
func NewPattern(pattern string) *Pattern {
	return &Pattern{pattern: pattern}
}

// Get returns the compiled regular expression, compiling it on the first
// call. Subsequent calls return the cached result.
func (p *Pattern) Get() (*regexp.Regexp, error) {
	p.once.Do(func() {
		p.regex, p.err = regexp.Compile(Translate(p.pattern))
		if p.err != nil {
			p.err = fmt.Errorf("compile pattern %q: %w", p.pattern, p.err)
		}
	})

	return p.regex, p.err
}

// Match reports whether s matches the pattern.
func (p *Pattern) Match(s string) bool {
	re, err := p.Get()
	if err != nil {
		return false
	}

	return re.MatchString(s)
}

func (p *Pattern) String() string {
	return p.pattern
}

// Cache holds compiled patterns keyed by their source text.
// It is safe for concurrent use.
type Cache struct {
	patterns sync.Map
}

// Get returns the [Pattern] for pattern, creating it if needed.
func (c *Cache) Get(pattern string) *Pattern {
	if p, ok := c.patterns.Load(pattern); ok {
		return p.(*Pattern) //nolint:forcetypeassert // Only *Pattern is stored.
	}

	p, _ := c.patterns.LoadOrStore(pattern, NewPattern(pattern))

	return p.(*Pattern) //nolint:forcetypeassert // Only *Pattern is stored.
}

// Match reports whether s matches pattern.
func (c *Cache) Match(pattern, s string) bool {
	return c.Get(pattern).Match(s)
}

var defaultCache Cache

// Match reports whether s matches pattern, using a process-wide cache of
// compiled patterns.
func Match(pattern, s string) bool {
	return defaultCache.Match(pattern, s)
}

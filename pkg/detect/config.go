package detect

import (
	"time"

	"github.com/macropower/gitprof/pkg/expr"
	"github.com/macropower/gitprof/pkg/rule"
)

// Config controls which rules run and which results are kept.
type Config struct {
	// MinConfidence is the minimum confidence for a profile to be included.
	MinConfidence float64
	// CacheSize is the maximum number of cached paths.
	CacheSize int
	// CacheTTL is how long cached results stay valid.
	CacheTTL time.Duration

	EnableCache bool

	RemoteURL     bool
	DirectoryPath bool
	IncludeIfDir  bool
	Hostname      bool
	GitConfig     bool
	Expression    bool
}

// DefaultConfig returns the default [Config]. All rules are enabled and the
// cache is disabled.
func DefaultConfig() Config {
	return Config{
		MinConfidence: 0.5,
		EnableCache:   false,
		CacheSize:     128,
		CacheTTL:      30 * time.Second,
		RemoteURL:     true,
		DirectoryPath: true,
		IncludeIfDir:  true,
		Hostname:      true,
		GitConfig:     true,
		Expression:    true,
	}
}

// Rules returns the enabled rules. The expression rule, when enabled,
// evaluates in env.
func (c Config) Rules(env *expr.Environment) []rule.Rule {
	enabled := map[string]bool{
		rule.NameRemoteURL:     c.RemoteURL,
		rule.NameDirectoryPath: c.DirectoryPath,
		rule.NameIncludeIfDir:  c.IncludeIfDir,
		rule.NameHostname:      c.Hostname,
		rule.NameGitConfig:     c.GitConfig,
		rule.NameExpression:    c.Expression && env != nil,
	}

	rules := []rule.Rule{}
	for _, r := range rule.All(env) {
		if enabled[r.Name()] {
			rules = append(rules, r)
		}
	}

	return rules
}

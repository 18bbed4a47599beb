package config

import (
	"time"

	"github.com/macropower/gitprof/pkg/detect"
	"github.com/macropower/gitprof/pkg/match"
)

// GitConfig configures the git collaborator.
type GitConfig struct {
	// Command is the git command line. It is split into words like a shell
	// would, so it may carry extra arguments.
	Command string `json:"command,omitempty" jsonschema:"title=Command,default=git"`
}

// EnsureDefaults initializes unset fields to their default values.
func (g *GitConfig) EnsureDefaults() {
	if g.Command == "" {
		g.Command = "git"
	}
}

// DetectionConfig configures the auto detector.
type DetectionConfig struct {
	// MinConfidence is the minimum confidence for a profile to be detected.
	MinConfidence *float64 `json:"minConfidence,omitempty" jsonschema:"title=Minimum Confidence,minimum=0,maximum=1"`
	// Cache configures caching of detection results per directory.
	Cache *CacheConfig `json:"cache,omitempty" jsonschema:"title=Cache"`
	// Rules enables or disables individual detection rules.
	Rules *RulesConfig `json:"rules,omitempty" jsonschema:"title=Rules"`
}

// EnsureDefaults initializes nil fields to their default values.
func (d *DetectionConfig) EnsureDefaults() {
	def := detect.DefaultConfig()

	if d.MinConfidence == nil {
		d.MinConfidence = ptr(def.MinConfidence)
	}

	if d.Cache == nil {
		d.Cache = &CacheConfig{}
	}

	d.Cache.EnsureDefaults()

	if d.Rules == nil {
		d.Rules = &RulesConfig{}
	}

	d.Rules.EnsureDefaults()
}

// CacheConfig configures the detection result cache.
type CacheConfig struct {
	// Size is the maximum number of cached directories.
	Size *int `json:"size,omitempty" jsonschema:"title=Size,minimum=1"`
	// TTL is how long a cached result stays valid, as a Go duration string.
	TTL string `json:"ttl,omitempty" jsonschema:"title=TTL,example=30s"`
	// Enabled turns the cache on.
	Enabled bool `json:"enabled,omitempty" jsonschema:"title=Enabled"`
}

// EnsureDefaults initializes unset fields to their default values.
func (c *CacheConfig) EnsureDefaults() {
	def := detect.DefaultConfig()

	if c.Size == nil {
		c.Size = ptr(def.CacheSize)
	}

	if c.TTL == "" {
		c.TTL = def.CacheTTL.String()
	}
}

// RulesConfig enables or disables detection rules. Unset rules are enabled.
type RulesConfig struct {
	RemoteURL     *bool `json:"remoteUrl,omitempty" jsonschema:"title=Remote URL"`
	DirectoryPath *bool `json:"directoryPath,omitempty" jsonschema:"title=Directory Path"`
	IncludeIfDir  *bool `json:"includeIfDir,omitempty" jsonschema:"title=IncludeIf Directory"`
	Hostname      *bool `json:"hostname,omitempty" jsonschema:"title=Hostname"`
	GitConfig     *bool `json:"gitConfig,omitempty" jsonschema:"title=Git Config"`
	Expression    *bool `json:"expression,omitempty" jsonschema:"title=Expression"`
}

// EnsureDefaults enables every unset rule.
func (r *RulesConfig) EnsureDefaults() {
	for _, b := range []**bool{
		&r.RemoteURL, &r.DirectoryPath, &r.IncludeIfDir,
		&r.Hostname, &r.GitConfig, &r.Expression,
	} {
		if *b == nil {
			*b = ptr(true)
		}
	}
}

// MatchingConfig configures the fuzzy matcher.
type MatchingConfig struct {
	// MinScore is the minimum score for a profile to be listed.
	MinScore *float64 `json:"minScore,omitempty" jsonschema:"title=Minimum Score,minimum=0,maximum=1"`
	// BestMatchThreshold is the minimum score for a best match. It should be
	// at least MinScore.
	BestMatchThreshold *float64 `json:"bestMatchThreshold,omitempty" jsonschema:"title=Best Match Threshold,minimum=0,maximum=1"`
	// MaxResults limits the number of listed profiles. Zero is unlimited.
	MaxResults *int `json:"maxResults,omitempty" jsonschema:"title=Maximum Results,minimum=0"`
	// Fields enables or disables the profile fields that are compared.
	Fields *FieldsConfig `json:"fields,omitempty" jsonschema:"title=Fields"`
	// Algorithm is the primary matching algorithm.
	Algorithm string `json:"algorithm,omitempty" jsonschema:"title=Algorithm,enum=fuzzy,enum=substring,enum=levenshtein"`
	// Fallbacks are tried in order when the primary algorithm scores zero.
	Fallbacks []string `json:"fallbacks,omitempty" jsonschema:"title=Fallback Algorithms"`
}

// EnsureDefaults initializes unset fields to their default values. An
// explicitly empty Fallbacks list disables fallbacks.
func (m *MatchingConfig) EnsureDefaults() {
	def := match.DefaultConfig()

	if m.Algorithm == "" {
		m.Algorithm = match.AlgorithmFuzzy
	}

	if m.Fallbacks == nil {
		m.Fallbacks = []string{match.AlgorithmSubstring, match.AlgorithmLevenshtein}
	}

	if m.MinScore == nil {
		m.MinScore = ptr(def.MinScore)
	}

	if m.BestMatchThreshold == nil {
		m.BestMatchThreshold = ptr(def.BestMatchThreshold)
	}

	if m.MaxResults == nil {
		m.MaxResults = ptr(def.MaxResults)
	}

	if m.Fields == nil {
		m.Fields = &FieldsConfig{}
	}

	m.Fields.EnsureDefaults()
}

// FieldsConfig enables or disables matched profile fields. Unset fields are
// enabled.
type FieldsConfig struct {
	Name        *bool `json:"name,omitempty" jsonschema:"title=Name"`
	Email       *bool `json:"email,omitempty" jsonschema:"title=Email"`
	UserName    *bool `json:"userName,omitempty" jsonschema:"title=User Name"`
	VaultName   *bool `json:"vaultName,omitempty" jsonschema:"title=Vault Name"`
	SSHKeyTitle *bool `json:"sshKeyTitle,omitempty" jsonschema:"title=SSH Key Title"`
}

// EnsureDefaults enables every unset field.
func (f *FieldsConfig) EnsureDefaults() {
	for _, b := range []**bool{&f.Name, &f.Email, &f.UserName, &f.VaultName, &f.SSHKeyTitle} {
		if *b == nil {
			*b = ptr(true)
		}
	}
}

func ptr[T any](v T) *T {
	return &v
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}

	return *p
}

func parseTTL(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}

	return d
}

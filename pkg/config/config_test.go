package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/gitprof/api/v1beta1"
	"github.com/macropower/gitprof/pkg/config"
	"github.com/macropower/gitprof/pkg/detect"
	"github.com/macropower/gitprof/pkg/execs"
	"github.com/macropower/gitprof/pkg/match"
	"github.com/macropower/gitprof/pkg/profile"
	"github.com/macropower/gitprof/pkg/yaml"
)

func ptr[T any](v T) *T {
	return &v
}

func TestNew(t *testing.T) {
	t.Parallel()

	c := config.New()

	assert.Equal(t, v1beta1.APIVersion, c.APIVersion)
	assert.Equal(t, config.Kind, c.Kind)
	assert.Equal(t, "git", c.Git.Command)
	assert.Equal(t, detect.DefaultConfig(), c.DetectConfig())
	assert.Equal(t, match.DefaultConfig(), c.MatchConfig())
	assert.Equal(t, []string{match.AlgorithmSubstring, match.AlgorithmLevenshtein}, c.Matching.Fallbacks)
	require.NoError(t, c.Validate())
}

func TestConfig_EnsureDefaults(t *testing.T) {
	t.Parallel()

	c := &config.Config{
		Detection: &config.DetectionConfig{
			MinConfidence: ptr(0.8),
			Rules:         &config.RulesConfig{Hostname: ptr(false)},
		},
		Matching: &config.MatchingConfig{Fallbacks: []string{}},
	}
	c.EnsureDefaults()

	assert.InDelta(t, 0.8, *c.Detection.MinConfidence, 1e-9)
	assert.False(t, *c.Detection.Rules.Hostname)
	assert.True(t, *c.Detection.Rules.RemoteURL)
	assert.Equal(t, "30s", c.Detection.Cache.TTL)
	assert.Equal(t, 128, *c.Detection.Cache.Size)
	assert.Empty(t, c.Matching.Fallbacks)
	assert.Equal(t, match.AlgorithmFuzzy, c.Matching.Algorithm)
	assert.True(t, *c.Matching.Fields.SSHKeyTitle)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	work := func() *profile.Profile {
		return &profile.Profile{Name: "work", GitUserEmail: "me@company.com"}
	}

	tcs := map[string]struct {
		modify   func(c *config.Config)
		wantPath string
	}{
		"defaults": {
			modify: func(*config.Config) {},
		},
		"valid profiles": {
			modify: func(c *config.Config) {
				p := work()
				p.When = `remotes.exists(r, r.contains("company"))`
				c.Profiles = []*profile.Profile{p, {Name: "personal"}}
			},
		},
		"wrong kind": {
			modify: func(c *config.Config) {
				c.Kind = "Policy"
			},
			wantPath: "$",
		},
		"empty profile": {
			modify: func(c *config.Config) {
				c.Profiles = []*profile.Profile{work(), nil}
			},
			wantPath: "$.profiles[1]",
		},
		"invalid profile": {
			modify: func(c *config.Config) {
				c.Profiles = []*profile.Profile{{Name: " "}}
			},
			wantPath: "$.profiles[0]",
		},
		"duplicate names": {
			modify: func(c *config.Config) {
				c.Profiles = []*profile.Profile{work(), work()}
			},
			wantPath: "$.profiles[1].name",
		},
		"expression does not compile": {
			modify: func(c *config.Config) {
				p := work()
				p.When = "dir ==="
				c.Profiles = []*profile.Profile{p}
			},
			wantPath: "$.profiles[0].when",
		},
		"expression is not boolean": {
			modify: func(c *config.Config) {
				p := work()
				p.When = "dir"
				c.Profiles = []*profile.Profile{p}
			},
			wantPath: "$.profiles[0].when",
		},
		"blank git command": {
			modify: func(c *config.Config) {
				c.Git.Command = "   "
			},
			wantPath: "$.git.command",
		},
		"min confidence out of range": {
			modify: func(c *config.Config) {
				c.Detection.MinConfidence = ptr(1.5)
			},
			wantPath: "$.detection.minConfidence",
		},
		"cache size": {
			modify: func(c *config.Config) {
				c.Detection.Cache.Size = ptr(0)
			},
			wantPath: "$.detection.cache.size",
		},
		"cache ttl": {
			modify: func(c *config.Config) {
				c.Detection.Cache.TTL = "soon"
			},
			wantPath: "$.detection.cache.ttl",
		},
		"negative cache ttl": {
			modify: func(c *config.Config) {
				c.Detection.Cache.TTL = "-1s"
			},
			wantPath: "$.detection.cache.ttl",
		},
		"unknown algorithm": {
			modify: func(c *config.Config) {
				c.Matching.Algorithm = "soundex"
			},
			wantPath: "$.matching.algorithm",
		},
		"unknown fallback": {
			modify: func(c *config.Config) {
				c.Matching.Fallbacks = []string{"substring", "soundex"}
			},
			wantPath: "$.matching.fallbacks[1]",
		},
		"min score out of range": {
			modify: func(c *config.Config) {
				c.Matching.MinScore = ptr(-0.1)
			},
			wantPath: "$.matching.minScore",
		},
		"best match threshold out of range": {
			modify: func(c *config.Config) {
				c.Matching.BestMatchThreshold = ptr(2.0)
			},
			wantPath: "$.matching.bestMatchThreshold",
		},
		"negative max results": {
			modify: func(c *config.Config) {
				c.Matching.MaxResults = ptr(-1)
			},
			wantPath: "$.matching.maxResults",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c := config.New()
			tc.modify(c)

			err := c.Validate()
			if tc.wantPath == "" {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, config.ErrInvalidConfig)

			var yamlErr *yaml.Error
			require.ErrorAs(t, err, &yamlErr)
			assert.Equal(t, tc.wantPath, yamlErr.Path.String())
		})
	}
}

func TestConfig_DetectConfig(t *testing.T) {
	t.Parallel()

	c := config.New()
	c.Detection.MinConfidence = ptr(0.7)
	c.Detection.Cache = &config.CacheConfig{Enabled: true, Size: ptr(5), TTL: "1m"}
	c.Detection.Rules.RemoteURL = ptr(false)
	c.Detection.Rules.Expression = ptr(false)

	want := detect.DefaultConfig()
	want.MinConfidence = 0.7
	want.EnableCache = true
	want.CacheSize = 5
	want.CacheTTL = time.Minute
	want.RemoteURL = false
	want.Expression = false

	assert.Equal(t, want, c.DetectConfig())

	assert.Equal(t, detect.DefaultConfig(), (&config.Config{}).DetectConfig())
}

func TestConfig_MatchConfig(t *testing.T) {
	t.Parallel()

	c := config.New()
	c.Matching.MinScore = ptr(0.1)
	c.Matching.MaxResults = ptr(0)
	c.Matching.Fields.Email = ptr(false)

	want := match.DefaultConfig()
	want.MinScore = 0.1
	want.MaxResults = 0
	want.MatchEmail = false

	assert.Equal(t, want, c.MatchConfig())
	assert.Equal(t, match.DefaultConfig(), (&config.Config{}).MatchConfig())
}

func TestConfig_Matcher(t *testing.T) {
	t.Parallel()

	profiles := []*profile.Profile{{Name: "work", GitUserEmail: "me@company.com"}}

	t.Run("levenshtein without fallbacks", func(t *testing.T) {
		t.Parallel()

		c := config.New()
		c.Matching.Algorithm = match.AlgorithmLevenshtein
		c.Matching.Fallbacks = []string{}

		m, err := c.Matcher()
		require.NoError(t, err)

		got, ok := m.FindBestMatch("wurk", profiles)
		require.True(t, ok)
		assert.Equal(t, match.AlgorithmLevenshtein, got.Algorithm)
		assert.InDelta(t, 0.75, got.Score, 1e-9)
	})

	t.Run("unknown primary", func(t *testing.T) {
		t.Parallel()

		c := config.New()
		c.Matching.Algorithm = "soundex"

		_, err := c.Matcher()
		require.ErrorIs(t, err, match.ErrUnknownAlgorithm)
	})

	t.Run("unknown fallback", func(t *testing.T) {
		t.Parallel()

		c := config.New()
		c.Matching.Fallbacks = []string{"soundex"}

		_, err := c.Matcher()
		require.ErrorIs(t, err, match.ErrUnknownAlgorithm)
	})
}

func TestConfig_GitReader(t *testing.T) {
	t.Parallel()

	c := config.New()
	c.Git.Command = `git -c "core.quotepath=off"`

	r, err := c.GitReader()
	require.NoError(t, err)
	assert.NotNil(t, r)

	c.Git.Command = `git "unterminated`

	_, err = c.GitReader()
	require.ErrorIs(t, err, execs.ErrParseCommand)
}

func TestConfig_MarshalYAML(t *testing.T) {
	t.Parallel()

	c := config.New()
	c.Profiles = []*profile.Profile{{
		Name:         "work",
		GitUserEmail: "me@company.com",
		Repos:        []string{"github.com/company/*"},
	}}

	b, err := c.MarshalYAML()
	require.NoError(t, err)
	assert.Contains(t, string(b), "apiVersion: "+v1beta1.APIVersion)

	got, err := config.NewLoaderFromBytes(b).Load()
	require.NoError(t, err)
	assert.Equal(t, c.DetectConfig(), got.DetectConfig())
	assert.Equal(t, c.MatchConfig(), got.MatchConfig())
	assert.Equal(t, c.Profiles, got.Profiles)
}

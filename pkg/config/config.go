package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/invopop/jsonschema"

	_ "embed"

	goyaml "github.com/goccy/go-yaml"

	"github.com/macropower/gitprof/api/v1beta1"
	"github.com/macropower/gitprof/pkg/detect"
	"github.com/macropower/gitprof/pkg/execs"
	"github.com/macropower/gitprof/pkg/expr"
	"github.com/macropower/gitprof/pkg/git"
	"github.com/macropower/gitprof/pkg/match"
	"github.com/macropower/gitprof/pkg/profile"
	"github.com/macropower/gitprof/pkg/yaml"
)

//go:generate go run ../../internal/schemagen -root ../.. -o config.v1beta1.json

const (
	// Kind is the kind of the configuration document.
	Kind = "Configuration"

	// SchemaFile is the file name of the JSON schema.
	SchemaFile = "config.v1beta1.json"

	schemaURL = "https://raw.githubusercontent.com/macropower/gitprof/refs/heads/main/pkg/config/" + SchemaFile
)

var (
	//go:embed config.yaml
	defaultConfigYAML []byte

	//go:embed config.v1beta1.json
	schemaJSON []byte

	// ErrInvalidConfig is returned when a configuration fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ValidKinds contains the valid kind values.
	ValidKinds = []string{Kind}

	// DefaultValidator validates configuration documents against the JSON schema.
	DefaultValidator = yaml.MustNewValidator(schemaURL, schemaJSON)

	_ v1beta1.Object = (*Config)(nil)
)

// Config is the gitprof configuration.
//
//nolint:recvcheck // Must satisfy the jsonschema interface.
type Config struct {
	// Git configures the git collaborator.
	Git *GitConfig `json:"git,omitempty" jsonschema:"title=Git"`
	// Detection configures automatic profile detection.
	Detection *DetectionConfig `json:"detection,omitempty" jsonschema:"title=Detection"`
	// Matching configures fuzzy profile matching.
	Matching *MatchingConfig `json:"matching,omitempty" jsonschema:"title=Matching"`
	// Profiles are the available git identity profiles.
	Profiles         []*profile.Profile `json:"profiles,omitempty" jsonschema:"title=Profiles"`
	v1beta1.TypeMeta `json:",inline"`
}

// New creates a new [Config] with default values and no profiles.
func New() *Config {
	c := &Config{
		TypeMeta: v1beta1.TypeMeta{
			APIVersion: v1beta1.APIVersion,
			Kind:       Kind,
		},
	}
	c.EnsureDefaults()

	return c
}

// EnsureDefaults initializes nil sections to their default values.
func (c *Config) EnsureDefaults() {
	if c.Git == nil {
		c.Git = &GitConfig{}
	}

	c.Git.EnsureDefaults()

	if c.Detection == nil {
		c.Detection = &DetectionConfig{}
	}

	c.Detection.EnsureDefaults()

	if c.Matching == nil {
		c.Matching = &MatchingConfig{}
	}

	c.Matching.EnsureDefaults()
}

// JSONSchemaExtend restricts apiVersion and kind to known values.
func (c Config) JSONSchemaExtend(jss *jsonschema.Schema) {
	v1beta1.ExtendSchemaWithEnums(jss, v1beta1.ValidAPIVersions, ValidKinds)
}

// Validate checks the constraints the JSON schema cannot express. Errors are
// [*yaml.Error]s pointing at the offending field, wrapping [ErrInvalidConfig].
func (c *Config) Validate() error {
	err := c.TypeMeta.Check(ValidKinds...)
	if err != nil {
		return invalid(err, path())
	}

	err = c.validateProfiles()
	if err != nil {
		return err
	}

	if c.Git != nil && c.Git.Command != "" {
		_, err = execs.ParseCommand(c.Git.Command)
		if err != nil {
			return invalid(err, path("git", "command"))
		}
	}

	if c.Detection != nil {
		err = c.validateDetection()
		if err != nil {
			return err
		}
	}

	if c.Matching != nil {
		err = c.validateMatching()
		if err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) validateProfiles() error {
	env, err := expr.NewContextEnvironment()
	if err != nil {
		return fmt.Errorf("create expression environment: %w", err)
	}

	seen := make(map[string]int, len(c.Profiles))

	for i, p := range c.Profiles {
		if p == nil {
			return invalid(errors.New("profile is empty"), profilePath(i, ""))
		}

		err := p.Validate()
		if err != nil {
			return invalid(err, profilePath(i, ""))
		}

		if j, ok := seen[p.Name]; ok {
			return invalid(fmt.Errorf("duplicate profile name %q, first defined at index %d", p.Name, j),
				profilePath(i, "name"))
		}

		seen[p.Name] = i

		if p.When != "" {
			_, err := env.Compile(p.When)
			if err != nil {
				return invalid(err, profilePath(i, "when"))
			}
		}
	}

	return nil
}

func (c *Config) validateDetection() error {
	d := c.Detection

	if d.MinConfidence != nil {
		err := checkUnit(*d.MinConfidence)
		if err != nil {
			return invalid(err, path("detection", "minConfidence"))
		}
	}

	if d.Cache != nil {
		if d.Cache.Size != nil && *d.Cache.Size < 1 {
			return invalid(fmt.Errorf("cache size must be positive, got %d", *d.Cache.Size),
				path("detection", "cache", "size"))
		}

		if d.Cache.TTL != "" {
			ttl, err := time.ParseDuration(d.Cache.TTL)
			if err != nil {
				return invalid(err, path("detection", "cache", "ttl"))
			}
			if ttl <= 0 {
				return invalid(fmt.Errorf("cache ttl must be positive, got %s", ttl),
					path("detection", "cache", "ttl"))
			}
		}
	}

	return nil
}

func (c *Config) validateMatching() error {
	m := c.Matching

	if m.Algorithm != "" {
		_, err := match.ByName(m.Algorithm)
		if err != nil {
			return invalid(err, path("matching", "algorithm"))
		}
	}

	for i, name := range m.Fallbacks {
		_, err := match.ByName(name)
		if err != nil {
			return invalid(err, yaml.NewPathBuilder().Root().
				Child("matching").Child("fallbacks").Index(uint(i)).Build()) //nolint:gosec // G115: non-negative index.
		}
	}

	thresholds := []struct {
		v   *float64
		key string
	}{
		{m.MinScore, "minScore"},
		{m.BestMatchThreshold, "bestMatchThreshold"},
	}
	for _, th := range thresholds {
		if th.v == nil {
			continue
		}

		err := checkUnit(*th.v)
		if err != nil {
			return invalid(err, path("matching", th.key))
		}
	}

	if m.MaxResults != nil && *m.MaxResults < 0 {
		return invalid(fmt.Errorf("must not be negative, got %d", *m.MaxResults), path("matching", "maxResults"))
	}

	return nil
}

// DetectConfig returns the auto detector settings.
func (c *Config) DetectConfig() detect.Config {
	cfg := detect.DefaultConfig()

	d := c.Detection
	if d == nil {
		return cfg
	}

	cfg.MinConfidence = valueOr(d.MinConfidence, cfg.MinConfidence)

	if d.Cache != nil {
		cfg.EnableCache = d.Cache.Enabled
		cfg.CacheSize = valueOr(d.Cache.Size, cfg.CacheSize)
		cfg.CacheTTL = parseTTL(d.Cache.TTL, cfg.CacheTTL)
	}

	if r := d.Rules; r != nil {
		cfg.RemoteURL = valueOr(r.RemoteURL, true)
		cfg.DirectoryPath = valueOr(r.DirectoryPath, true)
		cfg.IncludeIfDir = valueOr(r.IncludeIfDir, true)
		cfg.Hostname = valueOr(r.Hostname, true)
		cfg.GitConfig = valueOr(r.GitConfig, true)
		cfg.Expression = valueOr(r.Expression, true)
	}

	return cfg
}

// MatchConfig returns the fuzzy matcher settings.
func (c *Config) MatchConfig() match.Config {
	cfg := match.DefaultConfig()

	m := c.Matching
	if m == nil {
		return cfg
	}

	cfg.MinScore = valueOr(m.MinScore, cfg.MinScore)
	cfg.BestMatchThreshold = valueOr(m.BestMatchThreshold, cfg.BestMatchThreshold)
	cfg.MaxResults = valueOr(m.MaxResults, cfg.MaxResults)

	if f := m.Fields; f != nil {
		cfg.MatchName = valueOr(f.Name, true)
		cfg.MatchEmail = valueOr(f.Email, true)
		cfg.MatchUserName = valueOr(f.UserName, true)
		cfg.MatchVaultName = valueOr(f.VaultName, true)
		cfg.MatchSSHKeyTitle = valueOr(f.SSHKeyTitle, true)
	}

	return cfg
}

// Matcher returns a [match.Matcher] using the configured algorithms.
func (c *Config) Matcher() (*match.Matcher, error) {
	opts := []match.MatcherOpt{}

	if c.Matching != nil {
		if c.Matching.Algorithm != "" {
			primary, err := match.ByName(c.Matching.Algorithm)
			if err != nil {
				return nil, fmt.Errorf("primary algorithm: %w", err)
			}

			opts = append(opts, match.WithPrimary(primary))
		}

		if c.Matching.Fallbacks != nil {
			fallbacks := make([]match.Algorithm, 0, len(c.Matching.Fallbacks))

			for _, name := range c.Matching.Fallbacks {
				a, err := match.ByName(name)
				if err != nil {
					return nil, fmt.Errorf("fallback algorithm: %w", err)
				}

				fallbacks = append(fallbacks, a)
			}

			opts = append(opts, match.WithFallbacks(fallbacks...))
		}
	}

	return match.NewMatcher(c.MatchConfig(), opts...), nil
}

// GitReader returns a [git.ConfigReader] running the configured git command.
func (c *Config) GitReader() (*git.ConfigReader, error) {
	cmd := git.DefaultCommand

	if c.Git != nil && c.Git.Command != "" {
		var err error

		cmd, err = execs.ParseCommand(c.Git.Command)
		if err != nil {
			return nil, fmt.Errorf("git command: %w", err)
		}
	}

	return git.NewConfigReader(cmd), nil
}

// MarshalYAML encodes the configuration with the default YAML options.
func (c *Config) MarshalYAML() ([]byte, error) {
	b, err := yaml.Marshal(*c)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}

	return b, nil
}

// DefaultYAML returns the embedded default configuration document.
func DefaultYAML() []byte {
	return defaultConfigYAML
}

// SchemaJSON returns the embedded JSON schema.
func SchemaJSON() []byte {
	return schemaJSON
}

func invalid(err error, p *goyaml.Path) error {
	return yaml.NewError(fmt.Errorf("%w: %w", ErrInvalidConfig, err), yaml.WithPath(p))
}

func path(keys ...string) *goyaml.Path {
	pb := yaml.NewPathBuilder().Root()
	for _, k := range keys {
		pb = pb.Child(k)
	}

	return pb.Build()
}

func profilePath(i int, key string) *goyaml.Path {
	//nolint:gosec // G115: non-negative index.
	pb := yaml.NewPathBuilder().Root().Child("profiles").Index(uint(i))
	if key != "" {
		pb = pb.Child(key)
	}

	return pb.Build()
}

func checkUnit(f float64) error {
	if f < 0 || f > 1 {
		return fmt.Errorf("must be between 0 and 1, got %v", f)
	}

	return nil
}

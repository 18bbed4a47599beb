package profile

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrInvalidProfile is returned when a profile fails validation.
	ErrInvalidProfile = errors.New("invalid profile")

	// ErrNotFound is returned when a profile name is not known to a [Store].
	ErrNotFound = errors.New("profile not found")
)

// Profile represents a git identity profile.
type Profile struct {
	// Name uniquely identifies the profile.
	Name string `json:"name" jsonschema:"title=Name,minLength=1"`
	// Description is a free-form note shown in listings.
	Description string `json:"description,omitempty" jsonschema:"title=Description"`
	// GitUserEmail is the value for git's user.email.
	GitUserEmail string `json:"gitUserEmail" jsonschema:"title=Git User Email"`
	// GitUserName is the value for git's user.name.
	GitUserName string `json:"gitUserName,omitempty" jsonschema:"title=Git User Name"`
	// VaultName is the 1Password vault holding the signing key.
	VaultName string `json:"vaultName,omitempty" jsonschema:"title=Vault Name"`
	// SSHKeyTitle is the title of the SSH signing key.
	SSHKeyTitle string `json:"sshKeyTitle,omitempty" jsonschema:"title=SSH Key Title"`
	// When is a CEL expression that selects this profile when it returns true.
	// The expression has access to:
	//   - `dir` (string): The working directory
	//   - `repoRoot` (string): The repository root, or an empty string
	//   - `remotes` (list<string>): All remote URLs and push URLs
	//   - `hostname` (string): The machine hostname
	//   - `email` (string): The current git user.email
	//   - `name` (string): The current git user.name
	//   - `parents` (list<string>): Parent directories, nearest first
	//
	// For example:
	//   - `remotes.exists(r, r.contains("github.com/company/"))`
	//   - `glob("*.corp.example.com", hostname)`
	When string `json:"when,omitempty" jsonschema:"title=When"`
	// Repos contains wildcard patterns matched against remote URLs.
	Repos []string `json:"repos,omitempty" jsonschema:"title=Repository Patterns" yaml:"repos,flow,omitempty"`
	// MatchPatterns contains wildcard patterns matched against the working
	// directory and its parents.
	MatchPatterns []string `json:"matchPatterns,omitempty" jsonschema:"title=Directory Patterns" yaml:"matchPatterns,flow,omitempty"`
	// IncludeIfDirs contains directories whose contents use this profile,
	// mirroring git's includeIf "gitdir:" sections.
	IncludeIfDirs []string `json:"includeIfDirs,omitempty" jsonschema:"title=Include Directories" yaml:"includeIfDirs,flow,omitempty"`
	// HostPatterns contains wildcard patterns matched against the hostname.
	HostPatterns []string `json:"hostPatterns,omitempty" jsonschema:"title=Host Patterns" yaml:"hostPatterns,flow,omitempty"`
}

// ProfileOpt is a functional option for configuring a [Profile].
type ProfileOpt func(*Profile)

// New creates a new profile with the given name and options.
func New(name string, opts ...ProfileOpt) (*Profile, error) {
	p := &Profile{Name: name}
	for _, opt := range opts {
		opt(p)
	}

	err := p.Validate()
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", name, err)
	}

	return p, nil
}

// MustNew creates a new profile and panics if there's an error.
func MustNew(name string, opts ...ProfileOpt) *Profile {
	p, err := New(name, opts...)
	if err != nil {
		panic(err)
	}

	return p
}

// WithEmail sets the git user.email for the profile.
func WithEmail(email string) ProfileOpt {
	return func(p *Profile) {
		p.GitUserEmail = email
	}
}

// WithUserName sets the git user.name for the profile.
func WithUserName(name string) ProfileOpt {
	return func(p *Profile) {
		p.GitUserName = name
	}
}

// WithVault sets the 1Password vault name.
func WithVault(vault string) ProfileOpt {
	return func(p *Profile) {
		p.VaultName = vault
	}
}

// WithSSHKeyTitle sets the SSH signing key title.
func WithSSHKeyTitle(title string) ProfileOpt {
	return func(p *Profile) {
		p.SSHKeyTitle = title
	}
}

// WithRepos sets the remote URL patterns.
func WithRepos(patterns ...string) ProfileOpt {
	return func(p *Profile) {
		p.Repos = patterns
	}
}

// WithMatchPatterns sets the directory patterns.
func WithMatchPatterns(patterns ...string) ProfileOpt {
	return func(p *Profile) {
		p.MatchPatterns = patterns
	}
}

// WithIncludeIfDirs sets the includeIf directories.
func WithIncludeIfDirs(dirs ...string) ProfileOpt {
	return func(p *Profile) {
		p.IncludeIfDirs = dirs
	}
}

// WithHostPatterns sets the hostname patterns.
func WithHostPatterns(patterns ...string) ProfileOpt {
	return func(p *Profile) {
		p.HostPatterns = patterns
	}
}

// WithWhen sets the CEL selection expression.
func WithWhen(expression string) ProfileOpt {
	return func(p *Profile) {
		p.When = expression
	}
}

// WithDescription sets the profile description.
func WithDescription(desc string) ProfileOpt {
	return func(p *Profile) {
		p.Description = desc
	}
}

// Validate checks the fields that can be checked without a CEL environment.
// Expressions in [Profile.When] are compiled by the rule that evaluates them.
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}

	for _, list := range [][]string{p.Repos, p.MatchPatterns, p.IncludeIfDirs, p.HostPatterns} {
		if slices.Contains(list, "") {
			return fmt.Errorf("%w: empty pattern", ErrInvalidProfile)
		}
	}

	return nil
}

// Identity returns the "Name <email>" form used in commit metadata.
func (p *Profile) Identity() string {
	if p.GitUserName == "" {
		return p.GitUserEmail
	}

	return fmt.Sprintf("%s <%s>", p.GitUserName, p.GitUserEmail)
}

func (p *Profile) String() string {
	if p.Description != "" {
		return fmt.Sprintf("%s: %s", p.Name, p.Description)
	}

	return fmt.Sprintf("%s: %s", p.Name, p.Identity())
}

// Store provides profiles to the resolution engine.
type Store interface {
	// List returns a snapshot of all profiles. Callers must not modify the
	// returned profiles.
	List(ctx context.Context) ([]*Profile, error)
}

// StaticStore is a [Store] backed by a fixed list of profiles.
type StaticStore struct {
	profiles []*Profile
}

// NewStaticStore creates a [StaticStore] holding profiles.
func NewStaticStore(profiles ...*Profile) *StaticStore {
	return &StaticStore{profiles: slices.Clone(profiles)}
}

// List implements [Store].
func (s *StaticStore) List(_ context.Context) ([]*Profile, error) {
	return slices.Clone(s.profiles), nil
}

// Find returns the profile named name.
func Find(profiles []*Profile, name string) (*Profile, error) {
	for _, p := range profiles {
		if p.Name == name {
			return p, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Names returns the names of profiles, in order.
func Names(profiles []*Profile) []string {
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.Name)
	}

	return names
}

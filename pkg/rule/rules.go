package rule

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/macropower/gitprof/pkg/glob"
	"github.com/macropower/gitprof/pkg/profile"
	"github.com/macropower/gitprof/pkg/repoctx"
)

// RemoteURL matches the profile's repos patterns against the fetch and push
// URLs of every remote.
type RemoteURL struct{}

func (RemoteURL) Name() string { return NameRemoteURL }

func (RemoteURL) Priority() Priority { return PriorityHigh }

func (RemoteURL) Match(_ context.Context, p *profile.Profile, c *repoctx.Context) (float64, bool) {
	if len(p.Repos) == 0 {
		return 0, false
	}

	var best float64

	for _, url := range c.RemoteURLs() {
		for _, pattern := range p.Repos {
			best = max(best, scoreRemote(pattern, url))
			if best == 1.0 {
				return best, true
			}
		}
	}

	return best, true
}

func scoreRemote(pattern, url string) float64 {
	switch {
	case pattern == url:
		return 1.0
	case glob.Match(pattern, url):
		return 0.95
	case strings.Contains(url, pattern):
		return 0.7
	}

	return 0
}

// DirectoryPath matches the profile's matchPatterns against the working
// directory and its parents.
type DirectoryPath struct{}

func (DirectoryPath) Name() string { return NameDirectoryPath }

func (DirectoryPath) Priority() Priority { return PriorityMedium }

func (DirectoryPath) Match(_ context.Context, p *profile.Profile, c *repoctx.Context) (float64, bool) {
	if len(p.MatchPatterns) == 0 {
		return 0, false
	}

	if matchesPath(p.MatchPatterns, c.WorkingDir) {
		return 0.8, true
	}

	for i, dir := range c.ParentDirs {
		if matchesPath(p.MatchPatterns, dir) {
			// 0.7 for the nearest parent, less 0.1 per level, down to 0.4.
			return max(0.4, float64(7-i)/10), true
		}
	}

	return 0, true
}

// matchesPath reports whether any pattern matches path as a whole or any
// single component of path.
func matchesPath(patterns []string, path string) bool {
	components := strings.FieldsFunc(path, func(r rune) bool {
		return r == filepath.Separator
	})

	for _, pattern := range patterns {
		if glob.Match(pattern, path) {
			return true
		}

		for _, component := range components {
			if glob.Match(pattern, component) {
				return true
			}
		}
	}

	return false
}

// IncludeIfDir matches when the working directory is inside one of the
// profile's includeIfDirs. A leading "~" is expanded to the home directory.
type IncludeIfDir struct{}

func (IncludeIfDir) Name() string { return NameIncludeIfDir }

func (IncludeIfDir) Priority() Priority { return PriorityHigh }

func (IncludeIfDir) Match(_ context.Context, p *profile.Profile, c *repoctx.Context) (float64, bool) {
	if len(p.IncludeIfDirs) == 0 {
		return 0, false
	}

	dirs := make([]string, 0, len(p.IncludeIfDirs))
	for _, dir := range p.IncludeIfDirs {
		dirs = append(dirs, ExpandHome(dir, c.HomeDir))
	}

	for _, dir := range dirs {
		if within(c.WorkingDir, dir) {
			return 0.9, true
		}
	}

	for _, parent := range c.ParentDirs {
		for _, dir := range dirs {
			if filepath.Clean(parent) == dir {
				return 0.85, true
			}
		}
	}

	return 0, false
}

// ExpandHome replaces a leading "~" in path with home, and cleans the result.
// Paths are returned unchanged when home is empty.
func ExpandHome(path, home string) string {
	if home != "" {
		if path == "~" {
			path = home
		} else if rest, ok := strings.CutPrefix(path, "~/"); ok {
			path = filepath.Join(home, rest)
		}
	}

	return filepath.Clean(path)
}

// within reports whether path is dir or a descendant of dir.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Hostname matches the profile's hostPatterns against the hostname.
type Hostname struct{}

func (Hostname) Name() string { return NameHostname }

func (Hostname) Priority() Priority { return PriorityMedium }

func (Hostname) Match(_ context.Context, p *profile.Profile, c *repoctx.Context) (float64, bool) {
	for _, pattern := range p.HostPatterns {
		if pattern == c.Hostname {
			return 0.9, true
		}
	}

	for _, pattern := range p.HostPatterns {
		if glob.Match(pattern, c.Hostname) {
			return 0.7, true
		}
	}

	return 0, false
}

// GitConfig matches the profile's git identity against the identity already
// configured in the repository.
type GitConfig struct{}

func (GitConfig) Name() string { return NameGitConfig }

func (GitConfig) Priority() Priority { return PriorityLow }

func (GitConfig) Match(_ context.Context, p *profile.Profile, c *repoctx.Context) (float64, bool) {
	var score float64

	if p.GitUserEmail != "" && c.CurrentEmail == p.GitUserEmail {
		score += 0.6
	}

	if p.GitUserName != "" && c.CurrentName == p.GitUserName {
		score += 0.5
	}

	if score == 0 {
		return 0, false
	}

	return min(score, 1.0), true
}

package repoctx

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/macropower/gitprof/pkg/git"
	"github.com/macropower/gitprof/pkg/log"
)

var (
	// ErrWorkingDir is returned when the target path cannot be made absolute.
	ErrWorkingDir = errors.New("resolve working directory")

	// ErrFindRepo is returned when the filesystem cannot be inspected while
	// searching for a repository root.
	ErrFindRepo = errors.New("find repository root")
)

// GitConfigReader reads git configuration.
type GitConfigReader interface {
	// GetConfig returns the value of key, or an empty string when unset.
	GetConfig(ctx context.Context, dir, key string, scope git.Scope) (string, error)
	// GetAllConfig returns all entries in scope.
	GetAllConfig(ctx context.Context, dir string, scope git.Scope) (map[string]string, error)
}

// Platform provides host information.
type Platform interface {
	Hostname() (string, error)
	HomeDir() (string, error)
}

// StatFunc has the signature of [os.Lstat].
type StatFunc func(name string) (fs.FileInfo, error)

// OSPlatform implements [Platform] using the os package.
type OSPlatform struct{}

func (OSPlatform) Hostname() (string, error) { return os.Hostname() }

func (OSPlatform) HomeDir() (string, error) { return os.UserHomeDir() }

// Builder creates [Context] snapshots.
type Builder struct {
	git      GitConfigReader
	platform Platform
	stat     StatFunc
}

// BuilderOpt is a functional option for configuring a [Builder].
type BuilderOpt func(*Builder)

// WithPlatform sets the [Platform]. The default is [OSPlatform].
func WithPlatform(p Platform) BuilderOpt {
	return func(b *Builder) {
		b.platform = p
	}
}

// WithStat sets the function used to test for ".git" entries. The default
// is [os.Lstat].
func WithStat(fn StatFunc) BuilderOpt {
	return func(b *Builder) {
		b.stat = fn
	}
}

// NewBuilder creates a new [Builder] reading git configuration with r.
func NewBuilder(r GitConfigReader, opts ...BuilderOpt) *Builder {
	b := &Builder{
		git:      r,
		platform: OSPlatform{},
		stat:     os.Lstat,
	}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Build returns the [Context] for path, which may be relative.
func (b *Builder) Build(ctx context.Context, path string) (*Context, error) {
	wd, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrWorkingDir, path, err)
	}

	logger := log.WithContext(ctx).With(slog.String("path", wd))

	root, err := b.FindRepoRoot(wd)
	if err != nil {
		return nil, err
	}

	home, err := b.platform.HomeDir()
	if err != nil {
		logger.DebugContext(ctx, "could not determine home directory", slog.Any("error", err))

		home = ""
	}

	hostname, err := b.platform.Hostname()
	if err != nil || hostname == "" {
		logger.DebugContext(ctx, "could not determine hostname", slog.Any("error", err))

		hostname = UnknownHostname
	}

	c := &Context{
		WorkingDir: wd,
		RepoRoot:   root,
		Hostname:   hostname,
		HomeDir:    home,
		ParentDirs: ParentDirs(wd, home),
	}

	c.CurrentEmail = b.getConfig(ctx, wd, "user.email")
	c.CurrentName = b.getConfig(ctx, wd, "user.name")

	if root != "" {
		entries, err := b.git.GetAllConfig(ctx, root, git.ScopeLocal)
		if err != nil {
			logger.DebugContext(ctx, "could not read remotes", slog.Any("error", err))
		} else {
			c.Remotes = ParseRemotes(entries)
		}
	}

	logger.DebugContext(ctx, "built repository context",
		slog.String("repo_root", c.RepoRoot),
		slog.Int("remotes", len(c.Remotes)),
		slog.String("hostname", c.Hostname),
	)

	return c, nil
}

// FindRepoRoot returns the nearest directory at or above dir containing a
// ".git" file or directory, or an empty string when there is none.
func (b *Builder) FindRepoRoot(dir string) (string, error) {
	for {
		_, err := b.stat(filepath.Join(dir, ".git"))
		if err == nil {
			return dir, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %w", ErrFindRepo, err)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}

		dir = parent
	}
}

func (b *Builder) getConfig(ctx context.Context, dir, key string) string {
	v, err := b.git.GetConfig(ctx, dir, key, git.ScopeLocal)
	if err != nil {
		log.WithContext(ctx).DebugContext(ctx, "could not read git config",
			slog.String("key", key),
			slog.Any("error", err),
		)

		return ""
	}

	return v
}

// ParseRemotes groups "remote.<name>.url" and "remote.<name>.pushurl"
// entries by remote name. Names may contain dots. Remotes without a URL are
// dropped, and the result is sorted by name.
func ParseRemotes(entries map[string]string) []Remote {
	byName := map[string]*Remote{}

	for key, value := range entries {
		rest, ok := strings.CutPrefix(key, "remote.")
		if !ok {
			continue
		}

		idx := strings.LastIndex(rest, ".")
		if idx <= 0 {
			continue
		}

		name, field := rest[:idx], rest[idx+1:]

		r, ok := byName[name]
		if !ok {
			r = &Remote{Name: name}
			byName[name] = r
		}

		switch strings.ToLower(field) {
		case "url":
			r.URL = value
		case "pushurl":
			r.PushURL = value
		}
	}

	remotes := []Remote{}
	for _, r := range byName {
		if r.URL != "" {
			remotes = append(remotes, *r)
		}
	}

	slices.SortFunc(remotes, func(a, b Remote) int {
		return strings.Compare(a.Name, b.Name)
	})

	return remotes
}

// ParentDirs returns wd followed by its ancestors, nearest first. The walk
// stops before home or the filesystem root, neither of which is included.
func ParentDirs(wd, home string) []string {
	dirs := []string{}

	dir := filepath.Clean(wd)
	if home != "" {
		home = filepath.Clean(home)
	}

	for dir != home {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}

		dirs = append(dirs, dir)
		dir = parent
	}

	return dirs
}

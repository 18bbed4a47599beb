package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/macropower/gitprof/pkg/execs"
)

// Scope selects which git configuration files are read.
type Scope string

const (
	// ScopeAny reads the merged configuration, like git does by default.
	ScopeAny    Scope = ""
	ScopeLocal  Scope = "local"
	ScopeGlobal Scope = "global"
	ScopeSystem Scope = "system"
)

// ErrReadConfig is returned when git configuration cannot be read.
var ErrReadConfig = errors.New("read git config")

// DefaultCommand is the git command used when none is configured.
var DefaultCommand = execs.Command{Command: "git"}

// ConfigReader reads git configuration through [execs.Executor].
type ConfigReader struct {
	cmd execs.Command
}

// NewConfigReader creates a new [ConfigReader]. An empty cmd uses
// [DefaultCommand].
func NewConfigReader(cmd execs.Command) *ConfigReader {
	if cmd.Command == "" {
		cmd = DefaultCommand
	}

	return &ConfigReader{cmd: cmd}
}

// GetConfig returns the value of key in scope, as seen from dir.
// Unset keys return an empty string and no error.
func (r *ConfigReader) GetConfig(ctx context.Context, dir, key string, scope Scope) (string, error) {
	args := append([]string{"config"}, scope.args()...)
	args = append(args, "--get", key)

	result, err := execs.NewExecutor(r.cmd, args...).Exec(ctx, dir)
	if err != nil {
		if isUnset(err) {
			return "", nil
		}

		return "", fmt.Errorf("%w %q: %w", ErrReadConfig, key, err)
	}

	return strings.TrimRight(result.Stdout, "\r\n"), nil
}

// GetAllConfig returns every entry in scope, as seen from dir. Keys are in
// git's canonical form; for multi-valued keys the last value wins.
func (r *ConfigReader) GetAllConfig(ctx context.Context, dir string, scope Scope) (map[string]string, error) {
	args := append([]string{"config"}, scope.args()...)
	args = append(args, "--list", "--null")

	result, err := execs.NewExecutor(r.cmd, args...).Exec(ctx, dir)
	if err != nil {
		if isUnset(err) {
			return map[string]string{}, nil
		}

		return nil, fmt.Errorf("%w: %w", ErrReadConfig, err)
	}

	return ParseConfigList(result.Stdout), nil
}

// ParseConfigList parses the output of `git config --list --null`, where
// each entry is a key, a newline, and a value, terminated by NUL.
func ParseConfigList(out string) map[string]string {
	entries := map[string]string{}

	for entry := range strings.SplitSeq(out, "\x00") {
		if entry == "" {
			continue
		}

		key, value, _ := strings.Cut(entry, "\n")
		entries[key] = value
	}

	return entries
}

func (s Scope) args() []string {
	if s == ScopeAny {
		return nil
	}

	return []string{"--" + string(s)}
}

func (s Scope) String() string {
	if s == ScopeAny {
		return "any"
	}

	return string(s)
}

// isUnset reports whether err is git's exit status for a missing key or an
// absent configuration file.
func isUnset(err error) bool {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode() == 1
	}

	return false
}

package repoctx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrGitDir is returned when a ".git" file does not point to a git directory.
var ErrGitDir = errors.New("invalid gitdir file")

// GitDir returns the git directory of the repository at root. A ".git" file,
// as used by worktrees and submodules, is followed to the directory named by
// its "gitdir:" line.
func GitDir(root string) (string, error) {
	dotGit := filepath.Join(root, ".git")

	info, err := os.Stat(dotGit)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFindRepo, err)
	}

	if info.IsDir() {
		return dotGit, nil
	}

	dir, err := readPointer(dotGit, "gitdir:")
	if err != nil {
		return "", err
	}

	return resolve(root, dir), nil
}

// ConfigFile returns the path of the repository-local config file for the
// repository at root. Linked worktrees share the config of their main
// repository, named by the "commondir" file in their git directory.
func ConfigFile(root string) (string, error) {
	gitDir, err := GitDir(root)
	if err != nil {
		return "", err
	}

	common, err := os.ReadFile(filepath.Join(gitDir, "commondir")) //nolint:gosec // G304: Path inside the git directory.
	if err == nil {
		if dir := strings.TrimSpace(string(common)); dir != "" {
			gitDir = resolve(gitDir, dir)
		}
	}

	return filepath.Join(gitDir, "config"), nil
}

func readPointer(path, prefix string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: Path is a repository ".git" file.
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGitDir, err)
	}

	line, _, _ := strings.Cut(string(data), "\n")

	dir, ok := strings.CutPrefix(strings.TrimSpace(line), prefix)
	if !ok || strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("%w: %s", ErrGitDir, path)
	}

	return strings.TrimSpace(dir), nil
}

func resolve(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}

	return filepath.Join(base, path)
}

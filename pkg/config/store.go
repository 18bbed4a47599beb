package config

import (
	"context"
	"fmt"
	"slices"

	"github.com/macropower/gitprof/pkg/profile"
)

// FileStore is a [profile.Store] backed by a configuration file. The file is
// loaded on every call to [FileStore.List], so edits are picked up without a
// restart.
type FileStore struct {
	path string
	opts []LoaderOpt
}

var _ profile.Store = (*FileStore)(nil)

// NewFileStore creates a [FileStore] reading the configuration at path.
func NewFileStore(path string, opts ...LoaderOpt) *FileStore {
	return &FileStore{path: path, opts: opts}
}

// Path returns the configuration file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load loads the configuration file.
func (s *FileStore) Load() (*Config, error) {
	l, err := NewLoaderFromFile(s.path, s.opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.path, err)
	}

	c, err := l.Load()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.path, err)
	}

	return c, nil
}

// List implements [profile.Store].
func (s *FileStore) List(ctx context.Context) ([]*profile.Profile, error) {
	err := ctx.Err()
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	c, err := s.Load()
	if err != nil {
		return nil, err
	}

	return slices.Clone(c.Profiles), nil
}

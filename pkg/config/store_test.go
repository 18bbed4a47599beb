package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/gitprof/pkg/config"
	"github.com/macropower/gitprof/pkg/profile"
)

func TestFileStore_List(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	store := config.NewFileStore(path)
	assert.Equal(t, path, store.Path())

	_, err := store.List(t.Context())
	require.Error(t, err)

	write := func(body string) {
		t.Helper()
		require.NoError(t, os.WriteFile(path, []byte(header+body), 0o600))
	}

	write("profiles:\n  - name: work\n    gitUserEmail: me@company.com\n")

	got, err := store.List(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"work"}, profile.Names(got))

	write("profiles:\n  - name: work\n    gitUserEmail: me@company.com\n  - name: oss\n    gitUserEmail: me@example.com\n")

	got, err = store.List(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"work", "oss"}, profile.Names(got))

	write("profiles:\n  - name: work\n")

	_, err = store.List(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestFileStore_ListCanceled(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.WriteDefaultConfig(path, false))

	store := config.NewFileStore(path)

	got, err := store.List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, got)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err = store.List(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

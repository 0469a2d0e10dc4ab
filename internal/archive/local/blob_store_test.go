package local_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/razor303Jc/Job-search-sub002/internal/archive/local"
)

func TestNewValidatesBaseDir(t *testing.T) {
	t.Parallel()

	_, err := local.New(local.Config{})
	require.Error(t, err)

	dir := t.TempDir()
	store, err := local.New(local.Config{BaseDir: dir})
	require.NoError(t, err)
	require.NotNil(t, store)

	// A missing directory is created.
	nested := filepath.Join(dir, "snapshots")
	_, err = local.New(local.Config{BaseDir: nested})
	require.NoError(t, err)
	info, err := os.Stat(nested)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestPutObjectWritesFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := local.New(local.Config{BaseDir: dir})
	require.NoError(t, err)

	uri, err := store.PutObject(context.Background(), "pages/2026-08-29/abc.html", "text/html", bytes.NewReader([]byte("<html></html>")))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "file://"))

	body, err := os.ReadFile(filepath.Join(dir, "pages", "2026-08-29", "abc.html"))
	require.NoError(t, err)
	require.Equal(t, "<html></html>", string(body))
}

func TestPutObjectRejectsEscapingPaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := local.New(local.Config{BaseDir: dir})
	require.NoError(t, err)

	_, err = store.PutObject(context.Background(), "../outside.html", "text/html", bytes.NewReader([]byte("x")))
	require.Error(t, err)
}

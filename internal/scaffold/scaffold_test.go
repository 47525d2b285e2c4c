package scaffold

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSkeleton(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteSkeleton(dir))

	assert.FileExists(t, filepath.Join(dir, "src", "index.html"))
	assert.FileExists(t, filepath.Join(dir, "src", "guide.md"))
}

func TestWriteSkeleton_KeepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src", "index.html")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("mine"), 0o644))

	require.NoError(t, WriteSkeleton(dir))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mine", string(got))
}

func TestCloneTemplate_RefusesNonEmptyDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x"), []byte("x"), 0o644))

	err := CloneTemplate(context.Background(), "https://example.invalid/repo.git", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not empty")
}

package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDBPathInsideRepo(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))

	assert.Equal(t, filepath.Join(root, ".caw", "workflows.db"), ResolveDBPath(root))
}

func TestResolveDBPathFromNestedDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	nested := filepath.Join(root, "apps", "desktop")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	assert.Equal(t, filepath.Join(root, ".caw", "workflows.db"), ResolveDBPath(nested))
}

func TestResolveDBPathWithGitFile(t *testing.T) {
	// Worktrees use a .git file rather than a directory.
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".git"), []byte("gitdir: elsewhere"), 0o644))

	assert.Equal(t, filepath.Join(root, ".caw", "workflows.db"), ResolveDBPath(root))
}

func TestResolveDBPathFallsBackToHome(t *testing.T) {
	t.Setenv("HOME", "/home/u")

	// A temp dir with no enclosing repository resolves to the home fallback.
	assert.Equal(t, "/home/u/.caw/workflows.db", ResolveDBPath(t.TempDir()))
}

func TestResolveDBPathEmptyStartDir(t *testing.T) {
	t.Setenv("HOME", "/home/u")

	assert.Equal(t, "/home/u/.caw/workflows.db", ResolveDBPath(""))
}

// Package storage resolves where the caw worker keeps its persisted state.
package storage

import (
	"os"
	"path/filepath"
)

const (
	cawDirName = ".caw"
	dbFileName = "workflows.db"
)

// WorkflowsDBPath resolves the worker database path from the current
// working directory: the enclosing version-control root when one exists,
// the user's home directory otherwise.
func WorkflowsDBPath() string {
	wd, err := os.Getwd()
	if err != nil {
		wd = ""
	}
	return ResolveDBPath(wd)
}

// ResolveDBPath is the pure resolution step, split out so callers and tests
// can supply the starting directory.
func ResolveDBPath(startDir string) string {
	if startDir != "" {
		if root, ok := findRepoRoot(startDir); ok {
			return filepath.Join(root, cawDirName, dbFileName)
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "/"
	}
	return filepath.Join(home, cawDirName, dbFileName)
}

// findRepoRoot walks up from dir looking for a .git entry. A plain file is
// accepted too, since worktrees and submodules use one.
func findRepoRoot(dir string) (string, bool) {
	dir = filepath.Clean(dir)
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

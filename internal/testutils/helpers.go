package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"
)

// SetupTemplateRepo initialises an unversioned Loam repository in a temp dir and
// writes files (name -> content) into it, e.g. "reminder.md" or "call-first.json".
// It returns the absolute path and the repository, failing the test on any error.
func SetupTemplateRepo(t *testing.T, files map[string]string) (string, core.Repository) {
	t.Helper()

	dir, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	repo, err := loam.Init(dir, loam.WithVersioning(false))
	require.NoError(t, err, "Failed to init loam repo")

	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644), "Failed to write %s", name)
	}
	return dir, repo
}

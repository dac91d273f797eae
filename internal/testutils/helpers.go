package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteTree creates a temporary directory holding files (relative path to
// content) and returns its absolute path. It fails the test immediately on error.
func WriteTree(t *testing.T, files map[string]string) string {
	t.Helper()

	// The library resolves ids relative to an absolute root.
	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	for name, content := range files {
		path := filepath.Join(absPath, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return absPath
}

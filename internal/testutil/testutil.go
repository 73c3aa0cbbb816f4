// Package testutil provides shared test helpers for building library folders.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/lectern/internal/pathutil"
)

// WriteFile writes data to path, creating parent directories.
func WriteFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

// CanonicalTempDir returns a temp directory with symlinks resolved, so paths
// compare equal to what the library stores.
func CanonicalTempDir(t *testing.T) string {
	t.Helper()
	dir, ok := pathutil.Canonicalize(t.TempDir())
	if !ok {
		t.Fatal("temp dir vanished")
	}
	return dir
}

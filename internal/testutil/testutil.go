// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// MustChdir changes the current working directory to dir.
// It returns a cleanup function that restores the original directory.
// The test fails immediately if the directory change fails.
func MustChdir(t testing.TB, dir string) func() {
	t.Helper()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get current directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change directory to %s: %v", dir, err)
	}
	return func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Errorf("failed to restore directory to %s: %v", originalWd, err)
		}
	}
}

// MustMkdirAll creates path and any missing parents.
func MustMkdirAll(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("failed to create directory %s: %v", path, err)
	}
}

// MustWriteFile writes content to path, creating parent directories first.
func MustWriteFile(t testing.TB, path, content string) {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// MustWriteExecutable writes an executable file at path.
func MustWriteExecutable(t testing.TB, path, content string) {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// MustSymlink creates a symbolic link newname pointing at oldname.
// The test is skipped when the platform refuses to create symlinks.
func MustSymlink(t testing.TB, oldname, newname string) {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(newname))
	if err := os.Symlink(oldname, newname); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
}

// MustEvalSymlinks resolves path, failing the test on error. Temporary
// directories live behind symlinks on some systems (macOS /var).
func MustEvalSymlinks(t testing.TB, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatalf("failed to resolve %s: %v", path, err)
	}
	return resolved
}

// Addon creates a minimal addon directory (a manifest file) at dir.
func Addon(t testing.TB, dir string) {
	t.Helper()
	MustWriteFile(t, filepath.Join(dir, "__manifest__.py"), "{'name': '"+filepath.Base(dir)+"'}\n")
}

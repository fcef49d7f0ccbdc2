// SPDX-License-Identifier: MPL-2.0

package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/osh-cli/osh/internal/testutil"
)

func TestFindRoot(t *testing.T) {
	t.Parallel()

	l := DefaultLayout()

	t.Run("marker in start directory", func(t *testing.T) {
		t.Parallel()

		root := testutil.MustEvalSymlinks(t, t.TempDir())
		testutil.MustMkdirAll(t, filepath.Join(root, ".osh"))

		got, found, err := FindRoot(l, root)
		if err != nil || !found {
			t.Fatalf("FindRoot() = %q, %v, %v", got, found, err)
		}
		if got != root {
			t.Errorf("root = %q, want %q", got, root)
		}
	})

	t.Run("marker in ancestor", func(t *testing.T) {
		t.Parallel()

		root := testutil.MustEvalSymlinks(t, t.TempDir())
		testutil.MustMkdirAll(t, filepath.Join(root, ".osh"))
		deep := filepath.Join(root, "addons", "sale", "models")
		testutil.MustMkdirAll(t, deep)

		got, found, err := FindRoot(l, deep)
		if err != nil || !found || got != root {
			t.Errorf("FindRoot() = %q, %v, %v; want %q", got, found, err, root)
		}
	})

	t.Run("closest marker wins", func(t *testing.T) {
		t.Parallel()

		outer := testutil.MustEvalSymlinks(t, t.TempDir())
		testutil.MustMkdirAll(t, filepath.Join(outer, ".osh"))
		inner := filepath.Join(outer, "nested")
		testutil.MustMkdirAll(t, filepath.Join(inner, ".osh"))
		start := filepath.Join(inner, "x")
		testutil.MustMkdirAll(t, start)

		got, _, _ := FindRoot(l, start)
		if got != inner {
			t.Errorf("root = %q, want %q", got, inner)
		}
	})

	t.Run("plain file marker counts", func(t *testing.T) {
		t.Parallel()

		root := testutil.MustEvalSymlinks(t, t.TempDir())
		testutil.MustWriteFile(t, filepath.Join(root, ".osh"), "")

		got, found, _ := FindRoot(l, root)
		if !found || got != root {
			t.Errorf("FindRoot() = %q, %v; want %q", got, found, root)
		}
	})

	t.Run("no marker", func(t *testing.T) {
		t.Parallel()

		l := l
		l.MarkerDir = ".osh-test-marker-that-does-not-exist"
		got, found, err := FindRoot(l, t.TempDir())
		if err != nil {
			t.Fatalf("FindRoot() error = %v", err)
		}
		if found || got != "" {
			t.Errorf("FindRoot() = %q, %v; want not found", got, found)
		}
	})

	t.Run("missing start directory is an error", func(t *testing.T) {
		t.Parallel()

		_, _, err := FindRoot(l, filepath.Join(t.TempDir(), "gone"))
		if err == nil {
			t.Error("expected error")
		}
	})

	t.Run("start through symlink resolves to target path", func(t *testing.T) {
		t.Parallel()

		target := testutil.MustEvalSymlinks(t, t.TempDir())
		testutil.MustMkdirAll(t, filepath.Join(target, ".osh"))
		link := filepath.Join(t.TempDir(), "link")
		testutil.MustSymlink(t, target, link)

		got, found, _ := FindRoot(l, link)
		if !found || got != target {
			t.Errorf("FindRoot() = %q, %v; want %q", got, found, target)
		}
	})
}

func TestFindRootWorkingDirectory(t *testing.T) {
	root := testutil.MustEvalSymlinks(t, t.TempDir())
	testutil.MustMkdirAll(t, filepath.Join(root, ".osh"))
	sub := filepath.Join(root, "sub")
	testutil.MustMkdirAll(t, sub)

	restore := testutil.MustChdir(t, sub)
	defer restore()

	got, found, err := FindRoot(DefaultLayout(), "")
	if err != nil || !found || got != root {
		wd, _ := os.Getwd()
		t.Errorf("FindRoot(\"\") from %s = %q, %v, %v; want %q", wd, got, found, err, root)
	}
}

// SPDX-License-Identifier: MPL-2.0

package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/osh-cli/osh/internal/testutil"
)

func TestProjectFileWriteRead(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config")
	want := File{Odoo: OdooSection{Bin: "/srv/p/.venv/bin/odoo-bin", Sources: "/srv/p/.osh/odoo"}}

	if err := WriteFile(path, want); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error = %v", err)
	}
	if !strings.Contains(string(data), "[odoo]") {
		t.Errorf("project file should have an [odoo] table:\n%s", data)
	}

	got, found, err := ReadFile(path)
	if err != nil || !found {
		t.Fatalf("ReadFile() = %v, %v", found, err)
	}
	if got != want {
		t.Errorf("ReadFile() = %+v, want %+v", got, want)
	}
}

func TestProjectFileMissing(t *testing.T) {
	t.Parallel()

	_, found, err := ReadFile(filepath.Join(t.TempDir(), "config"))
	if err != nil || found {
		t.Errorf("ReadFile() = %v, %v; want not found, nil", found, err)
	}
}

func TestProjectFileMalformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config")
	testutil.MustWriteFile(t, path, "[odoo\nbin = ")

	if _, _, err := ReadFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLayoutPaths(t *testing.T) {
	t.Parallel()

	l := DefaultLayout()
	root := filepath.FromSlash("/p")

	if got := l.ProjectFilePath(root); got != filepath.Join(root, ".osh", "config") {
		t.Errorf("ProjectFilePath() = %q", got)
	}
	if got := l.ClonePath(root); got != filepath.Join(root, ".osh", "odoo_src") {
		t.Errorf("ClonePath() = %q", got)
	}
	if got := l.SourceLinkPath(root); got != filepath.Join(root, ".osh", "odoo") {
		t.Errorf("SourceLinkPath() = %q", got)
	}
}

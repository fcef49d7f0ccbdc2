// SPDX-License-Identifier: MPL-2.0

package project

import (
	"path/filepath"
	"testing"

	"github.com/osh-cli/osh/internal/testutil"
)

func TestFindLocalSources(t *testing.T) {
	t.Parallel()

	t.Run("base itself", func(t *testing.T) {
		t.Parallel()

		base := testutil.MustEvalSymlinks(t, t.TempDir())
		testutil.MustWriteExecutable(t, filepath.Join(base, "odoo-bin"), "")

		got, found := FindLocalSources(base, "odoo-bin")
		if !found || got != base {
			t.Errorf("FindLocalSources() = %q, %v; want %q", got, found, base)
		}
	})

	t.Run("first direct child by name", func(t *testing.T) {
		t.Parallel()

		base := testutil.MustEvalSymlinks(t, t.TempDir())
		testutil.MustWriteExecutable(t, filepath.Join(base, "odoo-17", "odoo-bin"), "")
		testutil.MustWriteExecutable(t, filepath.Join(base, "odoo-16", "odoo-bin"), "")

		got, found := FindLocalSources(base, "odoo-bin")
		if !found || got != filepath.Join(base, "odoo-16") {
			t.Errorf("FindLocalSources() = %q, %v", got, found)
		}
	})

	t.Run("grandchildren are not searched", func(t *testing.T) {
		t.Parallel()

		base := testutil.MustEvalSymlinks(t, t.TempDir())
		testutil.MustWriteExecutable(t, filepath.Join(base, "src", "odoo", "odoo-bin"), "")

		if got, found := FindLocalSources(base, "odoo-bin"); found {
			t.Errorf("FindLocalSources() = %q; want not found", got)
		}
	})

	t.Run("missing base", func(t *testing.T) {
		t.Parallel()

		if _, found := FindLocalSources(filepath.Join(t.TempDir(), "nope"), "odoo-bin"); found {
			t.Error("expected not found")
		}
	})
}

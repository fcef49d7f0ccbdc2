// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/fang"

	"github.com/osh-cli/osh/internal/issue"
	"github.com/osh-cli/osh/pkg/types"
)

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v0.3.0"
		Commit = "abc1234"
		BuildDate = "2025-06-15T10:00:00Z"

		got := getVersionString()
		want := "v0.3.0 (commit: abc1234, built: 2025-06-15T10:00:00Z)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("dev build", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		if got, want := getVersionString(), "dev (built from source)"; got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})
}

func TestHelpListsCommandsInRegistryOrder(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t, t.TempDir())
	if err := ta.execute("--help"); err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	out := ta.stdout.String()

	last := -1
	for _, spec := range commandRegistry {
		idx := strings.Index(out, "\n  "+spec.name+" ")
		if idx < 0 {
			t.Fatalf("help does not list %q:\n%s", spec.name, out)
		}
		if idx < last {
			t.Errorf("%q listed out of registry order:\n%s", spec.name, out)
		}
		last = idx
	}
}

func TestRegistryNamesMatchCommands(t *testing.T) {
	t.Parallel()

	app, err := NewApp(Dependencies{})
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	seen := make(map[string]bool)
	for _, spec := range commandRegistry {
		cmd := spec.build(app)
		if got := cmd.Name(); got != spec.name {
			t.Errorf("registry entry %q builds command %q", spec.name, got)
		}
		if seen[spec.name] {
			t.Errorf("duplicate registry entry %q", spec.name)
		}
		seen[spec.name] = true
	}
}

func TestHandleError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		want    []string
		wantNil bool
	}{
		{
			name:    "silent exit",
			err:     &ExitError{Code: 3},
			wantNil: true,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: []string{"Error:", "boom"},
		},
		{
			name: "actionable error",
			err: issue.NewErrorContext().
				WithOperation("start Odoo").
				WithResource("/srv/odoo-bin").
				WithSuggestion("Run 'osh init' again").
				Wrap(errors.New("permission denied")).
				BuildError(),
			want: []string{"start Odoo", "permission denied", "Run 'osh init' again"},
		},
		{
			name: "service error renders catalog",
			err:  newServiceError(errNotInProject, issue.NotInProjectId),
			want: []string{"Error:", "Not inside an Osh project"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			app, err := NewApp(Dependencies{})
			if err != nil {
				t.Fatalf("NewApp() error = %v", err)
			}
			var buf bytes.Buffer
			app.handleError(&buf, fang.Styles{}, tt.err)

			if tt.wantNil {
				if buf.Len() != 0 {
					t.Errorf("handleError() wrote %q, want nothing", buf.String())
				}
				return
			}
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("handleError() output missing %q:\n%s", w, buf.String())
				}
			}
		})
	}
}

func TestExitCodeOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want types.ExitCode
	}{
		{"plain error", errors.New("x"), types.ExitFailure},
		{"exit error", &ExitError{Code: 4}, 4},
		{"wrapped exit error", errors.Join(errors.New("ctx"), &ExitError{Code: 2}), 2},
		{"zero code still fails", &ExitError{Code: 0}, types.ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeOf(tt.err); got != tt.want {
				t.Errorf("exitCodeOf() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestServiceErrorPanicsOnNil(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("newServiceError(nil) did not panic")
		}
	}()
	_ = newServiceError(nil, issue.NotInProjectId)
}

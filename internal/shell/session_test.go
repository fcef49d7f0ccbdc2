// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/osh-cli/osh/internal/dsn"
	"github.com/osh-cli/osh/internal/odoorpc"
	"github.com/osh-cli/osh/internal/odoorpc/odoorpctest"
	"github.com/osh-cli/osh/internal/testutil"
	"github.com/osh-cli/osh/pkg/types"
)

type testSession struct {
	*Session
	srv    *odoorpctest.Server
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestSession(t *testing.T, stdin string) *testSession {
	t.Helper()

	srv := odoorpctest.NewServer(t)
	client := odoorpc.New(dsn.MustParse(srv.URL+"/demo"), odoorpc.Options{})
	var stdout, stderr bytes.Buffer
	s, err := New(Options{
		Client:   client,
		Database: "demo",
		Username: "admin",
		Stdin:    strings.NewReader(stdin),
		Stdout:   &stdout,
		Stderr:   &stderr,
		Dir:      t.TempDir(),
		Environ:  []string{"PATH=" + lookupPath()},
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return &testSession{Session: s, srv: srv, stdout: &stdout, stderr: &stderr}
}

func lookupPath() string {
	if runtime.GOOS == "windows" {
		return ""
	}
	return "/usr/bin:/bin"
}

func TestRunCode(t *testing.T) {
	t.Parallel()

	const login = "login demo admin admin >/dev/null\n"

	tests := []struct {
		name       string
		code       string
		wantStdout string
		wantStderr string
		wantCode   types.ExitCode
	}{
		{name: "version", code: "version", wantStdout: `"server_version": "17.0"`},
		{name: "dbs", code: "dbs", wantStdout: "demo\n"},
		{name: "variables", code: `echo "$ODOO_DB $ODOO_USER"`, wantStdout: "demo admin\n"},
		{name: "login", code: "login demo admin admin", wantStdout: "Logged in to demo as admin (uid 2)"},
		{name: "bad password", code: "login demo admin nope", wantStderr: "access denied", wantCode: 1},
		{name: "login usage", code: "login demo", wantStderr: "usage: login DB USER PASSWORD", wantCode: 2},
		{name: "whoami anonymous", code: "whoami", wantStderr: "not logged in", wantCode: 1},
		{name: "whoami", code: login + "whoami", wantStdout: "admin@demo (uid 2)"},
		{name: "count", code: login + "count res.partner", wantStdout: "2\n"},
		{name: "search domain", code: login + `search res.partner '[["is_company", "=", true]]'`, wantStdout: "[\n  1\n]"},
		{name: "bad domain", code: login + "search res.partner '{'", wantStderr: "DOMAIN_JSON", wantCode: 1},
		{name: "read", code: login + "read res.partner 3 name", wantStdout: `"name": "Mitchell Admin"`},
		{name: "read json ids", code: login + "read res.partner '[1]'", wantStdout: `"name": "My Company"`},
		{name: "search_read", code: login + `search_read res.partner '[["is_company", "=", false]]' name`, wantStdout: "Mitchell Admin"},
		{name: "call", code: login + "call res.partner search_count '[[]]'", wantStdout: "2\n"},
		{name: "unknown model", code: login + "count res.nothing", wantStderr: "res.nothing", wantCode: 1},
		{name: "model call anonymous", code: "count res.partner", wantStderr: "not logged in", wantCode: 1},
		{name: "help", code: "help", wantStdout: "search_read"},
		{name: "help topic", code: "help count", wantStdout: "usage: count MODEL [DOMAIN_JSON]"},
		{name: "help fuzzy", code: "help serch", wantStderr: `"search"`, wantCode: 1},
		{name: "shell builtins", code: "x=1; echo $((x + 1))", wantStdout: "2\n"},
		{name: "shell read", code: "printf 'hi\\n' | { read v; echo \"got $v\"; }", wantStdout: "got hi\n"},
		{name: "exit status", code: "exit 3", wantCode: 3},
		{name: "quit", code: "quit 5", wantCode: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newTestSession(t, "")
			err := s.RunCode(context.Background(), tt.code)
			if got := ExitCode(err); got != tt.wantCode {
				t.Errorf("ExitCode = %d, want %d (err %v, stderr %q)", got, tt.wantCode, err, s.stderr.String())
			}
			if !strings.Contains(s.stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want substring %q", s.stdout.String(), tt.wantStdout)
			}
			if !strings.Contains(s.stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want substring %q", s.stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestURLVariable(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, "")
	if err := s.RunCode(context.Background(), `echo "$ODOO_URL"`); err != nil {
		t.Fatalf("RunCode() error = %v", err)
	}
	if got := strings.TrimSpace(s.stdout.String()); got != s.srv.URL {
		t.Errorf("ODOO_URL = %q, want %q", got, s.srv.URL)
	}
}

func TestRunFileThenCode(t *testing.T) {
	t.Parallel()

	script := filepath.Join(t.TempDir(), "setup.sh")
	testutil.MustWriteFile(t, script, "login demo admin admin >/dev/null\npartners() { count res.partner; }\n")

	s := newTestSession(t, "")
	if err := s.RunFile(context.Background(), script); err != nil {
		t.Fatalf("RunFile() error = %v", err)
	}
	if err := s.RunCode(context.Background(), "partners"); err != nil {
		t.Fatalf("RunCode() error = %v", err)
	}
	if s.stdout.String() != "2\n" {
		t.Errorf("stdout = %q", s.stdout.String())
	}
	if !slices.Contains(s.srv.Calls(), "common.login") {
		t.Errorf("calls = %v, want a login", s.srv.Calls())
	}
}

func TestRunFileMissing(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, "")
	if err := s.RunFile(context.Background(), filepath.Join(t.TempDir(), "nope.sh")); err == nil {
		t.Error("RunFile() expected error")
	}
}

func TestRunParseError(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, "")
	err := s.RunCode(context.Background(), "if then fi (")
	if err == nil {
		t.Fatal("RunCode() expected parse error")
	}
	if ExitCode(err) != types.ExitFailure {
		t.Errorf("ExitCode = %d, want 1", ExitCode(err))
	}
}

func TestNewRequiresClient(t *testing.T) {
	t.Parallel()

	if _, err := New(Options{}); err == nil {
		t.Error("New() without client should fail")
	}
}

func TestRewriteCall(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want []string
	}{
		{args: []string{"read", "res.partner", "1"}, want: []string{readAlias, "res.partner", "1"}},
		{args: []string{"read", "line"}, want: []string{"read", "line"}},
		{args: []string{"read", "-r", "a.b"}, want: []string{"read", "-r", "a.b"}},
		{args: []string{"read", "a", "b"}, want: []string{"read", "a", "b"}},
		{args: []string{"echo", "res.partner", "1"}, want: []string{"echo", "res.partner", "1"}},
	}
	for _, tt := range tests {
		got, err := rewriteCall(context.Background(), tt.args)
		if err != nil || !slices.Equal(got, tt.want) {
			t.Errorf("rewriteCall(%v) = %v, %v; want %v", tt.args, got, err, tt.want)
		}
	}
}

func TestParseIDs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{in: "1", want: []int{1}},
		{in: "1, 2,3", want: []int{1, 2, 3}},
		{in: "[4,5]", want: []int{4, 5}},
		{in: "a", wantErr: true},
		{in: ",", wantErr: true},
		{in: "[x]", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseIDs(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseIDs(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("parseIDs(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFields(t *testing.T) {
	t.Parallel()

	if got := parseFields("name, email"); !slices.Equal(got, []string{"name", "email"}) {
		t.Errorf("parseFields(list) = %v", got)
	}
	if got := parseFields(`["name","email"]`); !slices.Equal(got, []string{"name", "email"}) {
		t.Errorf("parseFields(json) = %v", got)
	}
}

func TestSuggest(t *testing.T) {
	t.Parallel()

	if got := suggest("serch"); !slices.Contains(got, "search") {
		t.Errorf("suggest(serch) = %v", got)
	}
	if got := suggest("zzzz"); len(got) != 0 {
		t.Errorf("suggest(zzzz) = %v, want none", got)
	}
}

// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/osh-cli/osh/internal/odoorpc"
	"github.com/osh-cli/osh/pkg/types"
)

const (
	// Prompt starts a new command in the interactive loop.
	Prompt = "osh> "
	// ContinuationPrompt asks for the rest of an incomplete command.
	ContinuationPrompt = "... "

	// Session variables.
	EnvURL  = "ODOO_URL"
	EnvDB   = "ODOO_DB"
	EnvUser = "ODOO_USER"
)

// prelude defines commands the interactive loop understands besides exit.
const prelude = `quit() { exit "$@"; }`

type (
	// Options configure a Session.
	Options struct {
		Client *odoorpc.Client
		// Database and Username seed ODOO_DB and ODOO_USER when the client
		// is not logged in.
		Database string
		Username string

		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
		// Dir is the initial working directory; empty means the current one.
		Dir string
		// Environ is the base environment; nil means os.Environ().
		Environ []string
		Logger  *slog.Logger
	}

	// Session is one shell connected to one server.
	Session struct {
		client *odoorpc.Client
		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer
		runner *interp.Runner
		log    *slog.Logger
	}
)

// New creates a Session. The client is not contacted.
func New(opts Options) (*Session, error) {
	if opts.Client == nil {
		return nil, errors.New("shell: client is required")
	}
	s := &Session{
		client: opts.Client,
		stdin:  orReader(opts.Stdin, os.Stdin),
		stdout: orWriter(opts.Stdout, os.Stdout),
		stderr: orWriter(opts.Stderr, os.Stderr),
		log:    opts.Logger,
	}
	if s.log == nil {
		s.log = slog.Default()
	}

	runOpts := []interp.RunnerOption{
		interp.StdIO(s.stdin, s.stdout, s.stderr),
		interp.Env(expand.ListEnviron(s.environ(opts)...)),
		interp.CallHandler(rewriteCall),
		interp.ExecHandlers(s.execHandler),
	}
	if opts.Dir != "" {
		runOpts = append(runOpts, interp.Dir(opts.Dir))
	}
	runner, err := interp.New(runOpts...)
	if err != nil {
		return nil, fmt.Errorf("shell: create interpreter: %w", err)
	}
	s.runner = runner

	if err := s.Run(context.Background(), "prelude", strings.NewReader(prelude)); err != nil {
		return nil, fmt.Errorf("shell: %w", err)
	}
	return s, nil
}

func (s *Session) environ(opts Options) []string {
	env := opts.Environ
	if env == nil {
		env = os.Environ()
	}
	db, user := opts.Database, opts.Username
	if sess, ok := s.client.Session(); ok {
		db, user = sess.Database, sess.Username
	}
	return append(env[:len(env):len(env)],
		EnvURL+"="+s.client.BaseURL(),
		EnvDB+"="+db,
		EnvUser+"="+user,
	)
}

// Run parses and runs a script. A non-zero final status is returned as an
// interp.ExitStatus error.
func (s *Session) Run(ctx context.Context, name string, src io.Reader) error {
	prog, err := syntax.NewParser().Parse(src, name)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return s.runner.Run(ctx, prog)
}

// RunFile runs the script at path.
func (s *Session) RunFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open script: %w", err)
	}
	defer f.Close()
	return s.Run(ctx, path, f)
}

// RunCode runs code given on the command line.
func (s *Session) RunCode(ctx context.Context, code string) error {
	return s.Run(ctx, "-c", strings.NewReader(code))
}

// Exited reports whether the script called exit.
func (s *Session) Exited() bool {
	return s.runner.Exited()
}

// ExitCode maps a Run error to a process exit code.
func ExitCode(err error) types.ExitCode {
	if err == nil {
		return types.ExitSuccess
	}
	var status interp.ExitStatus
	if errors.As(err, &status) {
		return types.ExitCode(status)
	}
	return types.ExitFailure
}

func orReader(r, def io.Reader) io.Reader {
	if r == nil {
		return def
	}
	return r
}

func orWriter(w, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}

// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/osh-cli/osh/pkg/types"
)

type (
	// Process describes a program to start.
	Process struct {
		// Path is the executable; it becomes argv[0].
		Path string
		Args []string
		// Env is the full environment; nil means the current one.
		Env []string
		Dir string
	}

	// Result is the outcome of Capture.
	Result struct {
		Stdout   string
		Stderr   string
		ExitCode types.ExitCode
	}

	// Streams are the standard streams handed to children.
	Streams struct {
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// System launches real processes.
	System struct{}
)

// Output returns trimmed stdout, or trimmed stderr when stdout is empty.
func (r Result) Output() string {
	if out := strings.TrimSpace(r.Stdout); out != "" {
		return out
	}
	return strings.TrimSpace(r.Stderr)
}

// Argv returns argv as the child sees it.
func (p Process) Argv() []string {
	return append([]string{p.Path}, p.Args...)
}

func (p Process) environ() []string {
	if p.Env == nil {
		return os.Environ()
	}
	return p.Env
}

// Capture runs p to completion. A non-zero exit is reported in the Result;
// only a failure to start the program is an error.
func (System) Capture(ctx context.Context, p Process) (Result, error) {
	cmd := exec.CommandContext(ctx, p.Path, p.Args...)
	cmd.Env = p.environ()
	cmd.Dir = p.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return result, fmt.Errorf("failed to run %s: %w", p.Path, err)
		}
		result.ExitCode = types.ExitCodeOf(err)
	}
	return result, nil
}

// Run runs p with the given streams and waits for it. The returned error
// is an *exec.ExitError for non-zero exits.
func (System) Run(ctx context.Context, p Process, s Streams) error {
	cmd := exec.CommandContext(ctx, p.Path, p.Args...)
	cmd.Env = p.environ()
	cmd.Dir = p.Dir
	cmd.Stdin = s.Stdin
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr
	return cmd.Run()
}

// Exec replaces the current process with p. It only returns on failure.
func (System) Exec(p Process) error {
	return execProcess(p)
}

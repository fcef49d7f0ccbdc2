// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// lineReader yields input lines without their newline.
type lineReader interface {
	ReadLine(prompt string) (string, error)
}

// Interactive reads commands until exit, quit or end of input. Line editing
// and history are available when stdin is a terminal. The returned error
// carries the status passed to exit, if any.
func (s *Session) Interactive(ctx context.Context) error {
	lr, restore := s.newLineReader()
	defer restore()

	var (
		buf    strings.Builder
		parser = syntax.NewParser()
	)
	for {
		prompt := Prompt
		if buf.Len() > 0 {
			prompt = ContinuationPrompt
		}
		line, err := lr.ReadLine(prompt)
		if errors.Is(err, io.EOF) && buf.Len() == 0 && line == "" {
			return nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read input: %w", err)
		}
		buf.WriteString(line)
		buf.WriteByte('\n')

		prog, perr := parser.Parse(strings.NewReader(buf.String()), "")
		if perr != nil && syntax.IsIncomplete(perr) && err == nil {
			continue
		}
		buf.Reset()
		if perr != nil {
			fmt.Fprintln(s.stderr, perr)
			continue
		}

		runErr := s.runner.Run(ctx, prog)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.runner.Exited() {
			return runErr
		}
		var status interp.ExitStatus
		if runErr != nil && !errors.As(runErr, &status) {
			fmt.Fprintln(s.stderr, runErr)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
	}
}

func (s *Session) newLineReader() (lineReader, func()) {
	if f, ok := s.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return newTermReader(f, s.stdout), func() {}
	}
	return &plainReader{r: bufio.NewReader(s.stdin), prompt: s.stderr}, func() {}
}

// plainReader is used when stdin is not a terminal. Prompts go to stderr
// so piped output stays clean.
type plainReader struct {
	r      *bufio.Reader
	prompt io.Writer
}

func (p *plainReader) ReadLine(prompt string) (string, error) {
	fmt.Fprint(p.prompt, prompt)
	line, err := p.r.ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}

// termReader puts the terminal in raw mode only while a line is edited, so
// commands run with the normal line discipline.
type termReader struct {
	fd int
	t  *term.Terminal
}

func newTermReader(in *os.File, out io.Writer) *termReader {
	rw := struct {
		io.Reader
		io.Writer
	}{in, out}
	return &termReader{fd: int(in.Fd()), t: term.NewTerminal(rw, Prompt)}
}

func (tr *termReader) ReadLine(prompt string) (string, error) {
	state, err := term.MakeRaw(tr.fd)
	if err != nil {
		return "", fmt.Errorf("enter raw mode: %w", err)
	}
	defer term.Restore(tr.fd, state) //nolint:errcheck // best effort

	if w, h, err := term.GetSize(tr.fd); err == nil {
		_ = tr.t.SetSize(w, h)
	}
	tr.t.SetPrompt(prompt)
	return tr.t.ReadLine()
}

// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultGrace is how long a child may take to exit after an interrupt
// before it is killed.
const DefaultGrace = 5 * time.Second

type (
	// Supervisor runs one child at a time and can replace it.
	Supervisor struct {
		proc    Process
		streams Streams
		grace   time.Duration
		log     *slog.Logger

		mu    sync.Mutex
		child *child
	}

	child struct {
		cmd  *exec.Cmd
		done chan struct{}
		// stopped is set before the supervisor signals the child.
		stopped atomic.Bool
	}
)

// NewSupervisor creates a Supervisor for p. A zero grace means DefaultGrace.
func NewSupervisor(p Process, s Streams, grace time.Duration, logger *slog.Logger) *Supervisor {
	if grace <= 0 {
		grace = DefaultGrace
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{proc: p, streams: s, grace: grace, log: logger}
}

// Start launches the child. It is an error to start a running Supervisor.
func (s *Supervisor) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.child != nil && !s.child.exited() {
		return errors.New("process already running")
	}
	return s.startLocked()
}

// Restart stops the running child, if any, and starts a new one.
func (s *Supervisor) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	return s.startLocked()
}

// Stop interrupts the child and waits for it, killing it after the grace
// period.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
}

// Pid returns the process id of the running child, or 0.
func (s *Supervisor) Pid() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.child == nil || s.child.exited() {
		return 0
	}
	return s.child.cmd.Process.Pid
}

func (s *Supervisor) startLocked() error {
	cmd := exec.Command(s.proc.Path, s.proc.Args...)
	cmd.Env = s.proc.environ()
	cmd.Dir = s.proc.Dir
	cmd.Stdin = s.streams.Stdin
	cmd.Stdout = s.streams.Stdout
	cmd.Stderr = s.streams.Stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", s.proc.Path, err)
	}

	c := &child{cmd: cmd, done: make(chan struct{})}
	go func() {
		err := cmd.Wait()
		if !c.stopped.Load() {
			s.log.Warn("child exited", "path", s.proc.Path, "pid", cmd.Process.Pid, "error", err)
		}
		close(c.done)
	}()
	s.child = c
	s.log.Debug("child started", "path", s.proc.Path, "pid", cmd.Process.Pid)
	return nil
}

func (s *Supervisor) stopLocked() {
	c := s.child
	if c == nil || c.exited() {
		return
	}

	c.stopped.Store(true)
	// Interrupt is not deliverable on every platform.
	if err := c.cmd.Process.Signal(os.Interrupt); err != nil {
		_ = c.cmd.Process.Kill()
	}

	select {
	case <-c.done:
	case <-time.After(s.grace):
		s.log.Warn("child ignored interrupt, killing", "pid", c.cmd.Process.Pid)
		_ = c.cmd.Process.Kill()
		<-c.done
	}
}

func (c *child) exited() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

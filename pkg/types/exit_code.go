// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"
)

// ErrInvalidExitCode is wrapped by Validate errors.
var ErrInvalidExitCode = errors.New("invalid exit code")

// ExitCode is a process exit status, 0 to 255 on every platform osh
// propagates codes from.
type ExitCode int

const (
	ExitSuccess ExitCode = 0
	// ExitFailure covers user and environment errors reported by osh itself.
	ExitFailure ExitCode = 1
)

// Validate rejects codes outside 0-255.
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return fmt.Errorf("%w %d (must be in range 0-255)", ErrInvalidExitCode, int(c))
	}
	return nil
}

func (c ExitCode) IsSuccess() bool { return c == ExitSuccess }

func (c ExitCode) String() string { return strconv.Itoa(int(c)) }

// ExitCodeOf is the code a child's error should turn into: success for nil,
// the child's own non-zero status for an *exec.ExitError, and ExitFailure
// for everything else, including a child killed by a signal.
func ExitCodeOf(err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := ExitCode(exitErr.ExitCode()); code != ExitSuccess && code.Validate() == nil {
			return code
		}
	}
	return ExitFailure
}

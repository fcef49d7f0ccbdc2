// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/osh-cli/osh/pkg/types"
)

// ExitError ends a command with a specific exit code. With a nil Err the
// command has already told the user what went wrong and nothing more is
// printed; shell scripts and "status" outside a project use it that way.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

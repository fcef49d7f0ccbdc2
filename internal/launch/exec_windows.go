// SPDX-License-Identifier: MPL-2.0

//go:build windows

package launch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/osh-cli/osh/pkg/types"
)

// Windows cannot replace a process image. The child inherits the console
// and osh exits with its status once it ends.
func execProcess(p Process) error {
	err := System{}.Run(context.Background(), p, Streams{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr})
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return fmt.Errorf("run %s: %w", p.Path, err)
	}
	os.Exit(int(types.ExitCodeOf(err)))
	return nil
}

// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package launch

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func execProcess(p Process) error {
	if err := unix.Exec(p.Path, p.Argv(), p.environ()); err != nil {
		return fmt.Errorf("exec %s: %w", p.Path, err)
	}
	return nil
}

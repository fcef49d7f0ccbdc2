// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"errors"
	"syscall"
)

const (
	errnoTooManyOpenFiles = syscall.Errno(4)
	errnoInvalidHandle    = syscall.Errno(6)
	errnoNotEnoughMemory  = syscall.Errno(8)
)

// Handle exhaustion or a vanished watched directory leave
// ReadDirectoryChangesW unusable.
func isFatalError(err error) bool {
	return errors.Is(err, errnoTooManyOpenFiles) ||
		errors.Is(err, errnoInvalidHandle) ||
		errors.Is(err, errnoNotEnoughMemory)
}

// SPDX-License-Identifier: MPL-2.0

package bootstrap

import "fmt"

type (
	// CloneError reports a failed source clone.
	CloneError struct {
		Repository string
		Err        error
	}

	// VenvError reports a failed virtual environment creation.
	VenvError struct {
		Python string
		Dir    string
		Err    error
	}

	// InstallError reports a failed "pip install -e".
	InstallError struct {
		Pip     string
		Sources string
		Err     error
	}
)

func (e *CloneError) Error() string {
	return fmt.Sprintf("git clone failed: %v", e.Err)
}

func (e *CloneError) Unwrap() error { return e.Err }

func (e *VenvError) Error() string {
	return fmt.Sprintf("failed to create virtual environment with %s: %v", e.Python, e.Err)
}

func (e *VenvError) Unwrap() error { return e.Err }

func (e *InstallError) Error() string {
	return fmt.Sprintf("pip install failed: %v", e.Err)
}

func (e *InstallError) Unwrap() error { return e.Err }

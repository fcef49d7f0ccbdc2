// SPDX-License-Identifier: MPL-2.0

package addons

const (
	// SeverityWarning indicates a recoverable scan warning.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a subtree that could not be scanned.
	SeverityError Severity = "error"

	// CodeUnreadableDir is reported when a directory cannot be listed.
	CodeUnreadableDir = "addons_dir_unreadable"
	// CodeSymlinkCycle is reported when a symlink leads back into the current walk.
	CodeSymlinkCycle = "addons_symlink_cycle"
	// CodeBrokenSymlink is reported for a symlink whose target does not exist.
	CodeBrokenSymlink = "addons_symlink_broken"
)

type (
	// Severity represents diagnostic severity.
	Severity string

	// Diagnostic describes a part of the tree the scan had to skip.
	Diagnostic struct {
		Severity Severity
		// Code is a machine-readable identifier such as "addons_dir_unreadable".
		Code    string
		Message string
		Path    string
		Cause   error
	}
)

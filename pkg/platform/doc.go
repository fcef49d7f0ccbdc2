// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// It centralizes the OS name literals and the per-platform names osh needs
// when it looks inside a Python virtual environment.
package platform

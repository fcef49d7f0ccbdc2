// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the CLI commands for osh.
//
// Commands are listed in a static registry (registry.go) and built against
// an App, the composition root holding configuration, process launching and
// I/O. Errors returned from commands are rendered once, by the error handler
// installed in Execute.
package cmd

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// newLogger returns the diagnostic logger: warnings by default, everything
// with --verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return slog.New(log.NewWithOptions(w, log.Options{
		Prefix: "osh",
		Level:  level,
	}))
}

// newProgressLogger returns the logger for step-by-step progress, such as
// the messages printed by init.
func newProgressLogger(w io.Writer, verbose bool) *slog.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return slog.New(log.NewWithOptions(w, log.Options{
		Prefix: "osh",
		Level:  level,
	}))
}

// SPDX-License-Identifier: MPL-2.0

// Package config handles osh configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/osh/config.cue (or the XDG equivalent on Linux,
// ~/Library/Application Support/osh/config.cue on macOS, %APPDATA%\osh\config.cue
// on Windows). Every value has a built-in default, so a missing file is not an error.
// The ODOO_URL environment variable overrides the configured default DSN.
//
// Files are validated against an embedded CUE schema (config_schema.cue) before they
// are merged over the defaults.
package config

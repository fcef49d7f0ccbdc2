// SPDX-License-Identifier: MPL-2.0

// Package bootstrap prepares a directory for an Odoo project: it links or
// clones the server sources, creates a virtual environment, installs the
// server into it and records the result in the project file.
package bootstrap

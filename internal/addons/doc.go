// SPDX-License-Identifier: MPL-2.0

// Package addons finds Odoo addon directories below a base directory.
//
// A directory is an addon when it directly contains __manifest__.py or the
// legacy __openerp__.py. The walk is bounded by a maximum depth, skips
// version-control, virtual-environment and cache directories as well as
// anything hidden, and keeps descending into addons because addons may nest.
//
// Problems below the base directory never abort a scan. They are returned
// as Diagnostics next to the addons that were found.
package addons

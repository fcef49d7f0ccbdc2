// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries what osh was doing, which path or endpoint was involved
// and what the user can try next. The issue catalog holds longer Markdown help pages
// for the failures users hit most often; the CLI renders them with glamour.
package issue

// SPDX-License-Identifier: MPL-2.0

// Package watch reports batches of changed source files under a set of
// addon directories. "osh run --watch" uses it to restart the server.
package watch

// SPDX-License-Identifier: MPL-2.0

// Package cueutil wraps the CUE compile, unify, validate and decode sequence
// osh uses for its configuration file, and turns CUE errors into messages
// that carry the offending field path.
package cueutil

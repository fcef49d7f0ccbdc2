// SPDX-License-Identifier: MPL-2.0

// Package project knows what an osh project looks like on disk.
//
// A project root is the nearest directory holding the marker directory
// (".osh" by default). Below it live the virtual environment, the link to
// the server sources and the project file. Nothing here is cached: every
// lookup reflects the filesystem at the time of the call.
package project

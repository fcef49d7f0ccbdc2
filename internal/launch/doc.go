// SPDX-License-Identifier: MPL-2.0

// Package launch starts the processes osh hands work to.
//
// Exec is a terminal launch: on success the osh process image is replaced
// and the call never returns. Capture runs a program to completion and
// returns its output. Supervisor keeps a child running and restarts it on
// request, which "osh run --watch" uses.
package launch

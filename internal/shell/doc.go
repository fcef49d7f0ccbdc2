// SPDX-License-Identifier: MPL-2.0

// Package shell implements "osh shell": a POSIX shell session, run by the
// mvdan.cc/sh interpreter, with extra commands that talk to an Odoo server
// over JSON-RPC. Anything that is not an Odoo command runs as usual.
package shell

// SPDX-License-Identifier: MPL-2.0

// Package odoorpc is a small client for the Odoo JSON-RPC endpoint (/jsonrpc).
//
// It covers the calls osh makes: the server version, the database list,
// login, and execute_kw on models once a session is established.
package odoorpc

// SPDX-License-Identifier: MPL-2.0

// Command osh drives a local Odoo server from the terminal.
package main

import cmd "github.com/osh-cli/osh/cmd/osh"

func main() {
	cmd.Execute()
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/spf13/cobra"

// commandSpec pairs a command name with its constructor.
type commandSpec struct {
	name  string
	build func(app *App) *cobra.Command
}

// commandRegistry is the fixed set of top-level commands, in help order.
var commandRegistry = []commandSpec{
	{name: "shell", build: newShellCommand},
	{name: "info", build: newInfoCommand},
	{name: "init", build: newInitCommand},
	{name: "status", build: newStatusCommand},
	{name: "run", build: newRunCommand},
	{name: "addons", build: newAddonsCommand},
	{name: "config", build: newConfigCommand},
}

func init() {
	// Help lists commands in registry order.
	cobra.EnableCommandSorting = false
}

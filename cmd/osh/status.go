// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/osh-cli/osh/internal/addons"
	"github.com/osh-cli/osh/internal/launch"
	"github.com/osh-cli/osh/internal/project"
)

func newStatusCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the project directory and Odoo version",
		Long: `Show the project directory and, when the Odoo executable can be found,
the version it reports.

The executable is looked up in the project's virtual environment, then in
the linked sources under .osh/odoo, then on PATH.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, app)
		},
	}
}

func runStatus(cmd *cobra.Command, app *App) error {
	root, err := app.projectRoot()
	if errors.Is(err, errNotInProject) {
		fmt.Fprintln(app.stderr, errNotInProject.Error())
		return &ExitError{Code: 1}
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "Project directory: %s\n", root)

	exe, found := app.locator().Find(root)
	if !found {
		fmt.Fprintln(app.stderr, "Could not determine Odoo executable")
		return nil
	}
	app.log().Debug("using executable", "path", exe.Path, "origin", exe.Origin.String())

	res, err := app.Launcher.Capture(cmd.Context(), launch.Process{Path: exe.Path, Args: []string{"--version"}})
	if err != nil {
		fmt.Fprintf(app.stderr, "Failed to run %s: %v\n", exe.Path, err)
	} else {
		fmt.Fprintf(app.stdout, "Odoo version: %s\n", res.Output())
	}

	if recorded := recordedExecutable(app, root); recorded != "" && recorded != exe.Path {
		fmt.Fprintf(app.stdout, "Recorded executable: %s\n", recorded)
	}

	opts := addons.OptionsFromConfig(app.loadedConfig())
	opts.Logger = app.log()
	scan, err := addons.NewScanner(opts).Discover(root)
	if err != nil {
		app.log().Warn("addon scan failed", "error", err)
		return nil
	}
	fmt.Fprintf(app.stdout, "Addon directories: %d\n", len(scan.Paths))
	return nil
}

// recordedExecutable returns the bin written by "osh init" when it still
// exists.
func recordedExecutable(app *App, root string) string {
	f, found, err := project.ReadFile(app.layout().ProjectFilePath(root))
	if err != nil {
		app.log().Warn("ignoring unreadable project file", "error", err)
		return ""
	}
	if !found || f.Odoo.Bin == "" {
		return ""
	}
	if info, err := os.Stat(f.Odoo.Bin); err != nil || !info.Mode().IsRegular() {
		return ""
	}
	return f.Odoo.Bin
}

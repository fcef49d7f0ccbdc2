// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/osh-cli/osh/internal/addons"
	"github.com/osh-cli/osh/internal/issue"
)

type addonsFlags struct {
	maxDepth int
	exclude  []string
	pathList bool
}

func newAddonsCommand(app *App) *cobra.Command {
	var flags addonsFlags

	cmd := &cobra.Command{
		Use:   "addons [directory]",
		Short: "List addon directories below a directory",
		Long: `List Odoo addon directories, that is directories holding a
__manifest__.py or __openerp__.py file.

The scan starts at the given directory, or at the project root when run
inside a project, or at the working directory otherwise. Hidden directories,
virtual environments and caches are skipped.`,
		Example: `  osh addons
  osh addons ~/work/shop --max-depth 5 --exclude 'tests/**'
  osh run -- --addons-path="$(osh addons --path-list)"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := addonsBase(app, args)
			if err != nil {
				return err
			}
			opts := addons.OptionsFromConfig(app.loadedConfig())
			opts.Logger = app.log()
			if cmd.Flags().Changed("max-depth") {
				opts.MaxDepth = flags.maxDepth
			}
			opts.Exclude = append(opts.Exclude, flags.exclude...)
			return listAddons(app, base, opts, flags.pathList)
		},
	}

	cmd.Flags().IntVar(&flags.maxDepth, "max-depth", 0, "directory levels to descend (default from config)")
	cmd.Flags().StringArrayVar(&flags.exclude, "exclude", nil, "glob of names or relative paths to skip (repeatable)")
	cmd.Flags().BoolVar(&flags.pathList, "path-list", false, "print one comma-separated line for --addons-path")
	return cmd
}

func addonsBase(app *App, args []string) (string, error) {
	if len(args) == 1 {
		return filepath.Abs(args[0])
	}
	root, err := app.projectRoot()
	if errors.Is(err, errNotInProject) {
		return app.Getwd()
	}
	return root, err
}

func listAddons(app *App, base string, opts addons.Options, pathList bool) error {
	if opts.MaxDepth < 0 {
		return issue.NewErrorContext().
			WithOperation("scan addons").
			WithMessage(fmt.Sprintf("--max-depth must not be negative, got %d", opts.MaxDepth)).
			BuildError()
	}

	res, err := addons.NewScanner(opts).Discover(base)
	if err != nil {
		return err
	}
	for _, d := range res.Diagnostics {
		fmt.Fprintln(app.stderr, WarningStyle.Render(string(d.Severity)+":")+" "+d.Message)
	}

	switch {
	case pathList:
		fmt.Fprintln(app.stdout, res.AddonsPath())
	case isTerminal(app.stdout):
		fmt.Fprintln(app.stdout, renderAddonsTable(base, res.Paths))
	default:
		for _, p := range res.Paths {
			fmt.Fprintln(app.stdout, p)
		}
	}
	return nil
}

func renderAddonsTable(base string, paths []string) string {
	if len(paths) == 0 {
		return SubtitleStyle.Render("No addon directories found below " + base)
	}

	rows := make([][]string, 0, len(paths))
	for i, p := range paths {
		rel, err := filepath.Rel(base, p)
		if err != nil {
			rel = p
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), rel, p})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SubtitleStyle).
		Headers("#", "Directory", "Path").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		String()
}

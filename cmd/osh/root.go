// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/osh-cli/osh/internal/issue"
	"github.com/osh-cli/osh/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree for app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "osh",
		Short: "Odoo shell, hack on your Odoo server from the terminal",
		Long: TitleStyle.Render("osh") + SubtitleStyle.Render(" - hack on your Odoo server from the comfort of your terminal") + `

osh sets up a project directory with Odoo sources and a virtual
environment, runs the server, and connects to it over JSON-RPC.

` + SubtitleStyle.Render("Quick Start:") + `
  osh init              Link or clone Odoo and install it into .venv
  osh run -- -d demo    Start the server with extra arguments
  osh status            Show the project and server version
  osh shell             Open a shell connected to the server`,
		SilenceUsage:  true,
		SilenceErrors: true,

		// Flags before a subcommand are parsed here, which is the only
		// place "osh run" can take them from.
		TraverseChildren: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/osh/config.cue)")

	rootCmd.SetIn(app.stdin)
	rootCmd.SetOut(app.stdout)
	// Wrapped so fang always routes errors through the handler below.
	rootCmd.SetErr(plainWriter{app.stderr})

	for _, spec := range commandRegistry {
		rootCmd.AddCommand(spec.build(app))
	}
	return rootCmd
}

// Execute runs osh with the process arguments and exits.
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(int(types.ExitFailure))
	}

	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.handleError),
	); err != nil {
		os.Exit(int(exitCodeOf(err)))
	}
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// handleError renders a command error once. ExitErrors without a cause
// were already reported by the command.
func (a *App) handleError(w io.Writer, _ fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	fmt.Fprintln(w, ErrorStyle.Render("Error:")+" "+formatErrorForDisplay(err, a.flags.verbose))

	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.IssueID != 0 {
		renderIssuePage(w, svcErr.IssueID)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

func exitCodeOf(err error) types.ExitCode {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code != types.ExitSuccess {
		return exitErr.Code
	}
	return types.ExitFailure
}

// plainWriter hides the concrete type of a writer.
type plainWriter struct{ io.Writer }

// setup loads configuration and installs the logger. It runs before every
// command.
func (a *App) setup(ctx context.Context) error {
	wd, err := a.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := a.Config.Load(ctx, a.loadOptions(wd))
	if err != nil {
		if a.flags.configPath != "" {
			return newServiceError(err, issue.ConfigLoadFailedId)
		}
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, a.flags.verbose))
		cfg = a.defaultConfig()
	}
	a.cfg = cfg

	if !a.flags.verbose {
		a.flags.verbose = cfg.UI.Verbose
	}
	a.logger = newLogger(a.stderr, a.flags.verbose)
	slog.SetDefault(a.logger)
	return nil
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/osh-cli/osh/internal/addons"
	"github.com/osh-cli/osh/internal/issue"
	"github.com/osh-cli/osh/internal/launch"
	"github.com/osh-cli/osh/internal/watch"
)

// runArgs are the arguments of "osh run" after its own flags are removed.
type runArgs struct {
	watch bool
	help  bool
	extra []string
}

func newRunCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run [--watch] [--] [odoo arguments...]",
		Short: "Run the project's Odoo executable",
		Long: `Run the project's Odoo executable, passing every argument through
unchanged. osh replaces itself with the server process.

With --watch, osh keeps the server as a child process instead and restarts
it whenever a Python, XML, CSV, JavaScript or SCSS file changes in one of
the project's addon directories.

Every argument after the subcommand except --watch and --help belongs to
Odoo, so the osh --config and --verbose flags go before it.`,
		Example: `  osh run -- -d demo --dev=all
  osh run --config odoo.conf
  osh --config osh.cue run --watch -- -d demo`,
		// Odoo flags are passed through, so osh parses its own.
		DisableFlagParsing: true,
		// Configuration loads once the osh flags are known, in RunE.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			ra := parseRunArgs(args)
			if ra.help {
				return cmd.Help()
			}
			if err := app.setup(cmd.Context()); err != nil {
				return err
			}
			return runRun(cmd.Context(), app, ra)
		},
	}
}

// parseRunArgs takes the leading run flags off args. Everything from the
// first other argument on belongs to Odoo; a "--" separator is dropped.
func parseRunArgs(args []string) runArgs {
	var ra runArgs
	for i, arg := range args {
		switch {
		case arg == "--watch":
			ra.watch = true
		case arg == "-h" || arg == "--help":
			ra.help = true
		case arg == "--":
			ra.extra = args[i+1:]
			return ra
		default:
			ra.extra = args[i:]
			return ra
		}
	}
	return ra
}

func runRun(ctx context.Context, app *App, ra runArgs) error {
	root, err := app.projectRoot()
	if errors.Is(err, errNotInProject) {
		return newServiceError(err, issue.NotInProjectId)
	}
	if err != nil {
		return err
	}

	exe, found := app.locator().Find(root)
	if !found {
		return newServiceError(errExecutableNotFound, issue.ExecutableNotFoundId)
	}

	fmt.Fprintf(app.stderr, "Running %s %s\n", exe.Path, strings.Join(ra.extra, " "))
	proc := launch.Process{Path: exe.Path, Args: ra.extra, Dir: root}

	if ra.watch {
		return runWatched(ctx, app, root, proc)
	}

	// Exec keeps the working directory of the caller.
	proc.Dir = ""
	if err := app.Launcher.Exec(proc); err != nil {
		return issue.NewErrorContext().
			WithOperation("start Odoo").
			WithResource(exe.Path).
			Wrap(err).
			BuildError()
	}
	return nil
}

// runWatched supervises the server and restarts it on source changes until
// ctx is canceled.
func runWatched(ctx context.Context, app *App, root string, proc launch.Process) error {
	cfg := app.loadedConfig()
	progress := newProgressLogger(app.stderr, app.flags.verbose)

	opts := addons.OptionsFromConfig(cfg)
	opts.Logger = app.log()
	scan, err := addons.NewScanner(opts).Discover(root)
	if err != nil {
		return err
	}
	roots := scan.Paths
	if len(roots) == 0 {
		roots = []string{root}
	}

	sup := launch.NewSupervisor(proc, app.streams(), 0, app.log())
	w, err := watch.New(watch.Config{
		Roots:    roots,
		Patterns: cfg.Watch.Patterns,
		Debounce: cfg.Watch.Debounce,
		Logger:   app.log(),
		OnChange: func(_ context.Context, changed []string) error {
			progress.Info("Restarting Odoo", "changed", len(changed), "first", changed[0])
			if err := sup.Restart(); err != nil {
				return err
			}
			progress.Debug("Odoo restarted", "pid", sup.Pid())
			return nil
		},
	})
	if err != nil {
		return err
	}

	if err := sup.Start(); err != nil {
		return issue.NewErrorContext().
			WithOperation("start Odoo").
			WithResource(proc.Path).
			Wrap(err).
			BuildError()
	}
	defer sup.Stop()

	progress.Info("Watching for changes", "roots", len(w.Roots()), "pid", sup.Pid())
	return w.Run(ctx)
}

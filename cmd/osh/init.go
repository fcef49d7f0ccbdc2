// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"

	"github.com/osh-cli/osh/internal/bootstrap"
	"github.com/osh-cli/osh/internal/issue"
	"github.com/osh-cli/osh/internal/launch"
)

type initFlags struct {
	repository  string
	branch      string
	skipInstall bool
	yes         bool
}

func newInitCommand(app *App) *cobra.Command {
	var flags initFlags

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialise a directory for an Odoo project",
		Long: `Initialise a directory for an Odoo project.

osh creates the directory when needed and links .osh/odoo to Odoo sources
found in it or in one of its direct children. Without local sources it
makes a shallow clone of the Odoo repository into .osh/odoo_src. It then
creates .venv, installs the sources into it in editable mode and records
the executable in .osh/config.

Running init again reuses what already exists.`,
		Example: `  osh init
  osh init ~/work/shop --branch 17.0
  osh init --repo git@github.com:me/odoo.git --yes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			return runInit(cmd.Context(), app, target, flags)
		},
	}

	cmd.Flags().StringVar(&flags.repository, "repo", "", "repository to clone when no local sources exist (default from config)")
	cmd.Flags().StringVar(&flags.branch, "branch", "", "branch to clone (default: the remote HEAD)")
	cmd.Flags().BoolVar(&flags.skipInstall, "skip-install", false, "do not run pip install")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "clone without asking")
	return cmd
}

func runInit(ctx context.Context, app *App, target string, flags initFlags) error {
	cfg := app.loadedConfig()

	opts := bootstrap.OptionsFromConfig(cfg)
	opts.Target = target
	if opts.Target == "" {
		wd, err := app.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		opts.Target = wd
	}
	if flags.repository != "" {
		opts.Repository = flags.repository
	}
	if flags.branch != "" {
		opts.Branch = flags.branch
	}
	opts.SkipInstall = flags.skipInstall

	in := app.NewInitializer(cfg, newProgressLogger(app.stderr, app.flags.verbose))
	in.LookPath = app.LookPath
	in.Streams = launch.Streams{Stdout: app.stdout, Stderr: app.stderr}

	// Subprocess output would tear through the spinner, so it is kept and
	// only shown when the step fails.
	var captured bytes.Buffer
	if isTerminal(app.stdin) && isTerminal(app.stderr) {
		if !flags.yes {
			in.Confirm = confirmPrompt
		}
		in.Streams = launch.Streams{Stdout: &captured, Stderr: &captured}
		in.Spin = spinStep(ctx, &captured, app.stderr)
	}

	res, err := in.Init(ctx, opts)
	if err != nil {
		return initError(err)
	}

	app.log().Debug("init finished",
		"cloned", res.Cloned, "linked", res.Linked,
		"venv", res.CreatedVenv, "installed", res.Installed,
		"executable", res.Executable)
	fmt.Fprintf(app.stdout, "Initialised project directory at %s\n", res.Root)
	return nil
}

func confirmPrompt(question string) (bool, error) {
	ok := true
	err := huh.NewConfirm().
		Title(question).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

// spinStep shows a spinner while step runs. On failure the step's output is
// copied to w.
func spinStep(ctx context.Context, captured *bytes.Buffer, w io.Writer) func(string, func() error) error {
	return func(title string, step func() error) error {
		captured.Reset()
		var stepErr error
		err := spinner.New().
			Title(" " + title + "…").
			Context(ctx).
			Action(func() { stepErr = step() }).
			Run()
		if err != nil {
			return err
		}
		if stepErr != nil && captured.Len() > 0 {
			_, _ = io.Copy(w, captured)
		}
		return stepErr
	}
}

// initError attaches the catalog entry matching a failed init step.
func initError(err error) error {
	var (
		cloneErr   *bootstrap.CloneError
		venvErr    *bootstrap.VenvError
		installErr *bootstrap.InstallError
	)
	switch {
	case errors.As(err, &cloneErr):
		return newServiceError(err, issue.CloneFailedId)
	case errors.As(err, &venvErr):
		return newServiceError(err, issue.VenvFailedId)
	case errors.As(err, &installErr):
		return newServiceError(err, issue.PipInstallFailedId)
	default:
		return err
	}
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"golang.org/x/term"

	"github.com/osh-cli/osh/internal/bootstrap"
	"github.com/osh-cli/osh/internal/config"
	"github.com/osh-cli/osh/internal/issue"
	"github.com/osh-cli/osh/internal/launch"
	"github.com/osh-cli/osh/internal/project"
)

//nolint:staticcheck // user-facing sentences
var (
	errNotInProject       = errors.New("Not inside an Osh project")
	errExecutableNotFound = errors.New("Could not locate Odoo executable. Run 'osh init' again.")
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer; every command is built against one App.
	App struct {
		Config         config.Provider
		Launcher       Launcher
		NewInitializer func(cfg *config.Config, logger *slog.Logger) *bootstrap.Initializer
		LookPath       func(file string) (string, error)
		LookupEnv      func(key string) (string, bool)
		Getwd          func() (string, error)

		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer

		flags  globalFlags
		cfg    *config.Config
		logger *slog.Logger
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config         config.Provider
		Launcher       Launcher
		NewInitializer func(cfg *config.Config, logger *slog.Logger) *bootstrap.Initializer
		LookPath       func(file string) (string, error)
		LookupEnv      func(key string) (string, bool)
		Getwd          func() (string, error)
		Stdin          io.Reader
		Stdout         io.Writer
		Stderr         io.Writer
	}

	// Launcher starts subordinate programs. launch.System is the production
	// implementation.
	Launcher interface {
		Capture(ctx context.Context, p launch.Process) (launch.Result, error)
		Run(ctx context.Context, p launch.Process, s launch.Streams) error
		Exec(p launch.Process) error
	}

	globalFlags struct {
		verbose    bool
		configPath string
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Launcher == nil {
		deps.Launcher = launch.System{}
	}
	if deps.NewInitializer == nil {
		deps.NewInitializer = bootstrap.NewInitializer
	}
	if deps.LookPath == nil {
		deps.LookPath = exec.LookPath
	}
	if deps.LookupEnv == nil {
		deps.LookupEnv = os.LookupEnv
	}
	if deps.Getwd == nil {
		deps.Getwd = os.Getwd
	}

	return &App{
		Config:         deps.Config,
		Launcher:       deps.Launcher,
		NewInitializer: deps.NewInitializer,
		LookPath:       deps.LookPath,
		LookupEnv:      deps.LookupEnv,
		Getwd:          deps.Getwd,
		stdin:          deps.Stdin,
		stdout:         deps.Stdout,
		stderr:         deps.Stderr,
	}, nil
}

func (a *App) loadOptions(wd string) config.LoadOptions {
	return config.LoadOptions{
		ConfigFilePath: a.flags.configPath,
		WorkDir:        wd,
		LookupEnv:      a.LookupEnv,
	}
}

// defaultConfig returns defaults with the environment override applied.
func (a *App) defaultConfig() *config.Config {
	cfg := config.DefaultConfig()
	if v, ok := a.LookupEnv(config.EnvServerURL); ok && v != "" {
		cfg.Server.DSN = v
	}
	return cfg
}

// loadedConfig returns the configuration loaded for this invocation.
func (a *App) loadedConfig() *config.Config {
	if a.cfg == nil {
		a.cfg = a.defaultConfig()
	}
	return a.cfg
}

func (a *App) log() *slog.Logger {
	if a.logger == nil {
		a.logger = newLogger(a.stderr, a.flags.verbose)
	}
	return a.logger
}

func (a *App) layout() project.Layout {
	return project.LayoutFromConfig(a.loadedConfig())
}

func (a *App) locator() *project.Locator {
	lc := project.NewLocator(a.layout())
	lc.LookPath = a.LookPath
	return lc
}

// projectRoot resolves the project containing the working directory.
func (a *App) projectRoot() (string, error) {
	wd, err := a.Getwd()
	if err != nil {
		return "", err
	}
	root, found, err := project.FindRoot(a.layout(), wd)
	if err != nil {
		return "", issue.NewErrorContext().
			WithOperation("locate project root").
			WithResource(wd).
			Wrap(err).
			BuildError()
	}
	if !found {
		return "", errNotInProject
	}
	return root, nil
}

func (a *App) streams() launch.Streams {
	return launch.Streams{Stdin: a.stdin, Stdout: a.stdout, Stderr: a.stderr}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// SPDX-License-Identifier: MPL-2.0

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/osh-cli/osh/internal/config"
	"github.com/osh-cli/osh/internal/issue"
	"github.com/osh-cli/osh/internal/launch"
	"github.com/osh-cli/osh/internal/project"
)

// ErrDeclined is returned when the user refuses the clone.
var ErrDeclined = errors.New("clone declined")

type (
	// Options are the per-invocation inputs of Init.
	Options struct {
		// Target is the project directory; empty means the working directory.
		Target      string
		Repository  string
		Branch      string
		Depth       int
		Python      string
		SkipInstall bool
	}

	// Initializer runs "osh init". Cloner and Runner are required; the rest
	// have usable zero values.
	Initializer struct {
		Layout project.Layout
		Cloner Cloner
		Runner Runner
		// Streams receive the output of venv and pip.
		Streams launch.Streams
		// Confirm is asked before cloning. Nil approves.
		Confirm func(question string) (bool, error)
		// Spin wraps long steps, e.g. with a spinner. Nil runs them directly.
		Spin func(title string, step func() error) error
		// Logger receives progress at info level.
		Logger *slog.Logger
		// LookPath finds installed executables; nil means exec.LookPath.
		LookPath func(file string) (string, error)
	}

	// Result summarizes what Init did.
	Result struct {
		Root        string
		Sources     string
		Executable  string
		Cloned      bool
		Linked      bool
		CreatedVenv bool
		Installed   bool
	}
)

// NewInitializer wires an Initializer with the real clone and process
// implementations.
func NewInitializer(cfg *config.Config, logger *slog.Logger) *Initializer {
	return &Initializer{
		Layout: project.LayoutFromConfig(cfg),
		Cloner: &GitCloner{},
		Runner: launch.System{},
		Logger: logger,
	}
}

// OptionsFromConfig seeds Options with the configured init defaults.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Repository: cfg.Init.Repository,
		Branch:     cfg.Init.Branch,
		Depth:      cfg.Init.Depth,
		Python:     cfg.Init.Python,
	}
}

// Init prepares opts.Target. It is safe to run again on an initialized
// directory: existing sources and environments are reused.
func (in *Initializer) Init(ctx context.Context, opts Options) (Result, error) {
	root, err := in.prepareTarget(opts.Target)
	if err != nil {
		return Result{}, err
	}
	res := Result{Root: root}

	marker := in.Layout.MarkerPath(root)
	if err := os.MkdirAll(marker, 0o755); err != nil {
		return res, issue.NewErrorContext().
			WithOperation("create project marker").
			WithResource(marker).
			Wrap(err).
			BuildError()
	}

	if err := in.ensureSources(ctx, root, opts, &res); err != nil {
		return res, err
	}
	if err := in.ensureVenv(ctx, root, opts, &res); err != nil {
		return res, err
	}
	if !opts.SkipInstall {
		if err := in.install(ctx, root, &res); err != nil {
			return res, err
		}
	}
	if err := in.record(root, &res); err != nil {
		return res, err
	}
	return res, nil
}

func (in *Initializer) prepareTarget(target string) (string, error) {
	if target == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		target = wd
	}
	target, err := expandHome(target)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", target, err)
	}

	if _, err := os.Stat(abs); errors.Is(err, os.ErrNotExist) {
		in.logger().Info("Creating directory " + abs + "…")
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return "", issue.NewErrorContext().
				WithOperation("create project directory").
				WithResource(abs).
				Wrap(err).
				BuildError()
		}
	} else if err != nil {
		return "", fmt.Errorf("failed to inspect %s: %w", abs, err)
	}

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return abs, nil
}

func (in *Initializer) ensureSources(ctx context.Context, root string, opts Options, res *Result) error {
	link := in.Layout.SourceLinkPath(root)
	if _, err := os.Lstat(link); err == nil {
		in.logger().Info("Using existing Odoo sources at " + link)
		res.Sources = link
		return nil
	}

	src, found := project.FindLocalSources(root, in.Layout.Executable)
	if found {
		in.logger().Info("Found existing Odoo sources at " + src)
	} else {
		src = in.Layout.ClonePath(root)
		if err := in.clone(ctx, src, opts); err != nil {
			return err
		}
		res.Cloned = true
	}

	if err := os.Symlink(src, link); err != nil {
		return issue.NewErrorContext().
			WithOperation("link Odoo sources").
			WithResource(link).
			WithSuggestion("On Windows, enable Developer Mode or run as administrator to allow symlinks").
			Wrap(err).
			BuildError()
	}
	in.logger().Info("Linked " + link + " → " + src)
	res.Sources = link
	res.Linked = true
	return nil
}

func (in *Initializer) clone(ctx context.Context, dir string, opts Options) error {
	if _, err := os.Stat(filepath.Join(dir, in.Layout.Executable)); err == nil {
		in.logger().Info("Reusing previous clone at " + dir)
		return nil
	}

	repo := opts.Repository
	if repo == "" {
		repo = config.DefaultRepository
	}

	if in.Confirm != nil {
		ok, err := in.Confirm(fmt.Sprintf("No Odoo sources found. Clone %s into %s?", repo, dir))
		if err != nil {
			return err
		}
		if !ok {
			return issue.NewErrorContext().
				WithMessage("No Odoo sources available").
				WithSuggestion("Place an Odoo checkout next to the project or rerun with --yes").
				Wrap(ErrDeclined).
				BuildError()
		}
	}

	in.logger().Info("Cloning Odoo sources into " + dir + " (shallow)…")
	err := in.spin("Cloning "+repo, func() error {
		return in.Cloner.Clone(ctx, CloneOptions{URL: repo, Dir: dir, Branch: opts.Branch, Depth: opts.Depth})
	})
	if err != nil {
		return &CloneError{Repository: repo, Err: err}
	}
	return nil
}

func (in *Initializer) ensureVenv(ctx context.Context, root string, opts Options, res *Result) error {
	venv := in.Layout.VenvPath(root)
	if _, err := os.Stat(venv); err == nil {
		in.logger().Info("Using existing virtual environment at " + venv)
		return nil
	}

	python := opts.Python
	if python == "" {
		python = config.DefaultConfig().Init.Python
	}
	in.logger().Info("Creating virtual environment at " + venv + "…")
	err := in.spin("Creating virtual environment", func() error {
		return in.Runner.Run(ctx, venvCommand(python, venv), in.Streams)
	})
	if err != nil {
		return &VenvError{Python: python, Dir: venv, Err: err}
	}
	res.CreatedVenv = true
	return nil
}

func (in *Initializer) install(ctx context.Context, root string, res *Result) error {
	pip := in.Layout.VenvBinary(root, pipName())
	in.logger().Info("Installing Odoo from " + res.Sources + " into virtualenv…")
	err := in.spin("Installing Odoo", func() error {
		return in.Runner.Run(ctx, pipInstallCommand(pip, res.Sources), in.Streams)
	})
	if err != nil {
		return &InstallError{Pip: pip, Sources: res.Sources, Err: err}
	}
	res.Installed = true
	return nil
}

func (in *Initializer) record(root string, res *Result) error {
	lc := project.NewLocator(in.Layout)
	lc.LookPath = in.LookPath
	exe, found := lc.Find(root)
	if found {
		res.Executable = exe.Path
	} else {
		res.Executable = filepath.Join(res.Sources, in.Layout.Executable)
	}

	sources := res.Sources
	if resolved, err := filepath.EvalSymlinks(sources); err == nil {
		sources = resolved
	}
	f := project.File{Odoo: project.OdooSection{Bin: res.Executable, Sources: sources}}
	if err := project.WriteFile(in.Layout.ProjectFilePath(root), f); err != nil {
		return issue.NewErrorContext().
			WithOperation("write project file").
			WithResource(in.Layout.ProjectFilePath(root)).
			Wrap(err).
			BuildError()
	}
	return nil
}

func (in *Initializer) spin(title string, step func() error) error {
	if in.Spin == nil {
		return step()
	}
	return in.Spin(title, step)
}

func (in *Initializer) logger() *slog.Logger {
	if in.Logger == nil {
		return slog.Default()
	}
	return in.Logger
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to expand %s: %w", path, err)
	}
	return filepath.Join(home, path[1:]), nil
}

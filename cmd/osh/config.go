// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"cmp"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/osh-cli/osh/internal/config"
	"github.com/osh-cli/osh/internal/dsn"
	"github.com/osh-cli/osh/internal/issue"
)

// newConfigCommand creates the `osh config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage osh configuration",
		Long: `Manage osh configuration.

Configuration is stored in:
  - Linux: ~/.config/osh/config.cue
  - macOS: ~/Library/Application Support/osh/config.cue
  - Windows: %APPDATA%\osh\config.cue

A config.cue in the working directory is used when the user file is absent.
ODOO_URL overrides server.dsn.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return initConfig(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return showConfigPath(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			fmt.Fprint(app.stdout, config.GenerateCUE(app.loadedConfig()))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	wd, err := app.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, source, err := config.LoadWithSource(ctx, app.loadOptions(wd))
	if err != nil {
		return newServiceError(err, issue.ConfigLoadFailedId)
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	w := app.stdout

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if source != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), source)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}

	section := func(name string, pairs ...[2]string) {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s:\n", keyStyle.Render(name))
		for _, kv := range pairs {
			fmt.Fprintf(w, "  %s: %s\n", kv[0], valueStyle.Render(kv[1]))
		}
	}

	section("project",
		[2]string{"marker_dir", cfg.Project.MarkerDir},
		[2]string{"venv_dir", cfg.Project.VenvDir},
		[2]string{"source_link", cfg.Project.SourceLink},
		[2]string{"clone_dir", cfg.Project.CloneDir},
		[2]string{"executable", cfg.Project.Executable},
		[2]string{"alternates", listValue(cfg.Project.Alternates)},
	)
	section("server",
		[2]string{"dsn", redactedDSN(cfg.Server.DSN)},
		[2]string{"timeout", cfg.Server.Timeout.String()},
	)
	section("addons",
		[2]string{"max_depth", fmt.Sprint(cfg.Addons.MaxDepth)},
		[2]string{"exclude", listValue(cfg.Addons.Exclude)},
	)
	section("init",
		[2]string{"repository", cfg.Init.Repository},
		[2]string{"branch", cmp.Or(cfg.Init.Branch, "(remote HEAD)")},
		[2]string{"depth", fmt.Sprint(cfg.Init.Depth)},
		[2]string{"python", cfg.Init.Python},
	)
	section("watch",
		[2]string{"patterns", listValue(cfg.Watch.Patterns)},
		[2]string{"debounce", cfg.Watch.Debounce.String()},
	)
	section("ui",
		[2]string{"verbose", fmt.Sprint(cfg.UI.Verbose)},
	)
	return nil
}

func initConfig(app *App) error {
	path, created, err := config.CreateDefaultConfig("")
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	if !created {
		fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func showConfigPath(app *App) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	path, err := config.FilePath(cfgDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(app.stdout, "Config file: %s\n", path)
	return nil
}

func listValue(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	return "[" + strings.Join(items, ", ") + "]"
}

// redactedDSN masks the password of a configured DSN.
func redactedDSN(raw string) string {
	d, err := dsn.Parse(raw)
	if err != nil {
		return raw
	}
	return d.Redacted()
}

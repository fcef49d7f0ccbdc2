// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/osh-cli/osh/internal/issue"
	"github.com/osh-cli/osh/pkg/cueutil"
	"github.com/osh-cli/osh/pkg/platform"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "osh"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the osh configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case platform.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case platform.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// FilePath returns the path of the user config file inside dir, or inside
// ConfigDir when dir is empty.
func FilePath(dir string) (string, error) {
	dir, err := configDirWithOverride(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// loadWithOptions performs option-driven config loading. It returns the
// configuration and the path of the file it was read from ("" for defaults).
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	resolvedPath, err := resolveConfigFile(opts)
	if err != nil {
		return nil, "", err
	}
	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'osh config dump' to see a valid configuration").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if dsn, ok := lookup(EnvServerURL); ok && dsn != "" {
		cfg.Server.DSN = dsn
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Fix the reported field or remove it to use the default").
			Wrap(err).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("project.marker_dir", d.Project.MarkerDir)
	v.SetDefault("project.venv_dir", d.Project.VenvDir)
	v.SetDefault("project.source_link", d.Project.SourceLink)
	v.SetDefault("project.clone_dir", d.Project.CloneDir)
	v.SetDefault("project.executable", d.Project.Executable)
	v.SetDefault("project.alternates", d.Project.Alternates)
	v.SetDefault("server.dsn", d.Server.DSN)
	v.SetDefault("server.timeout", d.Server.Timeout)
	v.SetDefault("addons.max_depth", d.Addons.MaxDepth)
	v.SetDefault("addons.exclude", d.Addons.Exclude)
	v.SetDefault("init.repository", d.Init.Repository)
	v.SetDefault("init.branch", d.Init.Branch)
	v.SetDefault("init.depth", d.Init.Depth)
	v.SetDefault("init.python", d.Init.Python)
	v.SetDefault("watch.patterns", d.Watch.Patterns)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("ui.verbose", d.UI.Verbose)
}

// resolveConfigFile picks the file to load: the explicit path when given
// (it must exist), else the user config file, else ./config.cue in the
// working directory. No file at all is not an error.
func resolveConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'osh config init' to create a default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	userPath, err := FilePath(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	if fileExists(userPath) {
		return userPath, nil
	}

	localPath := filepath.Join(opts.WorkDir, ConfigFileName+"."+ConfigFileExt)
	if fileExists(localPath) {
		return localPath, nil
	}
	return "", nil
}

func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// loadCUEIntoViper validates a CUE file against #Config and merges its
// contents over the defaults already registered in v.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := cueutil.DecodeMap(configSchema, "#Config", data, path)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default configuration into dir (ConfigDir
// when empty) unless a file is already there. It returns the file path and
// whether a new file was written.
func CreateDefaultConfig(dir string) (string, bool, error) {
	cfgPath, err := FilePath(dir)
	if err != nil {
		return "", false, err
	}

	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, false, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}
	return cfgPath, true, nil
}

// GenerateCUE renders cfg as a CUE document accepted by the schema.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// osh configuration file\n\n")

	sb.WriteString("project: {\n")
	fmt.Fprintf(&sb, "\tmarker_dir:  %q\n", cfg.Project.MarkerDir)
	fmt.Fprintf(&sb, "\tvenv_dir:    %q\n", cfg.Project.VenvDir)
	fmt.Fprintf(&sb, "\tsource_link: %q\n", cfg.Project.SourceLink)
	fmt.Fprintf(&sb, "\tclone_dir:   %q\n", cfg.Project.CloneDir)
	fmt.Fprintf(&sb, "\texecutable:  %q\n", cfg.Project.Executable)
	fmt.Fprintf(&sb, "\talternates:  %s\n", cueList(cfg.Project.Alternates))
	sb.WriteString("}\n\n")

	sb.WriteString("server: {\n")
	fmt.Fprintf(&sb, "\tdsn:     %q\n", cfg.Server.DSN)
	fmt.Fprintf(&sb, "\ttimeout: %q\n", cfg.Server.Timeout.String())
	sb.WriteString("}\n\n")

	sb.WriteString("addons: {\n")
	fmt.Fprintf(&sb, "\tmax_depth: %d\n", cfg.Addons.MaxDepth)
	fmt.Fprintf(&sb, "\texclude:   %s\n", cueList(cfg.Addons.Exclude))
	sb.WriteString("}\n\n")

	sb.WriteString("init: {\n")
	fmt.Fprintf(&sb, "\trepository: %q\n", cfg.Init.Repository)
	fmt.Fprintf(&sb, "\tbranch:     %q\n", cfg.Init.Branch)
	fmt.Fprintf(&sb, "\tdepth:      %d\n", cfg.Init.Depth)
	fmt.Fprintf(&sb, "\tpython:     %q\n", cfg.Init.Python)
	sb.WriteString("}\n\n")

	sb.WriteString("watch: {\n")
	fmt.Fprintf(&sb, "\tpatterns: %s\n", cueList(cfg.Watch.Patterns))
	fmt.Fprintf(&sb, "\tdebounce: %q\n", cfg.Watch.Debounce.String())
	sb.WriteString("}\n\n")

	sb.WriteString("ui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}

func cueList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/osh-cli/osh/pkg/platform"
)

const (
	// DefaultDSN is used when neither --dsn, ODOO_URL nor the config file name a server.
	DefaultDSN = "http://localhost:8069"
	// DefaultRepository is cloned by "osh init" when no local sources are found.
	DefaultRepository = "https://github.com/odoo/odoo.git"
	// DefaultMaxDepth bounds the addon scan below the scan root.
	DefaultMaxDepth = 3
	// EnvServerURL names the environment variable overriding server.dsn.
	EnvServerURL = "ODOO_URL"
)

// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
var ErrInvalidConfig = errors.New("invalid config")

type (
	// Config is the root configuration value. It is passed explicitly to every
	// component that needs a default instead of living in package state.
	Config struct {
		Project ProjectConfig `json:"project" mapstructure:"project"`
		Server  ServerConfig  `json:"server" mapstructure:"server"`
		Addons  AddonsConfig  `json:"addons" mapstructure:"addons"`
		Init    InitConfig    `json:"init" mapstructure:"init"`
		Watch   WatchConfig   `json:"watch" mapstructure:"watch"`
		UI      UIConfig      `json:"ui" mapstructure:"ui"`
	}

	// ProjectConfig names the entries that make up an osh project on disk.
	ProjectConfig struct {
		// MarkerDir is the directory whose presence marks a project root.
		MarkerDir string `json:"marker_dir" mapstructure:"marker_dir"`
		// VenvDir is the virtual environment directory below the root.
		VenvDir string `json:"venv_dir" mapstructure:"venv_dir"`
		// SourceLink is the link to the server sources inside MarkerDir.
		SourceLink string `json:"source_link" mapstructure:"source_link"`
		// CloneDir receives the shallow clone inside MarkerDir.
		CloneDir string `json:"clone_dir" mapstructure:"clone_dir"`
		// Executable is the launcher file name inside the venv and the sources.
		Executable string `json:"executable" mapstructure:"executable"`
		// Alternates are searched on PATH, in order, as a last resort.
		Alternates []string `json:"alternates" mapstructure:"alternates"`
	}

	// ServerConfig describes the RPC endpoint used by shell and info.
	ServerConfig struct {
		DSN     string        `json:"dsn" mapstructure:"dsn"`
		Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
	}

	// AddonsConfig controls addon discovery.
	AddonsConfig struct {
		MaxDepth int      `json:"max_depth" mapstructure:"max_depth"`
		Exclude  []string `json:"exclude" mapstructure:"exclude"`
	}

	// InitConfig controls "osh init".
	InitConfig struct {
		Repository string `json:"repository" mapstructure:"repository"`
		Branch     string `json:"branch" mapstructure:"branch"`
		Depth      int    `json:"depth" mapstructure:"depth"`
		Python     string `json:"python" mapstructure:"python"`
	}

	// WatchConfig controls "osh run --watch".
	WatchConfig struct {
		Patterns []string      `json:"patterns" mapstructure:"patterns"`
		Debounce time.Duration `json:"debounce" mapstructure:"debounce"`
	}

	// UIConfig holds presentation settings.
	UIConfig struct {
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// InvalidConfigError is returned when a loaded configuration fails the
	// checks CUE cannot express.
	InvalidConfigError struct {
		Field  string
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Reason)
}

// Unwrap returns ErrInvalidConfig so callers can use errors.Is for programmatic detection.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			MarkerDir:  ".osh",
			VenvDir:    ".venv",
			SourceLink: "odoo",
			CloneDir:   "odoo_src",
			Executable: "odoo-bin",
			Alternates: []string{"odoo", "odoo-bin"},
		},
		Server: ServerConfig{
			DSN:     DefaultDSN,
			Timeout: 30 * time.Second,
		},
		Addons: AddonsConfig{
			MaxDepth: DefaultMaxDepth,
			Exclude:  []string{},
		},
		Init: InitConfig{
			Repository: DefaultRepository,
			Depth:      1,
			Python:     platform.DefaultPython(),
		},
		Watch: WatchConfig{
			Patterns: []string{"**/*.py", "**/*.xml", "**/*.csv", "**/*.js", "**/*.scss"},
			Debounce: time.Second,
		},
	}
}

// Validate checks the constraints that the CUE schema cannot see, such as
// glob syntax and values supplied through defaults or the environment.
func (c *Config) Validate() error {
	required := []struct{ field, value string }{
		{"project.marker_dir", c.Project.MarkerDir},
		{"project.venv_dir", c.Project.VenvDir},
		{"project.source_link", c.Project.SourceLink},
		{"project.executable", c.Project.Executable},
		{"server.dsn", c.Server.DSN},
	}
	for _, r := range required {
		if r.value == "" {
			return &InvalidConfigError{Field: r.field, Reason: "must not be empty"}
		}
	}

	if c.Addons.MaxDepth < 0 {
		return &InvalidConfigError{Field: "addons.max_depth", Reason: "must not be negative"}
	}
	for i, pattern := range c.Addons.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return &InvalidConfigError{Field: fmt.Sprintf("addons.exclude[%d]", i), Reason: fmt.Sprintf("bad glob %q", pattern)}
		}
	}
	for i, pattern := range c.Watch.Patterns {
		if !doublestar.ValidatePattern(pattern) {
			return &InvalidConfigError{Field: fmt.Sprintf("watch.patterns[%d]", i), Reason: fmt.Sprintf("bad glob %q", pattern)}
		}
	}
	return nil
}

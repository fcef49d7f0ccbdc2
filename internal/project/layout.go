// SPDX-License-Identifier: MPL-2.0

package project

import (
	"path/filepath"
	"slices"

	"github.com/osh-cli/osh/internal/config"
	"github.com/osh-cli/osh/pkg/platform"
)

// ProjectFileName is the project file inside the marker directory.
const ProjectFileName = "config"

// Layout names the entries of a project tree.
type Layout struct {
	MarkerDir  string
	VenvDir    string
	SourceLink string
	CloneDir   string
	Executable string
	Alternates []string
}

// DefaultLayout returns the layout built from the default configuration.
func DefaultLayout() Layout {
	return LayoutFromConfig(config.DefaultConfig())
}

// LayoutFromConfig copies the project section of cfg.
func LayoutFromConfig(cfg *config.Config) Layout {
	p := cfg.Project
	return Layout{
		MarkerDir:  p.MarkerDir,
		VenvDir:    p.VenvDir,
		SourceLink: p.SourceLink,
		CloneDir:   p.CloneDir,
		Executable: p.Executable,
		Alternates: slices.Clone(p.Alternates),
	}
}

// MarkerPath is <root>/<marker>.
func (l Layout) MarkerPath(root string) string {
	return filepath.Join(root, l.MarkerDir)
}

// VenvPath is <root>/<venv>.
func (l Layout) VenvPath(root string) string {
	return filepath.Join(root, l.VenvDir)
}

// VenvBinary is the path of name inside the venv bin directory.
func (l Layout) VenvBinary(root, name string) string {
	return filepath.Join(l.VenvPath(root), platform.VenvBinDir(), name)
}

// SourceLinkPath is <root>/<marker>/<source link>.
func (l Layout) SourceLinkPath(root string) string {
	return filepath.Join(l.MarkerPath(root), l.SourceLink)
}

// ClonePath is where "osh init" clones the sources.
func (l Layout) ClonePath(root string) string {
	return filepath.Join(l.MarkerPath(root), l.CloneDir)
}

// ProjectFilePath is <root>/<marker>/config.
func (l Layout) ProjectFilePath(root string) string {
	return filepath.Join(l.MarkerPath(root), ProjectFileName)
}

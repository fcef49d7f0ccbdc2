// SPDX-License-Identifier: MPL-2.0

package project

import (
	"os"
	"os/exec"
	"path/filepath"
)

// Origin tells which rule located an executable.
type Origin int

const (
	// OriginVenv is the project's virtual environment.
	OriginVenv Origin = iota + 1
	// OriginSources is the linked source tree.
	OriginSources
	// OriginPath is the PATH search.
	OriginPath
)

// String returns a short human description of the origin.
func (o Origin) String() string {
	switch o {
	case OriginVenv:
		return "virtual environment"
	case OriginSources:
		return "linked sources"
	case OriginPath:
		return "PATH"
	default:
		return "unknown"
	}
}

// Executable is a located server launcher.
type Executable struct {
	Path   string
	Origin Origin
}

// Locator finds the server launcher for a project.
type Locator struct {
	Layout Layout
	// LookPath searches the executable search path; nil means exec.LookPath.
	LookPath func(file string) (string, error)
}

// NewLocator returns a Locator using exec.LookPath.
func NewLocator(l Layout) *Locator {
	return &Locator{Layout: l}
}

// Find applies the lookup rules in order and returns the first match:
//
//  1. <root>/<venv>/<bin>/<executable>, a regular file
//  2. <root>/<marker>/<source link>/<executable>, a regular file, returned
//     with symlinks resolved
//  3. each alternate name on the search path
func (lc *Locator) Find(root string) (Executable, bool) {
	l := lc.Layout

	venvExe := l.VenvBinary(root, l.Executable)
	if isRegularFile(venvExe) {
		return Executable{Path: venvExe, Origin: OriginVenv}, true
	}

	srcExe := filepath.Join(l.SourceLinkPath(root), l.Executable)
	if isRegularFile(srcExe) {
		return Executable{Path: resolved(srcExe), Origin: OriginSources}, true
	}

	lookPath := lc.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	for _, name := range l.Alternates {
		if p, err := lookPath(name); err == nil {
			return Executable{Path: p, Origin: OriginPath}, true
		}
	}

	return Executable{}, false
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// SPDX-License-Identifier: MPL-2.0

package project

import (
	"os"
	"path/filepath"
)

// FindLocalSources looks for a server checkout that "osh init" can link
// instead of cloning: base itself, or a direct child directory of base,
// holding the executable as a regular file. Children are tried in name
// order and the match is returned with symlinks resolved.
func FindLocalSources(base, executable string) (string, bool) {
	if isRegularFile(filepath.Join(base, executable)) {
		return resolved(base), true
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		child := filepath.Join(base, e.Name())
		if info, err := os.Stat(child); err != nil || !info.IsDir() {
			continue
		}
		if isRegularFile(filepath.Join(child, executable)) {
			return resolved(child), true
		}
	}
	return "", false
}

func resolved(path string) string {
	if r, err := filepath.EvalSymlinks(path); err == nil {
		return r
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

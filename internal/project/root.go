// SPDX-License-Identifier: MPL-2.0

package project

import (
	"fmt"
	"os"
	"path/filepath"
)

// FindRoot returns the closest directory, starting at start and walking up,
// that contains the marker entry. Any kind of entry counts, not only a
// directory. An empty start means the working directory.
//
// Reaching the filesystem root without a match returns found=false and a
// nil error; only failing to resolve start is an error.
func FindRoot(l Layout, start string) (root string, found bool, err error) {
	if start == "" {
		start, err = os.Getwd()
		if err != nil {
			return "", false, fmt.Errorf("find project root: %w", err)
		}
	}

	abs, err := filepath.Abs(start)
	if err != nil {
		return "", false, fmt.Errorf("find project root: abs path: %w", err)
	}
	cur, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", false, fmt.Errorf("find project root: %w", err)
	}

	for {
		if _, err := os.Lstat(filepath.Join(cur, l.MarkerDir)); err == nil {
			return cur, true, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return "", false, nil
		}
		cur = parent
	}
}

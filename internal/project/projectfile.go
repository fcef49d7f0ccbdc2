// SPDX-License-Identifier: MPL-2.0

package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

type (
	// File is the per-project file written by "osh init".
	//
	//	[odoo]
	//	bin = "/path/to/project/.venv/bin/odoo-bin"
	//	sources = "/path/to/project/.osh/odoo"
	File struct {
		Odoo OdooSection `toml:"odoo"`
	}

	// OdooSection records where the server was installed from.
	OdooSection struct {
		Bin     string `toml:"bin"`
		Sources string `toml:"sources,omitempty"`
	}
)

// ReadFile loads the project file at path. A missing file yields
// found=false and no error.
func ReadFile(path string) (f File, found bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return File{}, false, nil
	}
	if err != nil {
		return File{}, false, fmt.Errorf("read project file: %w", err)
	}
	if err := toml.Unmarshal(data, &f); err != nil {
		return File{}, false, fmt.Errorf("parse project file %s: %w", path, err)
	}
	return f, true, nil
}

// WriteFile replaces the project file at path atomically.
func WriteFile(path string, f File) error {
	data, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode project file: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".config-*")
	if err != nil {
		return fmt.Errorf("write project file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write project file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write project file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write project file: %w", err)
	}
	return nil
}

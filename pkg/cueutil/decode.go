// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// DefaultMaxFileSize bounds the size of CUE documents osh is willing to read.
const DefaultMaxFileSize int64 = 1 << 20

// DecodeMap validates data against the definition found in schema and
// decodes the unified value into a generic map.
//
// Fields may be left out: validation runs with Concrete(false), so only the
// types and constraints of the fields that are present are checked.
func DecodeMap(schema string, definition string, data []byte, filename string) (map[string]any, error) {
	if err := CheckFileSize(data, DefaultMaxFileSize, filename); err != nil {
		return nil, err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(schema)
	if schemaValue.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(filename))
	if userValue.Err() != nil {
		return nil, FormatError(userValue.Err(), filename)
	}

	unified := schemaValue.LookupPath(cue.ParsePath(definition)).Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return nil, FormatError(err, filename)
	}

	var out map[string]any
	if err := unified.Decode(&out); err != nil {
		return nil, FormatError(err, filename)
	}
	return out, nil
}

// CheckFileSize returns an error when data is larger than maxSize bytes.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes",
			filename, len(data), maxSize)
	}
	return nil
}

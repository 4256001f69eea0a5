// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// DefaultMaxFileSize bounds the documents accepted by Validate (5MB).
const DefaultMaxFileSize int64 = 5 * 1024 * 1024

type (
	validateOptions struct {
		maxFileSize int64
		filename    string
	}

	// Option configures validation behavior.
	Option func(*validateOptions)
)

// WithMaxFileSize overrides DefaultMaxFileSize.
func WithMaxFileSize(size int64) Option {
	return func(o *validateOptions) {
		o.maxFileSize = size
	}
}

// WithFilename sets the filename reported in error messages.
func WithFilename(name string) Option {
	return func(o *validateOptions) {
		o.filename = name
	}
}

// Validate compiles schema, looks up the definition at schemaPath, unifies it with
// data and checks the result. Optional fields in the schema may stay unset.
func Validate(schema, data []byte, schemaPath string, opts ...Option) error {
	_, _, err := unify(schema, data, schemaPath, opts)
	return err
}

// Decode validates data like Validate and decodes the unified value into out.
func Decode(schema, data []byte, schemaPath string, out any, opts ...Option) error {
	value, filename, err := unify(schema, data, schemaPath, opts)
	if err != nil {
		return err
	}
	if err := value.Decode(out); err != nil {
		return FormatError(err, filename)
	}
	return nil
}

func unify(schema, data []byte, schemaPath string, opts []Option) (cue.Value, string, error) {
	options := validateOptions{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(&options)
	}
	filename := options.filename
	if filename == "" {
		filename = "<input>"
	}

	if err := CheckFileSize(data, options.maxFileSize, filename); err != nil {
		return cue.Value{}, filename, err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileBytes(schema)
	if schemaValue.Err() != nil {
		return cue.Value{}, filename, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}
	root := schemaValue.LookupPath(cue.ParsePath(schemaPath))
	if root.Err() != nil {
		return cue.Value{}, filename, fmt.Errorf("internal error: schema definition %s not found: %w", schemaPath, root.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(filename))
	if userValue.Err() != nil {
		return cue.Value{}, filename, FormatError(userValue.Err(), filename)
	}

	unified := root.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return cue.Value{}, filename, FormatError(err, filename)
	}
	return unified, filename, nil
}

// CheckFileSize reports an error when data exceeds maxSize bytes.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", filename, len(data), maxSize)
	}
	return nil
}

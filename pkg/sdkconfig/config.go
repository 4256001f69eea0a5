// SPDX-License-Identifier: MPL-2.0

package sdkconfig

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Azure/swagger-to-sdk/internal/options"
)

const (
	// Legacy is the 0.1.0 schema: one swagger file per project.
	Legacy SchemaVersion = "0.1.0"
	// New is the 0.2.0 schema: markdown, composite or input-file inputs.
	New SchemaVersion = "0.2.0"

	// LatestGenerator is the generator version used when meta.autorest is unset.
	LatestGenerator = "latest"

	// CodeGeneratorKey is the option that selects the generator plugin in
	// legacy documents.
	CodeGeneratorKey = "CodeGenerator"
)

const (
	// InputSwagger is a single Swagger document (legacy only).
	InputSwagger InputKind = iota + 1
	// InputMarkdown is an AutoRest markdown configuration.
	InputMarkdown
	// InputComposite is a composite file listing several documents.
	InputComposite
	// InputFiles is an explicit autorest_options.input-file list.
	InputFiles
)

// ErrInvalidSchemaVersion is returned when a SchemaVersion is not a known value.
var ErrInvalidSchemaVersion = errors.New("invalid schema version")

type (
	// SchemaVersion is the meta.version of a configuration document.
	SchemaVersion string

	// InvalidSchemaVersionError is returned when a SchemaVersion is not one of
	// the supported values.
	InvalidSchemaVersionError struct {
		Value SchemaVersion
	}

	// InputKind identifies which input descriptor a project uses.
	InputKind int

	// Input is the resolved input descriptor of a project. Paths are as
	// written in the document, relative to the REST repository root.
	Input struct {
		Kind InputKind
		// Path is set for InputSwagger, InputMarkdown and InputComposite.
		Path string
		// Files is set for InputFiles.
		Files []string
	}

	// Meta holds the document-wide settings every project inherits.
	Meta struct {
		// Defaults is the lowest merge layer, derived from legacy settings
		// such as meta.language.
		Defaults options.OptionSet
		Options  options.OptionSet

		WrapperGlobs []string
		DeleteGlobs  []string

		GeneratedRelativeBaseDirectory string
		// GeneratorVersion is meta.autorest, LatestGenerator when unset.
		GeneratorVersion string
		AfterScripts     []string
		Language         string
	}

	// ProjectSpec is one SDK project of the configuration.
	ProjectSpec struct {
		ID      string
		Input   Input
		Options options.OptionSet

		// WrapperGlobs and DeleteGlobs extend the meta lists.
		WrapperGlobs []string
		DeleteGlobs  []string

		OutputDir string
		BuildDir  string
		// GeneratedRelativeBaseDirectory replaces the meta value when set.
		GeneratedRelativeBaseDirectory string
		// AfterScripts run after the meta scripts.
		AfterScripts []string
	}

	// Configuration is a loaded, version-independent configuration document.
	Configuration struct {
		Version  SchemaVersion
		Meta     Meta
		Projects map[string]ProjectSpec
	}
)

// String returns the version string.
func (v SchemaVersion) String() string { return string(v) }

// IsValid returns whether the SchemaVersion is a supported value,
// and a list of validation errors if it is not.
func (v SchemaVersion) IsValid() (bool, []error) {
	switch v {
	case Legacy, New:
		return true, nil
	default:
		return false, []error{&InvalidSchemaVersionError{Value: v}}
	}
}

// Error implements the error interface.
func (e *InvalidSchemaVersionError) Error() string {
	return fmt.Sprintf("invalid schema version %q (valid: %s, %s)", e.Value, Legacy, New)
}

// Unwrap returns ErrInvalidSchemaVersion for errors.Is() compatibility.
func (e *InvalidSchemaVersionError) Unwrap() error { return ErrInvalidSchemaVersion }

// String returns the document field name of the input kind.
func (k InputKind) String() string {
	switch k {
	case InputSwagger:
		return "swagger"
	case InputMarkdown:
		return "markdown"
	case InputComposite:
		return "composite"
	case InputFiles:
		return "input-file"
	default:
		return "unknown"
	}
}

// Paths returns every path named directly by the descriptor.
func (in Input) Paths() []string {
	if in.Kind == InputFiles {
		return slices.Clone(in.Files)
	}
	if in.Path == "" {
		return nil
	}
	return []string{in.Path}
}

// ProjectIDs returns the project ids in lexical order.
func (c *Configuration) ProjectIDs() []string {
	ids := make([]string, 0, len(c.Projects))
	for id := range c.Projects {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Project returns the project with the given id.
func (c *Configuration) Project(id string) (ProjectSpec, bool) {
	p, ok := c.Projects[id]
	return p, ok
}

// ReservedKeys returns the normalized option names reserved in addition to
// the common set for this document's version.
func (c *Configuration) ReservedKeys() []string {
	if c.Version == Legacy {
		return slices.Clone(options.LegacyReservedKeys)
	}
	return nil
}

// CheckOverrides validates a CLI override layer against the reserved keys of
// this configuration.
func (c *Configuration) CheckOverrides(set options.OptionSet) error {
	if key, found := options.CheckReserved(set, c.ReservedKeys()...); found {
		return &ConfigError{Kind: ReservedKeyUsed, Key: key, Detail: "command line override"}
	}
	return nil
}

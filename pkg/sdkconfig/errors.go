// SPDX-License-Identifier: MPL-2.0

package sdkconfig

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// UnsupportedVersion means meta.version is missing or unknown.
	UnsupportedVersion ConfigErrorKind = "unsupported version"
	// MissingInput means a legacy project has no swagger path.
	MissingInput ConfigErrorKind = "missing input"
	// AmbiguousOrMissingInput means a 0.2.0 project does not have exactly one
	// of markdown, composite or autorest_options.input-file.
	AmbiguousOrMissingInput ConfigErrorKind = "ambiguous or missing input"
	// DuplicateBuildDir means two projects share a build_dir.
	DuplicateBuildDir ConfigErrorKind = "duplicate build_dir"
	// ReservedKeyUsed means user options set a key owned by the orchestrator.
	ReservedKeyUsed ConfigErrorKind = "reserved key used"
	// NoMatchingProject means a project filter matched nothing.
	NoMatchingProject ConfigErrorKind = "no matching project"
	// InvalidDocument means the document failed to parse or failed the schema.
	InvalidDocument ConfigErrorKind = "invalid document"
	// MissingOutputDir means a project has no output_dir.
	MissingOutputDir ConfigErrorKind = "missing output_dir"
	// FieldNotAllowed means a project uses a field of the other schema version.
	FieldNotAllowed ConfigErrorKind = "field not allowed"
)

var (
	// ErrUnsupportedVersion is the sentinel for UnsupportedVersion.
	ErrUnsupportedVersion = errors.New("unsupported configuration version")
	// ErrMissingInput is the sentinel for MissingInput.
	ErrMissingInput = errors.New("missing project input")
	// ErrAmbiguousOrMissingInput is the sentinel for AmbiguousOrMissingInput.
	ErrAmbiguousOrMissingInput = errors.New("ambiguous or missing project input")
	// ErrDuplicateBuildDir is the sentinel for DuplicateBuildDir.
	ErrDuplicateBuildDir = errors.New("duplicate build_dir")
	// ErrReservedKeyUsed is the sentinel for ReservedKeyUsed.
	ErrReservedKeyUsed = errors.New("reserved option key used")
	// ErrNoMatchingProject is the sentinel for NoMatchingProject.
	ErrNoMatchingProject = errors.New("no project matches the filter")
	// ErrInvalidDocument is the sentinel for InvalidDocument.
	ErrInvalidDocument = errors.New("invalid configuration document")
	// ErrMissingOutputDir is the sentinel for MissingOutputDir.
	ErrMissingOutputDir = errors.New("missing output_dir")
	// ErrFieldNotAllowed is the sentinel for FieldNotAllowed.
	ErrFieldNotAllowed = errors.New("field not allowed for this configuration version")

	kindSentinels = map[ConfigErrorKind]error{
		UnsupportedVersion:      ErrUnsupportedVersion,
		MissingInput:            ErrMissingInput,
		AmbiguousOrMissingInput: ErrAmbiguousOrMissingInput,
		DuplicateBuildDir:       ErrDuplicateBuildDir,
		ReservedKeyUsed:         ErrReservedKeyUsed,
		NoMatchingProject:       ErrNoMatchingProject,
		InvalidDocument:         ErrInvalidDocument,
		MissingOutputDir:        ErrMissingOutputDir,
		FieldNotAllowed:         ErrFieldNotAllowed,
	}
)

type (
	// ConfigErrorKind classifies a ConfigError.
	ConfigErrorKind string

	// ConfigError is a fatal configuration problem, raised before any
	// generator runs.
	ConfigError struct {
		Kind ConfigErrorKind
		// Project is empty for meta-level and document-level problems.
		Project string
		// Key names the offending option or field, when there is one.
		Key    string
		Detail string
	}
)

// Error implements the error interface.
func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString(e.sentinel().Error())
	if e.Project != "" {
		fmt.Fprintf(&b, ": project %q", e.Project)
	}
	if e.Key != "" {
		fmt.Fprintf(&b, ": %q", e.Key)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

// Unwrap returns the sentinel of the error's Kind for errors.Is() compatibility.
func (e *ConfigError) Unwrap() error { return e.sentinel() }

// Suggestion returns a short hint for fixing the error, or "".
func (e *ConfigError) Suggestion() string {
	switch e.Kind {
	case UnsupportedVersion:
		return `Set meta.version to "0.1.0" or "0.2.0"`
	case MissingInput:
		return "Add a swagger path to the project"
	case AmbiguousOrMissingInput:
		return "Configure exactly one of markdown, composite or autorest_options.input-file"
	case DuplicateBuildDir:
		return "Give every project its own build_dir"
	case ReservedKeyUsed:
		return "Remove the option; output and input locations are set by swaggertosdk"
	case NoMatchingProject:
		return "Check the --project values against the configured project ids"
	case MissingOutputDir:
		return "Add output_dir to the project"
	case FieldNotAllowed:
		return "Check meta.version: swagger is 0.1.0 only, markdown/composite/input-file are 0.2.0 only"
	default:
		return ""
	}
}

func (e *ConfigError) sentinel() error {
	if err, ok := kindSentinels[e.Kind]; ok {
		return err
	}
	return ErrInvalidDocument
}

// IsKind reports whether err is a *ConfigError of the given kind.
func IsKind(err error, kind ConfigErrorKind) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr) && cfgErr.Kind == kind
}

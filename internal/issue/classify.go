// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"io/fs"

	"github.com/Azure/swagger-to-sdk/pkg/sdkconfig"
)

// Actionable wraps a fatal run error into an *ActionableError with
// suggestions. resource names the configuration document. Errors that are
// already actionable, and nil, are returned unchanged.
func Actionable(err error, resource string) error {
	if err == nil {
		return nil
	}
	var ae *ActionableError
	if errors.As(err, &ae) {
		return err
	}

	var cfgErr *sdkconfig.ConfigError
	if errors.As(err, &cfgErr) {
		op := "load configuration"
		if cfgErr.Kind == sdkconfig.NoMatchingProject {
			op = "select projects"
		}
		ctx := NewErrorContext().
			WithOperation(op).
			WithResource(resource).
			WithProject(cfgErr.Project).
			WithSuggestion(cfgErr.Suggestion())
		if cfgErr.Kind == sdkconfig.InvalidDocument {
			ctx.WithSuggestion("Check the document is valid JSON with a meta object")
		}
		return ctx.Wrap(err).BuildError()
	}

	if errors.Is(err, fs.ErrNotExist) {
		return NewErrorContext().
			WithOperation("load configuration").
			WithResource(resource).
			WithSuggestion("Check --sdk-folder and --config").
			Wrap(err).
			BuildError()
	}

	return WrapWithOperation(err, "run")
}

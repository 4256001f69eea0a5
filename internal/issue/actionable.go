// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError is a fatal run error annotated for the person at the
	// terminal: the step that failed, the document or path involved, the
	// project it concerns and what to try next.
	//
	//	err := issue.NewErrorContext().
	//		WithOperation("load configuration").
	//		WithResource("swagger_to_sdk_config.json").
	//		WithProject("authorization").
	//		WithSuggestion("Add output_dir to the project").
	//		Wrap(cause).
	//		BuildError()
	ActionableError struct {
		// Operation is a verb phrase such as "select projects".
		Operation string
		Resource  string
		// Project is set when a single configured project is at fault.
		Project     string
		Suggestions []string
		Cause       error
	}

	// ErrorContext accumulates the fields of an ActionableError.
	ErrorContext struct {
		err ActionableError
	}
)

// NewErrorContext starts an empty ErrorContext.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// WrapWithOperation annotates err with the step that failed. It returns nil
// for a nil err.
func WrapWithOperation(err error, operation string) *ActionableError {
	if err == nil {
		return nil
	}
	return &ActionableError{Operation: operation, Cause: err}
}

// Error returns the one-line form: "failed to <operation>[: <resource>][: <cause>]".
func (e *ActionableError) Error() string {
	parts := []string{"failed to " + e.Operation}
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format renders the error for the terminal. The suggestions follow the
// one-line message as a bulleted list; verbose adds every layer of the
// wrapped cause.
func (e *ActionableError) Format(verbose bool) string {
	var b strings.Builder
	b.WriteString(e.Error())

	if e.Project != "" {
		fmt.Fprintf(&b, "\n\nProject: %s", e.Project)
	}

	if e.HasSuggestions() {
		b.WriteString("\n\nTry:")
		for _, s := range e.Suggestions {
			fmt.Fprintf(&b, "\n  • %s", s)
		}
	}

	if verbose {
		depth := 0
		for cause := e.Cause; cause != nil; cause = errors.Unwrap(cause) {
			if depth == 0 {
				b.WriteString("\n\nError chain:")
			}
			depth++
			fmt.Fprintf(&b, "\n  %d. %s", depth, cause)
		}
	}
	return b.String()
}

// HasSuggestions reports whether there is anything to try.
func (e *ActionableError) HasSuggestions() bool {
	return len(e.Suggestions) > 0
}

func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.err.Operation = op
	return c
}

func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.err.Resource = res
	return c
}

func (c *ErrorContext) WithProject(id string) *ErrorContext {
	c.err.Project = id
	return c
}

// WithSuggestion appends a suggestion. Empty strings are dropped so callers
// can pass a ConfigError's Suggestion() unconditionally.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	if sug != "" {
		c.err.Suggestions = append(c.err.Suggestions, sug)
	}
	return c
}

func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.err.Cause = err
	return c
}

// Build returns the accumulated error, or nil when no operation was set.
func (c *ErrorContext) Build() *ActionableError {
	if c.err.Operation == "" {
		return nil
	}
	out := c.err
	out.Suggestions = append([]string(nil), c.err.Suggestions...)
	return &out
}

// BuildError is Build with an error result, keeping a nil *ActionableError
// from becoming a non-nil error.
func (c *ErrorContext) BuildError() error {
	if ae := c.Build(); ae != nil {
		return ae
	}
	return nil
}

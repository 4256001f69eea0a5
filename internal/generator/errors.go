// SPDX-License-Identifier: MPL-2.0

package generator

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// NonZeroExit means the generator exited with a non-zero status.
	NonZeroExit ErrorKind = "non-zero exit"
	// Timeout means the generator exceeded its time budget.
	Timeout ErrorKind = "timeout"
	// LaunchFailed means the generator could not be started.
	LaunchFailed ErrorKind = "launch failed"
	// Canceled means the run was canceled while the project was in flight.
	Canceled ErrorKind = "canceled"
	// NoOutput means the generator succeeded without writing any file.
	NoOutput ErrorKind = "no output"
	// Staging means moving the generated tree into the SDK failed.
	Staging ErrorKind = "staging"
	// AfterScript means a post-generation script failed.
	AfterScript ErrorKind = "after script"
)

var (
	// ErrNonZeroExit is the sentinel for NonZeroExit.
	ErrNonZeroExit = errors.New("generator exited with non-zero status")
	// ErrTimeout is the sentinel for Timeout.
	ErrTimeout = errors.New("generator timed out")
	// ErrLaunchFailed is the sentinel for LaunchFailed.
	ErrLaunchFailed = errors.New("generator could not be launched")
	// ErrCanceled is the sentinel for Canceled.
	ErrCanceled = errors.New("generation canceled")
	// ErrNoOutput is the sentinel for NoOutput.
	ErrNoOutput = errors.New("generator ended with 0, but no files were generated")
	// ErrStaging is the sentinel for Staging.
	ErrStaging = errors.New("staging generated files failed")
	// ErrAfterScript is the sentinel for AfterScript.
	ErrAfterScript = errors.New("after script failed")

	kindSentinels = map[ErrorKind]error{
		NonZeroExit:  ErrNonZeroExit,
		Timeout:      ErrTimeout,
		LaunchFailed: ErrLaunchFailed,
		Canceled:     ErrCanceled,
		NoOutput:     ErrNoOutput,
		Staging:      ErrStaging,
		AfterScript:  ErrAfterScript,
	}
)

type (
	// ErrorKind classifies a GenerationError.
	ErrorKind string

	// GenerationError is a per-project failure.
	GenerationError struct {
		Kind     ErrorKind
		Project  string
		ExitCode int
		// Output is the captured output of the failing step, if any.
		Output string
		Err    error
	}
)

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	if e.Project != "" {
		fmt.Fprintf(&b, "project %q: ", e.Project)
	}
	b.WriteString(e.sentinel().Error())
	if e.Kind == NonZeroExit {
		fmt.Fprintf(&b, " (exit code %d)", e.ExitCode)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the kind sentinel and the underlying cause, so both
// errors.Is(err, ErrTimeout) and errors.Is(err, context.DeadlineExceeded) hold.
func (e *GenerationError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.sentinel()}
	}
	return []error{e.sentinel(), e.Err}
}

func (e *GenerationError) sentinel() error {
	if err, ok := kindSentinels[e.Kind]; ok {
		return err
	}
	return ErrLaunchFailed
}

// KindOf returns the kind of a *GenerationError in err's chain, or "".
func KindOf(err error) ErrorKind {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	return ""
}

// SPDX-License-Identifier: MPL-2.0

package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// ScriptRunner runs post-generation scripts with the embedded shell
// interpreter, so no system shell is required.
type ScriptRunner struct {
	// Env is the script environment; os.Environ() when nil.
	Env []string
}

// Run executes scripts in order inside dir and stops at the first failure.
// The combined output of all scripts is returned.
func (s ScriptRunner) Run(ctx context.Context, project, dir string, scripts []string) (string, error) {
	var out bytes.Buffer
	env := s.Env
	if env == nil {
		env = os.Environ()
	}

	for _, script := range scripts {
		prog, err := syntax.NewParser().Parse(strings.NewReader(script), "after_script")
		if err != nil {
			return out.String(), &GenerationError{Kind: AfterScript, Project: project, Output: out.String(), Err: fmt.Errorf("failed to parse script %q: %w", script, err)}
		}

		runner, err := interp.New(
			interp.Dir(dir),
			interp.Env(expand.ListEnviron(env...)),
			interp.StdIO(nil, &out, &out),
		)
		if err != nil {
			return out.String(), &GenerationError{Kind: AfterScript, Project: project, Err: fmt.Errorf("failed to create interpreter: %w", err)}
		}

		slog.Info("running after script", "project", project, "script", script)
		if err := runner.Run(ctx, prog); err != nil {
			genErr := &GenerationError{Kind: AfterScript, Project: project, Output: out.String(), Err: fmt.Errorf("script %q: %w", script, err)}
			var exitStatus interp.ExitStatus
			if errors.As(err, &exitStatus) {
				genErr.ExitCode = int(exitStatus)
			}
			return out.String(), genErr
		}
	}
	return out.String(), nil
}

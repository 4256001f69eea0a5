// SPDX-License-Identifier: MPL-2.0

package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/Azure/swagger-to-sdk/internal/inputs"
	"github.com/Azure/swagger-to-sdk/internal/invocation"
	"github.com/Azure/swagger-to-sdk/internal/options"

	"mvdan.cc/sh/v3/shell"
)

const (
	// DefaultCommand is the generator looked up in PATH.
	DefaultCommand = "autorest"
	// DefaultTimeout bounds one generator invocation.
	DefaultTimeout = 30 * time.Minute

	// waitDelay bounds the wait for the output pipes once the generator was
	// killed.
	waitDelay = 5 * time.Second

	compositeMarkdownName = "composite.md"
)

type (
	// Outcome is the result of one generator invocation.
	Outcome struct {
		ExitCode int
		Output   string
		Duration time.Duration
		// Err is a *GenerationError, or nil on success.
		Err error
	}

	// Runner runs the generator for a task. workDir is a scratch directory
	// owned by the task's project.
	Runner interface {
		Run(ctx context.Context, task invocation.Task, workDir string) Outcome
	}

	// ProcessRunner runs the generator as an external process.
	ProcessRunner struct {
		// Command is the generator command line, split with shell word rules.
		// Defaults to DefaultCommand.
		Command string
		// Timeout bounds one invocation. Defaults to DefaultTimeout.
		Timeout time.Duration

		commandContext func(ctx context.Context, name string, args ...string) *exec.Cmd
	}
)

// NewProcessRunner creates a ProcessRunner for command with the given timeout.
func NewProcessRunner(command string, timeout time.Duration) *ProcessRunner {
	return &ProcessRunner{Command: command, Timeout: timeout}
}

// Run invokes the generator. Composite tasks are first rendered into a
// markdown file inside workDir. The generator runs in the directory of the
// first input and must leave at least one entry in its output folder.
func (r *ProcessRunner) Run(ctx context.Context, task invocation.Task, workDir string) Outcome {
	start := time.Now()
	out := r.run(ctx, task, workDir)
	out.Duration = time.Since(start)
	if out.Err != nil {
		slog.Error("generator failed", "project", task.ProjectID, "error", out.Err)
	} else {
		slog.Info("generator finished", "project", task.ProjectID, "duration", out.Duration)
	}
	return out
}

func (r *ProcessRunner) run(ctx context.Context, task invocation.Task, workDir string) Outcome {
	fail := func(kind ErrorKind, err error) Outcome {
		return Outcome{ExitCode: 1, Err: &GenerationError{Kind: kind, Project: task.ProjectID, Err: err}}
	}

	argv, err := r.argv()
	if err != nil {
		return fail(LaunchFailed, err)
	}

	if task.Composite != "" {
		mdPath, mdErr := materializeComposite(task, workDir)
		if mdErr != nil {
			return fail(LaunchFailed, mdErr)
		}
		task = task.WithMarkdown(mdPath)
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(argv[1:len(argv):len(argv)], task.Args()...)
	slog.Info("generator command line", "project", task.ProjectID, "command", argv[0]+" "+strings.Join(args, " "))

	commandContext := r.commandContext
	if commandContext == nil {
		commandContext = exec.CommandContext
	}
	cmd := commandContext(runCtx, argv[0], args...)
	cmd.Dir = task.WorkDir()
	killProcessGroup(cmd)
	cmd.WaitDelay = waitDelay

	output, runErr := cmd.CombinedOutput()
	result := Outcome{Output: string(output)}
	if runErr != nil {
		result.ExitCode = 1
		genErr := &GenerationError{Project: task.ProjectID, Output: result.Output}
		var exitErr *exec.ExitError
		switch {
		case errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
			genErr.Kind, genErr.Err = Timeout, fmt.Errorf("after %s: %w", timeout, context.DeadlineExceeded)
		case ctx.Err() != nil:
			genErr.Kind, genErr.Err = Canceled, ctx.Err()
		case errors.As(runErr, &exitErr):
			result.ExitCode = exitErr.ExitCode()
			genErr.Kind, genErr.ExitCode = NonZeroExit, result.ExitCode
		default:
			genErr.Kind, genErr.Err = LaunchFailed, runErr
		}
		result.Err = genErr
		return result
	}

	if outputDir := task.Options[options.OutputFolderKey].String(); isEmptyDir(outputDir) {
		result.ExitCode = 1
		result.Err = &GenerationError{Kind: NoOutput, Project: task.ProjectID, Output: result.Output, Err: fmt.Errorf("output folder %s", outputDir)}
	}
	return result
}

func (r *ProcessRunner) argv() ([]string, error) {
	command := r.Command
	if command == "" {
		command = DefaultCommand
	}
	fields, err := shell.Fields(command, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("parse generator command %q: %w", command, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty generator command")
	}
	return fields, nil
}

// materializeComposite writes the markdown equivalent of the task's composite
// file into workDir and returns its path.
func materializeComposite(task invocation.Task, workDir string) (string, error) {
	content, err := os.ReadFile(task.Composite)
	if err != nil {
		return "", fmt.Errorf("read composite: %w", err)
	}
	composite, err := inputs.ParseComposite(content)
	if err != nil {
		return "", err
	}

	docs := make([]string, 0, len(composite.Documents))
	for _, ref := range composite.Documents {
		doc := inputs.ConvertPath(ref, filepath.ToSlash(task.Composite))
		if !filepath.IsAbs(filepath.FromSlash(doc)) {
			doc = filepath.Join(task.RESTRoot, filepath.FromSlash(doc))
		}
		docs = append(docs, filepath.FromSlash(doc))
	}

	md, err := inputs.CompositeToMarkdown(composite, docs)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(workDir, compositeMarkdownName)
	if err := os.WriteFile(path, md, 0o644); err != nil {
		return "", fmt.Errorf("write composite markdown: %w", err)
	}
	slog.Debug("built markdown from composite", "project", task.ProjectID, "path", path)
	return path, nil
}

func isEmptyDir(dir string) bool {
	if dir == "" {
		return false
	}
	entries, err := os.ReadDir(dir)
	return err != nil || len(entries) == 0
}

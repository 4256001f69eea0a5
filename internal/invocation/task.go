// SPDX-License-Identifier: MPL-2.0

// Package invocation turns a project and its merged options into the exact
// generator invocation for that project. Nothing here touches the file system
// beyond path resolution or runs any process.
package invocation

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/Azure/swagger-to-sdk/internal/glob"
	"github.com/Azure/swagger-to-sdk/internal/inputs"
	"github.com/Azure/swagger-to-sdk/internal/options"
	"github.com/Azure/swagger-to-sdk/pkg/sdkconfig"
)

// ErrEmptyOutputDir is returned when a project has no output_dir.
var ErrEmptyOutputDir = errors.New("project output_dir is empty")

type (
	// Task is a fully resolved generator invocation for one project.
	Task struct {
		ProjectID string
		Options   options.OptionSet
		// Markdown is the absolute markdown path passed as positional argument.
		Markdown string
		// Composite is the absolute composite path; the runner renders it
		// into a markdown file before invoking the generator.
		Composite string
		// InputFiles are the absolute documents passed with input-file.
		InputFiles []string
		// RESTRoot resolves repository-relative references found while
		// materializing a composite.
		RESTRoot string
		// OutputDir is the absolute destination inside the SDK repository.
		OutputDir string
		// BuildDir is the absolute build metadata directory, or "".
		BuildDir string

		WrapperGlobs                   []string
		DeleteGlobs                    []string
		GeneratedRelativeBaseDirectory string
		GeneratorVersion               string
		AfterScripts                   []string
	}

	// Builder builds tasks against one SDK checkout and one REST checkout.
	Builder struct {
		SDKRoot  string
		RESTRoot string
	}
)

// Build constructs the task for spec. merged is the already merged option set
// of the project; reserved keys in it are dropped and output-folder is set to
// the absolute output directory.
func (b Builder) Build(meta sdkconfig.Meta, spec sdkconfig.ProjectSpec, merged options.OptionSet) (Task, error) {
	if spec.OutputDir == "" {
		return Task{}, ErrEmptyOutputDir
	}

	opts := options.WithoutReserved(merged)
	outputDir := absJoin(b.SDKRoot, spec.OutputDir)
	opts[options.OutputFolderKey] = options.String(outputDir)

	task := Task{
		ProjectID:        spec.ID,
		OutputDir:        outputDir,
		RESTRoot:         b.RESTRoot,
		WrapperGlobs:     glob.Union(meta.WrapperGlobs, spec.WrapperGlobs),
		DeleteGlobs:      glob.Union(meta.DeleteGlobs, spec.DeleteGlobs),
		GeneratorVersion: meta.GeneratorVersion,
		AfterScripts:     append(append([]string{}, meta.AfterScripts...), spec.AfterScripts...),
	}
	if task.GeneratorVersion == "" {
		task.GeneratorVersion = sdkconfig.LatestGenerator
	}
	task.GeneratedRelativeBaseDirectory = meta.GeneratedRelativeBaseDirectory
	if spec.GeneratedRelativeBaseDirectory != "" {
		task.GeneratedRelativeBaseDirectory = spec.GeneratedRelativeBaseDirectory
	}
	if spec.BuildDir != "" {
		task.BuildDir = absJoin(b.SDKRoot, spec.BuildDir)
	}

	switch spec.Input.Kind {
	case sdkconfig.InputSwagger:
		task.InputFiles = []string{absJoin(b.RESTRoot, spec.Input.Path)}
	case sdkconfig.InputFiles:
		for _, f := range spec.Input.Files {
			task.InputFiles = append(task.InputFiles, absJoin(b.RESTRoot, f))
		}
	case sdkconfig.InputMarkdown:
		task.Markdown = absJoin(b.RESTRoot, spec.Input.Path)
	case sdkconfig.InputComposite:
		task.Composite = absJoin(b.RESTRoot, spec.Input.Path)
	}
	if len(task.InputFiles) > 0 {
		opts[inputs.InputFileKey] = options.List(task.InputFiles...)
	}

	task.Options = opts
	return task, nil
}

// Args returns the generator arguments after the executable:
// --version, the positional markdown when there is one, then the options.
func (t Task) Args() []string {
	args := []string{"--version=" + t.GeneratorVersion}
	if t.Markdown != "" {
		args = append(args, t.Markdown)
	}
	return append(args, t.Options.Args()...)
}

// WorkDir is the directory the generator runs in: the directory of the first
// input document.
func (t Task) WorkDir() string {
	switch {
	case t.Markdown != "":
		return filepath.Dir(t.Markdown)
	case t.Composite != "":
		return filepath.Dir(t.Composite)
	case len(t.InputFiles) > 0:
		return filepath.Dir(t.InputFiles[0])
	default:
		return ""
	}
}

// Redirect returns a copy of t whose generator output goes to dir instead of
// OutputDir. Staging moves the result into OutputDir afterwards.
func (t Task) Redirect(dir string) Task {
	t.Options = t.Options.Clone()
	t.Options[options.OutputFolderKey] = options.String(dir)
	return t
}

// WithMarkdown returns a copy of t that passes path as positional markdown
// instead of its composite file.
func (t Task) WithMarkdown(path string) Task {
	t.Markdown = path
	t.Composite = ""
	return t
}

func absJoin(root, rel string) string {
	p := rel
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, filepath.FromSlash(rel))
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return strings.TrimRight(p, string(filepath.Separator))
}

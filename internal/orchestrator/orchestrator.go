// SPDX-License-Identifier: MPL-2.0

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Azure/swagger-to-sdk/internal/ci"
	"github.com/Azure/swagger-to-sdk/internal/generator"
	"github.com/Azure/swagger-to-sdk/internal/inputs"
	"github.com/Azure/swagger-to-sdk/internal/invocation"
	"github.com/Azure/swagger-to-sdk/internal/naming"
	"github.com/Azure/swagger-to-sdk/internal/options"
	"github.com/Azure/swagger-to-sdk/internal/publish"
	"github.com/Azure/swagger-to-sdk/internal/report"
	"github.com/Azure/swagger-to-sdk/internal/selector"
	"github.com/Azure/swagger-to-sdk/internal/workspace"
	"github.com/Azure/swagger-to-sdk/pkg/sdkconfig"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const generatedDirName = "generated"

// ErrNoRunner is returned by Run when no generator runner is configured.
var ErrNoRunner = errors.New("orchestrator: no generator runner")

type (
	// Settings are the run-level inputs of a run.
	Settings struct {
		// ConfigPath is the configuration document. A relative path is
		// resolved against SDKRoot.
		ConfigPath string
		RESTRoot   string
		SDKRoot    string
		// Filters restrict the run to projects whose id contains one of them.
		Filters []string
		// Overrides is the command line option layer, merged last.
		Overrides options.OptionSet
		// GeneratorVersion replaces the configured generator version when set.
		GeneratorVersion string
		// Jobs bounds concurrent project pipelines. Values below 1 mean 1.
		Jobs   int
		DryRun bool
	}

	// ScriptRunner runs after-scripts of a project.
	ScriptRunner interface {
		Run(ctx context.Context, project, dir string, scripts []string) (string, error)
	}

	// Orchestrator wires the run components together. Runner is required;
	// every other zero field gets a working default.
	Orchestrator struct {
		Settings  Settings
		Runner    generator.Runner
		Scripts   ScriptRunner
		Stager    workspace.Stager
		Publisher publish.Publisher
		Namer     naming.Namer
		// Docs reads markdown and composite documents for selection. A reader
		// rooted at Settings.RESTRoot is created when nil.
		Docs selector.DocumentReader
		// TempDir holds per-project scratch directories; os.TempDir when empty.
		TempDir string
		// Now and NewRunID make reports deterministic in tests.
		Now      func() time.Time
		NewRunID func() string
	}
)

// Run executes one regeneration run for the given CI context. The returned
// report is never nil. The error is the fatal error that stopped the run
// before any project was processed, also stored in the report.
func (o *Orchestrator) Run(ctx context.Context, cictx ci.Context) (*report.Report, error) {
	rep := &report.Report{
		RunID:   o.runID(),
		DryRun:  o.Settings.DryRun,
		Started: o.now(),
	}
	defer func() { rep.Finished = o.now() }()

	fail := func(err error) (*report.Report, error) {
		rep.State = report.StateFailed
		rep.Err = err
		slog.Error("run failed", "run", rep.RunID, "error", err)
		return rep, err
	}

	if o.Runner == nil && !o.Settings.DryRun {
		return fail(ErrNoRunner)
	}

	cfg, err := sdkconfig.LoadFile(o.configPath())
	if err != nil {
		return fail(err)
	}
	rep.State = report.StateLoaded
	slog.Info("configuration loaded", "run", rep.RunID, "version", cfg.Version, "projects", len(cfg.Projects))

	if err := cfg.CheckOverrides(o.Settings.Overrides); err != nil {
		return fail(err)
	}

	docs, err := o.documents()
	if err != nil {
		return fail(err)
	}
	ids, err := selector.New(docs).Select(cfg, cictx.Changes, o.Settings.Filters)
	if err != nil {
		return fail(err)
	}
	rep.State = report.StateSelected
	slog.Info("projects selected", "run", rep.RunID, "projects", ids)

	rep.Results = o.runProjects(ctx, cfg, ids)

	if !o.Settings.DryRun {
		rep.Publish = o.publish(ctx, cictx.Branch, rep.Results)
	}
	rep.State = report.StateCompleted
	return rep, nil
}

// runProjects runs the pipeline of every selected project, at most Jobs at a
// time. Results are in ids order.
func (o *Orchestrator) runProjects(ctx context.Context, cfg *sdkconfig.Configuration, ids []string) []report.ProjectResult {
	results := make([]report.ProjectResult, len(ids))
	jobs := o.Settings.Jobs
	if jobs < 1 {
		jobs = 1
	}

	var g errgroup.Group
	g.SetLimit(jobs)
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			results[i] = notStarted(id, err)
			continue
		}
		spec, _ := cfg.Project(id)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = notStarted(id, err)
				return nil
			}
			results[i] = o.runProject(ctx, cfg, spec)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func notStarted(id string, err error) report.ProjectResult {
	slog.Warn("project not started", "project", id, "error", err)
	return report.ProjectResult{
		ProjectID: id,
		Err:       &generator.GenerationError{Kind: generator.Canceled, Project: id, Err: err},
	}
}

// runProject is the pipeline of one project: build, invoke, stage, then
// after-scripts.
func (o *Orchestrator) runProject(ctx context.Context, cfg *sdkconfig.Configuration, spec sdkconfig.ProjectSpec) report.ProjectResult {
	start := o.now()
	res := report.ProjectResult{ProjectID: spec.ID}
	defer func() { res.Duration = o.now().Sub(start) }()

	task, err := o.BuildTask(cfg, spec)
	if err != nil {
		res.Err = err
		return res
	}
	res.Stage = report.StageBuilt
	res.Args = task.Args()
	if o.Settings.DryRun {
		slog.Info("dry run, generator not invoked", "project", spec.ID)
		return res
	}

	workDir, err := os.MkdirTemp(o.TempDir, "swaggertosdk-"+spec.ID+"-")
	if err != nil {
		res.Err = &generator.GenerationError{Kind: generator.Staging, Project: spec.ID, Err: fmt.Errorf("create work directory: %w", err)}
		return res
	}
	defer func() {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			slog.Warn("failed to remove work directory", "project", spec.ID, "path", workDir, "error", rmErr)
		}
	}()

	generated := filepath.Join(workDir, generatedDirName)
	if err := os.MkdirAll(generated, 0o755); err != nil {
		res.Err = &generator.GenerationError{Kind: generator.Staging, Project: spec.ID, Err: err}
		return res
	}

	outcome := o.Runner.Run(ctx, task.Redirect(generated), workDir)
	res.Output = outcome.Output
	if outcome.Err != nil {
		res.Err = outcome.Err
		return res
	}
	res.Stage = report.StageInvoked

	files, err := o.Stager.Stage(task, generated)
	if err != nil {
		res.Err = err
		return res
	}
	res.Stage = report.StageStaged
	res.Files = files
	res.Paths = []string{task.OutputDir}
	if task.BuildDir != "" {
		res.Paths = append(res.Paths, task.BuildDir)
	}

	if len(task.AfterScripts) > 0 {
		scriptOut, err := o.scripts().Run(ctx, spec.ID, o.Settings.SDKRoot, task.AfterScripts)
		res.Output += scriptOut
		if err != nil {
			res.Err = err
			return res
		}
	}
	slog.Info("project regenerated", "project", spec.ID, "files", len(files))
	return res
}

// BuildTask merges the option layers of spec and builds its generator task.
// Layers, lowest first: normalized defaults, meta options, project options,
// command line overrides.
func (o *Orchestrator) BuildTask(cfg *sdkconfig.Configuration, spec sdkconfig.ProjectSpec) (invocation.Task, error) {
	merged := options.Merger{SDKRoot: o.Settings.SDKRoot}.Merge(
		cfg.Meta.Defaults,
		cfg.Meta.Options,
		spec.Options,
		o.Settings.Overrides,
	)
	meta := cfg.Meta
	if o.Settings.GeneratorVersion != "" {
		meta.GeneratorVersion = o.Settings.GeneratorVersion
	}
	builder := invocation.Builder{SDKRoot: o.Settings.SDKRoot, RESTRoot: o.Settings.RESTRoot}
	task, err := builder.Build(meta, spec, merged)
	if err != nil {
		return invocation.Task{}, &generator.GenerationError{Kind: generator.LaunchFailed, Project: spec.ID, Err: err}
	}
	return task, nil
}

func (o *Orchestrator) configPath() string {
	p := o.Settings.ConfigPath
	if p == "" {
		p = sdkconfig.DefaultFileName
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(o.Settings.SDKRoot, p)
	}
	return p
}

func (o *Orchestrator) documents() (selector.DocumentReader, error) {
	if o.Docs != nil {
		return o.Docs, nil
	}
	reader, err := inputs.NewReader(o.Settings.RESTRoot)
	if err != nil {
		return nil, err
	}
	return reader, nil
}

func (o *Orchestrator) scripts() ScriptRunner {
	if o.Scripts != nil {
		return o.Scripts
	}
	return generator.ScriptRunner{}
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *Orchestrator) runID() string {
	if o.NewRunID != nil {
		return o.NewRunID()
	}
	return uuid.NewString()
}

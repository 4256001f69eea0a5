// SPDX-License-Identifier: MPL-2.0

package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Azure/swagger-to-sdk/internal/ci"
	"github.com/Azure/swagger-to-sdk/internal/generator"
	"github.com/Azure/swagger-to-sdk/internal/invocation"
	"github.com/Azure/swagger-to-sdk/internal/naming"
	"github.com/Azure/swagger-to-sdk/internal/options"
	"github.com/Azure/swagger-to-sdk/internal/publish"
	"github.com/Azure/swagger-to-sdk/internal/report"
	"github.com/Azure/swagger-to-sdk/internal/selector"
	"github.com/Azure/swagger-to-sdk/internal/testutil"
	"github.com/Azure/swagger-to-sdk/internal/workspace"
	"github.com/Azure/swagger-to-sdk/pkg/sdkconfig"

	"github.com/go-git/go-git/v5/plumbing"
)

const e2eConfig = `{
  "meta": {
    "version": "0.2.0",
    "autorest": "2.0.4215",
    "autorest_options": {
      "license-header": "MICROSOFT_MIT_NO_VERSION",
      "python": "",
      "azure-arm": true,
      "sdkrel:python-sdks-folder": "."
    },
    "wrapper_filesOrDirs": ["version.py"],
    "delete_filesOrDirs": ["credentials.py"],
    "generated_relative_base_directory": "*client"
  },
  "projects": {
    "authorization": {
      "autorest_options": {
        "input-file": ["arm-authorization/2015-07-01/swagger/authorization.json"],
        "namespace": "azure.mgmt.authorization"
      },
      "output_dir": "azure-mgmt-authorization/azure/mgmt/authorization"
    },
    "batch": {
      "markdown": "specification/batch/resource-manager/readme.md",
      "output_dir": "azure-mgmt-batch/azure/mgmt/batch",
      "build_dir": "azure-mgmt-batch"
    },
    "compute": {
      "composite": "arm-compute/compositeComputeClient.json",
      "autorest_options": {"namespace": "azure.mgmt.compute"},
      "output_dir": "azure-mgmt-compute/azure/mgmt/compute",
      "build_dir": "azure-mgmt-compute"
    }
  }
}`

const authorizationOutput = "azure-mgmt-authorization/azure/mgmt/authorization"

var restFiles = map[string]string{
	"arm-authorization/2015-07-01/swagger/authorization.json":                                     "{}",
	"specification/batch/resource-manager/readme.md":                                              "# Batch\n\n```yaml\ninput-file:\n  - Microsoft.Batch/stable/2017-09-01/BatchManagement.json\n```\n",
	"specification/batch/resource-manager/Microsoft.Batch/stable/2017-09-01/BatchManagement.json": "{}",
	"arm-compute/compositeComputeClient.json":                                                     `{"info":{"title":"ComputeManagementClient"},"documents":["./2017-03-30/swagger/compute.json"]}`,
	"arm-compute/2017-03-30/swagger/compute.json":                                                 "{}",
}

type fakeRunner struct {
	mu    sync.Mutex
	tasks []invocation.Task
	fail  map[string]generator.Outcome
}

func (f *fakeRunner) Run(_ context.Context, task invocation.Task, _ string) generator.Outcome {
	f.mu.Lock()
	f.tasks = append(f.tasks, task)
	f.mu.Unlock()

	if out, ok := f.fail[task.ProjectID]; ok {
		return out
	}
	base := filepath.Join(task.Options[options.OutputFolderKey].String(), task.ProjectID+"client")
	for _, name := range []string{"__init__.py", "models.py", "credentials.py"} {
		if err := os.MkdirAll(base, 0o755); err != nil {
			return generator.Outcome{Err: err}
		}
		if err := os.WriteFile(filepath.Join(base, name), []byte("# generated"), 0o644); err != nil {
			return generator.Outcome{Err: err}
		}
	}
	return generator.Outcome{Output: "generated " + task.ProjectID}
}

func (f *fakeRunner) projects() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.tasks))
	for _, task := range f.tasks {
		ids = append(ids, task.ProjectID)
	}
	slices.Sort(ids)
	return ids
}

type fakePublisher struct {
	requests []publish.Request
	err      error
}

func (f *fakePublisher) Publish(_ context.Context, req publish.Request) (publish.Outcome, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return publish.Outcome{}, f.err
	}
	return publish.Outcome{Branch: req.Branch, Commit: "c0ffee", Projects: req.Projects}, nil
}

type fixture struct {
	rest, sdk string
	runner    *fakeRunner
	publisher *fakePublisher
	orch      *Orchestrator
}

func newFixture(t *testing.T, config string) *fixture {
	t.Helper()
	f := &fixture{
		rest:      t.TempDir(),
		sdk:       t.TempDir(),
		runner:    &fakeRunner{},
		publisher: &fakePublisher{},
	}
	testutil.WriteFiles(t, f.rest, restFiles)
	testutil.WriteFiles(t, f.sdk, map[string]string{
		sdkconfig.DefaultFileName:                  config,
		authorizationOutput + "/version.py":        "VERSION = '0.30.0'",
		authorizationOutput + "/old_operations.py": "# stale",
	})

	clock := testutil.NewFakeClock(time.Date(2017, 5, 1, 10, 0, 0, 0, time.UTC))
	f.orch = &Orchestrator{
		Settings:  Settings{RESTRoot: f.rest, SDKRoot: f.sdk},
		Runner:    f.runner,
		Publisher: f.publisher,
		Stager:    workspace.Stager{Now: clock.Now},
		TempDir:   t.TempDir(),
		Now:       clock.Now,
		NewRunID:  func() string { return "run-1" },
	}
	return f
}

func prContext(changed ...string) ci.Context {
	cictx := ci.Context{Branch: naming.BranchContext{CurrentBranch: "master", CommitHash: "abc123", PRNumber: 12}}
	if len(changed) > 0 {
		cictx.Changes = selector.NewChangeSet(changed...)
	}
	return cictx
}

func TestRunEndToEndSelectsChangedProject(t *testing.T) {
	t.Parallel()

	f := newFixture(t, e2eConfig)
	rep, err := f.orch.Run(context.Background(), prContext("arm-authorization/2015-07-01/swagger/authorization.json"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if rep.State != report.StateCompleted || !rep.Success() {
		t.Fatalf("report state = %s, success = %v, err = %v", rep.State, rep.Success(), rep.Err)
	}
	if got := f.runner.projects(); !reflect.DeepEqual(got, []string{"authorization"}) {
		t.Fatalf("invoked projects = %v, want [authorization]", got)
	}

	res, ok := rep.Result("authorization")
	if !ok {
		t.Fatal("no result for authorization")
	}
	if res.Stage != report.StagePublished {
		t.Errorf("Stage = %s, want %s", res.Stage, report.StagePublished)
	}
	wantOutput := "--output-folder=" + filepath.Join(f.sdk, filepath.FromSlash(authorizationOutput))
	if !slices.Contains(res.Args, wantOutput) {
		t.Errorf("Args = %v, want %s", res.Args, wantOutput)
	}
	if !slices.Contains(res.Args, "--python-sdks-folder="+f.sdk) {
		t.Errorf("Args = %v, want sdkrel option resolved to the SDK root", res.Args)
	}

	wantFiles := []string{"__init__.py", "models.py", "version.py"}
	if !reflect.DeepEqual(res.Files, wantFiles) {
		t.Errorf("Files = %v, want %v", res.Files, wantFiles)
	}
	if got := testutil.Tree(t, filepath.Join(f.sdk, authorizationOutput)); !reflect.DeepEqual(got, wantFiles) {
		t.Errorf("output tree = %v, want %v", got, wantFiles)
	}
	if got := testutil.MustReadFile(t, filepath.Join(f.sdk, authorizationOutput, "version.py")); got != "VERSION = '0.30.0'" {
		t.Errorf("wrapper file not restored, got %q", got)
	}

	want := []publish.Request{{
		Branch:   "restapi_auto_pr_12",
		Message:  "Generated from abc123",
		Projects: []string{"authorization"},
		Paths:    []string{filepath.Join(f.sdk, filepath.FromSlash(authorizationOutput))},
	}}
	if !reflect.DeepEqual(f.publisher.requests, want) {
		t.Errorf("publish requests = %+v, want %+v", f.publisher.requests, want)
	}
}

func TestRunAllProjectsConcurrently(t *testing.T) {
	t.Parallel()

	f := newFixture(t, e2eConfig)
	f.orch.Settings.Jobs = 3
	rep, err := f.orch.Run(context.Background(), prContext())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var ids []string
	for _, res := range rep.Results {
		ids = append(ids, res.ProjectID)
		if !res.Success() {
			t.Errorf("%s failed: %v", res.ProjectID, res.Err)
		}
	}
	if want := []string{"authorization", "batch", "compute"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("result order = %v, want %v", ids, want)
	}
	if len(f.publisher.requests) != 1 || len(f.publisher.requests[0].Projects) != 3 {
		t.Errorf("publish requests = %+v, want one branch with three projects", f.publisher.requests)
	}

	data := testutil.MustReadFile(t, filepath.Join(f.sdk, "azure-mgmt-batch", "build.json"))
	if !strings.Contains(data, `"autorest": "2.0.4215"`) || !strings.Contains(data, `"date": "2017-05-01T10:00:00Z"`) {
		t.Errorf("build.json = %s", data)
	}
}

func TestRunProjectFailureIsIsolated(t *testing.T) {
	t.Parallel()

	f := newFixture(t, e2eConfig)
	f.runner.fail = map[string]generator.Outcome{
		"batch": {ExitCode: 2, Output: "error: bad swagger", Err: &generator.GenerationError{Kind: generator.NonZeroExit, Project: "batch", ExitCode: 2}},
	}
	rep, err := f.orch.Run(context.Background(), prContext())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if rep.Success() {
		t.Error("Success() = true, want false")
	}
	failed := rep.Failed()
	if len(failed) != 1 || failed[0].ProjectID != "batch" || generator.KindOf(failed[0].Err) != generator.NonZeroExit {
		t.Fatalf("Failed() = %+v", failed)
	}
	if failed[0].Output != "error: bad swagger" {
		t.Errorf("failure output = %q", failed[0].Output)
	}
	if got := f.publisher.requests[0].Projects; !reflect.DeepEqual(got, []string{"authorization", "compute"}) {
		t.Errorf("published projects = %v", got)
	}
}

func TestRunCommitsOnlySuccessfulProjects(t *testing.T) {
	t.Parallel()

	config := strings.Replace(e2eConfig,
		`"build_dir": "azure-mgmt-batch"`,
		`"build_dir": "azure-mgmt-batch",
      "after_scripts": ["exit 3"]`, 1)
	f := newFixture(t, config)
	repo := testutil.InitRepo(t, f.sdk)
	testutil.CommitAll(t, repo, "initial")
	f.orch.Publisher = publish.NewGitPublisher(f.sdk)

	rep, err := f.orch.Run(context.Background(), prContext())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	failed := rep.Failed()
	if len(failed) != 1 || failed[0].ProjectID != "batch" || generator.KindOf(failed[0].Err) != generator.AfterScript {
		t.Fatalf("Failed() = %+v, want batch with an after script error", failed)
	}
	if len(rep.Publish) != 1 || rep.Publish[0].Commit == "" {
		t.Fatalf("Publish = %+v, want one commit", rep.Publish)
	}

	commit, err := repo.CommitObject(plumbing.NewHash(rep.Publish[0].Commit))
	if err != nil {
		t.Fatal(err)
	}
	for _, rel := range []string{
		authorizationOutput + "/__init__.py",
		authorizationOutput + "/version.py",
		"azure-mgmt-compute/azure/mgmt/compute/models.py",
		"azure-mgmt-compute/build.json",
	} {
		if _, err := commit.File(rel); err != nil {
			t.Errorf("%s not committed: %v", rel, err)
		}
	}
	for _, rel := range []string{
		authorizationOutput + "/old_operations.py",
		"azure-mgmt-batch/azure/mgmt/batch/models.py",
		"azure-mgmt-batch/build.json",
	} {
		if _, err := commit.File(rel); err == nil {
			t.Errorf("%s must not be in the commit", rel)
		}
	}
	if _, err := os.Stat(filepath.Join(f.sdk, "azure-mgmt-batch", "azure", "mgmt", "batch", "models.py")); err != nil {
		t.Errorf("failed project output should stay in the working tree: %v", err)
	}
}

func TestRunDryRun(t *testing.T) {
	t.Parallel()

	f := newFixture(t, e2eConfig)
	f.orch.Settings.DryRun = true
	rep, err := f.orch.Run(context.Background(), prContext())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(f.runner.tasks) != 0 || len(f.publisher.requests) != 0 {
		t.Fatalf("dry run invoked runner %d times and publisher %d times", len(f.runner.tasks), len(f.publisher.requests))
	}
	for _, res := range rep.Results {
		if res.Stage != report.StageBuilt || len(res.Args) == 0 {
			t.Errorf("%s: stage = %s, args = %v", res.ProjectID, res.Stage, res.Args)
		}
	}
	batch, _ := rep.Result("batch")
	if want := filepath.Join(f.rest, "specification", "batch", "resource-manager", "readme.md"); batch.Args[1] != want {
		t.Errorf("batch positional markdown = %q, want %q", batch.Args[1], want)
	}
	if batch.Args[0] != "--version=2.0.4215" {
		t.Errorf("batch version arg = %q", batch.Args[0])
	}
}

func TestRunFatalErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		config   string
		settings func(*Settings)
		kind     sdkconfig.ConfigErrorKind
	}{
		{
			name:   "unsupported version",
			config: strings.Replace(e2eConfig, `"0.2.0"`, `"0.3.0"`, 1),
			kind:   sdkconfig.UnsupportedVersion,
		},
		{
			name:     "reserved override",
			config:   e2eConfig,
			settings: func(s *Settings) { s.Overrides = options.OptionSet{"-Output-Folder": options.String("/tmp/x")} },
			kind:     sdkconfig.ReservedKeyUsed,
		},
		{
			name:     "no matching project",
			config:   e2eConfig,
			settings: func(s *Settings) { s.Filters = []string{"network"} },
			kind:     sdkconfig.NoMatchingProject,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, tt.config)
			if tt.settings != nil {
				tt.settings(&f.orch.Settings)
			}
			rep, err := f.orch.Run(context.Background(), prContext())
			if !sdkconfig.IsKind(err, tt.kind) {
				t.Fatalf("Run() error = %v, want kind %s", err, tt.kind)
			}
			if rep.State != report.StateFailed || rep.Success() {
				t.Errorf("report state = %s", rep.State)
			}
			if len(f.runner.tasks) != 0 {
				t.Errorf("runner invoked %d times after a fatal error", len(f.runner.tasks))
			}
		})
	}
}

func TestRunCanceledBeforeStart(t *testing.T) {
	t.Parallel()

	f := newFixture(t, e2eConfig)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := f.orch.Run(ctx, prContext())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rep.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(rep.Results))
	}
	for _, res := range rep.Results {
		if generator.KindOf(res.Err) != generator.Canceled || !errors.Is(res.Err, context.Canceled) {
			t.Errorf("%s: err = %v, want canceled", res.ProjectID, res.Err)
		}
	}
	if len(f.runner.tasks) != 0 || len(f.publisher.requests) != 0 {
		t.Error("canceled run must not invoke the runner or the publisher")
	}
}

func TestRunPublishFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, e2eConfig)
	f.publisher.err = errors.New("index locked")
	f.orch.Namer = naming.Namer{Branch: "regen"}
	rep, err := f.orch.Run(context.Background(), prContext("arm-compute/2017-03-30/swagger/compute.json"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if rep.Success() {
		t.Error("Success() = true with a failed publish")
	}
	if len(rep.Publish) != 1 || rep.Publish[0].Branch != "regen" || rep.Publish[0].Err == nil {
		t.Errorf("Publish = %+v", rep.Publish)
	}
	if res, _ := rep.Result("compute"); res.Stage != report.StageStaged {
		t.Errorf("compute stage = %s, want %s", res.Stage, report.StageStaged)
	}
}

func TestBuildTaskLayers(t *testing.T) {
	t.Parallel()

	f := newFixture(t, e2eConfig)
	f.orch.Settings.Overrides = options.OptionSet{"namespace": options.String("azure.mgmt.auth2")}
	f.orch.Settings.GeneratorVersion = "preview"

	cfg, err := sdkconfig.LoadFile(filepath.Join(f.sdk, sdkconfig.DefaultFileName))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	spec, _ := cfg.Project("authorization")
	task, err := f.orch.BuildTask(cfg, spec)
	if err != nil {
		t.Fatalf("BuildTask() error = %v", err)
	}

	if got := task.Options["namespace"].String(); got != "azure.mgmt.auth2" {
		t.Errorf("namespace = %q, want the command line override", got)
	}
	if got := task.Options["license-header"].String(); got != "MICROSOFT_MIT_NO_VERSION" {
		t.Errorf("license-header = %q, want the meta option", got)
	}
	if task.GeneratorVersion != "preview" {
		t.Errorf("GeneratorVersion = %q", task.GeneratorVersion)
	}
}

func TestRunWithoutRunner(t *testing.T) {
	t.Parallel()

	o := &Orchestrator{}
	rep, err := o.Run(context.Background(), ci.Context{})
	if !errors.Is(err, ErrNoRunner) || rep.State != report.StateFailed {
		t.Errorf("Run() = %v, %v", rep.State, err)
	}
}

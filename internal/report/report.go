// SPDX-License-Identifier: MPL-2.0

// Package report holds the outcome of a run and renders it as a summary.
package report

import (
	"time"
)

const (
	// StateLoaded means the configuration was loaded.
	StateLoaded State = "loaded"
	// StateSelected means the projects to regenerate are known.
	StateSelected State = "selected"
	// StateCompleted means every selected project went through its pipeline.
	StateCompleted State = "completed"
	// StateFailed means the run stopped before any project was processed.
	StateFailed State = "failed"
)

const (
	// StageBuilt means the generator task was constructed.
	StageBuilt Stage = "built"
	// StageInvoked means the generator ran successfully.
	StageInvoked Stage = "invoked"
	// StageStaged means the output was moved into the SDK.
	StageStaged Stage = "staged"
	// StagePublished means the output was committed.
	StagePublished Stage = "published"
)

type (
	// State is the run-level state.
	State string

	// Stage is the last stage a project reached.
	Stage string

	// ProjectResult is the outcome of one project pipeline.
	ProjectResult struct {
		ProjectID string
		Stage     Stage
		// Args is the generator argument list, kept for dry runs and failures.
		Args  []string
		Files []string
		// Paths are the SDK locations the project rewrote: its output_dir
		// and, when set, its build_dir.
		Paths    []string
		Output   string
		Duration time.Duration
		Err      error
	}

	// PublishResult is the outcome of publishing one branch.
	PublishResult struct {
		Branch   string
		Commit   string
		Skipped  bool
		Projects []string
		Err      error
	}

	// Report is the full record of a run.
	Report struct {
		RunID  string
		State  State
		DryRun bool
		// Err is the fatal error that stopped the run, if any.
		Err      error
		Results  []ProjectResult
		Publish  []PublishResult
		Started  time.Time
		Finished time.Time
	}
)

// Success reports whether the project pipeline succeeded.
func (r ProjectResult) Success() bool { return r.Err == nil }

// Success is false when the run stopped early, or any project or publish
// step failed.
func (r *Report) Success() bool {
	if r.Err != nil || r.State == StateFailed {
		return false
	}
	for _, res := range r.Results {
		if !res.Success() {
			return false
		}
	}
	for _, pub := range r.Publish {
		if pub.Err != nil {
			return false
		}
	}
	return true
}

// Failed returns the failed project results in project order.
func (r *Report) Failed() []ProjectResult {
	var failed []ProjectResult
	for _, res := range r.Results {
		if !res.Success() {
			failed = append(failed, res)
		}
	}
	return failed
}

// Result returns the result of a project.
func (r *Report) Result(projectID string) (ProjectResult, bool) {
	for _, res := range r.Results {
		if res.ProjectID == projectID {
			return res, true
		}
	}
	return ProjectResult{}, false
}

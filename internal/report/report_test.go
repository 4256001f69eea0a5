// SPDX-License-Identifier: MPL-2.0

package report

import (
	"errors"
	"strings"
	"testing"
)

func sampleReport() *Report {
	return &Report{
		RunID: "7f0c3d1e",
		State: StateCompleted,
		Results: []ProjectResult{
			{ProjectID: "authorization", Stage: StagePublished, Files: []string{"a.py", "b.py"}},
			{ProjectID: "batch", Stage: StageBuilt, Output: "line1\nline2\nfatal: boom\n", Err: errors.New("generator exited with non-zero status")},
		},
		Publish: []PublishResult{
			{Branch: "restapi_auto_pr_1", Commit: "abc", Projects: []string{"authorization"}},
		},
	}
}

func TestReportSuccess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		report *Report
		want   bool
	}{
		{"empty completed run", &Report{State: StateCompleted}, true},
		{"project failure", sampleReport(), false},
		{"fatal error", &Report{State: StateFailed, Err: errors.New("bad config")}, false},
		{"publish failure", &Report{State: StateCompleted, Publish: []PublishResult{{Branch: "b", Err: errors.New("x")}}}, false},
		{"all good", &Report{State: StateCompleted, Results: []ProjectResult{{ProjectID: "a"}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.report.Success(); got != tt.want {
				t.Errorf("Success() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMarkdown(t *testing.T) {
	t.Parallel()

	md := sampleReport().Markdown()
	for _, want := range []string{
		"| authorization | ok | published | 2 |",
		"| batch | FAILED | built | 0 |",
		"## Failures",
		"fatal: boom",
		"- `restapi_auto_pr_1`: commit `abc` (authorization)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown() missing %q:\n%s", want, md)
		}
	}
}

func TestMarkdownDryRun(t *testing.T) {
	t.Parallel()

	r := &Report{DryRun: true, State: StateCompleted, Results: []ProjectResult{
		{ProjectID: "batch", Stage: StageBuilt, Args: []string{"--version=latest", "--python"}},
	}}
	md := r.Markdown()
	if !strings.Contains(md, "(dry run)") || !strings.Contains(md, "--version=latest\n--python") {
		t.Errorf("Markdown() = %s", md)
	}
}

func TestMarkdownFatal(t *testing.T) {
	t.Parallel()

	md := (&Report{State: StateFailed, Err: errors.New("unsupported configuration version")}).Markdown()
	if !strings.Contains(md, "**Run failed:** unsupported configuration version") {
		t.Errorf("Markdown() = %s", md)
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	out, err := sampleReport().Render(80)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, "authorization") {
		t.Errorf("Render() lost content:\n%s", out)
	}
}

func TestTail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"", 3, ""},
		{"a\nb\nc\n", 2, "b\nc"},
		{"a\nb", 5, "a\nb"},
	}
	for _, tt := range tests {
		if got := Tail(tt.in, tt.n); got != tt.want {
			t.Errorf("Tail(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

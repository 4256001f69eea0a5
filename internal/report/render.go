// SPDX-License-Identifier: MPL-2.0

package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
)

const outputTailLines = 20

// Markdown renders the report as a markdown document.
func (r *Report) Markdown() string {
	var b strings.Builder

	title := "Swagger to SDK run"
	if r.DryRun {
		title += " (dry run)"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if r.RunID != "" {
		fmt.Fprintf(&b, "Run `%s`", r.RunID)
		if !r.Started.IsZero() && !r.Finished.IsZero() {
			fmt.Fprintf(&b, " in %s", r.Finished.Sub(r.Started).Round(time.Millisecond))
		}
		b.WriteString("\n\n")
	}

	if r.Err != nil {
		fmt.Fprintf(&b, "**Run failed:** %s\n\n", r.Err)
	}

	if len(r.Results) == 0 {
		if r.Err == nil {
			b.WriteString("No project to regenerate.\n")
		}
		return b.String()
	}

	b.WriteString("| Project | Status | Stage | Files | Duration |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, res := range r.Results {
		status := "ok"
		if !res.Success() {
			status = "FAILED"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %s |\n", res.ProjectID, status, res.Stage, len(res.Files), res.Duration.Round(time.Millisecond))
	}

	if r.DryRun {
		b.WriteString("\n## Generator invocations\n")
		for _, res := range r.Results {
			fmt.Fprintf(&b, "\n### %s\n\n```\n%s\n```\n", res.ProjectID, strings.Join(res.Args, "\n"))
		}
	}

	if failed := r.Failed(); len(failed) > 0 {
		b.WriteString("\n## Failures\n")
		for _, res := range failed {
			fmt.Fprintf(&b, "\n### %s\n\n%s\n", res.ProjectID, res.Err)
			if tail := Tail(res.Output, outputTailLines); tail != "" {
				fmt.Fprintf(&b, "\n```\n%s\n```\n", tail)
			}
		}
	}

	if len(r.Publish) > 0 {
		b.WriteString("\n## Publish\n\n")
		for _, pub := range r.Publish {
			switch {
			case pub.Err != nil:
				fmt.Fprintf(&b, "- `%s`: failed: %s\n", pub.Branch, pub.Err)
			case pub.Skipped:
				fmt.Fprintf(&b, "- `%s`: no modified files\n", pub.Branch)
			default:
				fmt.Fprintf(&b, "- `%s`: commit `%s` (%s)\n", pub.Branch, pub.Commit, strings.Join(pub.Projects, ", "))
			}
		}
	}
	return b.String()
}

// Render returns the report styled for a terminal of the given width (no
// wrapping when width <= 0).
func (r *Report) Render(width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return renderer.Render(r.Markdown())
}

// Tail returns the last n lines of s.
func Tail(s string, n int) string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

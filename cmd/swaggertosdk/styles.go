// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

const (
	colorAccent = lipgloss.Color("#0078D4")
	colorMuted  = lipgloss.Color("#6B7280")
	colorOK     = lipgloss.Color("#10B981")
	colorFailed = lipgloss.Color("#EF4444")
	colorNotice = lipgloss.Color("#F59E0B")
)

var (
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	SubtitleStyle = lipgloss.NewStyle().Foreground(colorMuted)

	// SuccessStyle and ErrorStyle prefix the final status line of a run.
	SuccessStyle = lipgloss.NewStyle().Bold(true).Foreground(colorOK)
	ErrorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorFailed)

	// WarningStyle marks runs that did not touch the SDK checkout.
	WarningStyle = lipgloss.NewStyle().Italic(true).Foreground(colorNotice)
)

// statusLine renders the one-line outcome printed after the report.
func statusLine(ok, dryRun bool, status string) string {
	line := SuccessStyle.Render("Run succeeded: ") + status
	if !ok {
		line = ErrorStyle.Render("Run failed: ") + status
	}
	if dryRun {
		line += WarningStyle.Render(" (dry run, nothing generated)")
	}
	return line
}

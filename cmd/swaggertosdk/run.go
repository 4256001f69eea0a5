// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Azure/swagger-to-sdk/internal/ci"
	"github.com/Azure/swagger-to-sdk/internal/config"
	"github.com/Azure/swagger-to-sdk/internal/generator"
	"github.com/Azure/swagger-to-sdk/internal/issue"
	"github.com/Azure/swagger-to-sdk/internal/naming"
	"github.com/Azure/swagger-to-sdk/internal/orchestrator"
	"github.com/Azure/swagger-to-sdk/internal/publish"
	"github.com/Azure/swagger-to-sdk/internal/report"

	"github.com/spf13/cobra"
)

const reportWidth = 100

func run(cmd *cobra.Command, sdkGitID string, flags *cliFlags) error {
	ctx := cmd.Context()
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	setupLogging(stderr, flags.verbose, flags.debug)

	if _, _, err := config.SplitRepoID(sdkGitID); err != nil {
		return fatal(stderr, err, "", flags.verbose)
	}

	cfg, err := config.Load(ctx, config.LoadOptions{SettingsFile: flags.settingsFile, Flags: changedSettings(cmd)})
	if err != nil {
		return fatal(stderr, err, "", flags.verbose)
	}
	overrides, err := cfg.Overrides(flags.options)
	if err != nil {
		return fatal(stderr, issue.WrapWithOperation(err, "parse option overrides"), "", flags.verbose)
	}

	restRoot, err := filepath.Abs(cfg.RESTFolder)
	if err != nil {
		return fatal(stderr, err, "", flags.verbose)
	}
	sdkRoot, err := filepath.Abs(cfg.SDKFolder)
	if err != nil {
		return fatal(stderr, err, "", flags.verbose)
	}

	cictx, err := ci.Capture(ci.Options{
		RESTRoot:     restRoot,
		EnvFile:      cfg.EnvFile,
		BaseBranch:   cfg.BaseBranch,
		ChangedFiles: flags.changedFiles,
	})
	if err != nil {
		return fatal(stderr, issue.WrapWithOperation(err, "read CI context"), "", flags.verbose)
	}
	if cictx.Branch.RepoSlug == "" {
		cictx.Branch.RepoSlug = sdkGitID
	}
	slog.Info("run context",
		"sdk", sdkGitID,
		"pr_repo", cfg.PRRepoID,
		"commit", cictx.Branch.CommitHash,
		"pr", cictx.Branch.PRNumber,
		"ci", cictx.InCI,
	)

	orch := &orchestrator.Orchestrator{
		Settings: orchestrator.Settings{
			ConfigPath:       cfg.ConfigPath,
			RESTRoot:         restRoot,
			SDKRoot:          sdkRoot,
			Filters:          flags.projects,
			Overrides:        overrides,
			GeneratorVersion: cfg.GeneratorVersion,
			Jobs:             cfg.Jobs,
			DryRun:           cfg.DryRun,
		},
		Runner:    generator.NewProcessRunner(cfg.Autorest, cfg.Timeout),
		Scripts:   generator.ScriptRunner{},
		Publisher: newPublisher(cfg, sdkRoot),
		Namer:     naming.Namer{Branch: cfg.Branch, MessageTemplate: cfg.Message},
	}

	rep, err := orch.Run(ctx, cictx)
	if err != nil {
		return fatal(stderr, err, configPath(cfg, sdkRoot), flags.verbose)
	}

	printReport(stdout, rep)
	status := fmt.Sprintf("%d project(s) in %s", len(rep.Results), elapsed(rep.Finished.Sub(rep.Started)))
	fmt.Fprintln(stderr, statusLine(rep.Success(), rep.DryRun, status))
	if !rep.Success() {
		for _, res := range rep.Failed() {
			renderIssue(stderr, res.Err)
		}
		return &ExitError{Code: ExitRunFailed}
	}
	return nil
}

func newPublisher(cfg *config.Config, sdkRoot string) publish.Publisher {
	if cfg.DryRun || cfg.NoPublish {
		return publish.NopPublisher{}
	}
	if !publish.IsRepository(sdkRoot) {
		slog.Warn("SDK folder is not a git repository, nothing will be committed", "path", sdkRoot)
		return publish.NopPublisher{}
	}
	p := publish.NewGitPublisher(sdkRoot)
	p.AuthorName, p.AuthorEmail = cfg.AuthorName, cfg.AuthorEmail
	return p
}

func configPath(cfg *config.Config, sdkRoot string) string {
	if filepath.IsAbs(cfg.ConfigPath) {
		return cfg.ConfigPath
	}
	return filepath.Join(sdkRoot, cfg.ConfigPath)
}

// fatal reports an error that stopped the run before any project ran.
func fatal(w io.Writer, err error, resource string, verbose bool) error {
	err = issue.Actionable(err, resource)
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
	renderIssue(w, err)
	return &ExitError{Code: ExitFatal}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// renderIssue prints the catalog guidance for err, if there is one.
func renderIssue(w io.Writer, err error) {
	entry := issue.ForError(err)
	if entry == nil {
		return
	}
	style := "notty"
	if isTerminal(w) {
		style = "dark"
	}
	rendered, renderErr := entry.Render(style)
	if renderErr != nil {
		slog.Warn("failed to render issue catalog entry", "issueID", entry.Id(), "error", renderErr)
		return
	}
	fmt.Fprint(w, rendered)
}

// printReport writes the run summary, styled on terminals and as plain
// markdown otherwise.
func printReport(w io.Writer, rep *report.Report) {
	if isTerminal(w) {
		out, err := rep.Render(reportWidth)
		if err == nil {
			fmt.Fprint(w, out)
			return
		}
		slog.Warn("failed to render report", "error", err)
	}
	fmt.Fprint(w, rep.Markdown())
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

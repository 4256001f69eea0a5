// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Azure/swagger-to-sdk/internal/generator"
	"github.com/Azure/swagger-to-sdk/internal/naming"
	"github.com/Azure/swagger-to-sdk/pkg/sdkconfig"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// settingFlags maps flags backed by a run setting to the setting name. Only
// flags set explicitly are forwarded, so lower-precedence sources still apply.
var settingFlags = map[string]string{
	"rest-folder":  "rest_folder",
	"sdk-folder":   "sdk_folder",
	"config":       "config",
	"autorest":     "autorest",
	"pr-repo-id":   "pr_repo_id",
	"message":      "message",
	"base-branch":  "base_branch",
	"branch":       "branch",
	"timeout":      "timeout",
	"jobs":         "jobs",
	"env-file":     "env_file",
	"options-file": "options_file",
	"dry-run":      "dry_run",
	"no-publish":   "no_publish",
}

// cliFlags holds the flags that are not run settings.
type cliFlags struct {
	settingsFile string
	projects     []string
	options      []string
	changedFiles []string
	verbose      bool
	debug        bool
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// NewRootCommand builds the swaggertosdk command.
func NewRootCommand() *cobra.Command {
	flags := &cliFlags{}

	rootCmd := &cobra.Command{
		Use:   "swaggertosdk <sdk_git_id>",
		Short: "Regenerate SDK projects from REST API specifications",
		Long: TitleStyle.Render("swaggertosdk") + SubtitleStyle.Render(" - Regenerate SDK projects from REST API specifications") + `

swaggertosdk reads the ` + sdkconfig.DefaultFileName + ` document of an SDK
checkout, selects the projects affected by the changed specification files,
runs the code generator for each of them and commits the result on a
dedicated branch of the SDK checkout.

` + SubtitleStyle.Render("Examples:") + `
  swaggertosdk Azure/azure-sdk-for-python --rest-folder ../azure-rest-api-specs --sdk-folder .
  swaggertosdk Azure/azure-sdk-for-python -p compute -p network --dry-run
  swaggertosdk Azure/azure-sdk-for-python --changed-file arm-compute/2017-03-30/swagger/compute.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], flags)
		},
	}

	f := rootCmd.Flags()
	f.StringP("rest-folder", "r", ".", "REST API specification checkout")
	f.StringP("sdk-folder", "s", ".", "SDK checkout receiving the generated code")
	f.StringP("config", "c", sdkconfig.DefaultFileName, "configuration document, relative to the SDK folder")
	f.String("autorest", generator.DefaultCommand, "generator command line")
	f.String("pr-repo-id", "", "owner/name of the repository pull requests target")
	f.StringP("message", "m", naming.DefaultCommitMessage, "commit message, "+naming.HexshaPlaceholder+" is replaced by the REST commit")
	f.StringP("base-branch", "o", "master", "branch pull requests target")
	f.StringP("branch", "b", "", "branch to commit to (default computed from the CI context)")
	f.Duration("timeout", generator.DefaultTimeout, "time limit of one generator invocation")
	f.IntP("jobs", "j", 1, "projects generated concurrently")
	f.String("env-file", "", "dotenv file replayed under the CI environment")
	f.String("options-file", "", "TOML file of generator option overrides")
	f.Bool("dry-run", false, "select projects and show generator invocations without running them")
	f.Bool("no-publish", false, "generate without committing")

	f.StringVar(&flags.settingsFile, "settings", "", "settings file (default ./swaggertosdk.cue when present)")
	f.StringArrayVarP(&flags.projects, "project", "p", nil, "restrict to projects whose id contains this value (repeatable)")
	f.StringArrayVar(&flags.options, "option", nil, "generator option override key=value (repeatable)")
	f.StringArrayVar(&flags.changedFiles, "changed-file", nil, "REST file changed by this run, relative to the REST folder (repeatable)")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "verbosity in INFO mode")
	f.BoolVar(&flags.debug, "debug", false, "verbosity in DEBUG mode")

	return rootCmd
}

// changedSettings returns the explicitly set setting flags, keyed by setting
// name.
func changedSettings(cmd *cobra.Command) map[string]any {
	out := map[string]any{}
	for name, key := range settingFlags {
		if !cmd.Flags().Changed(name) {
			continue
		}
		out[key] = cmd.Flags().Lookup(name).Value.String()
	}
	return out
}

// Execute runs the root command and exits with its status.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// elapsed formats a run duration for the status line.
func elapsed(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/Azure/swagger-to-sdk/internal/testutil"
	"github.com/Azure/swagger-to-sdk/pkg/sdkconfig"

	"github.com/charmbracelet/log"
)

const dryRunConfig = `{
  "meta": {"version": "0.2.0", "autorest_options": {"python": ""}},
  "projects": {
    "authorization": {
      "autorest_options": {"input-file": ["arm-authorization/2015-07-01/swagger/authorization.json"]},
      "output_dir": "azure-mgmt-authorization/azure/mgmt/authorization"
    },
    "batch": {
      "autorest_options": {"input-file": ["arm-batch/2017-09-01/swagger/BatchManagement.json"]},
      "output_dir": "azure-mgmt-batch/azure/mgmt/batch"
    }
  }
}`

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version, Commit, BuildDate = "v1.2.3", "abc1234", "2025-06-15T10:00:00Z"
		want := "v1.2.3 (commit: abc1234, built: 2025-06-15T10:00:00Z)"
		if got := getVersionString(); got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("dev build", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		if got := getVersionString(); got != "dev (built from source)" {
			t.Errorf("getVersionString() = %q", got)
		}
	})
}

func TestLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		verbose, debug bool
		want           log.Level
	}{
		{false, false, log.WarnLevel},
		{true, false, log.InfoLevel},
		{false, true, log.DebugLevel},
		{true, true, log.DebugLevel},
	}
	for _, tt := range tests {
		if got := logLevel(tt.verbose, tt.debug); got != tt.want {
			t.Errorf("logLevel(%v, %v) = %v, want %v", tt.verbose, tt.debug, got, tt.want)
		}
	}
}

func TestChangedSettings(t *testing.T) {
	t.Parallel()

	cmd := NewRootCommand()
	if err := cmd.ParseFlags([]string{"--sdk-folder", "/sdk", "-j", "3", "--dry-run", "-p", "compute"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	got := changedSettings(cmd)
	want := map[string]any{"sdk_folder": "/sdk", "jobs": "3", "dry_run": "true"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("changedSettings() = %v, want %v", got, want)
	}
}

func TestSettingFlagsAreDefined(t *testing.T) {
	t.Parallel()

	cmd := NewRootCommand()
	for name := range settingFlags {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("setting flag --%s is not defined", name)
		}
	}
}

func runCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRunDryRun(t *testing.T) {
	rest, sdk := t.TempDir(), t.TempDir()
	testutil.WriteFiles(t, rest, map[string]string{
		"arm-authorization/2015-07-01/swagger/authorization.json": "{}",
		"arm-batch/2017-09-01/swagger/BatchManagement.json":       "{}",
	})
	testutil.WriteFiles(t, sdk, map[string]string{sdkconfig.DefaultFileName: dryRunConfig})

	stdout, stderr, err := runCommand(t,
		"Azure/azure-sdk-for-python",
		"--rest-folder", rest,
		"--sdk-folder", sdk,
		"--changed-file", "arm-batch/2017-09-01/swagger/BatchManagement.json",
		"--option", "namespace=azure.mgmt.batch",
		"--dry-run",
	)
	if err != nil {
		t.Fatalf("Execute() error = %v\n%s", err, stderr)
	}

	if !strings.Contains(stdout, "(dry run)") || !strings.Contains(stdout, "| batch |") {
		t.Errorf("report = %s", stdout)
	}
	if strings.Contains(stdout, "| authorization |") {
		t.Errorf("authorization must not be selected:\n%s", stdout)
	}
	if !strings.Contains(stdout, "--namespace=azure.mgmt.batch") {
		t.Errorf("override missing from invocation:\n%s", stdout)
	}
	wantOut := "--output-folder=" + filepath.Join(sdk, "azure-mgmt-batch", "azure", "mgmt", "batch")
	if !strings.Contains(stdout, wantOut) {
		t.Errorf("report missing %s:\n%s", wantOut, stdout)
	}
	if testutil.Tree(t, filepath.Join(sdk, "azure-mgmt-batch")) != nil {
		t.Error("dry run must not write output")
	}
}

func TestRunFatalExitCode(t *testing.T) {
	tests := []struct {
		name string
		args func(rest, sdk string) []string
		want string
	}{
		{
			name: "bad sdk id",
			args: func(rest, sdk string) []string { return []string{"not-a-repo-id", "--sdk-folder", sdk} },
			want: "owner/name",
		},
		{
			name: "reserved override",
			args: func(rest, sdk string) []string {
				return []string{"Azure/sdk", "--rest-folder", rest, "--sdk-folder", sdk, "--option", "output-folder=/tmp", "--dry-run"}
			},
			want: "reserved option key used",
		},
		{
			name: "unknown project",
			args: func(rest, sdk string) []string {
				return []string{"Azure/sdk", "--rest-folder", rest, "--sdk-folder", sdk, "-p", "network", "--dry-run"}
			},
			want: "No project matches",
		},
		{
			name: "missing configuration",
			args: func(rest, sdk string) []string {
				return []string{"Azure/sdk", "--rest-folder", rest, "--sdk-folder", sdk, "--config", "missing.json"}
			},
			want: "missing.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rest, sdk := t.TempDir(), t.TempDir()
			testutil.WriteFiles(t, sdk, map[string]string{sdkconfig.DefaultFileName: dryRunConfig})

			_, stderr, err := runCommand(t, tt.args(rest, sdk)...)
			var exitErr *ExitError
			if !errors.As(err, &exitErr) || exitErr.Code != ExitFatal {
				t.Fatalf("Execute() error = %v, want exit code %d", err, ExitFatal)
			}
			if !strings.Contains(stderr, tt.want) {
				t.Errorf("stderr = %s, want it to contain %q", stderr, tt.want)
			}
		})
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	if got := (&ExitError{Code: 2}).Error(); got != "exit status 2" {
		t.Errorf("Error() = %q", got)
	}
	inner := errors.New("boom")
	err := &ExitError{Code: 1, Err: inner}
	if err.Error() != "boom" || !errors.Is(err, inner) {
		t.Errorf("ExitError should wrap its cause")
	}
}

func TestStatusLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ok      bool
		dryRun  bool
		want    string
		notWant string
	}{
		{name: "success", ok: true, want: "Run succeeded: 2 project(s)", notWant: "dry run"},
		{name: "failure", ok: false, want: "Run failed: 2 project(s)", notWant: "dry run"},
		{name: "dry run", ok: true, dryRun: true, want: "dry run, nothing generated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := statusLine(tt.ok, tt.dryRun, "2 project(s)")
			if !strings.Contains(got, tt.want) {
				t.Errorf("statusLine() = %q, want it to contain %q", got, tt.want)
			}
			if tt.notWant != "" && strings.Contains(got, tt.notWant) {
				t.Errorf("statusLine() = %q, must not contain %q", got, tt.notWant)
			}
		})
	}
}

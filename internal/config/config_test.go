// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Azure/swagger-to-sdk/internal/generator"
	"github.com/Azure/swagger-to-sdk/internal/issue"
	"github.com/Azure/swagger-to-sdk/internal/options"
	"github.com/Azure/swagger-to-sdk/pkg/sdkconfig"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", p, err)
	}
	return p
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.ConfigPath != sdkconfig.DefaultFileName {
		t.Errorf("ConfigPath = %q", cfg.ConfigPath)
	}
	if cfg.Autorest != generator.DefaultCommand || cfg.Timeout != generator.DefaultTimeout {
		t.Errorf("generator defaults = %q, %s", cfg.Autorest, cfg.Timeout)
	}
	if cfg.Jobs != 1 || cfg.BaseBranch != "master" {
		t.Errorf("Jobs = %d, BaseBranch = %q", cfg.Jobs, cfg.BaseBranch)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must be valid: %v", err)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	settings := writeFile(t, dir, "settings.cue", `
rest_folder: "/rest"
sdk_folder:  "/sdk-from-file"
jobs:        2
timeout:     "10m"
autorest:    "autorest --preview"
`)
	t.Setenv("SWAGGERTOSDK_SDK_FOLDER", "/sdk-from-env")
	t.Setenv("SWAGGERTOSDK_JOBS", "3")

	cfg, err := Load(context.Background(), LoadOptions{
		SettingsFile: settings,
		Flags:        map[string]any{"jobs": 4},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.RESTFolder != "/rest" {
		t.Errorf("RESTFolder = %q, want value from file", cfg.RESTFolder)
	}
	if cfg.SDKFolder != "/sdk-from-env" {
		t.Errorf("SDKFolder = %q, want env over file", cfg.SDKFolder)
	}
	if cfg.Jobs != 4 {
		t.Errorf("Jobs = %d, want flag over env", cfg.Jobs)
	}
	if cfg.Timeout != 10*time.Minute {
		t.Errorf("Timeout = %s", cfg.Timeout)
	}
	if cfg.Autorest != "autorest --preview" {
		t.Errorf("Autorest = %q", cfg.Autorest)
	}
	if cfg.Message == "" {
		t.Error("Message default lost")
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	badSchema := writeFile(t, dir, "bad.cue", `jobs: 0`)
	unknown := writeFile(t, dir, "unknown.cue", `container_engine: "docker"`)

	tests := []struct {
		name string
		opts LoadOptions
		want string
	}{
		{"missing file", LoadOptions{SettingsFile: filepath.Join(dir, "nope.cue")}, "settings file not found"},
		{"schema violation", LoadOptions{SettingsFile: badSchema}, "jobs"},
		{"unknown field", LoadOptions{SettingsFile: unknown}, "container_engine"},
		{"invalid flag value", LoadOptions{Flags: map[string]any{"pr_repo_id": "no-slash"}}, "owner/name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Load(context.Background(), tt.opts)
			if err == nil {
				t.Fatal("Load() expected error")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Errorf("Load() error = %T, want *issue.ActionableError", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestLoadCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Load(ctx, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestConfigIsValid(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Jobs = 0
	cfg.Timeout = 0
	cfg.SDKFolder = " "

	ok, errs := cfg.IsValid()
	if ok || len(errs) != 3 {
		t.Fatalf("IsValid() = %v, %v", ok, errs)
	}
	err := cfg.Validate()
	var invalid *InvalidConfigError
	if !errors.As(err, &invalid) || !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Validate() = %v", err)
	}
}

func TestSplitRepoID(t *testing.T) {
	t.Parallel()

	owner, name, err := SplitRepoID("Azure/azure-sdk-for-python")
	if err != nil || owner != "Azure" || name != "azure-sdk-for-python" {
		t.Errorf("SplitRepoID() = %q, %q, %v", owner, name, err)
	}
	for _, bad := range []string{"", "Azure", "/x", "a/b/c"} {
		if _, _, err := SplitRepoID(bad); !errors.Is(err, ErrInvalidRepoID) {
			t.Errorf("SplitRepoID(%q) error = %v", bad, err)
		}
	}
}

func TestParseOptionFlags(t *testing.T) {
	t.Parallel()

	set, err := ParseOptionFlags([]string{
		"namespace=azure.mgmt.compute",
		"python",
		"azure-arm=true",
		"payload-flattening-threshold=2",
		"tag=a",
		"tag=b",
	})
	if err != nil {
		t.Fatalf("ParseOptionFlags() error = %v", err)
	}

	want := options.OptionSet{
		"namespace":                    options.String("azure.mgmt.compute"),
		"python":                       options.String(""),
		"azure-arm":                    options.Bool(true),
		"payload-flattening-threshold": options.Int(2),
		"tag":                          options.List("a", "b"),
	}
	for key, v := range want {
		if !set[key].Equal(v) {
			t.Errorf("%s = %v, want %v", key, set[key], v)
		}
	}

	if _, err := ParseOptionFlags([]string{"=value"}); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("ParseOptionFlags(=value) error = %v", err)
	}
}

func TestOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.OptionsFile = writeFile(t, dir, "options.toml", `
namespace = "from.file"
license-header = "MICROSOFT_MIT_NO_VERSION"
input-file = ["a.json", "b.json"]
`)

	set, err := cfg.Overrides([]string{"namespace=from.flag"})
	if err != nil {
		t.Fatalf("Overrides() error = %v", err)
	}
	if got := set["namespace"].String(); got != "from.flag" {
		t.Errorf("namespace = %q, want flag over file", got)
	}
	if got := set["license-header"].String(); got != "MICROSOFT_MIT_NO_VERSION" {
		t.Errorf("license-header = %q", got)
	}
	if got := set["input-file"].Strings(); len(got) != 2 {
		t.Errorf("input-file = %v", got)
	}

	cfg.OptionsFile = writeFile(t, dir, "bad.toml", `[table]
key = 1`)
	if _, err := cfg.Overrides(nil); !errors.Is(err, options.ErrUnsupportedValue) {
		t.Errorf("Overrides() with a table error = %v", err)
	}
}

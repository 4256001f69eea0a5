// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/Azure/swagger-to-sdk/internal/issue"
	"github.com/Azure/swagger-to-sdk/pkg/cueutil"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "swaggertosdk"
	// EnvPrefix prefixes environment variables read as settings.
	EnvPrefix = "SWAGGERTOSDK"
	// SettingsFileName is the settings file looked up in the working
	// directory when no explicit file is given.
	SettingsFileName = "swaggertosdk.cue"
)

//go:embed settings_schema.cue
var settingsSchema []byte

// LoadOptions defines explicit settings loading inputs.
type LoadOptions struct {
	// SettingsFile forces loading from a specific file when set.
	SettingsFile string
	// Flags holds the command line values that were explicitly set, keyed
	// by setting name (e.g. "sdk_folder").
	Flags map[string]any
}

// Load resolves the run settings.
func Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load settings canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	path := opts.SettingsFile
	if path == "" && fileExists(SettingsFileName) {
		path = SettingsFileName
	}
	if path != "" {
		if !fileExists(path) {
			return nil, issue.NewErrorContext().
				WithOperation("load settings").
				WithResource(path).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				Wrap(fmt.Errorf("settings file not found: %s", path)).
				BuildError()
		}
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load settings").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the settings match the expected schema").
				Wrap(err).
				BuildError()
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, value := range opts.Flags {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate settings").
			WithResource(path).
			WithSuggestion("Fix the flag, environment variable or settings file value listed above").
			Wrap(err).
			BuildError()
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("rest_folder", d.RESTFolder)
	v.SetDefault("sdk_folder", d.SDKFolder)
	v.SetDefault("config", d.ConfigPath)
	v.SetDefault("autorest", d.Autorest)
	v.SetDefault("generator_version", d.GeneratorVersion)
	v.SetDefault("base_branch", d.BaseBranch)
	v.SetDefault("branch", d.Branch)
	v.SetDefault("message", d.Message)
	v.SetDefault("pr_repo_id", d.PRRepoID)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("jobs", d.Jobs)
	v.SetDefault("env_file", d.EnvFile)
	v.SetDefault("options_file", d.OptionsFile)
	v.SetDefault("author_name", d.AuthorName)
	v.SetDefault("author_email", d.AuthorEmail)
	v.SetDefault("dry_run", d.DryRun)
	v.SetDefault("no_publish", d.NoPublish)
}

// loadCUEIntoViper validates a CUE settings file and merges it into v above
// the defaults.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings map[string]any
	if err := cueutil.Decode(settingsSchema, data, "#Settings", &settings, cueutil.WithFilename(path)); err != nil {
		return err
	}

	if err := v.MergeConfigMap(settings); err != nil {
		return fmt.Errorf("failed to merge settings: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

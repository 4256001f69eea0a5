// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Azure/swagger-to-sdk/internal/generator"
	"github.com/Azure/swagger-to-sdk/internal/naming"
	"github.com/Azure/swagger-to-sdk/internal/publish"
	"github.com/Azure/swagger-to-sdk/pkg/sdkconfig"
)

var (
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid settings")
	// ErrInvalidRepoID is returned when a repository id is not owner/name.
	ErrInvalidRepoID = errors.New("invalid repository id")
)

type (
	// Config is the complete set of run settings.
	Config struct {
		// RESTFolder is the REST specification checkout.
		RESTFolder string `mapstructure:"rest_folder"`
		// SDKFolder is the SDK checkout that receives generated code.
		SDKFolder string `mapstructure:"sdk_folder"`
		// ConfigPath is the SDK configuration document, relative to SDKFolder
		// unless absolute.
		ConfigPath string `mapstructure:"config"`
		// Autorest is the generator command line.
		Autorest         string `mapstructure:"autorest"`
		GeneratorVersion string `mapstructure:"generator_version"`
		BaseBranch       string `mapstructure:"base_branch"`
		Branch           string `mapstructure:"branch"`
		Message          string `mapstructure:"message"`
		// PRRepoID is the owner/name of the repository pull requests are
		// opened against. Informational only.
		PRRepoID    string        `mapstructure:"pr_repo_id"`
		Timeout     time.Duration `mapstructure:"timeout"`
		Jobs        int           `mapstructure:"jobs"`
		EnvFile     string        `mapstructure:"env_file"`
		OptionsFile string        `mapstructure:"options_file"`
		AuthorName  string        `mapstructure:"author_name"`
		AuthorEmail string        `mapstructure:"author_email"`
		DryRun      bool          `mapstructure:"dry_run"`
		NoPublish   bool          `mapstructure:"no_publish"`
	}

	// InvalidConfigError lists every invalid field of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		RESTFolder:  ".",
		SDKFolder:   ".",
		ConfigPath:  sdkconfig.DefaultFileName,
		Autorest:    generator.DefaultCommand,
		BaseBranch:  "master",
		Message:     naming.DefaultCommitMessage,
		Timeout:     generator.DefaultTimeout,
		Jobs:        1,
		AuthorName:  publish.DefaultAuthorName,
		AuthorEmail: publish.DefaultAuthorEmail,
	}
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%s: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// IsValid returns whether the Config is usable, and a list of validation
// errors if it is not.
func (c *Config) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(c.RESTFolder) == "" {
		errs = append(errs, errors.New("rest_folder must not be empty"))
	}
	if strings.TrimSpace(c.SDKFolder) == "" {
		errs = append(errs, errors.New("sdk_folder must not be empty"))
	}
	if strings.TrimSpace(c.Autorest) == "" {
		errs = append(errs, errors.New("autorest must not be empty"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if c.Jobs < 1 {
		errs = append(errs, fmt.Errorf("jobs must be at least 1, got %d", c.Jobs))
	}
	if c.PRRepoID != "" {
		if _, _, err := SplitRepoID(c.PRRepoID); err != nil {
			errs = append(errs, err)
		}
	}
	return len(errs) == 0, errs
}

// Validate returns an *InvalidConfigError when c is not valid.
func (c *Config) Validate() error {
	if ok, errs := c.IsValid(); !ok {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// SplitRepoID splits an owner/name repository id.
func SplitRepoID(id string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(id, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("%w: %q, want owner/name", ErrInvalidRepoID, id)
	}
	return owner, name, nil
}

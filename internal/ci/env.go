// SPDX-License-Identifier: MPL-2.0

// Package ci captures the CI context of a run once: branch, pull request,
// commit and the files changed by the triggering commit. Nothing else in the
// program reads CI environment variables.
package ci

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrInvalidPullRequest is returned when TRAVIS_PULL_REQUEST is neither
// "false" nor a positive number.
var ErrInvalidPullRequest = errors.New("invalid pull request number")

// TravisEnv holds the Travis CI variables the orchestrator understands.
type TravisEnv struct {
	Enabled     bool   `env:"TRAVIS" envDefault:"false"`
	PullRequest string `env:"TRAVIS_PULL_REQUEST" envDefault:"false"`
	Branch      string `env:"TRAVIS_BRANCH"`
	Commit      string `env:"TRAVIS_COMMIT"`
	RepoSlug    string `env:"TRAVIS_REPO_SLUG"`
}

// LoadEnv parses environ (os.Environ() when nil). When envFile is set, its
// variables fill in anything environ does not define.
func LoadEnv(environ []string, envFile string) (TravisEnv, error) {
	if environ == nil {
		environ = os.Environ()
	}
	vars := env.ToMap(environ)

	if envFile != "" {
		fileVars, err := godotenv.Read(envFile)
		if err != nil {
			return TravisEnv{}, fmt.Errorf("read env file %s: %w", envFile, err)
		}
		for k, v := range fileVars {
			if _, set := vars[k]; !set {
				vars[k] = v
			}
		}
	}

	var cfg TravisEnv
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return TravisEnv{}, fmt.Errorf("parse CI environment: %w", err)
	}
	return cfg, nil
}

// PRNumber returns the pull request number, 0 when the build is not a pull
// request.
func (e TravisEnv) PRNumber() (int, error) {
	if e.PullRequest == "" || e.PullRequest == "false" {
		return 0, nil
	}
	n, err := strconv.Atoi(e.PullRequest)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPullRequest, e.PullRequest)
	}
	return n, nil
}

// SPDX-License-Identifier: MPL-2.0

package ci

import (
	"errors"
	"log/slog"

	"github.com/Azure/swagger-to-sdk/internal/naming"
	"github.com/Azure/swagger-to-sdk/internal/selector"
)

type (
	// Options controls what Capture reads.
	Options struct {
		// RESTRoot is the REST repository checkout.
		RESTRoot string
		// EnvFile is an optional dotenv file replayed under the environment.
		EnvFile string
		// Environ overrides os.Environ(), mostly for tests.
		Environ []string
		// BaseBranch is the branch pull requests target.
		BaseBranch string
		// ChangedFiles, when non-empty, is used as the change set verbatim.
		ChangedFiles []string
	}

	// Context is the immutable CI state of a run.
	Context struct {
		Branch naming.BranchContext
		// Changes is nil when the changed files are unknown, meaning every
		// project is selected.
		Changes *selector.ChangeSet
		// InCI reports whether the run happens on a CI worker.
		InCI bool
	}
)

// Capture reads the environment and the REST repository once.
//
// Changed files come from opts.ChangedFiles when given; otherwise, on CI, from
// the HEAD commit of the REST repository. Outside CI without explicit files
// the change set is unknown.
func Capture(opts Options) (Context, error) {
	travis, err := LoadEnv(opts.Environ, opts.EnvFile)
	if err != nil {
		return Context{}, err
	}
	pr, err := travis.PRNumber()
	if err != nil {
		return Context{}, err
	}

	head, headErr := ReadHead(opts.RESTRoot)
	if headErr != nil && !errors.Is(headErr, ErrNotGitRepo) {
		slog.Warn("cannot read REST repository HEAD", "path", opts.RESTRoot, "error", headErr)
	}

	branch := naming.BranchContext{
		BaseBranch:    opts.BaseBranch,
		CurrentBranch: travis.Branch,
		CommitHash:    head.Hash,
		PRNumber:      pr,
		RepoSlug:      travis.RepoSlug,
	}
	if branch.CurrentBranch == "" {
		branch.CurrentBranch = head.Branch
	}
	if branch.CommitHash == "" {
		branch.CommitHash = travis.Commit
	}
	if branch.CommitHash == "" {
		branch.CommitHash = NotGitRepo
	}

	ctx := Context{Branch: branch, InCI: travis.Enabled}
	switch {
	case len(opts.ChangedFiles) > 0:
		ctx.Changes = selector.NewChangeSet(opts.ChangedFiles...)
	case travis.Enabled && headErr == nil:
		ctx.Changes = selector.NewChangeSet(head.Changed...)
	}

	slog.Debug("captured CI context",
		"branch", branch.CurrentBranch,
		"pr", branch.PRNumber,
		"commit", branch.CommitHash,
		"changed", ctx.Changes.Len(),
	)
	return ctx, nil
}

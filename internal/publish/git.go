// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	// DefaultAuthorName signs generated commits.
	DefaultAuthorName = "SwaggerToSDK Automation"
	// DefaultAuthorEmail signs generated commits.
	DefaultAuthorEmail = "swaggertosdk@users.noreply.github.com"
)

var (
	// ErrEmptyBranch is returned for a Request without a branch name.
	ErrEmptyBranch = errors.New("publish: empty branch name")
	// ErrOutsideWorktree is returned for a Request path outside the working tree.
	ErrOutsideWorktree = errors.New("publish: path outside the working tree")
)

// GitPublisher commits to a local go-git working tree.
type GitPublisher struct {
	// Root is any path inside the SDK working tree.
	Root        string
	AuthorName  string
	AuthorEmail string
	// Now stamps commits; time.Now when nil.
	Now func() time.Time

	mu sync.Mutex
}

// NewGitPublisher creates a GitPublisher for the working tree at root.
func NewGitPublisher(root string) *GitPublisher {
	return &GitPublisher{Root: root, AuthorName: DefaultAuthorName, AuthorEmail: DefaultAuthorEmail}
}

// IsRepository reports whether root is inside a git working tree.
func IsRepository(root string) bool {
	_, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	return err == nil
}

// Publish checks out req.Branch (creating it from HEAD when missing) while
// keeping local changes, stages req.Paths and commits. Changes outside
// req.Paths stay in the working tree. Nothing staged is not an error: the
// outcome is marked Skipped.
func (p *GitPublisher) Publish(ctx context.Context, req Request) (Outcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	if req.Branch == "" {
		return Outcome{}, ErrEmptyBranch
	}
	out := Outcome{Branch: req.Branch, Projects: req.Projects}

	repo, err := git.PlainOpenWithOptions(p.Root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Outcome{}, fmt.Errorf("open SDK repository %s: %w", p.Root, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return Outcome{}, fmt.Errorf("open SDK worktree: %w", err)
	}

	if err := checkoutBranch(repo, wt, req.Branch); err != nil {
		return Outcome{}, err
	}

	if err := stagePaths(wt, req.Paths); err != nil {
		return Outcome{}, err
	}
	status, err := wt.Status()
	if err != nil {
		return Outcome{}, fmt.Errorf("read worktree status: %w", err)
	}
	if !hasStagedChanges(status) {
		slog.Warn("No modified files in this Autorest run", "branch", req.Branch)
		out.Skipped = true
		return out, nil
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	name, email := p.AuthorName, p.AuthorEmail
	if name == "" {
		name = DefaultAuthorName
	}
	if email == "" {
		email = DefaultAuthorEmail
	}
	hash, err := wt.Commit(req.Message, &git.CommitOptions{
		Author: &object.Signature{Name: name, Email: email, When: now()},
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("commit: %w", err)
	}

	out.Commit = hash.String()
	slog.Info("committed generated changes", "branch", req.Branch, "commit", out.Commit, "projects", req.Projects)
	return out, nil
}

func checkoutBranch(repo *git.Repository, wt *git.Worktree, branch string) error {
	ref := plumbing.NewBranchReferenceName(branch)

	head, err := repo.Head()
	if err == nil && head.Name() == ref {
		return nil
	}

	_, refErr := repo.Reference(ref, true)
	opts := &git.CheckoutOptions{Branch: ref, Keep: true}
	switch {
	case refErr == nil:
	case errors.Is(refErr, plumbing.ErrReferenceNotFound):
		opts.Create = true
	default:
		return fmt.Errorf("look up branch %s: %w", branch, refErr)
	}

	if err := wt.Checkout(opts); err != nil {
		return fmt.Errorf("checkout branch %s: %w", branch, err)
	}
	slog.Debug("checked out branch", "branch", branch, "created", opts.Create)
	return nil
}

func stagePaths(wt *git.Worktree, paths []string) error {
	if len(paths) == 0 {
		if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
			return fmt.Errorf("stage changes: %w", err)
		}
		return nil
	}

	root := wt.Filesystem.Root()
	for _, p := range paths {
		abs := p
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(root, abs)
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return fmt.Errorf("%w: %s", ErrOutsideWorktree, p)
		}
		if _, err := os.Lstat(abs); errors.Is(err, os.ErrNotExist) {
			slog.Debug("nothing to stage", "path", p)
			continue
		}
		if err := wt.AddWithOptions(&git.AddOptions{Path: filepath.ToSlash(rel)}); err != nil {
			return fmt.Errorf("stage %s: %w", rel, err)
		}
	}
	return nil
}

func hasStagedChanges(status git.Status) bool {
	for _, fs := range status {
		if fs.Staging != git.Unmodified && fs.Staging != git.Untracked {
			return true
		}
	}
	return false
}

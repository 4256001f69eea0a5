// SPDX-License-Identifier: MPL-2.0

// Package publish records generated changes in the SDK repository as a commit
// on a dedicated branch. Pushing and opening pull requests happen elsewhere.
package publish

import (
	"context"
	"log/slog"
)

type (
	// Request asks for changes in the working tree to be committed.
	Request struct {
		Branch  string
		Message string
		// Projects lists the projects whose output is part of the commit.
		Projects []string
		// Paths are the files and directories to stage, absolute or relative
		// to the working tree root. Empty stages the whole working tree.
		Paths []string
	}

	// Outcome describes what a Publish call did.
	Outcome struct {
		Branch string
		// Commit is the new commit hash, empty when nothing was committed.
		Commit   string
		Skipped  bool
		Projects []string
	}

	// Publisher turns generated changes into version-control history.
	Publisher interface {
		Publish(ctx context.Context, req Request) (Outcome, error)
	}

	// NopPublisher records nothing. It is used for dry runs and when the SDK
	// folder is not a git repository.
	NopPublisher struct{}
)

// Publish implements Publisher.
func (NopPublisher) Publish(_ context.Context, req Request) (Outcome, error) {
	slog.Info("publishing disabled", "branch", req.Branch, "projects", req.Projects)
	return Outcome{Branch: req.Branch, Skipped: true, Projects: req.Projects}, nil
}

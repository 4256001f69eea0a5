// SPDX-License-Identifier: MPL-2.0

// Package naming derives branch names and commit messages from the CI context.
package naming

import (
	"strconv"
	"strings"
)

const (
	// DefaultBranchName is used when the context names neither a pull request
	// nor a branch.
	DefaultBranchName = "autorest"
	// DefaultCommitMessage is the default commit message template.
	DefaultCommitMessage = "Generated from {hexsha}"
	// HexshaPlaceholder is replaced by the REST commit hash in templates.
	HexshaPlaceholder = "{hexsha}"

	branchPrefix   = "restapi_auto_"
	prBranchPrefix = "restapi_auto_pr_"
)

type (
	// BranchContext is the CI state captured once at the start of a run.
	BranchContext struct {
		BaseBranch    string
		CurrentBranch string
		CommitHash    string
		// PRNumber is 0 when the run is not for a pull request.
		PRNumber int
		RepoSlug string
	}

	// Namer computes branch names and commit messages.
	Namer struct {
		// Branch, when set, is used verbatim for every project.
		Branch string
		// MessageTemplate defaults to DefaultCommitMessage.
		MessageTemplate string
	}
)

// HasPR reports whether the context belongs to a pull request.
func (c BranchContext) HasPR() bool { return c.PRNumber > 0 }

// Name returns the branch and commit message for a project. Every project of
// a run currently shares the same branch.
func (n Namer) Name(ctx BranchContext, _ string) (branch, message string) {
	return n.BranchName(ctx), n.Message(ctx)
}

// BranchName returns the branch to commit to.
func (n Namer) BranchName(ctx BranchContext) string {
	switch {
	case n.Branch != "":
		return n.Branch
	case ctx.HasPR():
		return prBranchPrefix + strconv.Itoa(ctx.PRNumber)
	case ctx.CurrentBranch != "":
		return branchPrefix + ctx.CurrentBranch
	default:
		return DefaultBranchName
	}
}

// Message renders the commit message template.
func (n Namer) Message(ctx BranchContext) string {
	tmpl := n.MessageTemplate
	if tmpl == "" {
		tmpl = DefaultCommitMessage
	}
	return strings.ReplaceAll(tmpl, HexshaPlaceholder, ctx.CommitHash)
}

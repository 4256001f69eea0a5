// SPDX-License-Identifier: MPL-2.0

package ci

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// NotGitRepo is the commit hash reported when the REST folder is not a git
// repository.
const NotGitRepo = "notgitrepo"

// ErrNotGitRepo is returned when no repository is found at a path.
var ErrNotGitRepo = errors.New("not a git repository")

// HeadInfo describes the HEAD commit of a repository.
type HeadInfo struct {
	Hash string
	// Branch is empty when HEAD is detached.
	Branch string
	// Changed lists the files touched by HEAD against its first parent.
	Changed []string
}

// ReadHead inspects the repository containing dir.
func ReadHead(dir string) (HeadInfo, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return HeadInfo{}, fmt.Errorf("%w: %s", ErrNotGitRepo, dir)
		}
		return HeadInfo{}, err
	}

	ref, err := repo.Head()
	if err != nil {
		return HeadInfo{}, fmt.Errorf("resolve HEAD: %w", err)
	}
	info := HeadInfo{Hash: ref.Hash().String()}
	if ref.Name().IsBranch() {
		info.Branch = ref.Name().Short()
	}

	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return HeadInfo{}, fmt.Errorf("read HEAD commit: %w", err)
	}
	changed, err := changedFiles(commit)
	if err != nil {
		return HeadInfo{}, err
	}
	info.Changed = changed
	return info, nil
}

func changedFiles(commit *object.Commit) ([]string, error) {
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("read commit tree: %w", err)
	}

	var files []string
	if commit.NumParents() == 0 {
		err = tree.Files().ForEach(func(f *object.File) error {
			files = append(files, f.Name)
			return nil
		})
		if err != nil {
			return nil, err
		}
		slices.Sort(files)
		return files, nil
	}

	parent, err := commit.Parent(0)
	if err != nil {
		return nil, fmt.Errorf("read parent commit: %w", err)
	}
	parentTree, err := parent.Tree()
	if err != nil {
		return nil, fmt.Errorf("read parent tree: %w", err)
	}
	changes, err := object.DiffTree(parentTree, tree)
	if err != nil {
		return nil, fmt.Errorf("diff HEAD against parent: %w", err)
	}
	for _, change := range changes {
		name := change.To.Name
		if name == "" {
			name = change.From.Name
		}
		files = append(files, name)
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

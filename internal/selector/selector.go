// SPDX-License-Identifier: MPL-2.0

// Package selector decides which projects of a configuration must be
// regenerated for a set of changed files.
package selector

import (
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Azure/swagger-to-sdk/pkg/sdkconfig"
)

type (
	// ChangeSet is a set of changed paths relative to the REST repository root.
	// A nil *ChangeSet means "unknown", which selects every project.
	ChangeSet struct {
		paths map[string]struct{}
	}

	// DocumentReader resolves the documents referenced by markdown and
	// composite inputs. *inputs.Reader implements it.
	DocumentReader interface {
		MarkdownDocuments(rel string) ([]string, error)
		CompositeDocuments(rel string) ([]string, error)
	}

	// Selector applies change-based and filter-based selection.
	Selector struct {
		docs DocumentReader
	}
)

// NewChangeSet builds a ChangeSet from paths. Paths are cleaned and slash
// normalized; empty entries are dropped.
func NewChangeSet(paths ...string) *ChangeSet {
	cs := &ChangeSet{paths: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		if n := normalize(p); n != "" {
			cs.paths[n] = struct{}{}
		}
	}
	return cs
}

// Len returns the number of paths in the set.
func (cs *ChangeSet) Len() int {
	if cs == nil {
		return 0
	}
	return len(cs.paths)
}

// Paths returns the sorted paths of the set.
func (cs *ChangeSet) Paths() []string {
	if cs == nil {
		return nil
	}
	out := make([]string, 0, len(cs.paths))
	for p := range cs.paths {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Touches reports whether p equals a changed path, or one of the two is a
// directory prefix of the other.
func (cs *ChangeSet) Touches(p string) bool {
	n := normalize(p)
	if n == "" {
		return false
	}
	if _, ok := cs.paths[n]; ok {
		return true
	}
	for changed := range cs.paths {
		if isUnder(changed, n) || isUnder(n, changed) {
			return true
		}
	}
	return false
}

// New creates a Selector. docs may be nil, in which case only the paths named
// directly by a project's input descriptor are compared.
func New(docs DocumentReader) *Selector {
	return &Selector{docs: docs}
}

// Select returns the sorted ids of the projects to regenerate. filters are
// substrings of project ids; when present, a project must match one of them.
// Filters that match no project of cfg fail with NoMatchingProject.
func (s *Selector) Select(cfg *sdkconfig.Configuration, changed *ChangeSet, filters []string) ([]string, error) {
	ids := cfg.ProjectIDs()

	if len(filters) > 0 {
		filtered := make([]string, 0, len(ids))
		for _, id := range ids {
			if MatchesFilter(id, filters) {
				filtered = append(filtered, id)
			}
		}
		if len(filtered) == 0 {
			return nil, &sdkconfig.ConfigError{
				Kind:   sdkconfig.NoMatchingProject,
				Detail: fmt.Sprintf("filters %q", filters),
			}
		}
		ids = filtered
	}

	if changed == nil {
		return ids, nil
	}

	selected := make([]string, 0, len(ids))
	for _, id := range ids {
		spec, _ := cfg.Project(id)
		if s.affected(spec, changed) {
			selected = append(selected, id)
			continue
		}
		slog.Info("skip project, no changed input", "project", id)
	}
	return selected, nil
}

// InputPaths returns every REST-root relative path a project depends on: the
// descriptor paths plus the documents its markdown or composite references.
func (s *Selector) InputPaths(spec sdkconfig.ProjectSpec) []string {
	paths := spec.Input.Paths()
	if s.docs == nil {
		return paths
	}

	var (
		docs []string
		err  error
	)
	switch spec.Input.Kind {
	case sdkconfig.InputMarkdown:
		docs, err = s.docs.MarkdownDocuments(spec.Input.Path)
	case sdkconfig.InputComposite:
		docs, err = s.docs.CompositeDocuments(spec.Input.Path)
	default:
		return paths
	}
	if err != nil {
		slog.Warn("cannot read project input document", "project", spec.ID, "path", spec.Input.Path, "error", err)
		return paths
	}
	return append(paths, docs...)
}

func (s *Selector) affected(spec sdkconfig.ProjectSpec, changed *ChangeSet) bool {
	for _, p := range s.InputPaths(spec) {
		if changed.Touches(p) {
			return true
		}
	}
	return false
}

// MatchesFilter reports whether id contains any of filters.
func MatchesFilter(id string, filters []string) bool {
	for _, f := range filters {
		if strings.Contains(id, f) {
			return true
		}
	}
	return false
}

func normalize(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	n := path.Clean(filepath.ToSlash(p))
	if n == "." {
		return ""
	}
	return n
}

func isUnder(p, dir string) bool {
	return strings.HasPrefix(p, dir+"/")
}

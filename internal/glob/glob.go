// SPDX-License-Identifier: MPL-2.0

// Package glob expands wrapper and delete patterns against a directory tree.
package glob

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// ReasonNoMatch means the pattern was valid but matched nothing.
	ReasonNoMatch = "no match"
	// ReasonMalformed means the pattern could not be parsed.
	ReasonMalformed = "malformed pattern"
)

// ResolutionWarning describes a pattern that contributed nothing to a resolve.
// It is logged, never returned as an error.
type ResolutionWarning struct {
	Pattern string
	Root    string
	Reason  string
}

// String implements fmt.Stringer.
func (w ResolutionWarning) String() string {
	return "glob " + w.Pattern + " under " + w.Root + ": " + w.Reason
}

// Resolve expands patterns under root and returns the matched paths relative to
// root, slash-separated, sorted and de-duplicated. Unmatched and malformed
// patterns are logged and skipped. A missing root yields no matches.
func Resolve(patterns []string, root string) []string {
	if len(patterns) == 0 {
		return []string{}
	}

	fsys := os.DirFS(root)
	seen := make(map[string]struct{})
	for _, pattern := range patterns {
		pat := strings.TrimPrefix(filepath.ToSlash(pattern), "./")
		if !doublestar.ValidatePattern(pat) {
			warn(slog.LevelWarn, ResolutionWarning{Pattern: pattern, Root: root, Reason: ReasonMalformed})
			continue
		}
		matches, err := doublestar.Glob(fsys, pat)
		if err != nil {
			warn(slog.LevelWarn, ResolutionWarning{Pattern: pattern, Root: root, Reason: err.Error()})
			continue
		}
		if len(matches) == 0 {
			warn(slog.LevelDebug, ResolutionWarning{Pattern: pattern, Root: root, Reason: ReasonNoMatch})
			continue
		}
		for _, m := range matches {
			seen[m] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	slices.Sort(out)
	return out
}

// Union merges pattern lists into one sorted list without duplicates.
func Union(lists ...[]string) []string {
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, p := range list {
			seen[p] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Match reports whether the slash-separated path matches pattern.
func Match(pattern, path string) bool {
	ok, err := doublestar.Match(pattern, filepath.ToSlash(path))
	return err == nil && ok
}

func warn(level slog.Level, w ResolutionWarning) {
	slog.Log(context.Background(), level, "glob resolution warning", "pattern", w.Pattern, "root", w.Root, "reason", w.Reason)
}

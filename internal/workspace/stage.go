// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Azure/swagger-to-sdk/internal/generator"
	"github.com/Azure/swagger-to-sdk/internal/glob"
	"github.com/Azure/swagger-to-sdk/internal/invocation"
)

// BuildFileName is the build metadata record written into build_dir.
const BuildFileName = "build.json"

var (
	// ErrNoGeneratedBase is returned when generated_relative_base_directory
	// matches no directory of the generator output.
	ErrNoGeneratedBase = errors.New("incorrect generated_relative_base_directory folder")
	// ErrAmbiguousGeneratedBase is returned when it matches several directories.
	ErrAmbiguousGeneratedBase = errors.New("generated_relative_base_directory parameter is ambiguous")
)

type (
	// Stager applies generated output to the SDK working tree.
	Stager struct {
		// Now stamps build metadata; time.Now when nil.
		Now func() time.Time
	}

	// BuildInfo is the content of build.json.
	BuildInfo struct {
		Autorest string `json:"autorest"`
		Date     string `json:"date"`
		Version  string `json:"version"`
	}
)

// Stage moves the generator output at generatedRoot into task.OutputDir and
// returns the files now under OutputDir, relative and slash-separated. Any
// failure is a *generator.GenerationError of kind Staging.
func (s Stager) Stage(task invocation.Task, generatedRoot string) ([]string, error) {
	files, err := s.stage(task, generatedRoot)
	if err != nil {
		return nil, &generator.GenerationError{Kind: generator.Staging, Project: task.ProjectID, Err: err}
	}
	return files, nil
}

func (s Stager) stage(task invocation.Task, generatedRoot string) ([]string, error) {
	base, err := GeneratedBase(generatedRoot, task.GeneratedRelativeBaseDirectory)
	if err != nil {
		return nil, err
	}

	if err := keepWrappers(task, base); err != nil {
		return nil, err
	}

	for _, rel := range glob.Resolve(task.DeleteGlobs, base) {
		if err := os.RemoveAll(filepath.Join(base, filepath.FromSlash(rel))); err != nil {
			return nil, fmt.Errorf("delete %s: %w", rel, err)
		}
		slog.Debug("deleted generated path", "project", task.ProjectID, "path", rel)
	}

	if err := replaceDir(task.OutputDir, base); err != nil {
		return nil, fmt.Errorf("replace output_dir: %w", err)
	}

	if task.BuildDir != "" {
		if err := s.WriteBuildInfo(task.BuildDir, task.GeneratorVersion); err != nil {
			return nil, err
		}
	}

	return ListFiles(task.OutputDir)
}

// keepWrappers copies the wrapper matches of task.OutputDir over the
// generated tree at base. output_dir is not modified. Matches inside an
// already copied directory are skipped.
func keepWrappers(task invocation.Task, base string) error {
	var copied []string
	for _, rel := range glob.Resolve(task.WrapperGlobs, task.OutputDir) {
		if slices.ContainsFunc(copied, func(dir string) bool { return strings.HasPrefix(rel, dir+"/") }) {
			continue
		}
		dst := filepath.Join(base, filepath.FromSlash(rel))
		if err := os.RemoveAll(dst); err != nil {
			return err
		}
		if err := copyPath(filepath.Join(task.OutputDir, filepath.FromSlash(rel)), dst); err != nil {
			return fmt.Errorf("keep wrapper %s: %w", rel, err)
		}
		copied = append(copied, rel)
		slog.Debug("kept wrapper file", "project", task.ProjectID, "path", rel)
	}
	return nil
}

// GeneratedBase resolves pattern under root. An empty pattern selects root.
func GeneratedBase(root, pattern string) (string, error) {
	if pattern == "" {
		return root, nil
	}

	var dirs []string
	for _, rel := range glob.Resolve([]string{pattern}, root) {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			dirs = append(dirs, p)
		}
	}
	switch len(dirs) {
	case 0:
		entries, _ := os.ReadDir(root)
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		return "", fmt.Errorf("%w: %s (base folders were: %v)", ErrNoGeneratedBase, pattern, names)
	case 1:
		return dirs[0], nil
	default:
		return "", fmt.Errorf("%w: %s matches %v", ErrAmbiguousGeneratedBase, pattern, dirs)
	}
}

// WriteBuildInfo writes build.json into dir, creating dir if needed.
func (s Stager) WriteBuildInfo(dir, generatorVersion string) error {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	info := BuildInfo{
		Autorest: generatorVersion,
		Date:     now().UTC().Truncate(time.Second).Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create build_dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, BuildFileName), data, 0o644); err != nil {
		return fmt.Errorf("write build metadata: %w", err)
	}
	return nil
}

// ListFiles returns the regular files under root, relative, slash-separated
// and sorted.
func ListFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

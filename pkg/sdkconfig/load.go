// SPDX-License-Identifier: MPL-2.0

package sdkconfig

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/Azure/swagger-to-sdk/internal/inputs"
	"github.com/Azure/swagger-to-sdk/internal/options"
	"github.com/Azure/swagger-to-sdk/pkg/cueutil"
)

// DefaultFileName is the configuration file looked up in the SDK repository.
const DefaultFileName = "swagger_to_sdk_config.json"

var (
	//go:embed config_schema.cue
	configSchema []byte
)

type (
	rawDocument struct {
		Meta     rawMeta               `json:"meta"`
		Projects map[string]rawProject `json:"projects"`
	}

	rawMeta struct {
		Version                        string         `json:"version"`
		Language                       string         `json:"language"`
		Autorest                       string         `json:"autorest"`
		AutorestOptions                map[string]any `json:"autorest_options"`
		WrapperFilesOrDirs             []string       `json:"wrapper_filesOrDirs"`
		DeleteFilesOrDirs              []string       `json:"delete_filesOrDirs"`
		GeneratedRelativeBaseDirectory string         `json:"generated_relative_base_directory"`
		AfterScripts                   []string       `json:"after_scripts"`
	}

	rawProject struct {
		Swagger                        string         `json:"swagger"`
		Markdown                       string         `json:"markdown"`
		Composite                      string         `json:"composite"`
		AutorestOptions                map[string]any `json:"autorest_options"`
		WrapperFilesOrDirs             []string       `json:"wrapper_filesOrDirs"`
		DeleteFilesOrDirs              []string       `json:"delete_filesOrDirs"`
		OutputDir                      string         `json:"output_dir"`
		BuildDir                       string         `json:"build_dir"`
		GeneratedRelativeBaseDirectory string         `json:"generated_relative_base_directory"`
		AfterScripts                   []string       `json:"after_scripts"`
	}
)

// LoadFile reads and loads the configuration document at path.
func LoadFile(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration at %s: %w", path, err)
	}
	return Load(data, path)
}

// Load validates and normalizes a configuration document. filename is only
// used in error messages.
func Load(data []byte, filename string) (*Configuration, error) {
	if err := cueutil.Validate(configSchema, data, "#Config", cueutil.WithFilename(filename)); err != nil {
		return nil, &ConfigError{Kind: InvalidDocument, Detail: err.Error()}
	}

	var raw rawDocument
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, &ConfigError{Kind: InvalidDocument, Detail: fmt.Sprintf("%s: %v", filename, err)}
	}

	version := SchemaVersion(raw.Meta.Version)
	if ok, _ := version.IsValid(); !ok {
		return nil, &ConfigError{Kind: UnsupportedVersion, Key: "meta.version", Detail: fmt.Sprintf("%q", raw.Meta.Version)}
	}

	cfg := &Configuration{Version: version, Projects: make(map[string]ProjectSpec, len(raw.Projects))}
	meta, err := normalizeMeta(version, raw.Meta)
	if err != nil {
		return nil, err
	}
	cfg.Meta = meta

	ids := make([]string, 0, len(raw.Projects))
	for id := range raw.Projects {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	buildDirs := make(map[string]string)
	for _, id := range ids {
		spec, err := normalizeProject(version, id, raw.Projects[id])
		if err != nil {
			return nil, err
		}
		if spec.BuildDir != "" {
			key := path.Clean(filepath.ToSlash(spec.BuildDir))
			if other, dup := buildDirs[key]; dup {
				return nil, &ConfigError{
					Kind:    DuplicateBuildDir,
					Project: id,
					Key:     spec.BuildDir,
					Detail:  fmt.Sprintf("already used by project %q", other),
				}
			}
			buildDirs[key] = id
		}
		cfg.Projects[id] = spec
	}

	slog.Debug("loaded configuration", "file", filename, "version", version, "projects", len(cfg.Projects))
	return cfg, nil
}

func normalizeMeta(version SchemaVersion, raw rawMeta) (Meta, error) {
	opts, err := toOptionSet("", raw.AutorestOptions)
	if err != nil {
		return Meta{}, err
	}
	if err := checkReserved(version, "", opts); err != nil {
		return Meta{}, err
	}

	meta := Meta{
		Defaults:                       options.OptionSet{},
		Options:                        opts,
		WrapperGlobs:                   raw.WrapperFilesOrDirs,
		DeleteGlobs:                    raw.DeleteFilesOrDirs,
		GeneratedRelativeBaseDirectory: raw.GeneratedRelativeBaseDirectory,
		GeneratorVersion:               raw.Autorest,
		AfterScripts:                   raw.AfterScripts,
		Language:                       raw.Language,
	}
	if meta.GeneratorVersion == "" {
		meta.GeneratorVersion = LatestGenerator
	}
	if version == Legacy && raw.Language != "" {
		meta.Defaults[CodeGeneratorKey] = options.String("Azure." + raw.Language)
	}
	return meta, nil
}

func normalizeProject(version SchemaVersion, id string, raw rawProject) (ProjectSpec, error) {
	opts, err := toOptionSet(id, raw.AutorestOptions)
	if err != nil {
		return ProjectSpec{}, err
	}

	spec := ProjectSpec{
		ID:                             id,
		WrapperGlobs:                   raw.WrapperFilesOrDirs,
		DeleteGlobs:                    raw.DeleteFilesOrDirs,
		OutputDir:                      raw.OutputDir,
		BuildDir:                       raw.BuildDir,
		GeneratedRelativeBaseDirectory: raw.GeneratedRelativeBaseDirectory,
		AfterScripts:                   raw.AfterScripts,
	}

	inputFileKey, inputFiles, hasInputFiles := opts.Lookup(inputs.InputFileKey)
	if hasInputFiles {
		delete(opts, inputFileKey)
	}

	switch version {
	case Legacy:
		newFields := []struct {
			name string
			set  bool
		}{
			{"markdown", raw.Markdown != ""},
			{"composite", raw.Composite != ""},
			{"autorest_options.input-file", hasInputFiles},
		}
		for _, field := range newFields {
			if field.set {
				return ProjectSpec{}, &ConfigError{Kind: FieldNotAllowed, Project: id, Key: field.name, Detail: "not supported in " + Legacy.String()}
			}
		}
		if raw.Swagger == "" {
			return ProjectSpec{}, &ConfigError{Kind: MissingInput, Project: id, Key: "swagger"}
		}
		spec.Input = Input{Kind: InputSwagger, Path: raw.Swagger}
	default:
		if raw.Swagger != "" {
			return ProjectSpec{}, &ConfigError{Kind: FieldNotAllowed, Project: id, Key: "swagger", Detail: "not supported in " + New.String()}
		}
		var found []Input
		if raw.Markdown != "" {
			found = append(found, Input{Kind: InputMarkdown, Path: raw.Markdown})
		}
		if raw.Composite != "" {
			found = append(found, Input{Kind: InputComposite, Path: raw.Composite})
		}
		if hasInputFiles {
			found = append(found, Input{Kind: InputFiles, Files: inputFiles.Strings()})
		}
		if len(found) != 1 {
			return ProjectSpec{}, &ConfigError{
				Kind:    AmbiguousOrMissingInput,
				Project: id,
				Detail:  fmt.Sprintf("%d input descriptors configured", len(found)),
			}
		}
		spec.Input = found[0]
	}

	if err := checkReserved(version, id, opts); err != nil {
		return ProjectSpec{}, err
	}
	if raw.OutputDir == "" {
		return ProjectSpec{}, &ConfigError{Kind: MissingOutputDir, Project: id, Key: "output_dir"}
	}

	spec.Options = opts
	return spec, nil
}

func toOptionSet(project string, raw map[string]any) (options.OptionSet, error) {
	set, err := options.FromMap(raw)
	if err != nil {
		return nil, &ConfigError{Kind: InvalidDocument, Project: project, Detail: err.Error()}
	}
	return set, nil
}

func checkReserved(version SchemaVersion, project string, set options.OptionSet) error {
	var extra []string
	if version == Legacy {
		extra = options.LegacyReservedKeys
	}
	if key, found := options.CheckReserved(set, extra...); found {
		return &ConfigError{Kind: ReservedKeyUsed, Project: project, Key: key}
	}
	return nil
}

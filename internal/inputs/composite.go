// SPDX-License-Identifier: MPL-2.0

package inputs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrInvalidComposite is returned for composite files that are not valid JSON.
var ErrInvalidComposite = errors.New("invalid composite file")

type (
	// Composite is a composite Swagger file: a list of documents plus the
	// title and description the merged client should carry.
	Composite struct {
		Documents []string      `json:"documents"`
		Info      CompositeInfo `json:"info"`
	}

	// CompositeInfo is the "info" object of a composite file.
	CompositeInfo struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}

	markdownConfig struct {
		InputFile    []string     `yaml:"input-file"`
		OverrideInfo overrideInfo `yaml:"override-info"`
	}

	overrideInfo struct {
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
	}
)

// ParseComposite decodes a composite file.
func ParseComposite(content []byte) (Composite, error) {
	var c Composite
	if err := json.Unmarshal(content, &c); err != nil {
		return Composite{}, fmt.Errorf("%w: %w", ErrInvalidComposite, err)
	}
	return c, nil
}

// CompositeToMarkdown renders an AutoRest markdown configuration that feeds
// documents to the generator with the composite's info as override-info.
// documents are written as given; callers pass absolute paths.
func CompositeToMarkdown(c Composite, documents []string) ([]byte, error) {
	var body bytes.Buffer
	enc := yaml.NewEncoder(&body)
	enc.SetIndent(2)
	err := enc.Encode(markdownConfig{
		InputFile:    documents,
		OverrideInfo: overrideInfo{Title: c.Info.Title, Description: c.Info.Description},
	})
	if err != nil {
		return nil, fmt.Errorf("encode composite configuration: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode composite configuration: %w", err)
	}

	var out bytes.Buffer
	out.WriteString("# My API\n> see https://aka.ms/autorest\n```yaml\n")
	out.Write(body.Bytes())
	out.WriteString("```\n")
	return out.Bytes(), nil
}

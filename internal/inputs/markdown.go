// SPDX-License-Identifier: MPL-2.0

package inputs

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// InputFileKey is the AutoRest configuration key listing Swagger documents.
const InputFileKey = "input-file"

var (
	// ErrInvalidMarkdown is returned when a YAML block of a markdown file
	// cannot be decoded.
	ErrInvalidMarkdown = errors.New("invalid markdown configuration")
	// ErrInvalidInputFile is returned when input-file is neither a string
	// nor a list of strings.
	ErrInvalidInputFile = errors.New("invalid input-file entry")
)

// ExtractYAML collects every fenced code block tagged exactly "yaml" and merges
// their top-level keys, later blocks winning. Blocks with a condition in the
// info string ("yaml $(tag) == ...") are skipped.
func ExtractYAML(content []byte) (map[string]any, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(content))

	merged := map[string]any{}
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		block, ok := n.(*ast.FencedCodeBlock)
		if !ok || block.Info == nil {
			return ast.WalkContinue, nil
		}
		if strings.TrimSpace(string(block.Info.Segment.Value(content))) != "yaml" {
			return ast.WalkSkipChildren, nil
		}

		var buf bytes.Buffer
		lines := block.Lines()
		for i := range lines.Len() {
			seg := lines.At(i)
			buf.Write(seg.Value(content))
		}

		var section map[string]any
		if err := yaml.Unmarshal(buf.Bytes(), &section); err != nil {
			return ast.WalkStop, fmt.Errorf("%w: %w", ErrInvalidMarkdown, err)
		}
		for k, v := range section {
			merged[k] = v
		}
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

// MarkdownInputFiles returns the raw top-level input-file references of a
// markdown file, without macro expansion or path conversion.
func MarkdownInputFiles(content []byte) ([]string, error) {
	config, err := ExtractYAML(content)
	if err != nil {
		return nil, err
	}
	return stringList(config[InputFileKey])
}

func stringList(raw any) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %v", ErrInvalidInputFile, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalidInputFile, raw)
	}
}

// SPDX-License-Identifier: MPL-2.0

package inputs

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	defaultCacheSize = 256
	masterMarker     = "/master/"
)

// Reader loads markdown and composite files below a REST repository root and
// caches the document lists it extracts.
type Reader struct {
	root  string
	cache *lru.Cache[string, []string]
}

// NewReader creates a Reader for the REST repository at root.
func NewReader(root string) (*Reader, error) {
	cache, err := lru.New[string, []string](defaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create document cache: %w", err)
	}
	return &Reader{root: root, cache: cache}, nil
}

// Root returns the REST repository root.
func (r *Reader) Root() string { return r.root }

// ConvertPath turns a document reference found in the file at from (relative
// to the REST root) into a slash-separated path relative to the REST root.
func ConvertPath(ref, from string) string {
	if strings.HasPrefix(ref, "https") {
		if _, after, ok := strings.Cut(ref, masterMarker); ok {
			return after
		}
		slog.Warn("remote document reference without master segment", "ref", ref)
		return ref
	}
	return path.Join(path.Dir(filepath.ToSlash(from)), filepath.ToSlash(ref))
}

// MarkdownDocuments returns the input-file documents of the markdown file at
// rel, converted to REST-root relative paths.
func (r *Reader) MarkdownDocuments(rel string) ([]string, error) {
	return r.documents("markdown", rel, MarkdownInputFiles)
}

// CompositeDocuments returns the documents of the composite file at rel,
// converted to REST-root relative paths.
func (r *Reader) CompositeDocuments(rel string) ([]string, error) {
	return r.documents("composite", rel, func(content []byte) ([]string, error) {
		c, err := ParseComposite(content)
		if err != nil {
			return nil, err
		}
		return c.Documents, nil
	})
}

// Composite reads and decodes the composite file at rel.
func (r *Reader) Composite(rel string) (Composite, error) {
	content, err := os.ReadFile(r.abs(rel))
	if err != nil {
		return Composite{}, err
	}
	return ParseComposite(content)
}

func (r *Reader) documents(kind, rel string, extract func([]byte) ([]string, error)) ([]string, error) {
	key := kind + ":" + path.Clean(filepath.ToSlash(rel))
	if docs, ok := r.cache.Get(key); ok {
		return docs, nil
	}

	content, err := os.ReadFile(r.abs(rel))
	if err != nil {
		return nil, err
	}
	refs, err := extract(content)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", kind, rel, err)
	}

	docs := make([]string, 0, len(refs))
	for _, ref := range refs {
		docs = append(docs, ConvertPath(ref, rel))
	}
	slog.Debug("parsed input document", "kind", kind, "path", rel, "documents", len(docs))
	r.cache.Add(key, docs)
	return docs, nil
}

func (r *Reader) abs(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(r.root, filepath.FromSlash(rel))
}

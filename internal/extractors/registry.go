package extractors

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
	"github.com/sitechat-io/sitechat-cli/internal/core/ports/driven"
	"github.com/sitechat-io/sitechat-cli/internal/extractors/docx"
	"github.com/sitechat-io/sitechat-cli/internal/extractors/markdown"
	"github.com/sitechat-io/sitechat-cli/internal/extractors/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps file extensions to extractors.
type Registry struct {
	byExt map[string]driven.Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byExt: make(map[string]driven.Extractor),
	}
}

// NewDefault creates a registry with every built-in extractor.
func NewDefault() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(docx.New())
	return r
}

// Register adds an extractor under each extension it declares. Later
// registrations win on conflict.
func (r *Registry) Register(e driven.Extractor) {
	for _, ext := range e.Extensions() {
		r.byExt[strings.ToLower(ext)] = e
	}
}

// ForFile returns the extractor for the file's extension.
func (r *Registry) ForFile(name string) (driven.Extractor, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return nil, fmt.Errorf("%w: %s has no extension", domain.ErrUnsupportedFormat, filepath.Base(name))
	}
	if e, ok := r.byExt[ext]; ok {
		return e, nil
	}
	if ext == ".doc" {
		return nil, fmt.Errorf("%w: legacy .doc files are not supported, convert to .docx first", domain.ErrUnsupportedFormat)
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, ext)
}

// SupportedExtensions lists every registered extension, sorted.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

package plaintext

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
	"github.com/sitechat-io/sitechat-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text files.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".txt", ".text", ".log"}
}

// Extract reads the whole payload as the document text. The title
// comes from the file name.
func (e *Extractor) Extract(_ context.Context, name string, r io.Reader) (string, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", "", fmt.Errorf("%w: empty file", domain.ErrExtractionFailed)
	}

	return extractTitle(name), text, nil
}

// extractTitle derives a human-readable title from a file name.
func extractTitle(name string) string {
	filename := filepath.Base(name)
	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

package driven

import (
	"context"
	"io"
)

// Extractor pulls raw text out of one file format. Extraction precedes
// normalisation; the text cleaner never sees binary data.
type Extractor interface {
	// Extensions returns the lowercase file extensions this extractor
	// handles, including the dot (".md", ".docx").
	Extensions() []string

	// Extract reads the payload and returns a best-effort title and the
	// raw text. Failures are descriptive: empty files, corrupt payloads
	// and unsupported legacy formats each produce an error wrapping
	// domain.ErrExtractionFailed or domain.ErrUnsupportedFormat.
	Extract(ctx context.Context, name string, r io.Reader) (title, text string, err error)
}

// ExtractorRegistry selects an extractor for a file.
type ExtractorRegistry interface {
	// ForFile returns the extractor for the file's extension, or an
	// error wrapping domain.ErrUnsupportedFormat.
	ForFile(name string) (Extractor, error)

	// SupportedExtensions lists every registered extension.
	SupportedExtensions() []string
}

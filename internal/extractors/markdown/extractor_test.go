package markdown

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
)

func TestExtensions(t *testing.T) {
	extractor := New()
	assert.ElementsMatch(t, []string{".md", ".markdown"}, extractor.Extensions())
}

func TestExtract_TitleFromHeading(t *testing.T) {
	extractor := New()
	content := "# Getting Started\n\nWelcome to the project."

	title, text, err := extractor.Extract(context.Background(), "README.md", strings.NewReader(content))

	require.NoError(t, err)
	assert.Equal(t, "Getting Started", title)
	assert.Equal(t, "Getting Started\n\nWelcome to the project.", text)
}

func TestExtract_TitleFallsBackToFilename(t *testing.T) {
	extractor := New()

	title, _, err := extractor.Extract(context.Background(), "deployment_guide.md", strings.NewReader("No headings here, just prose."))

	require.NoError(t, err)
	assert.Equal(t, "deployment guide", title)
}

func TestExtract_StripsFormatting(t *testing.T) {
	extractor := New()
	content := "# Title\n\n" +
		"Some **bold** and *italic* text with `inline code`.\n\n" +
		"```go\nfunc main() {}\n```\n\n" +
		"A [link](https://example.com) and an ![image](pic.png).\n\n" +
		"> A quoted line\n\n" +
		"- first item\n" +
		"- second item\n"

	_, text, err := extractor.Extract(context.Background(), "doc.md", strings.NewReader(content))

	require.NoError(t, err)
	assert.NotContains(t, text, "**")
	assert.NotContains(t, text, "`")
	assert.NotContains(t, text, "](")
	assert.NotContains(t, text, "# ")
	assert.Contains(t, text, "Some bold and italic text")
	assert.Contains(t, text, "A link and an")
	assert.Contains(t, text, "A quoted line")
	assert.Contains(t, text, "first item")
	assert.NotContains(t, text, "func main")
}

func TestExtract_EmptyAfterStripping(t *testing.T) {
	extractor := New()

	_, _, err := extractor.Extract(context.Background(), "empty.md", strings.NewReader("```\nonly code\n```"))

	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

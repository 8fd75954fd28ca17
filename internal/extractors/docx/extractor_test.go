package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
)

// createTestDOCX creates a minimal valid DOCX file in memory.
func createTestDOCX(documentXML, coreXML string) []byte {
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	contentTypes, _ := w.Create("[Content_Types].xml")
	contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))

	if documentXML != "" {
		doc, _ := w.Create("word/document.xml")
		doc.Write([]byte(documentXML))
	}

	if coreXML != "" {
		core, _ := w.Create("docProps/core.xml")
		core.Write([]byte(coreXML))
	}

	w.Close()
	return buf.Bytes()
}

func TestExtensions(t *testing.T) {
	extractor := New()
	assert.Equal(t, []string{".docx"}, extractor.Extensions())
}

func TestExtract_Success(t *testing.T) {
	extractor := New()

	docXML := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
<w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>
</w:body>
</w:document>`

	coreXML := `<?xml version="1.0" encoding="UTF-8"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
xmlns:dc="http://purl.org/dc/elements/1.1/">
<dc:title>Quarterly Report</dc:title>
</cp:coreProperties>`

	content := createTestDOCX(docXML, coreXML)

	title, text, err := extractor.Extract(context.Background(), "report.docx", bytes.NewReader(content))

	require.NoError(t, err)
	assert.Equal(t, "Quarterly Report", title)
	assert.Equal(t, "First paragraph.\nSecond paragraph.", text)
}

func TestExtract_TitleFallsBackToFilename(t *testing.T) {
	extractor := New()

	docXML := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body><w:p><w:r><w:t>Body text here.</w:t></w:r></w:p></w:body>
</w:document>`

	content := createTestDOCX(docXML, "")

	title, _, err := extractor.Extract(context.Background(), "meeting_notes.docx", bytes.NewReader(content))

	require.NoError(t, err)
	assert.Equal(t, "meeting notes", title)
}

func TestExtract_NotAZip(t *testing.T) {
	extractor := New()

	_, _, err := extractor.Extract(context.Background(), "broken.docx", bytes.NewReader([]byte("this is not a zip archive")))

	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestExtract_MissingDocumentXML(t *testing.T) {
	extractor := New()

	content := createTestDOCX("", "")

	_, _, err := extractor.Extract(context.Background(), "hollow.docx", bytes.NewReader(content))

	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestExtract_EmptyBody(t *testing.T) {
	extractor := New()

	docXML := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body></w:body>
</w:document>`

	content := createTestDOCX(docXML, "")

	_, _, err := extractor.Extract(context.Background(), "empty.docx", bytes.NewReader(content))

	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

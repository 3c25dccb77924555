package resume

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
	`<w:p><w:r><w:t>Ada Lovelace</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t>Skills:</w:t><w:tab/><w:t>Python &amp; SQL</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t>B.S. Mathematics, 2015</w:t></w:r></w:p>` +
	`</w:body></w:document>`

const documentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

// buildDocx assembles the minimum archive the docx reader accepts.
func buildDocx(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range map[string]string{
		"word/document.xml":            documentXML,
		"word/_rels/document.xml.rels": documentRels,
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDetectType(t *testing.T) {
	tests := []struct {
		filename    string
		contentType string
		want        string
	}{
		{"resume.docx", "", MIMEDocx},
		{"resume.docx", "application/octet-stream", MIMEDocx},
		{"resume.bin", MIMEDocx, MIMEDocx},
		{"cv.PDF", "", MIMEPDF},
		{"cv", "application/pdf; charset=binary", MIMEPDF},
		{"page.htm", "", MIMEHTML},
		{"notes.txt", "", MIMEPlain},
		{"resume.doc", MIMEDoc, MIMEDoc},
	}
	for _, tt := range tests {
		t.Run(tt.filename+"|"+tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectType(tt.filename, tt.contentType))
		})
	}
}

func TestDocumentXMLToText(t *testing.T) {
	got := DocumentXMLToText(documentXML)
	assert.Equal(t, "Ada Lovelace\nSkills:\tPython & SQL\nB.S. Mathematics, 2015", got)
}

func TestExtract_Docx(t *testing.T) {
	text, err := Extract("resume.docx", "", buildDocx(t))
	require.NoError(t, err)
	assert.Contains(t, text, "Ada Lovelace")
	assert.Contains(t, text, "Python & SQL")
}

func TestExtract_DocxCorrupt(t *testing.T) {
	_, err := Extract("resume.docx", "", []byte("not a zip"))
	assert.Error(t, err)
}

func TestExtract_PDFCorrupt(t *testing.T) {
	_, err := Extract("resume.pdf", MIMEPDF, []byte("%PDF-1.4 truncated"))
	assert.Error(t, err)
}

func TestExtract_HTML(t *testing.T) {
	page := `<html><head><style>p{}</style></head><body>
		<h1>Grace Hopper</h1>
		<script>var x = 1;</script>
		<p>COBOL   </p>
	</body></html>`

	text, err := Extract("resume.html", "", []byte(page))
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper\nCOBOL", text)
}

func TestExtract_Plain(t *testing.T) {
	text, err := Extract("resume.txt", "", []byte("plain resume"))
	require.NoError(t, err)
	assert.Equal(t, "plain resume", text)
}

func TestExtract_Unsupported(t *testing.T) {
	_, err := Extract("resume.doc", MIMEDoc, []byte{0xd0, 0xcf})

	var typeErr *UnsupportedTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, MIMEDoc, typeErr.ContentType)
}

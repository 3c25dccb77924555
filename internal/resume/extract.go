// Package resume turns uploaded resume files into plain text and derives the
// skill and characteristic summaries shown on the academics and portfolio pages.
package resume

import (
	"bytes"
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// MIME types accepted by Extract.
const (
	MIMEDocx  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEDoc   = "application/msword"
	MIMEPDF   = "application/pdf"
	MIMEHTML  = "text/html"
	MIMEPlain = "text/plain"
)

// UnsupportedTypeError is returned for files Extract cannot read.
type UnsupportedTypeError struct {
	Filename    string
	ContentType string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported resume type %q (%s)", e.ContentType, e.Filename)
}

var (
	paragraphEnd = regexp.MustCompile(`</w:p>`)
	tabOrBreak   = regexp.MustCompile(`<w:(tab|br|cr)\s*/>`)
	xmlTag       = regexp.MustCompile(`<[^>]+>`)
	blankRuns    = regexp.MustCompile(`\n{3,}`)
)

// DetectType resolves the effective MIME type from the declared content type,
// falling back to the file extension for generic or missing types.
func DetectType(filename, contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i != -1 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch ct {
	case MIMEDocx, MIMEPDF, MIMEHTML, MIMEPlain:
		return ct
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".docx":
		return MIMEDocx
	case ".pdf":
		return MIMEPDF
	case ".html", ".htm":
		return MIMEHTML
	case ".txt", ".md":
		return MIMEPlain
	}
	return ct
}

// Extract returns the plain text of a resume file.
func Extract(filename, contentType string, data []byte) (string, error) {
	switch kind := DetectType(filename, contentType); kind {
	case MIMEPlain:
		return string(data), nil
	case MIMEDocx:
		return extractDocx(data)
	case MIMEPDF:
		return extractPDF(data)
	case MIMEHTML:
		return extractHTML(data)
	default:
		return "", &UnsupportedTypeError{Filename: filename, ContentType: kind}
	}
}

func extractDocx(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer func() { _ = doc.Close() }()

	return DocumentXMLToText(doc.Editable().GetContent()), nil
}

// DocumentXMLToText flattens WordprocessingML into text: one line per
// paragraph, tabs and breaks preserved, markup dropped.
func DocumentXMLToText(xml string) string {
	text := paragraphEnd.ReplaceAllString(xml, "\n")
	text = tabOrBreak.ReplaceAllStringFunc(text, func(m string) string {
		if strings.Contains(m, "tab") {
			return "\t"
		}
		return "\n"
	})
	text = xmlTag.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String()), nil
}

func extractHTML(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	var lines []string
	for _, line := range strings.Split(doc.Find("body").Text(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// Package annotation extracts the annotated PDF and its feedback metadata from
// the annotation service's multipart response.
package annotation

import (
	"bytes"
	"encoding/json"
	"mime"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

const (
	pdfStartMarker = "%PDF"
	pdfEndMarker   = "%%EOF"
)

// boundaryPattern finds the first delimiter line when the Content-Type header carries no boundary.
var boundaryPattern = regexp.MustCompile(`--[A-Za-z0-9_-]+`)

// Result is the split annotation response.
type Result struct {
	PDF []byte
	// Metadata is nil when no JSON part could be parsed.
	Metadata map[string]any
}

// Splitter pulls a PDF and a JSON document out of a multipart body.
type Splitter struct {
	logger *zap.Logger
}

// NewSplitter creates a Splitter. A nil logger disables logging.
func NewSplitter(logger *zap.Logger) *Splitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Splitter{logger: logger.Named("annotation")}
}

// Split extracts both parts. ok is false when no PDF was found, which callers
// treat as an unusable response regardless of metadata.
func (s *Splitter) Split(body []byte, contentType string) (Result, bool) {
	pdf := ExtractPDF(body)
	if pdf == nil {
		s.logger.Info("no PDF marker found in response", zap.Int("bytes", len(body)))
		return Result{}, false
	}
	return Result{
		PDF:      pdf,
		Metadata: s.ExtractJSON(body, boundaryFromContentType(contentType)),
	}, true
}

// ExtractPDF returns the bytes from the first %PDF marker through the first
// %%EOF after it, or to the end of the body when the trailer is missing.
// Returns nil when the body holds no PDF.
func ExtractPDF(body []byte) []byte {
	start := bytes.Index(body, []byte(pdfStartMarker))
	if start == -1 {
		return nil
	}

	end := len(body)
	if eof := bytes.Index(body[start:], []byte(pdfEndMarker)); eof != -1 {
		end = start + eof + len(pdfEndMarker)
	}

	out := make([]byte, end-start)
	copy(out, body[start:end])
	return out
}

// ExtractJSON finds the first part whose text mentions "json" and parses its body.
// A top-level array is wrapped as {"annotations": [...]}. The boundary argument may be
// empty, in which case the first "--token" in the body is used.
func (s *Splitter) ExtractJSON(body []byte, boundary string) map[string]any {
	text := string(body)

	delimiter := boundaryPattern.FindString(text)
	if boundary != "" {
		delimiter = "--" + boundary
	}
	if delimiter == "" {
		s.logger.Info("no multipart boundary found")
		return nil
	}

	parts := strings.Split(text, delimiter)
	s.logger.Debug("split multipart message",
		zap.String("boundary", delimiter),
		zap.Int("parts", len(parts)))

	for i, part := range parts {
		if !strings.Contains(strings.ToLower(part), "json") {
			continue
		}

		content, ok := partBody(part)
		if !ok {
			s.logger.Debug("no header separator in JSON part", zap.Int("part", i))
			continue
		}
		if content == "" {
			s.logger.Debug("JSON part is empty", zap.Int("part", i))
			continue
		}

		var parsed any
		if err := json.Unmarshal([]byte(content), &parsed); err != nil {
			s.logger.Warn("failed to parse JSON part",
				zap.Int("part", i),
				zap.String("preview", preview(content, 500)),
				zap.Error(err))
			continue
		}

		switch v := parsed.(type) {
		case map[string]any:
			return v
		case []any:
			return map[string]any{"annotations": v}
		default:
			s.logger.Debug("JSON part is not an object or array", zap.Int("part", i))
		}
	}

	s.logger.Info("no JSON part found in multipart message")
	return nil
}

// partBody returns the trimmed body of a multipart part: everything after the
// first blank line, cut at the next delimiter line.
func partBody(part string) (string, bool) {
	sep, sepLen := strings.Index(part, "\r\n\r\n"), 4
	if sep == -1 {
		sep, sepLen = strings.Index(part, "\n\n"), 2
	}
	if sep == -1 {
		return "", false
	}

	content := strings.TrimSpace(part[sep+sepLen:])

	cut := -1
	if i := strings.Index(content, "\r\n--"); i != -1 {
		cut = i
	}
	if i := strings.Index(content, "\n--"); i != -1 && (cut == -1 || i < cut) {
		cut = i
	}
	if cut != -1 {
		content = content[:cut]
	}
	return strings.TrimSpace(content), true
}

// boundaryFromContentType returns the boundary parameter of a multipart
// Content-Type header, or "" when absent or unparsable.
func boundaryFromContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return ""
	}
	return params["boundary"]
}

// IsMultipart reports whether a Content-Type header describes a multipart body.
func IsMultipart(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "multipart")
}

// IsPDF reports whether a Content-Type header describes a bare PDF.
func IsPDF(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/pdf")
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

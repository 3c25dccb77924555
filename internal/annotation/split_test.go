package annotation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePDF = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF"

func multipartBody(boundary, jsonPart, nl string) string {
	var sb strings.Builder
	sb.WriteString("--" + boundary + nl)
	sb.WriteString("Content-Type: application/pdf" + nl + nl)
	sb.WriteString(samplePDF + nl)
	sb.WriteString("--" + boundary + nl)
	sb.WriteString("Content-Type: application/json" + nl + nl)
	sb.WriteString(jsonPart + nl)
	sb.WriteString("--" + boundary + "--" + nl)
	return sb.String()
}

func TestExtractPDF(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "embedded with trailer",
			body: "garbage before " + samplePDF + " garbage after",
			want: samplePDF,
		},
		{
			name: "missing trailer runs to end",
			body: "xx%PDF-1.7 partial",
			want: "%PDF-1.7 partial",
		},
		{
			name: "first trailer wins",
			body: "%PDF-a%%EOF-b%%EOF",
			want: "%PDF-a%%EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(ExtractPDF([]byte(tt.body))))
		})
	}
}

func TestExtractPDF_NotFound(t *testing.T) {
	assert.Nil(t, ExtractPDF([]byte("no document here")))
}

func TestExtractPDF_BinarySafe(t *testing.T) {
	body := append([]byte("--b\r\n\r\n%PDF-1.4\x00\xff\xfe"), []byte("%%EOF\r\n--b--")...)
	assert.Equal(t, []byte("%PDF-1.4\x00\xff\xfe%%EOF"), ExtractPDF(body))
}

func TestExtractJSON_Object(t *testing.T) {
	s := NewSplitter(nil)
	for _, nl := range []string{"\r\n", "\n"} {
		body := multipartBody("frontier", `{"overall_score": 82, "strengths": ["concise"]}`, nl)

		meta := s.ExtractJSON([]byte(body), "")
		require.NotNil(t, meta, "newline %q", nl)
		assert.Equal(t, 82.0, meta["overall_score"])
		assert.Equal(t, []any{"concise"}, meta["strengths"])
	}
}

func TestExtractJSON_ArrayIsWrapped(t *testing.T) {
	body := multipartBody("b1", `[{"line": 3, "note": "use numbers"}]`, "\r\n")

	meta := NewSplitter(nil).ExtractJSON([]byte(body), "b1")
	require.NotNil(t, meta)

	annotations, ok := meta["annotations"].([]any)
	require.True(t, ok)
	assert.Len(t, annotations, 1)
}

func TestExtractJSON_SkipsBrokenParts(t *testing.T) {
	body := "--b\r\nContent-Type: application/json\r\n\r\n{not json\r\n" +
		"--b\r\nContent-Type: application/json\r\n\r\n{\"ok\": true}\r\n--b--"

	meta := NewSplitter(nil).ExtractJSON([]byte(body), "")
	require.NotNil(t, meta)
	assert.Equal(t, true, meta["ok"])
}

func TestExtractJSON_NoBoundary(t *testing.T) {
	assert.Nil(t, NewSplitter(nil).ExtractJSON([]byte(`{"a": 1}`), ""))
}

func TestExtractJSON_EmptyPart(t *testing.T) {
	body := "--b\r\nContent-Type: application/json\r\n\r\n\r\n--b--"
	assert.Nil(t, NewSplitter(nil).ExtractJSON([]byte(body), ""))
}

func TestSplit(t *testing.T) {
	body := multipartBody("xyz", `{"improvements": ["add metrics"]}`, "\r\n")

	res, ok := NewSplitter(nil).Split([]byte(body), `multipart/mixed; boundary="xyz"`)
	require.True(t, ok)
	assert.Equal(t, samplePDF, string(res.PDF))
	assert.Equal(t, []any{"add metrics"}, res.Metadata["improvements"])
}

func TestSplit_NoPDF(t *testing.T) {
	body := "--b\r\nContent-Type: application/json\r\n\r\n{}\r\n--b--"
	_, ok := NewSplitter(nil).Split([]byte(body), "multipart/mixed; boundary=b")
	assert.False(t, ok)
}

func TestBoundaryFromContentType(t *testing.T) {
	assert.Equal(t, "abc", boundaryFromContentType("multipart/mixed; boundary=abc"))
	assert.Equal(t, "a b", boundaryFromContentType(`multipart/mixed; boundary="a b"`))
	assert.Equal(t, "", boundaryFromContentType("application/json"))
	assert.Equal(t, "", boundaryFromContentType(""))
	assert.Equal(t, "", boundaryFromContentType("multipart/mixed; boundary"))
}

func TestContentTypePredicates(t *testing.T) {
	assert.True(t, IsMultipart("multipart/mixed; boundary=x"))
	assert.True(t, IsMultipart("Multipart/Form-Data"))
	assert.False(t, IsMultipart("application/json"))
	assert.True(t, IsPDF("application/pdf"))
	assert.False(t, IsPDF("text/plain"))
}

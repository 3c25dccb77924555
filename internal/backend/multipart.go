package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strings"
)

// File is an in-memory file part.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFile(w *multipart.Writer, field string, f File) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(f.Name)))
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(f.Data)
	return err
}

// EncodeForm re-encodes a parsed form, fields first, both in key order.
func EncodeForm(form *multipart.Form) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if form != nil {
		for _, key := range sortedKeys(form.Value) {
			for _, v := range form.Value[key] {
				if err := w.WriteField(key, v); err != nil {
					return nil, "", fmt.Errorf("failed to write field %s: %w", key, err)
				}
			}
		}
		for _, key := range sortedKeys(form.File) {
			for _, fh := range form.File[key] {
				data, err := readFileHeader(fh)
				if err != nil {
					return nil, "", fmt.Errorf("failed to read file %s: %w", fh.Filename, err)
				}
				f := File{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data}
				if err := writeFile(w, key, f); err != nil {
					return nil, "", fmt.Errorf("failed to write file %s: %w", fh.Filename, err)
				}
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FetchConnections forwards an uploaded connections form and returns the
// service reply.
func (c *Client) FetchConnections(ctx context.Context, form *multipart.Form) (*Response, error) {
	body, contentType, err := EncodeForm(form)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPost, c.ServiceURL(PathFetchConnections), contentType, body)
}

// StreamConnections forwards like FetchConnections but hands back the live
// response body so it can be relayed incrementally. The caller must close it.
func (c *Client) StreamConnections(ctx context.Context, form *multipart.Form) (io.ReadCloser, error) {
	body, contentType, err := EncodeForm(form)
	if err != nil {
		return nil, err
	}
	resp, err := c.open(ctx, http.MethodPost, c.ServiceURL(PathFetchConnections), contentType, body)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// ColdEmail asks the service to draft an email to profile using resume.
func (c *Client) ColdEmail(ctx context.Context, profile string, resume File) (*Response, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := writeFile(w, "resume", resume); err != nil {
		return nil, fmt.Errorf("failed to encode resume: %w", err)
	}
	if err := w.WriteField("profile", profile); err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPost, c.ServiceURL(PathColdEmail), w.FormDataContentType(), &buf)
}

// Annotate uploads a resume for annotation. The reply is usually multipart
// and is returned unparsed.
func (c *Client) Annotate(ctx context.Context, resume File) (*Response, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := writeFile(w, "file", resume); err != nil {
		return nil, fmt.Errorf("failed to encode resume: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPost, c.ServiceURL(PathAnnotate), w.FormDataContentType(), &buf)
}

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-network/internal/types"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{ServiceURL: srv.URL + "/", DirectoryURL: srv.URL}, nil)
}

func parseForm(t *testing.T, body []byte, contentType string) *multipart.Form {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm
}

func TestClient_SearchProfiles(t *testing.T) {
	var gotPath, gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("query")
		_, _ = w.Write([]byte(`[{"name":"Ada","industry":"Tech"}]`))
	})

	profiles, err := c.SearchProfiles(context.Background(), types.SearchByIndustry, "data & ai")
	require.NoError(t, err)
	assert.Equal(t, PathSearchByIndustry, gotPath)
	assert.Equal(t, "data & ai", gotQuery)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Ada", profiles[0].Name)
}

func TestClient_SearchProfiles_NullBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})

	profiles, err := c.SearchProfiles(context.Background(), types.SearchByName, "x")
	require.NoError(t, err)
	assert.NotNil(t, profiles)
	assert.Empty(t, profiles)
}

func TestClient_UpstreamStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := c.SearchProfiles(context.Background(), types.SearchByName, "x")
	var be *Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusBadGateway, be.Status)
	assert.Equal(t, "boom\n", be.Body)
	assert.False(t, be.Transport())
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := New(Options{ServiceURL: srv.URL}, nil)

	_, err := c.Annotate(context.Background(), File{Name: "r.pdf", Data: []byte("x")})
	var be *Error
	require.ErrorAs(t, err, &be)
	assert.True(t, be.Transport())
	assert.Equal(t, srv.URL+PathAnnotate, be.URL)
}

func TestClient_LookupSkillClasses_StripsFence(t *testing.T) {
	var got types.SkillClassRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathLookupClasses, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("```json\n[{\"className\":\"CS 101\"}]\n```"))
	})

	body, err := c.LookupSkillClasses(context.Background(), "MIT", []string{"Go"})
	require.NoError(t, err)
	assert.Equal(t, `[{"className":"CS 101"}]`, string(body))
	assert.Equal(t, "MIT", got.University)
	assert.Equal(t, []string{"Go"}, got.Skills)
}

func TestClient_ColdEmail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathColdEmail, r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, `{"name":"Ada"}`, r.FormValue("profile"))

		f, fh, err := r.FormFile("resume")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "resume.txt", fh.Filename)
		assert.Equal(t, "text/plain", fh.Header.Get("Content-Type"))
		assert.Equal(t, "my resume", string(data))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"email":"Hi Ada"}`))
	})

	resp, err := c.ColdEmail(context.Background(), `{"name":"Ada"}`,
		File{Name: "resume.txt", ContentType: "text/plain", Data: []byte("my resume")})
	require.NoError(t, err)
	assert.Equal(t, `{"email":"Hi Ada"}`, string(resp.Body))
	assert.Equal(t, "application/json", resp.ContentType)
}

func TestClient_FetchConnections_ForwardsForm(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("school", "MIT"))
	part, err := w.CreateFormFile("file", "Connections.csv")
	require.NoError(t, err)
	_, _ = part.Write([]byte("First Name,Last Name\nAda,Lovelace\n"))
	require.NoError(t, w.Close())
	form := parseForm(t, buf.Bytes(), w.FormDataContentType())

	c := newTestClient(t, func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathFetchConnections, r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "MIT", r.FormValue("school"))
		f, fh, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "Connections.csv", fh.Filename)
		assert.Contains(t, string(data), "Ada,Lovelace")
		_, _ = rw.Write([]byte(`[{"name":"Ada Lovelace"}]`))
	})

	resp, err := c.FetchConnections(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"Ada Lovelace"}]`, string(resp.Body))
}

func TestClient_StreamConnections(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("part1"))
		w.(http.Flusher).Flush()
		_, _ = w.Write([]byte("part2"))
	})

	body, err := c.StreamConnections(context.Background(), &multipart.Form{})
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "part1part2", string(data))
}

func TestClient_StreamConnections_ErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.StreamConnections(context.Background(), nil)
	var be *Error
	require.True(t, errors.As(err, &be))
	assert.Equal(t, http.StatusUnauthorized, be.Status)
}

func TestError_Message(t *testing.T) {
	e := &Error{URL: "http://x", Status: 500}
	assert.Equal(t, "backend error for http://x: HTTP status 500", e.Error())

	cause := errors.New("dial tcp: refused")
	e = &Error{URL: "http://x", Message: "HTTP request failed", Cause: cause}
	assert.ErrorIs(t, e, cause)
	assert.True(t, strings.Contains(e.Error(), "refused"))
}

func TestClient_HasService(t *testing.T) {
	assert.False(t, New(Options{}, nil).HasService())
	assert.True(t, New(Options{ServiceURL: "http://svc"}, nil).HasService())
	assert.Equal(t, "http://svc/gemini/coldEmail", New(Options{ServiceURL: "http://svc/"}, nil).ServiceURL(PathColdEmail))
}

package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-network/internal/backend"
)

// fakeAssistant records calls and returns canned replies.
type fakeAssistant struct {
	email      string
	classes    string
	err        error
	gotProfile string
	gotResume  string
}

func (f *fakeAssistant) ColdEmail(_ context.Context, profileJSON, resumeText string) (string, error) {
	f.gotProfile, f.gotResume = profileJSON, resumeText
	return f.email, f.err
}

func (f *fakeAssistant) LookupClasses(_ context.Context, _ string, _ []string) ([]byte, error) {
	return []byte(f.classes), f.err
}

// coldEmailUpstream captures the forwarded form.
type coldEmailUpstream struct {
	path, profile, resumeName, resumeBody string
}

func (u *coldEmailUpstream) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u.path = r.URL.Path
		u.profile = r.FormValue("profile")
		if f, h, err := r.FormFile("resume"); assert.NoError(t, err) {
			data, _ := io.ReadAll(f)
			u.resumeName, u.resumeBody = h.Filename, string(data)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"email":"Dear Grace"}`))
	}
}

func TestColdEmail_JSON(t *testing.T) {
	up := &coldEmailUpstream{}
	env := newTestEnv(t, up.handler(t))

	rec := env.do(jsonRequest(t, http.MethodPost, "/api/gemini", map[string]string{
		"profileJson": `{"name":"Grace"}`,
		"resumeText":  "Ada Lovelace, Python",
	}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"email":"Dear Grace"}`, rec.Body.String())
	assert.Equal(t, backend.PathColdEmail, up.path)
	assert.Equal(t, `{"name":"Grace"}`, up.profile)
	assert.Equal(t, "resume.txt", up.resumeName)
	assert.Equal(t, "Ada Lovelace, Python", up.resumeBody)
}

func TestColdEmail_JSONUsesStoredResume(t *testing.T) {
	up := &coldEmailUpstream{}
	env := newTestEnv(t, up.handler(t))
	env.storeDocx(t, "resume.docx", "Stored Resume", "Go developer")

	rec := env.do(jsonRequest(t, http.MethodPost, "/api/gemini", map[string]string{"profileJson": `{"name":"Grace"}`}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, up.resumeBody, "Stored Resume")
}

func TestColdEmail_Multipart(t *testing.T) {
	up := &coldEmailUpstream{}
	env := newTestEnv(t, up.handler(t))

	rec := env.do(multipartRequest(t, "/api/gemini",
		map[string]string{"profile": `{"name":"Grace"}`},
		formFile{field: "resume", name: "cv.pdf", contentType: "application/pdf", data: []byte("%PDF-1.4")}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "cv.pdf", up.resumeName)
	assert.Equal(t, "%PDF-1.4", up.resumeBody)
}

func TestColdEmail_MissingInputs(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("upstream should not be called")
	})

	tests := []struct {
		name string
		req  *http.Request
	}{
		{name: "no resume", req: jsonRequest(t, http.MethodPost, "/api/gemini", map[string]string{"profileJson": "{}"})},
		{name: "no profile", req: jsonRequest(t, http.MethodPost, "/api/gemini", map[string]string{"resumeText": "x"})},
		{name: "multipart without file", req: multipartRequest(t, "/api/gemini", map[string]string{"profile": "{}"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"Profile and resume are required"}`, rec.Body.String())
		})
	}
}

func TestColdEmail_UpstreamError(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	})

	rec := env.do(jsonRequest(t, http.MethodPost, "/api/gemini", map[string]string{"profileJson": "{}", "resumeText": "x"}))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to generate cold email"}`, rec.Body.String())
}

func TestColdEmail_LocalAssistant(t *testing.T) {
	assistant := &fakeAssistant{email: "Hello Grace"}
	env := newTestEnv(t, nil, func(c *Config) { c.Assistant = assistant })

	rec := env.do(jsonRequest(t, http.MethodPost, "/api/gemini", map[string]string{"profileJson": `{"name":"Grace"}`, "resumeText": "Ada"}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"email":"Hello Grace"}`, rec.Body.String())
	assert.Equal(t, "Ada", assistant.gotResume)
}

func TestColdEmail_LocalAssistantError(t *testing.T) {
	env := newTestEnv(t, nil, func(c *Config) { c.Assistant = &fakeAssistant{err: errors.New("model down")} })

	rec := env.do(jsonRequest(t, http.MethodPost, "/api/gemini", map[string]string{"profileJson": "{}", "resumeText": "Ada"}))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "model down")
}

func TestColdEmail_NoUpstreamConfigured(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(jsonRequest(t, http.MethodPost, "/api/gemini", map[string]string{"profileJson": "{}", "resumeText": "Ada"}))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "not configured")
}

func TestLookupSkillClasses(t *testing.T) {
	var gotBody string
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		_, _ = w.Write([]byte("```json\n{\"recommended_classes\":[{\"class_name\":\"CS 101\",\"reason\":\"basics\"}]}\n```"))
	})

	rec := env.do(jsonRequest(t, http.MethodPost, "/api/lookup-skill-classes", map[string]any{
		"university": "MIT",
		"skills":     []string{"Python"},
	}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"recommended_classes":[{"class_name":"CS 101","reason":"basics"}]}`, rec.Body.String())
	assert.JSONEq(t, `{"university":"MIT","skills":["Python"]}`, gotBody)
}

func TestLookupSkillClasses_Normalize(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"recommended_classes":[{"class_name":"CS 101","reason":"basics"},"Linear Algebra"]}`))
	})

	rec := env.do(jsonRequest(t, http.MethodPost, "/api/lookup-skill-classes?normalize=1", map[string]any{
		"university": "MIT",
		"skills":     []string{"Python"},
	}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"classes":[{"className":"CS 101","description":"basics"},{"className":"Linear Algebra","description":""}]}`, rec.Body.String())
}

func TestLookupSkillClasses_Invalid(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, body := range []string{`{"university":"","skills":["Go"]}`, `{"university":"MIT","skills":[]}`, `not json`} {
		req := jsonRequest(t, http.MethodPost, "/api/lookup-skill-classes", nil)
		req.Body = io.NopCloser(strings.NewReader(body))
		rec := env.do(req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"error":"University and skills array are required"}`, rec.Body.String())
	}
}

func TestLookupSkillClasses_UpstreamError(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := env.do(jsonRequest(t, http.MethodPost, "/api/lookup-skill-classes", map[string]any{"university": "MIT", "skills": []string{"Go"}}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to lookup skill classes"}`, rec.Body.String())
}

func TestLookupSkillClasses_LocalAssistant(t *testing.T) {
	env := newTestEnv(t, nil, func(c *Config) {
		c.Assistant = &fakeAssistant{classes: `{"classes":[{"className":"6.0001"}]}`}
	})

	rec := env.do(jsonRequest(t, http.MethodPost, "/api/lookup-skill-classes", map[string]any{"university": "MIT", "skills": []string{"Go"}}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"classes":[{"className":"6.0001"}]}`, rec.Body.String())
}

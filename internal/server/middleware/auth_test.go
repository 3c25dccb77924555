package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTokenValidator accepts a fixed set of tokens.
type testTokenValidator struct {
	validTokens map[string]uuid.UUID
}

func (v *testTokenValidator) Authenticate(token string) (uuid.UUID, error) {
	id, ok := v.validTokens[token]
	if !ok {
		return uuid.Nil, errors.New("invalid token")
	}
	return id, nil
}

func setup(t *testing.T) (*testTokenValidator, uuid.UUID) {
	t.Helper()
	id := uuid.New()
	return &testTokenValidator{validTokens: map[string]uuid.UUID{"good-token": id}}, id
}

// echoSession writes the context session ID, or "none".
func echoSession() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := SessionID(r)
		if !ok {
			_, _ = w.Write([]byte("none"))
			return
		}
		_, _ = w.Write([]byte(id.String()))
	})
}

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{name: "session header", headers: map[string]string{HeaderSessionToken: " abc "}, want: "abc"},
		{name: "bearer", headers: map[string]string{"Authorization": "Bearer abc"}, want: "abc"},
		{name: "bearer lowercase", headers: map[string]string{"Authorization": "bearer abc"}, want: "abc"},
		{name: "session header wins", headers: map[string]string{HeaderSessionToken: "a", "Authorization": "Bearer b"}, want: "a"},
		{name: "basic auth ignored", headers: map[string]string{"Authorization": "Basic abc"}, want: ""},
		{name: "malformed bearer", headers: map[string]string{"Authorization": "Bearer a b"}, want: ""},
		{name: "none", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, TokenFromRequest(req))
		})
	}
}

func TestRequireSession(t *testing.T) {
	v, id := setup(t)
	h := RequireSession(v)(echoSession())

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, id.String(), rec.Body.String())
	})

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderSessionToken, "bad-token")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestOptionalSession(t *testing.T) {
	v, id := setup(t)
	h := OptionalSession(v)(echoSession())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "none", rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderSessionToken, "good-token")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, id.String(), rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderSessionToken, "bad-token")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionID_NilIsAbsent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithSessionID(req.Context(), uuid.Nil))
	_, ok := SessionID(req)
	assert.False(t, ok)
}

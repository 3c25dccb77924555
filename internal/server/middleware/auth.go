// Package middleware provides HTTP middleware for session authentication.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// sessionIDKey is the context key for the authenticated session ID.
const sessionIDKey ContextKey = "sessionID"

// HeaderSessionToken carries the session token when Authorization is not used.
const HeaderSessionToken = "X-Session-Token"

// TokenValidator resolves a session token to its session ID.
type TokenValidator interface {
	Authenticate(token string) (uuid.UUID, error)
}

// TokenFromRequest returns the session token from X-Session-Token or a
// Bearer Authorization header, or "" when neither is present.
func TokenFromRequest(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(HeaderSessionToken)); token != "" {
		return token
	}

	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// RequireSession rejects requests without a valid session token and stores
// the session ID in the request context.
func RequireSession(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				unauthorized(w)
				return
			}
			id, err := v.Authenticate(token)
			if err != nil {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), id)))
		})
	}
}

// OptionalSession attaches the session ID when a token is present. A token
// that fails validation is still rejected.
func OptionalSession(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			id, err := v.Authenticate(token)
			if err != nil {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), id)))
		})
	}
}

// WithSessionID returns a copy of ctx carrying id.
func WithSessionID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionID returns the authenticated session ID from the request context.
func SessionID(r *http.Request) (uuid.UUID, bool) {
	id, ok := r.Context().Value(sessionIDKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
}

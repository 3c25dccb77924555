package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/career-network/internal/events"
	"github.com/jonathan/career-network/internal/schemas"
	"github.com/jonathan/career-network/internal/server/middleware"
	"github.com/jonathan/career-network/internal/session"
	"github.com/jonathan/career-network/internal/types"
)

// formSessionToken is the form field that may carry a session token on uploads.
const formSessionToken = "session_token"

// streamChunkSize is the read size when relaying the upstream body.
const streamChunkSize = 4 << 10

// handleConnectionFetching forwards the uploaded form to the connection
// service and returns its reply as text.
func (s *Server) handleConnectionFetching(w http.ResponseWriter, r *http.Request) {
	token, ok := s.prepareConnectionForm(w, r)
	if !ok {
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	resp, err := s.backend.FetchConnections(r.Context(), r.MultipartForm)
	if err != nil {
		if status := upstreamStatus(err); status != 0 {
			s.errorResponse(w, status, "Failed to upload file")
			return
		}
		s.logger.Error("connection fetch failed", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.storeFetchedConnections(r.Context(), token, resp.Body)
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    string(resp.Body),
	})
}

// handleConnectionStream relays the connection service reply as SSE chunk
// events followed by a complete event.
func (s *Server) handleConnectionStream(w http.ResponseWriter, r *http.Request) {
	token, ok := s.prepareConnectionForm(w, r)
	if !ok {
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	body, err := s.backend.StreamConnections(r.Context(), r.MultipartForm)
	if err != nil {
		if status := upstreamStatus(err); status != 0 {
			s.errorResponse(w, status, "Failed to upload file")
			return
		}
		s.logger.Error("connection stream failed", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	defer func() { _ = body.Close() }()

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	var (
		all     []byte
		pending []byte
		buf     = make([]byte, streamChunkSize)
	)
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			all = append(all, buf[:n]...)
			var ready []byte
			ready, pending = splitUTF8(append(pending, buf[:n]...))
			if len(ready) > 0 {
				if err := sse.WriteChunk(string(ready)); err != nil {
					s.logger.Debug("client went away during stream", zap.Error(err))
					return
				}
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			s.logger.Warn("upstream stream interrupted", zap.Error(readErr))
			sse.WriteError("Stream interrupted: " + readErr.Error())
			return
		}
	}
	if len(pending) > 0 {
		_ = sse.WriteChunk(string(pending))
	}

	stored := s.storeFetchedConnections(r.Context(), token, all)
	sse.WriteComplete(len(all), stored)
}

// prepareConnectionForm parses the upload and removes the session token
// field so only user fields are forwarded. It writes the error response
// itself when parsing fails.
func (s *Server) prepareConnectionForm(w http.ResponseWriter, r *http.Request) (string, bool) {
	if err := s.parseMultipart(w, r); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorFromErr(w, err)
			return "", false
		}
		s.logger.Warn("invalid connection upload", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Internal server error")
		return "", false
	}

	token := middleware.TokenFromRequest(r)
	if values := r.MultipartForm.Value[formSessionToken]; len(values) > 0 {
		if token == "" {
			token = strings.TrimSpace(values[0])
		}
		delete(r.MultipartForm.Value, formSessionToken)
	}
	return token, true
}

// storeFetchedConnections saves the service reply as the session's
// connections when token names a session. Failures are logged, never
// returned: the upload itself already succeeded.
func (s *Server) storeFetchedConnections(ctx context.Context, token string, body []byte) bool {
	if token == "" {
		return false
	}
	id, err := s.sessions.Authenticate(token)
	if err != nil {
		s.logger.Info("ignoring invalid session token on upload", zap.Error(err))
		return false
	}

	people, ok := parseConnections(body)
	if !ok {
		s.logger.Debug("connection reply is not a connection list", zap.String("session_id", id.String()))
		return false
	}
	if err := s.sessions.SetConnections(ctx, id, people, events.ConnectionsFetched); err != nil {
		s.logger.Warn("failed to store fetched connections", zap.String("session_id", id.String()), zap.Error(err))
		return false
	}
	return true
}

// connectionListKeys are the object keys that may wrap a connection list.
var connectionListKeys = []string{"connections", "matches", "results", "data"}

// parseConnections reads a connection list, either a bare array or an object
// wrapping one under a known key. The list must satisfy the connections schema.
func parseConnections(body []byte) ([]types.PersonData, bool) {
	list := body
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapped); err == nil {
		list = nil
		for _, key := range connectionListKeys {
			if raw, ok := wrapped[key]; ok {
				list = raw
				break
			}
		}
		if list == nil {
			return nil, false
		}
	}

	if err := schemas.Validate(schemas.Connections, list); err != nil {
		return nil, false
	}
	var people []types.PersonData
	if err := json.Unmarshal(list, &people); err != nil {
		return nil, false
	}
	return people, true
}

// sessionConnections loads the stored connections for idText, which must
// match the session authenticated on the request.
func (s *Server) sessionConnections(r *http.Request, idText string) (*sessionView, error) {
	id, err := uuid.Parse(idText)
	if err != nil {
		return nil, &ErrValidation{Field: "session_id", Message: "must be a UUID"}
	}
	authed, ok := middleware.SessionID(r)
	if !ok {
		return nil, errSessionTokenRequired
	}
	if authed != id {
		return nil, session.ErrForbidden
	}

	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	return &sessionView{School: sess.School, Connections: sess.Connections}, nil
}

// sessionView is the part of a session the analysis routes read.
type sessionView struct {
	School      string
	Connections []types.PersonData
}

package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/career-network/internal/events"
	"github.com/jonathan/career-network/internal/insights"
	"github.com/jonathan/career-network/internal/network"
	"github.com/jonathan/career-network/internal/resume"
	"github.com/jonathan/career-network/internal/schemas"
	"github.com/jonathan/career-network/internal/scratch"
	"github.com/jonathan/career-network/internal/server/middleware"
	"github.com/jonathan/career-network/internal/session"
	"github.com/jonathan/career-network/internal/types"
)

// handleCreateSession starts a session and returns its token.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req types.CreateSessionRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorFromErr(w, err)
		return
	}
	created, err := s.sessions.Create(r.Context(), req)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, created)
}

// pathSession parses {id} and checks it against the authenticated session.
func (s *Server) pathSession(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "must be a UUID"}
	}
	authed, ok := middleware.SessionID(r)
	if !ok {
		return uuid.Nil, errSessionTokenRequired
	}
	if authed != id {
		return uuid.Nil, session.ErrForbidden
	}
	return id, nil
}

// handleGetSession returns the caller's session.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, err := s.pathSession(r)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess)
}

// handlePutConnections replaces the session's connections with a validated
// JSON array.
func (s *Server) handlePutConnections(w http.ResponseWriter, r *http.Request) {
	id, err := s.pathSession(r)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxUploadBytes))
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	if err := schemas.Validate(schemas.Connections, body); err != nil {
		s.errorFromErr(w, err)
		return
	}
	var people []types.PersonData
	if err := json.Unmarshal(body, &people); err != nil {
		s.errorFromErr(w, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}

	if err := s.sessions.SetConnections(r.Context(), id, people, events.ConnectionsUpdated); err != nil {
		s.errorFromErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleLayout places connections on the network graph. Without connections
// in the body the session's stored list is used.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req types.LayoutRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorFromErr(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.errorFromErr(w, err)
		return
	}

	people := req.Connections
	if len(people) == 0 && req.SessionID != "" {
		view, err := s.sessionConnections(r, req.SessionID)
		if err != nil {
			s.errorFromErr(w, err)
			return
		}
		people = view.Connections
	}

	opts := network.DefaultOptions()
	if req.ContainerSize > 0 {
		opts.ContainerSize = req.ContainerSize
	}
	s.jsonResponse(w, http.StatusOK, network.Compute(people, opts))
}

// handlePortfolio aggregates the connection list into industry counts and
// advice, adding resume-derived skills and class recommendations when
// available.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	var req types.PortfolioRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorFromErr(w, err)
		return
	}

	var (
		view       *sessionView
		resumeText string
	)
	g, ctx := errgroup.WithContext(r.Context())
	if req.SessionID != "" {
		g.Go(func() error {
			v, err := s.sessionConnections(r.WithContext(ctx), req.SessionID)
			view = v
			return err
		})
	}
	g.Go(func() error {
		_, text, err := s.loadResumeText()
		var unsupported *resume.UnsupportedTypeError
		switch {
		case err == nil:
			resumeText = text
		case errors.Is(err, scratch.ErrNotFound), errors.As(err, &unsupported):
		default:
			s.logger.Warn("stored resume unreadable", zap.Error(err))
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.errorFromErr(w, err)
		return
	}

	people := req.Connections
	university := strings.TrimSpace(req.University)
	if view != nil {
		if len(people) == 0 {
			people = view.Connections
		}
		if university == "" {
			university = view.School
		}
	}

	portfolio := insights.Build(people, resumeText)
	if university != "" && len(portfolio.Skills) > 0 {
		classes, err := s.classRecommendations(r.Context(), university, portfolio.Skills)
		if err != nil {
			s.logger.Warn("class recommendations unavailable", zap.String("university", university), zap.Error(err))
		} else {
			portfolio.Classes = classes
		}
	}
	s.jsonResponse(w, http.StatusOK, portfolio)
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/career-network/internal/annotation"
	"github.com/jonathan/career-network/internal/backend"
	"github.com/jonathan/career-network/internal/scratch"
	"github.com/jonathan/career-network/internal/server/middleware"
	"github.com/jonathan/career-network/internal/server/ratelimit"
	"github.com/jonathan/career-network/internal/session"
	"github.com/jonathan/career-network/internal/types"
)

// DefaultMaxUploadBytes caps request bodies when Config leaves it unset.
const DefaultMaxUploadBytes = 32 << 20

// ProfileSearcher looks up profiles in the directory.
type ProfileSearcher interface {
	SearchProfiles(ctx context.Context, field types.SearchField, query string) ([]types.Profile, error)
}

// Assistant generates networking content locally when no upstream service
// is configured.
type Assistant interface {
	ColdEmail(ctx context.Context, profileJSON, resumeText string) (string, error)
	LookupClasses(ctx context.Context, university string, skills []string) ([]byte, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	handler        http.Handler
	backend        *backend.Client
	scratch        *scratch.Store
	sessions       *session.Service
	directory      ProfileSearcher
	assistant      Assistant
	splitter       *annotation.Splitter
	rateLimiter    *ratelimit.Limiter
	logger         *zap.Logger
	allowedOrigins []string
	maxUploadBytes int64
}

// Config holds server configuration and collaborators.
type Config struct {
	Port           int
	AllowedOrigins []string
	MaxUploadBytes int64

	Backend  *backend.Client
	Scratch  *scratch.Store
	Sessions *session.Service
	// Directory answers profile searches. Defaults to Backend.
	Directory ProfileSearcher
	// Assistant is optional.
	Assistant Assistant
	// RateLimit defaults to ratelimit.LoadConfig().
	RateLimit *ratelimit.Config
	Logger    *zap.Logger
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Backend == nil || cfg.Scratch == nil || cfg.Sessions == nil {
		return nil, errors.New("server requires a backend client, scratch store and session service")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rl := cfg.RateLimit
	if rl == nil {
		rl = ratelimit.LoadConfig()
	}

	s := &Server{
		backend:        cfg.Backend,
		scratch:        cfg.Scratch,
		sessions:       cfg.Sessions,
		directory:      cfg.Directory,
		assistant:      cfg.Assistant,
		splitter:       annotation.NewSplitter(logger),
		rateLimiter:    ratelimit.NewLimiter(rl),
		logger:         logger.Named("server"),
		allowedOrigins: cfg.AllowedOrigins,
		maxUploadBytes: cfg.MaxUploadBytes,
	}
	if s.directory == nil {
		s.directory = cfg.Backend
	}
	if s.maxUploadBytes <= 0 {
		s.maxUploadBytes = DefaultMaxUploadBytes
	}

	requireSession := middleware.RequireSession(cfg.Sessions)
	optionalSession := middleware.OptionalSession(cfg.Sessions)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Upstream relays
	mux.HandleFunc("POST /api/connection_fetching", s.handleConnectionFetching)
	mux.HandleFunc("POST /api/connection_fetching/stream", s.handleConnectionStream)
	mux.HandleFunc("POST /api/gemini", s.handleColdEmail)
	mux.HandleFunc("POST /api/lookup-skill-classes", s.handleLookupSkillClasses)
	mux.HandleFunc("POST /api/resumeAnnotations", s.handleResumeAnnotations)
	mux.HandleFunc("GET /api/searchByName", s.handleSearch(types.SearchByName))
	mux.HandleFunc("GET /api/searchByIndustry", s.handleSearch(types.SearchByIndustry))

	// Scratch storage
	mux.HandleFunc("GET /api/get-resume", s.handleGetResumeText)
	mux.HandleFunc("GET /api/get-resume-text", s.handleGetResumeText)
	mux.HandleFunc("GET /api/get-resume/file", s.handleGetResumeFile)
	mux.HandleFunc("POST /api/temp-management", s.handleTempManagement)

	// Sessions
	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.Handle("GET /api/sessions/{id}", requireSession(http.HandlerFunc(s.handleGetSession)))
	mux.Handle("PUT /api/sessions/{id}/connections", requireSession(http.HandlerFunc(s.handlePutConnections)))
	mux.Handle("POST /api/network/layout", optionalSession(http.HandlerFunc(s.handleLayout)))
	mux.Handle("POST /api/portfolio", optionalSession(http.HandlerFunc(s.handlePortfolio)))

	s.handler = s.withCORS(s.withLogging(ratelimit.Middleware(s.rateLimiter, s.logger)(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: backend.DefaultTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.Close()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.Close()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Close releases background resources. The HTTP listener is not touched.
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// withCORS adds CORS headers. With no allowed origins configured any origin
// is accepted.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case len(s.allowedOrigins) == 0:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(s.allowedOrigins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+middleware.HeaderSessionToken)
		w.Header().Set("Access-Control-Expose-Headers", headerResumeFilename)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// Flush keeps SSE responses streaming through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Int("bytes", rec.bytes),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", ratelimit.ClientID(r)),
		}
		if status >= http.StatusInternalServerError {
			s.logger.Warn("request failed", fields...)
			return
		}
		s.logger.Info("request", fields...)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// errorFromErr maps err to its status and client message.
func (s *Server) errorFromErr(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request error", zap.Error(err))
	}
	s.errorResponse(w, status, errorMessage(err))
}

// decodeJSON reads a size-limited JSON body into v.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

// parseMultipart reads a size-limited multipart form into r.MultipartForm.
// The caller must call r.MultipartForm.RemoveAll.
func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	return r.ParseMultipartForm(s.maxUploadBytes)
}

// isMultipart reports whether the request body is a multipart form.
func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/")
}

// upstreamStatus returns the status of an upstream HTTP error reply, or 0
// when err is not one.
func upstreamStatus(err error) int {
	var be *backend.Error
	if errors.As(err, &be) && !be.Transport() {
		return be.Status
	}
	return 0
}

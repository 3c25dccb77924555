// Package session replaces browser-held session storage with server-side
// sessions addressed by signed bearer tokens.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/career-network/internal/events"
	"github.com/jonathan/career-network/internal/types"
)

// ErrForbidden is returned when a valid token names a different session.
var ErrForbidden = errors.New("token does not grant access to this session")

// Created is returned to the client when a session starts.
type Created struct {
	SessionID uuid.UUID `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service coordinates tokens, storage and event publishing.
type Service struct {
	store     Store
	tokens    *TokenService
	publisher events.Publisher
	logger    *zap.Logger
}

// NewService wires a session service. A nil publisher drops events.
func NewService(store Store, tokens *TokenService, publisher events.Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, tokens: tokens, publisher: publisher, logger: logger.Named("session")}
}

// Create validates req, stores a new session and issues its token.
func (s *Service) Create(ctx context.Context, req types.CreateSessionRequest) (*Created, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	token, expiresAt, err := s.tokens.Issue(id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sess := &Session{
		ID:          id,
		Name:        req.Name,
		School:      req.School,
		Connections: []types.PersonData{},
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   expiresAt.UTC(),
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.publish(ctx, events.SessionCreated, id, map[string]string{"school": req.School})
	s.logger.Info("session created", zap.String("session_id", id.String()))
	return &Created{SessionID: id, Token: token, ExpiresAt: sess.ExpiresAt}, nil
}

// Authenticate resolves a token to its session ID.
func (s *Service) Authenticate(token string) (uuid.UUID, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.GetSessionID(), nil
}

// Authorize checks that token grants access to id.
func (s *Service) Authorize(token string, id uuid.UUID) error {
	got, err := s.Authenticate(token)
	if err != nil {
		return err
	}
	if got != id {
		return ErrForbidden
	}
	return nil
}

// Get loads a session.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.store.Get(ctx, id)
}

// SetConnections replaces the connections stored for a session. eventType
// distinguishes uploads relayed from the connection service from direct writes.
func (s *Service) SetConnections(ctx context.Context, id uuid.UUID, connections []types.PersonData, eventType string) error {
	if connections == nil {
		connections = []types.PersonData{}
	}
	if err := s.store.SetConnections(ctx, id, connections); err != nil {
		return err
	}
	s.publish(ctx, eventType, id, map[string]int{"count": len(connections)})
	return nil
}

// Sweep deletes expired sessions.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	n, err := s.store.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	if n > 0 {
		s.logger.Info("expired sessions removed", zap.Int("count", n))
	}
	return n, nil
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Warn("session sweep failed", zap.Error(err))
			}
		}
	}
}

// publish is best effort: a broker outage must not fail the request.
func (s *Service) publish(ctx context.Context, eventType string, id uuid.UUID, data any) {
	err := s.publisher.Publish(ctx, events.Event{
		Type:      eventType,
		SessionID: id.String(),
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn("failed to publish session event",
			zap.String("type", eventType),
			zap.String("session_id", id.String()),
			zap.Error(err),
		)
	}
}

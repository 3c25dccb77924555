package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/career-network/internal/session"
	"github.com/jonathan/career-network/internal/types"
)

// SessionStore persists sessions in the sessions table.
// It implements session.Store.
type SessionStore struct {
	db *DB
}

// Sessions returns the session store backed by db
func (db *DB) Sessions() *SessionStore {
	return &SessionStore{db: db}
}

// Create inserts a new session
func (s *SessionStore) Create(ctx context.Context, sess *session.Session) error {
	conns, err := json.Marshal(nonNil(sess.Connections))
	if err != nil {
		return fmt.Errorf("failed to marshal connections: %w", err)
	}

	_, err = s.db.pool.Exec(ctx,
		`INSERT INTO sessions (id, name, school, connections, created_at, updated_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sess.ID, sess.Name, sess.School, conns, sess.CreatedAt, sess.UpdatedAt, sess.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// Get returns an unexpired session by ID
func (s *SessionStore) Get(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	var sess session.Session
	var conns []byte
	err := s.db.pool.QueryRow(ctx,
		`SELECT id, name, school, connections, created_at, updated_at, expires_at
		 FROM sessions WHERE id = $1 AND expires_at > NOW()`,
		id,
	).Scan(&sess.ID, &sess.Name, &sess.School, &conns, &sess.CreatedAt, &sess.UpdatedAt, &sess.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if err := json.Unmarshal(conns, &sess.Connections); err != nil {
		return nil, fmt.Errorf("failed to unmarshal connections: %w", err)
	}
	sess.Connections = nonNil(sess.Connections)
	return &sess, nil
}

// SetConnections replaces the stored connections of an unexpired session
func (s *SessionStore) SetConnections(ctx context.Context, id uuid.UUID, connections []types.PersonData) error {
	conns, err := json.Marshal(nonNil(connections))
	if err != nil {
		return fmt.Errorf("failed to marshal connections: %w", err)
	}

	tag, err := s.db.pool.Exec(ctx,
		`UPDATE sessions SET connections = $1, updated_at = NOW()
		 WHERE id = $2 AND expires_at > NOW()`,
		conns, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update connections: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrNotFound
	}
	return nil
}

// DeleteExpired removes sessions that expired at or before now
func (s *SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	tag, err := s.db.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-network/internal/events"
	"github.com/jonathan/career-network/internal/types"
)

func newTestService(t *testing.T) (*Service, *MemoryStore, *events.Recorder) {
	t.Helper()
	tokens, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)
	store := NewMemoryStore()
	rec := &events.Recorder{}
	return NewService(store, tokens, rec, nil), store, rec
}

func TestService_CreateAndGet(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, types.CreateSessionRequest{Name: "Ada", School: "MIT"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.SessionID)
	assert.NotEmpty(t, created.Token)

	sess, err := svc.Get(ctx, created.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", sess.Name)
	assert.Equal(t, "MIT", sess.School)
	assert.Empty(t, sess.Connections)

	require.Len(t, rec.Events(), 1)
	assert.Equal(t, events.SessionCreated, rec.Events()[0].Type)
	assert.Equal(t, created.SessionID.String(), rec.Events()[0].SessionID)
}

func TestService_Create_Validates(t *testing.T) {
	svc, _, rec := newTestService(t)

	_, err := svc.Create(context.Background(), types.CreateSessionRequest{Name: "Ada"})
	assert.Error(t, err)
	assert.Empty(t, rec.Events())
}

func TestService_Authorize(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, types.CreateSessionRequest{Name: "A", School: "S"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, types.CreateSessionRequest{Name: "B", School: "S"})
	require.NoError(t, err)

	assert.NoError(t, svc.Authorize(a.Token, a.SessionID))
	assert.ErrorIs(t, svc.Authorize(a.Token, b.SessionID), ErrForbidden)
	assert.ErrorIs(t, svc.Authorize("garbage", a.SessionID), ErrInvalidToken)
}

func TestService_SetConnections(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, types.CreateSessionRequest{Name: "A", School: "S"})
	require.NoError(t, err)

	conns := []types.PersonData{{Name: "Grace"}, {Name: "Linus"}}
	require.NoError(t, svc.SetConnections(ctx, created.SessionID, conns, events.ConnectionsUpdated))

	sess, err := svc.Get(ctx, created.SessionID)
	require.NoError(t, err)
	assert.Equal(t, conns, sess.Connections)

	got := rec.Events()
	require.Len(t, got, 2)
	assert.Equal(t, events.ConnectionsUpdated, got[1].Type)
	assert.Equal(t, map[string]int{"count": 2}, got[1].Data)

	err = svc.SetConnections(ctx, uuid.New(), conns, events.ConnectionsUpdated)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ExpiryAndSweep(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	live := &Session{ID: uuid.New(), ExpiresAt: now.Add(time.Hour)}
	dead := &Session{ID: uuid.New(), ExpiresAt: now.Add(-time.Minute)}
	require.NoError(t, store.Create(ctx, live))
	require.NoError(t, store.Create(ctx, dead))

	_, err := store.Get(ctx, dead.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, live.ID)
	assert.NoError(t, err)

	n, err := store.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	s := &Session{ID: uuid.New(), ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.Create(ctx, s))
	require.NoError(t, store.SetConnections(ctx, s.ID, []types.PersonData{{Name: "A"}}))

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	got.Connections[0].Name = "changed"

	again, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", again.Connections[0].Name)
}

func TestService_RunSweeperStopsOnCancel(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.RunSweeper(ctx, time.Millisecond)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

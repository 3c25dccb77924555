package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/career-network/internal/config"
	"github.com/jonathan/career-network/internal/server"
)

func TestBuildServerConfig_Minimal(t *testing.T) {
	cfg := config.Defaults()
	cfg.ScratchDir = filepath.Join(t.TempDir(), "temp")
	cfg.AllowedOrigins = []string{"http://localhost:3000"}

	deps, cleanup, err := buildServerConfig(context.Background(), &cfg, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, deps.Backend)
	assert.NotNil(t, deps.Sessions)
	assert.Equal(t, cfg.ScratchDir, deps.Scratch.Dir())
	assert.Nil(t, deps.Directory)
	assert.Nil(t, deps.Assistant)
	assert.Equal(t, int64(config.DefaultMaxUploadMB)<<20, deps.MaxUploadBytes)
	assert.NotEmpty(t, cfg.Session.Secret)

	srv, err := server.New(deps)
	require.NoError(t, err)
	srv.Close()
}

func TestBuildServerConfig_BadDatabase(t *testing.T) {
	cfg := config.Defaults()
	cfg.ScratchDir = t.TempDir()
	cfg.DatabaseURL = "not a url"

	_, cleanup, err := buildServerConfig(context.Background(), &cfg, zap.NewNop())
	require.Error(t, err)
	cleanup()
}

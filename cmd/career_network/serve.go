package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/career-network/internal/backend"
	"github.com/jonathan/career-network/internal/config"
	"github.com/jonathan/career-network/internal/db"
	"github.com/jonathan/career-network/internal/events"
	"github.com/jonathan/career-network/internal/llm"
	"github.com/jonathan/career-network/internal/scratch"
	"github.com/jonathan/career-network/internal/server"
	"github.com/jonathan/career-network/internal/server/ratelimit"
	"github.com/jonathan/career-network/internal/session"
)

const sweepInterval = 10 * time.Minute

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP gateway",
	Long: `Start the HTTP gateway. Upstream services, storage and messaging are
configured from the environment (or --config); everything except the
scratch directory is optional.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, cleanup, err := buildServerConfig(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	srv, err := server.New(deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer srv.Close()

	go deps.Sessions.RunSweeper(ctx, sweepInterval)

	return srv.Start(ctx)
}

// buildServerConfig wires the optional stores, clients and publishers named
// by cfg. The returned cleanup releases them in reverse order.
func buildServerConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger) (server.Config, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (server.Config, func(), error) {
		cleanup()
		return server.Config{}, func() {}, err
	}

	scratchOpts := []scratch.Option{scratch.WithLogger(logger)}
	if cfg.S3.Bucket != "" {
		mirror, err := scratch.NewS3Mirror(ctx, scratch.S3Config{
			Bucket:    cfg.S3.Bucket,
			Prefix:    cfg.S3.Prefix,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		})
		if err != nil {
			return fail(err)
		}
		scratchOpts = append(scratchOpts, scratch.WithMirror(mirror))
		logger.Info("scratch mirror enabled", zap.String("bucket", cfg.S3.Bucket))
	}

	client := backend.New(backend.Options{
		ServiceURL:   cfg.ServiceURL,
		DirectoryURL: cfg.DirectoryURL,
		Timeout:      cfg.Timeout(),
	}, logger)
	if !client.HasService() {
		logger.Warn("no upstream service configured; cold emails and class lookups use the local assistant")
	}

	deps := server.Config{
		Port:           cfg.Port,
		AllowedOrigins: cfg.AllowedOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Backend:        client,
		Scratch:        scratch.New(cfg.ScratchDir, scratchOpts...),
		RateLimit:      ratelimit.LoadConfig(),
		Logger:         logger,
	}

	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiClient(ctx, llm.DefaultConfig().WithModel(llm.TierStandard, cfg.GeminiModel), cfg.GeminiAPIKey)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() { _ = gemini.Close() })
		deps.Assistant = llm.NewAssistant(gemini, logger)
	}

	var store session.Store = session.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, database.Close)
		if err := database.Migrate(ctx); err != nil {
			return fail(err)
		}
		store = database.Sessions()
		deps.Directory = database
		logger.Info("using postgres for sessions and profile search")
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.RabbitMQURL != "" {
		amqpPublisher, err := events.Dial(cfg.RabbitMQURL, cfg.RabbitMQExchange, logger)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() { _ = amqpPublisher.Close() })
		publisher = amqpPublisher
	}

	generated, err := cfg.Session.EnsureSecret()
	if err != nil {
		return fail(err)
	}
	if generated {
		logger.Warn("SESSION_SECRET not set; generated a random secret, tokens will not survive a restart")
	}
	tokens, err := session.NewTokenService(cfg.Session.Secret, cfg.Session.TTL())
	if err != nil {
		return fail(err)
	}
	deps.Sessions = session.NewService(store, tokens, publisher, logger)

	return deps, cleanup, nil
}

package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/geodrop-server/internal/config"
	"github.com/vovakirdan/geodrop-server/internal/core"
	"github.com/vovakirdan/geodrop-server/internal/media"
	"github.com/vovakirdan/geodrop-server/internal/service/posts"
	"github.com/vovakirdan/geodrop-server/internal/store"
	"github.com/vovakirdan/geodrop-server/internal/store/cache"
	"github.com/vovakirdan/geodrop-server/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/geodrop-server/internal/transport/http"
)

const redisConnectTimeout = 3 * time.Second

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	sqliteStore, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	var st store.Store = sqliteStore
	if cfg.RedisURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
		rdb, err := cache.Connect(connectCtx, cfg.RedisURL)
		cancel()
		if err != nil {
			// The cache is optional; posts are served from sqlite alone.
			logger.Warn().Err(err).Msg("redis unavailable, post cache disabled")
		} else {
			st = cache.New(sqliteStore, rdb, cfg.PostCacheTTL, logger)
			logger.Info().Dur("ttl", cfg.PostCacheTTL).Msg("post cache enabled")
		}
	}

	images, err := media.NewDiskStore(cfg.UploadDir, cfg.UploadBaseURL, cfg.MaxUploadBytes)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("init image store: %w", err)
	}

	postSvc := posts.NewService(st, images, logger)
	hub := core.NewHub(logger)
	server := transporthttp.NewServer(hub, postSvc, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the hub and the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go a.hub.Run(hubCtx)

	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		stopHub()
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		err := a.server.Shutdown(shutdownCtx)
		// Websocket connections are hijacked and outlive Shutdown; stopping the hub closes them.
		stopHub()
		a.cleanup()
		if err != nil {
			return err
		}
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}

package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/coderoom-server/internal/config"
	"github.com/vovakirdan/coderoom-server/internal/core"
	"github.com/vovakirdan/coderoom-server/internal/execengine/piston"
	applog "github.com/vovakirdan/coderoom-server/internal/log"
	"github.com/vovakirdan/coderoom-server/internal/service/execution"
	"github.com/vovakirdan/coderoom-server/internal/store"
	"github.com/vovakirdan/coderoom-server/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/coderoom-server/internal/transport/http"
)

// App wires together core, execution and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	var (
		st   store.Store
		runs store.RunStore
	)
	if cfg.AuditDBPath != "" {
		db, err := sqlite.New(cfg.AuditDBPath)
		if err != nil {
			return nil, fmt.Errorf("init audit store: %w", err)
		}
		st, runs = db, db
		logger.Info().Str("db_path", cfg.AuditDBPath).Msg("run audit log enabled")
	}

	engine := piston.New(cfg.EngineURL, &stdhttp.Client{})
	catalog := execution.NewCatalog(engine, cfg.RuntimeCacheTTL, cfg.RuntimeRefreshTimeout, applog.Component(logger, "catalog"))
	svc := execution.New(catalog, engine, cfg.ExecuteTimeout, runs, applog.Component(logger, "execution"))

	hub := core.NewHub(core.NewRegistry(), core.NewDirectory(),
		core.WithLogger(applog.Component(logger, "hub")),
		core.WithRunner(svc),
		core.WithHistoryLimit(cfg.ChatHistoryLimit),
		core.WithIdleEviction(cfg.RoomIdleTTL, cfg.RoomSweepInterval),
	)
	server := transporthttp.NewServer(hub, svc, runs, cfg, applog.Component(logger, "http"))

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go a.hub.Run(hubCtx)

	go func() {
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

		// Hijacked websocket connections are not tracked by Shutdown; the hub
		// closes them by closing every client's event stream.
		stopHub()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes the audit store when one is open.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}

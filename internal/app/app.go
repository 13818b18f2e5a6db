// Package app wires configuration, storage and the HTTP stack into a
// runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/monocle-dev/bugtrack/db"
	"github.com/monocle-dev/bugtrack/internal/auth"
	"github.com/monocle-dev/bugtrack/internal/config"
	"github.com/monocle-dev/bugtrack/internal/handlers"
	"github.com/monocle-dev/bugtrack/internal/middleware"
	"github.com/monocle-dev/bugtrack/internal/numbering"
	"github.com/monocle-dev/bugtrack/internal/router"
	"github.com/monocle-dev/bugtrack/internal/store"
	"github.com/monocle-dev/bugtrack/internal/types"
)

type App struct {
	cfg    *config.Config
	log    *slog.Logger
	db     *gorm.DB
	hub    *handlers.Hub
	engine *gin.Engine
}

// New builds the application on an open database.
func New(cfg *config.Config, log *slog.Logger, database *gorm.DB) *App {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	st := store.New(database, numbering.New(nil), log)
	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	hub := handlers.NewHub(types.AllowedOrigins(cfg.HTTP.AllowedOrigins, cfg.HTTP.ClientURL), log)

	engine := router.NewRouter(router.Dependencies{
		Config:  cfg,
		Handler: handlers.New(st, tokens, hub, cfg, log),
		Tokens:  tokens,
		Users:   st,
		Metrics: middleware.NewMetrics(),
		Log:     log,
	})

	return &App{
		cfg:    cfg,
		log:    log,
		db:     database,
		hub:    hub,
		engine: engine,
	}
}

// Open connects to the configured database and migrates the schema.
func Open(cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	const op = "app.Open"

	database, err := db.Connect(cfg.Database, log)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.MigrateDatabase(database); err != nil {
		_ = db.Close(database)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return database, nil
}

func (a *App) Handler() http.Handler {
	return a.engine
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests
// for up to the configured shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	const op = "app.Run"

	server := &http.Server{
		Addr:         net.JoinHostPort("", a.cfg.Port),
		Handler:      a.engine,
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("server listening", slog.String("addr", server.Addr), slog.String("env", a.cfg.Env))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		a.log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()

		a.hub.Close()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: shutdown: %w", op, err)
		}
		return nil
	})

	err := g.Wait()

	if closeErr := db.Close(a.db); closeErr != nil {
		a.log.Warn("failed to close database", slog.Any("error", closeErr))
	}

	return err
}

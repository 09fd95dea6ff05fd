package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/artpar/notekeeper/internal/shell/api"
	"github.com/artpar/notekeeper/internal/shell/api/middleware"
	"github.com/artpar/notekeeper/internal/shell/store"
	"github.com/artpar/notekeeper/internal/shell/workers"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess         = 0
	ExitConfigError     = 1
	ExitDatabaseError   = 2
	ExitHTTPServerError = 4
	ExitImportError     = 6
)

// =============================================================================
// Server
// =============================================================================

// Server represents the notekeeper application server.
type Server struct {
	config     *Config
	httpServer *http.Server
	store      store.Store
	sweeper    *workers.OrphanSweeper
	logger     *slog.Logger
}

// NewServer creates a new server with the given config.
func NewServer(cfg *Config, logger *slog.Logger) (*Server, error) {
	s, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	handler := api.SetupAPI(api.APIConfig{
		Store:  s,
		Logger: logger,
		Auth: middleware.AuthConfig{
			Mode:         cfg.Auth.Mode,
			SharedSecret: cfg.Auth.SharedSecret,
			DevUserID:    cfg.Auth.DevUser,
			Logger:       logger,
		},
		RequireAuth: cfg.Auth.RequireAuth,
		CORSOrigins: cfg.CORS.AllowedOrigins,
		Version:     Version,
	})

	if cfg.Auth.Mode == middleware.ModeDev {
		logger.Warn("dev auth mode enabled, every request acts as the dev user",
			"dev_user", cfg.Auth.DevUser,
		)
	}

	var sweeper *workers.OrphanSweeper
	if cfg.Sweeper.Enabled {
		sweeper = workers.NewOrphanSweeper(s, workers.OrphanSweeperConfig{
			Interval:     cfg.Sweeper.Interval,
			InitialDelay: workers.DefaultOrphanSweeperConfig().InitialDelay,
			BatchSize:    cfg.Sweeper.BatchSize,
		}, logger)
	} else {
		logger.Info("orphan sweeper disabled")
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Server{
		config:     cfg,
		httpServer: httpServer,
		store:      s,
		sweeper:    sweeper,
		logger:     logger,
	}, nil
}

// openStore connects to the configured database, creating the sqlite
// directory when needed.
func openStore(cfg *Config) (*store.SQLStore, error) {
	if cfg.Database.Driver == store.DriverSQLite && !strings.HasPrefix(cfg.Database.DSN, ":memory:") {
		if dir := filepath.Dir(cfg.Database.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, &ServerError{Op: "openStore", Err: err, ExitCode: ExitDatabaseError}
			}
		}
	}

	s, err := store.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, &ServerError{Op: "openStore", Err: err, ExitCode: ExitDatabaseError}
	}
	return s, nil
}

// Start starts the server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// Start orphan sweeper in background
	if s.sweeper != nil {
		s.sweeper.Start()
	}

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server",
			"address", s.config.Server.Address())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigCh:
		s.logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if s.sweeper != nil {
			s.sweeper.Stop()
		}
		s.store.Close()
		return &ServerError{
			Op:       "Start",
			Err:      err,
			ExitCode: ExitHTTPServerError,
		}
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	if s.sweeper != nil {
		s.sweeper.Stop()
	}

	if err := s.store.Close(); err != nil {
		s.logger.Error("database close error", "error", err)
	}

	s.logger.Info("shutdown complete")
	return nil
}

// =============================================================================
// Errors
// =============================================================================

// ServerError carries the exit code for a startup or runtime failure.
type ServerError struct {
	Op       string
	Err      error
	ExitCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

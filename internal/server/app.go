// Package server wires the accounts API together: storage, the account
// service and the HTTP router, plus graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/ocrdesk/internal/common"
	"github.com/dmitrijs2005/ocrdesk/internal/logging"
	"github.com/dmitrijs2005/ocrdesk/internal/server/auth"
	"github.com/dmitrijs2005/ocrdesk/internal/server/config"
	"github.com/dmitrijs2005/ocrdesk/internal/server/httpapi"
	"github.com/dmitrijs2005/ocrdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/ocrdesk/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	repos  repomanager.RepositoryManager
	server *http.Server
}

// NewApp opens storage and runs migrations. An empty DatabaseDSN selects
// in-memory repositories.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	var repos repomanager.RepositoryManager
	if cfg.DatabaseDSN == "" {
		logger.Warn(ctx, "no database configured, accounts are kept in memory")
		repos = repomanager.NewMemoryRepositoryManager()
	} else {
		pg, err := repomanager.OpenPostgres(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		repos = pg
	}

	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	secret := cfg.SecretKey
	if secret == "" {
		var err error
		if secret, err = common.MakeRandHexString(32); err != nil {
			_ = repos.Close()
			return nil, fmt.Errorf("generate secret: %w", err)
		}
		logger.Warn(ctx, "no secret key configured, issued tokens will not survive a restart")
	}

	tokens := auth.NewJWTManager([]byte(secret), cfg.AccessTokenValidityDuration)
	accounts := services.NewAccountService(repos, tokens, logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httpapi.NewServer(accounts, logger, cfg.AllowedOrigin),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{config: cfg, logger: logger, repos: repos, server: srv}, nil
}

// initSignalHandler cancels on SIGINT, SIGTERM or SIGQUIT until the returned
// stop func is called.
func (app *App) initSignalHandler(cancelFunc context.CancelFunc) (stop func()) {
	sigs := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		select {
		case <-sigs:
			cancelFunc()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// drains in-flight requests and closes storage.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	stopSignals := app.initSignalHandler(cancelFunc)
	defer stopSignals()

	ln, err := net.Listen("tcp", app.server.Addr)
	if err != nil {
		_ = app.repos.Close()
		return fmt.Errorf("listen: %w", err)
	}

	app.logger.Info(ctx, "accounts API listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := app.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	app.logger.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := app.server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(ctx, "shutdown failed", "error", err)
	}

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "close storage failed", "error", err)
	}

	return serveErr
}

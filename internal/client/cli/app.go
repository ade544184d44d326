package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/ocrdesk/internal/client/client"
	"github.com/dmitrijs2005/ocrdesk/internal/client/config"
	"github.com/dmitrijs2005/ocrdesk/internal/client/credstore"
	"github.com/dmitrijs2005/ocrdesk/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/ocrdesk/internal/client/services"
	"github.com/dmitrijs2005/ocrdesk/internal/filex"
	"github.com/dmitrijs2005/ocrdesk/internal/logging"
	"github.com/dmitrijs2005/ocrdesk/internal/session"
)

const (
	dbFileName  = "client.db"
	pingTimeout = 3 * time.Second
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	provider    *session.Provider
	authService services.AuthService
	db          *sql.DB
	reader      *bufio.Reader

	mu   sync.Mutex
	mode Mode
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	dir, err := filex.EnsureDir(c.DataDir)
	if err != nil {
		return nil, fmt.Errorf("error preparing data dir: %w", err)
	}

	db, err := client.InitDatabase(ctx, filepath.Join(dir, dbFileName))
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	store := credstore.NewMetadataStore(metadata.NewSQLiteRepository(db))

	// Assigned below; the hook only fires on calls made after NewApp returns.
	var provider *session.Provider

	apiClient, err := client.NewHTTPClient(c.ServerURL,
		client.WithLogger(logger),
		client.WithUnauthorizedHook(func(ctx context.Context) {
			if err := provider.Session().Logout(context.WithoutCancel(ctx)); err != nil {
				logger.Warn(ctx, "sign-out after rejected credential failed", "error", err)
			}
		}),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	var opts []session.Option
	if c.ReconcileTimeout > 0 {
		opts = append(opts, session.WithReconcileTimeout(c.ReconcileTimeout))
	}
	provider = session.NewProvider(store, apiClient, logger, opts...)

	return &App{
		config:      c,
		logger:      logger,
		provider:    provider,
		authService: services.NewAuthService(apiClient, store, logger),
		db:          db,
		reader:      bufio.NewReader(os.Stdin),
	}, nil
}

// Run mounts the session, waits until the saved credential has been
// checked and then serves the REPL until the user quits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	defer a.Close(ctx)

	ctx, cancel := context.WithCancel(a.provider.Mount(ctx))
	defer cancel()

	printlnFn("Checking saved session...")
	snap, err := session.Use(ctx).Wait(ctx)
	if err != nil {
		return err
	}
	if snap.IsAuthenticated {
		printlnFn("Welcome back,", snap.User.DisplayName())
	}

	go a.StartSessionWatcher(ctx)
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	printlnFn("Type 'help' for commands")
	runREPL(ctx, a, func() string { return a.getStatus(ctx) }, a.reader)
	return nil
}

func (a *App) Close(ctx context.Context) {
	a.provider.Close()
	if err := a.authService.Close(ctx); err != nil {
		a.logger.Warn(ctx, "failed to close api client", "error", err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn(ctx, "failed to close database", "error", err)
		}
	}
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	return session.Use(ctx).Snapshot().IsAuthenticated
}

func (a *App) currentMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// setMode reports whether the mode changed.
func (a *App) setMode(mode Mode) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode == mode {
		return false
	}
	a.mode = mode
	return true
}

func (a *App) getStatus(ctx context.Context) string {
	s := ""
	if snap := session.Use(ctx).Snapshot(); snap.IsAuthenticated {
		s = snap.User.DisplayName() + " "
	}
	if m := a.currentMode(); m != "" {
		s += string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// checkOnline pings the server once and announces a mode change.
func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.authService.Ping(pctx)
	cancel()

	mode := ModeOnline
	if err != nil {
		mode = ModeOffline
	}
	if a.setMode(mode) {
		a.logger.Debug(ctx, "connectivity changed", "mode", mode, "error", err)
		printlnFn(fmt.Sprintf("Switched to %s mode", mode))
	}
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// StartSessionWatcher prints every sign-in and sign-out of the session
// mounted in ctx until ctx is done or the session is closed.
func (a *App) StartSessionWatcher(ctx context.Context) {
	sub := session.Use(ctx).Subscribe()
	current, ok := <-sub.Updates()
	if !ok {
		return
	}
	a.watchSession(ctx, sub, current)
}

// watchSession compares every update on sub with the previous one, starting
// from prev.
func (a *App) watchSession(ctx context.Context, sub *session.Subscription, prev session.Snapshot) {
	defer sub.Unsubscribe()

	for {
		select {
		case snap, ok := <-sub.Updates():
			if !ok {
				return
			}
			if msg := describeTransition(prev, snap); msg != "" {
				printlnFn(msg)
			}
			prev = snap
		case <-ctx.Done():
			return
		}
	}
}

func describeTransition(prev, next session.Snapshot) string {
	switch {
	case next.Loading:
		return ""
	case next.IsAuthenticated && (!prev.IsAuthenticated || prev.User.ID != next.User.ID):
		return "Signed in as " + next.User.DisplayName()
	case !next.IsAuthenticated && prev.IsAuthenticated:
		return "Signed out"
	default:
		return ""
	}
}

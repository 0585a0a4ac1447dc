// Package app wires configuration, storage, the contact service and the HTTP
// server into a runnable application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mtlprog/contacts/internal/config"
	"github.com/mtlprog/contacts/internal/database"
	"github.com/mtlprog/contacts/internal/handler"
	"github.com/mtlprog/contacts/internal/logger"
	"github.com/mtlprog/contacts/internal/middleware"
	"github.com/mtlprog/contacts/internal/repository"
	"github.com/mtlprog/contacts/internal/service"
)

// State is the lifecycle stage of an App.
type State int32

const (
	StateStarting State = iota
	StateListening
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateListening:
		return "listening"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// store is an opened contact repository together with its connection.
type store struct {
	contacts repository.ContactRepository
	pinger   handler.Pinger
	close    func(context.Context) error
}

// Option customizes New.
type Option func(*App)

// WithLogger sets the base logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(a *App) { a.base = log }
}

// WithContactRepository uses repo instead of opening the configured database.
func WithContactRepository(repo repository.ContactRepository, pinger handler.Pinger) Option {
	return func(a *App) {
		a.store = &store{
			contacts: repo,
			pinger:   pinger,
			close:    func(context.Context) error { return nil },
		}
	}
}

// App is a fully wired contact-management server.
type App struct {
	cfg   config.Config
	base  *slog.Logger
	log   *slog.Logger
	store *store
	mongo *database.Mongo

	server   *http.Server
	listener net.Listener
	state    atomic.Int32

	bgCancel context.CancelFunc
	bg       sync.WaitGroup
}

// New builds the application graph from cfg. It fails on invalid
// configuration or when the store cannot be opened; an unreachable MongoDB
// server is logged and does not fail startup.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &App{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.base == nil {
		a.base = slog.Default()
	}
	a.log = logger.Component(a.base, "bootstrap")

	bgCtx, cancel := context.WithCancel(context.Background())
	a.bgCancel = cancel

	if a.store == nil {
		s, err := a.openStore(ctx, bgCtx)
		if err != nil {
			cancel()
			return nil, err
		}
		a.store = s
	}

	contactService := service.NewContactService(a.store.contacts)
	h := handler.New(contactService, a.store.pinger)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	httpLog := logger.Component(a.base, "http")
	var root http.Handler = mux
	root = middleware.Logging(httpLog)(root)
	root = middleware.CORS(root)
	root = middleware.Recover(httpLog)(root)

	a.server = &http.Server{
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return a, nil
}

// openStore opens the configured database. Background work started here is
// bound to bgCtx.
func (a *App) openStore(ctx, bgCtx context.Context) (*store, error) {
	switch a.cfg.Store {
	case config.StorePostgres:
		db, err := database.NewPostgres(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.RunMigrations(ctx, db); err != nil {
			db.Close(ctx)
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return &store{
			contacts: repository.NewPostgresContactRepository(db.Pool()),
			pinger:   db,
			close:    db.Close,
		}, nil

	default:
		if !a.cfg.MongoURISet {
			a.log.Warn("MONGODB_URI environment variable is not set, using default", "uri", config.DefaultMongoURI)
		}

		connected := database.NewConnectSignal()
		m, err := database.NewMongo(ctx, database.MongoOptions{
			URI:            a.cfg.MongoURI,
			Database:       a.cfg.DatabaseName(),
			ConnectTimeout: a.cfg.ConnectTimeout,
			Observer: database.MultiObserver{
				database.NewLifecycleLogger(logger.Component(a.base, "mongodb")),
				connected,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create mongodb client: %w", err)
		}
		a.mongo = m

		repo := repository.NewMongoContactRepository(m.Database())

		a.bg.Add(1)
		go func() {
			defer a.bg.Done()
			a.prepareMongo(bgCtx, m, repo, connected.C)
		}()

		return &store{
			contacts: repo,
			pinger:   m,
			close:    m.Close,
		}, nil
	}
}

// prepareMongo verifies the connection once, then creates indexes as soon as
// the server is reachable. Failures are logged and are not fatal.
func (a *App) prepareMongo(ctx context.Context, m *database.Mongo, repo *repository.MongoContactRepository, connected <-chan struct{}) {
	verifyCtx, cancel := context.WithTimeout(ctx, a.cfg.ConnectTimeout)
	_ = m.Verify(verifyCtx)
	cancel()

	ensureOnConnect(ctx, a.log, connected, indexRetryInterval, repo.EnsureIndexes)
}

// indexRetryInterval is the delay before retrying a failed index build.
const indexRetryInterval = 5 * time.Second

// ensureOnConnect waits for a connection notification and runs ensure until
// it succeeds or ctx is done. A failed attempt is retried after retry or on
// the next reconnect, whichever comes first.
func ensureOnConnect(ctx context.Context, log *slog.Logger, connected <-chan struct{}, retry time.Duration, ensure func(context.Context) error) {
	select {
	case <-ctx.Done():
		return
	case <-connected:
	}

	for {
		err := ensure(ctx)
		if err == nil {
			log.Info("contact indexes ensured")
			return
		}
		if ctx.Err() != nil {
			return
		}
		log.Error("failed to ensure contact indexes", "error", err)

		timer := time.NewTimer(retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-connected:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// State returns the current lifecycle stage.
func (a *App) State() State {
	return State(a.state.Load())
}

// MongoURI returns the connection string the document store was initialized
// with, or "" when another store is in use.
func (a *App) MongoURI() string {
	if a.mongo == nil {
		return ""
	}
	return a.mongo.URI()
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Addr returns the bound listener address, or nil before Listen.
func (a *App) Addr() net.Addr {
	if a.listener == nil {
		return nil
	}
	return a.listener.Addr()
}

// Listen binds the HTTP listener on all interfaces. There is no retry;
// a bind failure is returned to the caller.
func (a *App) Listen() error {
	if a.State() != StateStarting {
		return fmt.Errorf("cannot listen in state %s", a.State())
	}

	ln, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.cfg.Addr(), err)
	}
	a.listener = ln
	a.state.Store(int32(StateListening))

	port := ln.Addr().(*net.TCPAddr).Port
	a.log.Info("application is running", "url", fmt.Sprintf("http://localhost:%d", port))

	return nil
}

// Run listens if needed and serves until ctx is cancelled, then shuts down
// within the configured timeout and closes the store.
func (a *App) Run(ctx context.Context) error {
	if a.State() == StateStarting {
		if err := a.Listen(); err != nil {
			return err
		}
	}
	if a.State() != StateListening {
		return fmt.Errorf("cannot run in state %s", a.State())
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := a.server.Serve(a.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var runErr error
	select {
	case err := <-serverErr:
		runErr = fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		a.log.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("server shutdown failed: %w", err)
	}
	if err := a.Close(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}

	a.log.Info("server stopped")
	return runErr
}

// Close stops background work and releases the store. It is safe to call
// after Run has returned.
func (a *App) Close(ctx context.Context) error {
	if State(a.state.Swap(int32(StateStopped))) == StateStopped {
		return nil
	}

	a.bgCancel()
	a.bg.Wait()

	if a.listener != nil {
		a.listener.Close()
	}
	if err := a.store.close(ctx); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

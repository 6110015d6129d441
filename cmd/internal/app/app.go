// Package app wires the server runtime: config, logging, stores, HTTP routes
// and the live feed.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"minisocial/cmd/identity"
	authapi "minisocial/cmd/internal/auth/api"
	"minisocial/cmd/internal/auth/guard"
	"minisocial/cmd/internal/feed"
	"minisocial/cmd/internal/social"
	socialapi "minisocial/cmd/internal/social/api"
	"minisocial/cmd/internal/store/migrations"
	"minisocial/cmd/security/password"
	"minisocial/cmd/security/token"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is a small app-level lifecycle abstraction.
// It exists to allow DB-backed resources to be closed gracefully.
type Store interface {
	Close(ctx context.Context) error
}

// nopStore is used for in-memory store mode.
type nopStore struct{}

func (nopStore) Close(_ context.Context) error { return nil }

type dbStore struct{ pool *pgxpool.Pool }

func (s dbStore) Close(_ context.Context) error {
	s.pool.Close()
	return nil
}

// App owns the HTTP handler chain and every long-lived dependency.
type App struct {
	cfg Config
	log Logger

	store     Store
	dbEnabled bool

	hub     *feed.Hub
	auth    *authapi.Handler
	handler http.Handler
}

// New constructs a fully wired App from config and logger.
func New(ctx context.Context, cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	tokCfg, err := LoadSecurityConfig()
	if err != nil {
		return nil, err
	}
	tokens, err := token.New(tokCfg)
	if err != nil {
		return nil, err
	}
	hasher, err := password.FromEnv()
	if err != nil {
		return nil, err
	}

	st, pool, users, posts, err := newStores(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a, err := assemble(cfg, log, tokens, hasher, users, posts, pool)
	if err != nil {
		_ = st.Close(ctx)
		return nil, err
	}
	a.store = st
	return a, nil
}

// assemble builds services, handlers and the middleware chain. Stores and
// crypto are injected so tests can run without a database. pool may be nil.
func assemble(cfg Config, log Logger, tokens token.Manager, hasher password.Config, users identity.Store, posts social.Store, pool *pgxpool.Pool) (*App, error) {
	var metrics *Metrics
	if cfg.MetricsEnabled {
		metrics = NewMetrics()
	}

	var (
		hubOpts   []feed.HubOption
		guardOpts []guard.Option
		authOpts  []authapi.HandlerOption
	)
	if metrics != nil {
		hubOpts = append(hubOpts,
			feed.WithSubscriberHook(func(n int) { metrics.feedSubscribers.Set(float64(n)) }),
			feed.WithDropHook(metrics.feedDropped.Inc),
		)
		guardOpts = append(guardOpts, guard.WithRejectHook(func(r guard.Reason) {
			metrics.authRejections.WithLabelValues(string(r)).Inc()
		}))
		authOpts = append(authOpts, authapi.WithEventHook(func(action string) {
			metrics.authEvents.WithLabelValues(action).Inc()
		}))
	}

	hub := feed.NewHub(log, hubOpts...)
	svc := social.NewService(posts, social.WithPublisher(hub), social.WithLogger(log))
	mw := guard.NewMiddleware(tokens, guard.UserResolver(users), log, guardOpts...)

	authCfg := authapi.LoadConfigFromEnv()
	authH, err := authapi.NewHandler(log, authCfg, users, hasher, tokens, authOpts...)
	if err != nil {
		return nil, err
	}
	socialH, err := socialapi.NewHandler(log, svc, users, authCfg.MaxBodyBytes)
	if err != nil {
		return nil, err
	}

	feedCfg := feed.LoadConfigFromEnv()
	feedCfg.OriginPatterns = feedOriginPatterns(cfg.CORSAllowedOrigins)

	mux := http.NewServeMux()
	registerHTTP(mux, routes{
		log:       log,
		cfg:       cfg,
		dbPool:    pool,
		dbEnabled: pool != nil,
		metrics:   metrics,
		mw:        mw,
		auth:      authH,
		social:    socialH,
		feed:      feed.NewGateway(log, hub, feedCfg),
	})

	var h http.Handler = WithCORS(mux, cfg, log)
	h = WithSecurityHeaders(h)
	h = WithMetrics(h, metrics)
	h = WithRequestLogging(h, log)
	h = WithRequestID(h)

	return &App{
		cfg:       cfg,
		log:       log,
		store:     nopStore{},
		dbEnabled: pool != nil,
		hub:       hub,
		auth:      authH,
		handler:   h,
	}, nil
}

// Handler is the full middleware chain around the route mux.
func (a *App) Handler() http.Handler { return a.handler }

// Run starts the HTTP server and blocks until context cancellation or fatal server error.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	bgCtx, stopBg := context.WithCancel(ctx)
	defer stopBg()
	go a.auth.RunJanitor(bgCtx)

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.dbEnabled)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Feed sockets are hijacked and invisible to Shutdown.
	a.hub.Close()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	if err := a.store.Close(shutdownCtx); err != nil {
		a.log.Error("store.close.fail", "err", err)
	}

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// newStores decides between Postgres-backed persistence and in-memory dev stores.
func newStores(ctx context.Context, cfg Config, log Logger) (Store, *pgxpool.Pool, identity.Store, social.Store, error) {
	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_store")
		users := identity.NewMemoryStore()
		return nopStore{}, nil, users, social.NewMemoryStore(users), nil
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("db: %w", err)
	}

	if cfg.DBMigrate {
		if err := migrations.Up(ctx, pool, log); err != nil {
			pool.Close()
			return nil, nil, nil, nil, fmt.Errorf("db migrate: %w", err)
		}
	}

	users, err := identity.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return nil, nil, nil, nil, err
	}
	posts, err := social.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return nil, nil, nil, nil, err
	}

	log.Info("db.enabled.postgres_store")
	return dbStore{pool: pool}, pool, users, posts, nil
}

// feedOriginPatterns turns CORS origins into the host patterns the websocket
// handshake matches against.
func feedOriginPatterns(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			return []string{"*"}
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			out = append(out, u.Host)
			continue
		}
		// Globbed ports such as "http://127.0.0.1:*" do not parse as URLs.
		if _, host, ok := strings.Cut(o, "://"); ok {
			out = append(out, host)
			continue
		}
		out = append(out, o)
	}
	return out
}

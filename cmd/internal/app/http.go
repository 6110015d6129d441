package app

import (
	"net/http"
	"time"

	"minisocial/cmd/internal/auth/guard"
	"minisocial/cmd/internal/httpx"

	"github.com/jackc/pgx/v5/pgxpool"
)

type routes struct {
	log       Logger
	cfg       Config
	dbPool    *pgxpool.Pool
	dbEnabled bool

	metrics *Metrics
	mw      *guard.Middleware

	auth   interface{ Register(*http.ServeMux) }
	social interface {
		Register(*http.ServeMux, *guard.Middleware)
	}
	feed http.Handler
}

func registerHTTP(mux *http.ServeMux, rt routes) {
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteMessage(w, http.StatusOK, "Mini Social Post API is running")
	})

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if rt.cfg.ReadinessRequireDB && !rt.dbEnabled {
			http.Error(w, "db not configured", http.StatusServiceUnavailable)
			return
		}

		if rt.dbEnabled && rt.dbPool != nil {
			if err := PingDB(r.Context(), rt.dbPool, 2*time.Second); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				rt.log.Info("readyz.db.not_ready", "err", err)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	})

	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	rt.auth.Register(mux)
	rt.social.Register(mux, rt.mw)
	mux.Handle("GET /api/feed", rt.mw.Require(rt.feed))
}

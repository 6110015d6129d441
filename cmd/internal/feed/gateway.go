package feed

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"minisocial/cmd/internal/auth/guard"
	"minisocial/cmd/internal/httpx"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const maxPingFailures = 3

// Gateway upgrades authenticated requests to a feed websocket. It expects
// guard.Middleware to have run first.
type Gateway struct {
	log *slog.Logger
	hub *Hub
	cfg Config
}

func NewGateway(log *slog.Logger, hub *Hub, cfg Config) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	if cfg.SendQueue <= 0 {
		cfg.SendQueue = DefaultSendQueue
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = 10 * time.Second
	}
	return &Gateway{log: log, hub: hub, cfg: cfg}
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, ok := guard.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "Access token required")
		return
	}

	// Server read/write timeouts would cut long-lived sockets.
	rc := http.NewResponseController(w)
	_ = rc.SetReadDeadline(time.Time{})
	_ = rc.SetWriteDeadline(time.Time{})

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:     g.cfg.OriginPatterns,
		InsecureSkipVerify: slices.Contains(g.cfg.OriginPatterns, "*"),
	})
	if err != nil {
		g.log.Info("feed.accept.fail", "err", err, "origin", r.Header.Get("Origin"))
		return
	}
	defer func() { _ = conn.CloseNow() }()

	sub := g.hub.Subscribe(id.UserID, g.cfg.SendQueue)
	if sub == nil {
		_ = conn.Close(websocket.StatusGoingAway, "shutting down")
		return
	}
	defer g.hub.Unsubscribe(sub.ID())

	// Clients only listen. CloseRead handles control frames and cancels ctx
	// when the peer goes away.
	ctx := conn.CloseRead(r.Context())

	g.log.Info("feed.open", "subscriber_id", sub.ID(), "user_id", id.UserID)

	heartbeatDone := make(chan struct{})
	go func() {
		defer close(heartbeatDone)
		g.heartbeat(ctx, conn, sub)
	}()

	code, reason := g.writeLoop(ctx, conn, sub)
	sub.Close()
	_ = conn.Close(code, reason)
	<-heartbeatDone

	g.log.Info("feed.close", "subscriber_id", sub.ID(), "reason", reason)
}

func (g *Gateway) writeLoop(ctx context.Context, conn *websocket.Conn, sub *Subscription) (websocket.StatusCode, string) {
	for {
		select {
		case <-ctx.Done():
			return websocket.StatusNormalClosure, "peer closed"
		case <-sub.Done():
			return websocket.StatusGoingAway, "shutting down"
		case ev := <-sub.Events():
			wctx, cancel := context.WithTimeout(ctx, g.cfg.WriteTimeout)
			err := wsjson.Write(wctx, conn, ev)
			cancel()
			if err != nil {
				g.log.Info("feed.write.fail", "subscriber_id", sub.ID(), "close_status", websocket.CloseStatus(err), "err", err)
				return websocket.StatusInternalError, "write failed"
			}
		}
	}
}

func (g *Gateway) heartbeat(ctx context.Context, conn *websocket.Conn, sub *Subscription) {
	t := time.NewTicker(g.cfg.PingInterval)
	defer t.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done():
			return
		case <-t.C:
			pctx, cancel := context.WithTimeout(ctx, g.cfg.PingTimeout)
			err := conn.Ping(pctx)
			cancel()
			if err == nil {
				failures = 0
				continue
			}
			failures++
			g.log.Info("feed.ping.fail", "subscriber_id", sub.ID(), "failures", failures, "err", err)
			if failures >= maxPingFailures {
				sub.Close()
				return
			}
		}
	}
}

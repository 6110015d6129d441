package authapi

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"minisocial/cmd/internal/httpx"

	"golang.org/x/time/rate"
)

type limiterEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

// ipLimiter is a token bucket per client IP. Idle buckets are dropped by sweep.
type ipLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	mu      sync.Mutex
	clients map[string]*limiterEntry
}

func newIPLimiter(perMinute, burst int, idleTTL time.Duration) *ipLimiter {
	return &ipLimiter{
		limit:   rate.Limit(float64(perMinute) / 60),
		burst:   burst,
		idleTTL: idleTTL,
		clients: make(map[string]*limiterEntry),
	}
}

// allow consumes one token for ip. When refused it returns the wait until
// the next token.
func (l *ipLimiter) allow(ip string, now time.Time) (bool, time.Duration) {
	l.mu.Lock()
	e, ok := l.clients[ip]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = e
	}
	e.seen = now
	l.mu.Unlock()

	if e.lim.AllowN(now, 1) {
		return true, 0
	}
	if l.limit <= 0 {
		return false, time.Minute
	}
	return false, time.Duration(float64(time.Second) / float64(l.limit))
}

// sweep evicts entries idle for longer than idleTTL and returns how many.
func (l *ipLimiter) sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for ip, e := range l.clients {
		if now.Sub(e.seen) > l.idleTTL {
			delete(l.clients, ip)
			n++
		}
	}
	return n
}

func (l *ipLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// RunJanitor evicts idle limiter entries until ctx is done.
func (h *Handler) RunJanitor(ctx context.Context) {
	if h.limiter == nil {
		return
	}
	every := h.cfg.LimiterIdleTTL / 2
	if every < time.Second {
		every = time.Second
	}
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := h.limiter.sweep(now); n > 0 {
				h.log.Debug("auth.limiter.sweep", "evicted", n)
			}
		}
	}
}

func (h *Handler) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	if h.limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r, h.cfg.TrustProxy)
		ok, retryAfter := h.limiter.allow(ip, h.now())
		if !ok {
			h.audit(r, "auth.rate_limited", "retry_after_s", int64(math.Ceil(retryAfter.Seconds())))
			writeRateLimited(w, retryAfter)
			return
		}
		next(w, r)
	}
}

func writeRateLimited(w http.ResponseWriter, retryAfter time.Duration) {
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.FormatInt(int64(math.Ceil(retryAfter.Seconds())), 10))
	}
	httpx.WriteError(w, http.StatusTooManyRequests, "Too many requests")
}

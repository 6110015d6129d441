package authapi

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
)

// audit records an auth event in the log and forwards the event name to the
// optional hook (metrics).
func (h *Handler) audit(r *http.Request, action string, args ...any) {
	h.onEvent(action)

	attrs := append([]any{
		"ip", clientIP(r, h.cfg.TrustProxy),
		"user_agent", strings.TrimSpace(r.UserAgent()),
	}, args...)

	level := slog.LevelInfo
	if strings.HasSuffix(action, ".failed") || action == "auth.rate_limited" {
		level = slog.LevelWarn
	}
	h.log.Log(r.Context(), level, action, attrs...)
}

// clientIP returns the caller address. X-Forwarded-For is honored only
// behind a trusted proxy.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
				return ip.String()
			}
		}
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
			return ip.String()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String()
	}
	return host
}

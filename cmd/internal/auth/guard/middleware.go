package guard

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"minisocial/cmd/internal/apperr"
	"minisocial/cmd/internal/httpx"
	"minisocial/cmd/security/token"
)

// Reason says why a request was refused.
type Reason string

const (
	ReasonMissingHeader   Reason = "missing_header"
	ReasonMalformedHeader Reason = "malformed_header"
	ReasonMalformedToken  Reason = "malformed_token"
	ReasonBadSignature    Reason = "bad_signature"
	ReasonExpired         Reason = "expired"
	ReasonInvalidToken    Reason = "invalid_token"
	ReasonUnknownUser     Reason = "unknown_user"
)

// Message is the client-facing text for r.
func (r Reason) Message() string {
	switch r {
	case ReasonMissingHeader:
		return "Access token required"
	case ReasonMalformedHeader:
		return "Invalid authorization header"
	case ReasonMalformedToken:
		return "Malformed token"
	case ReasonBadSignature:
		return "Invalid token signature"
	case ReasonExpired:
		return "Token expired"
	case ReasonUnknownUser:
		return "User not found"
	default:
		return "Invalid token"
	}
}

// Verifier is the subset of token.Manager the middleware needs.
type Verifier interface {
	Verify(token string, now time.Time) (token.Claims, error)
}

// Middleware authenticates requests before they reach protected handlers.
type Middleware struct {
	verifier Verifier
	resolver Resolver
	log      *slog.Logger

	now      func() time.Time
	onReject func(Reason)
}

// Option configures optional Middleware behavior.
type Option func(*Middleware)

// WithRejectHook is called once per refused request (metrics).
func WithRejectHook(fn func(Reason)) Option {
	return func(m *Middleware) {
		if fn != nil {
			m.onReject = fn
		}
	}
}

// WithClock overrides time.Now for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Middleware) {
		if now != nil {
			m.now = now
		}
	}
}

func NewMiddleware(v Verifier, r Resolver, log *slog.Logger, opts ...Option) *Middleware {
	if log == nil {
		log = slog.Default()
	}
	m := &Middleware{
		verifier: v,
		resolver: r,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		onReject: func(Reason) {},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Require wraps next so it only runs with an Identity on the context.
func (m *Middleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, reason := bearerToken(r)
		if reason != "" {
			m.reject(w, r, reason)
			return
		}

		claims, err := m.verifier.Verify(raw, m.now())
		if err != nil {
			m.reject(w, r, reasonFor(err))
			return
		}

		id, err := m.resolver.ResolveIdentity(r.Context(), claims.UserID)
		if err != nil {
			if apperr.IsNotFound(err) {
				m.reject(w, r, ReasonUnknownUser)
				return
			}
			httpx.WriteAppError(w, m.log, apperr.Storage("auth.middleware.resolve", err))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// RequireFunc is Require for a HandlerFunc.
func (m *Middleware) RequireFunc(next http.HandlerFunc) http.Handler {
	return m.Require(next)
}

func (m *Middleware) reject(w http.ResponseWriter, r *http.Request, reason Reason) {
	m.onReject(reason)
	m.log.Debug("auth.reject", "reason", string(reason), "path", r.URL.Path)
	httpx.WriteError(w, http.StatusUnauthorized, reason.Message())
}

func reasonFor(err error) Reason {
	switch {
	case errors.Is(err, token.ErrExpired):
		return ReasonExpired
	case errors.Is(err, token.ErrBadSignature):
		return ReasonBadSignature
	case errors.Is(err, token.ErrMalformed):
		return ReasonMalformedToken
	default:
		return ReasonInvalidToken
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, Reason) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return "", ReasonMissingHeader
	}
	scheme, tok, ok := strings.Cut(raw, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ReasonMalformedHeader
	}
	tok = strings.TrimSpace(tok)
	if tok == "" || strings.ContainsAny(tok, " \t") {
		return "", ReasonMalformedHeader
	}
	return tok, ""
}

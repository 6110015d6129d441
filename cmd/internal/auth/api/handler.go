package authapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"minisocial/cmd/identity"
	"minisocial/cmd/internal/apperr"
	"minisocial/cmd/internal/httpx"
	"minisocial/cmd/security/password"
	"minisocial/cmd/security/token"
)

// Handler serves signup and login.
type Handler struct {
	log *slog.Logger
	cfg Config

	users  identity.Store
	hasher password.Config
	tokens token.Manager

	limiter *ipLimiter
	now     func() time.Time
	onEvent func(action string)

	dummyHash string
}

// HandlerOption configures optional auth handler dependencies.
type HandlerOption func(*Handler)

// WithEventHook is called with the action name of every audited event.
func WithEventHook(fn func(action string)) HandlerOption {
	return func(h *Handler) {
		if h == nil || fn == nil {
			return
		}
		h.onEvent = fn
	}
}

// WithClock overrides time.Now for token issuance and rate limiting.
func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handler) {
		if h == nil || now == nil {
			return
		}
		h.now = now
	}
}

// NewHandler constructs an auth Handler.
func NewHandler(log *slog.Logger, cfg Config, users identity.Store, hasher password.Config, tokens token.Manager, opts ...HandlerOption) (*Handler, error) {
	if users == nil {
		return nil, errors.New("auth: nil user store")
	}
	if tokens == nil {
		return nil, errors.New("auth: nil token manager")
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = httpx.DefaultMaxBodyBytes
	}

	h := &Handler{
		log:     log,
		cfg:     cfg,
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		now:     func() time.Time { return time.Now().UTC() },
		onEvent: func(string) {},
	}

	// A zero rate disables limiting.
	if cfg.RatePerMinute > 0 {
		h.limiter = newIPLimiter(cfg.RatePerMinute, max(cfg.RateBurst, 1), cfg.LimiterIdleTTL)
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(h)
	}

	// Dummy hash for timing-resistant login checks.
	hash, err := hasher.Hash("dummy-password-for-timing-only")
	if err != nil {
		return nil, fmt.Errorf("auth: dummy hash: %w", err)
	}
	h.dummyHash = hash

	return h, nil
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("POST /api/auth/signup", h.rateLimited(h.handleSignup))
	mux.HandleFunc("POST /api/auth/login", h.rateLimited(h.handleLogin))
}

// ---- handlers ----

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpx.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	username := identity.CleanUsername(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Username, email, and password are required")
		return
	}

	if err := h.hasher.Validate(req.Password); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, h.policyMessage(err))
		return
	}

	ctx := r.Context()

	exists, err := h.users.EmailExists(ctx, email)
	if err != nil {
		httpx.WriteAppError(w, h.log, err)
		return
	}
	if exists {
		h.audit(r, "auth.signup.failed", "reason", "email_taken")
		httpx.WriteError(w, http.StatusBadRequest, "Email already registered")
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		httpx.WriteAppError(w, h.log, apperr.Storage("auth.signup.hash", err))
		return
	}

	now := h.now()
	u, err := h.users.CreateUser(ctx, identity.CreateUserInput{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Now:          now,
	})
	if err != nil {
		// Conflict here means a concurrent signup won the race.
		if apperr.IsConflict(err) {
			h.audit(r, "auth.signup.failed", "reason", "email_taken")
		}
		httpx.WriteAppError(w, h.log, err)
		return
	}

	tok, _, err := h.tokens.Issue(u.ID, now)
	if err != nil {
		httpx.WriteAppError(w, h.log, apperr.Storage("auth.signup.issue_token", err))
		return
	}

	h.audit(r, "auth.signup.success", "user_id", u.ID)
	httpx.WriteJSON(w, http.StatusCreated, authResponse{
		Message: "User created successfully",
		Token:   tok,
		User:    u,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ua, err := h.users.GetUserAuthByEmail(r.Context(), email)
	if err != nil {
		if !apperr.IsNotFound(err) {
			httpx.WriteAppError(w, h.log, err)
			return
		}
		// Timing resistance: perform a dummy verify when user is missing.
		_, _ = h.hasher.Verify(h.dummyHash, req.Password)
		h.audit(r, "auth.login.failed", "reason", "not_found")
		httpx.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	ok, err := h.hasher.Verify(ua.PasswordHash, req.Password)
	if err != nil {
		h.log.Error("auth.login.verify.fail", "err", err, "user_id", ua.User.ID)
	}
	if err != nil || !ok {
		h.audit(r, "auth.login.failed", "reason", "bad_password", "user_id", ua.User.ID)
		httpx.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	tok, _, err := h.tokens.Issue(ua.User.ID, h.now())
	if err != nil {
		httpx.WriteAppError(w, h.log, apperr.Storage("auth.login.issue_token", err))
		return
	}

	h.audit(r, "auth.login.success", "user_id", ua.User.ID)
	httpx.WriteJSON(w, http.StatusOK, authResponse{
		Message: "Login successful",
		Token:   tok,
		User:    ua.User,
	})
}

func (h *Handler) policyMessage(err error) string {
	switch {
	case errors.Is(err, password.ErrPasswordTooShort):
		return fmt.Sprintf("Password must be at least %d characters long", h.hasher.Policy.MinLength)
	case errors.Is(err, password.ErrPasswordTooLong):
		return "Password is too long"
	default:
		return "Invalid password"
	}
}

package authapi

import (
	"testing"
	"time"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	cfg := LoadConfigFromEnv()

	if cfg.TrustProxy {
		t.Fatalf("TrustProxy must default to false")
	}
	if cfg.MaxBodyBytes != 1<<20 {
		t.Fatalf("MaxBodyBytes=%d", cfg.MaxBodyBytes)
	}
	if cfg.RatePerMinute != 30 || cfg.RateBurst != 10 {
		t.Fatalf("rate=%d burst=%d", cfg.RatePerMinute, cfg.RateBurst)
	}
	if cfg.LimiterIdleTTL != 10*time.Minute {
		t.Fatalf("LimiterIdleTTL=%v", cfg.LimiterIdleTTL)
	}
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("MINISOCIAL_AUTH_TRUST_PROXY", "true")
	t.Setenv("MINISOCIAL_AUTH_MAX_BODY_BYTES", "2048")
	t.Setenv("MINISOCIAL_AUTH_RATE_PER_MINUTE", "5")
	t.Setenv("MINISOCIAL_AUTH_RATE_BURST", "50")
	t.Setenv("MINISOCIAL_AUTH_LIMITER_IDLE_TTL", "1m")

	cfg := LoadConfigFromEnv()

	if !cfg.TrustProxy || cfg.MaxBodyBytes != 2048 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.RateBurst != 5 {
		t.Fatalf("burst must be clamped to the per-minute rate, got %d", cfg.RateBurst)
	}
	if cfg.LimiterIdleTTL != time.Minute {
		t.Fatalf("LimiterIdleTTL=%v", cfg.LimiterIdleTTL)
	}
}

func TestLoadConfigFromEnv_InvalidFallsBack(t *testing.T) {
	t.Setenv("MINISOCIAL_AUTH_TRUST_PROXY", "maybe")
	t.Setenv("MINISOCIAL_AUTH_RATE_PER_MINUTE", "-3")
	t.Setenv("MINISOCIAL_AUTH_LIMITER_IDLE_TTL", "soon")

	cfg := LoadConfigFromEnv()

	if cfg.TrustProxy || cfg.RatePerMinute != 30 || cfg.LimiterIdleTTL != 10*time.Minute {
		t.Fatalf("invalid values must fall back to defaults: %+v", cfg)
	}
}

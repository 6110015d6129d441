package authapi

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config controls auth API behavior and abuse limits.
type Config struct {
	TrustProxy   bool
	MaxBodyBytes int64

	// Per client IP, shared by signup and login.
	RatePerMinute  int
	RateBurst      int
	LimiterIdleTTL time.Duration
}

// LoadConfigFromEnv loads auth config from environment variables with safe defaults.
func LoadConfigFromEnv() Config {
	cfg := Config{
		TrustProxy:     envBool("MINISOCIAL_AUTH_TRUST_PROXY", false),
		MaxBodyBytes:   envInt64("MINISOCIAL_AUTH_MAX_BODY_BYTES", 1<<20), // 1 MiB
		RatePerMinute:  envInt("MINISOCIAL_AUTH_RATE_PER_MINUTE", 30),
		RateBurst:      envInt("MINISOCIAL_AUTH_RATE_BURST", 10),
		LimiterIdleTTL: envDuration("MINISOCIAL_AUTH_LIMITER_IDLE_TTL", 10*time.Minute),
	}

	if cfg.RateBurst > cfg.RatePerMinute {
		cfg.RateBurst = cfg.RatePerMinute
	}
	return cfg
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

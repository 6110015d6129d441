package feed

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const DefaultSendQueue = 64

// Config tunes websocket sessions.
type Config struct {
	SendQueue    int
	WriteTimeout time.Duration
	PingInterval time.Duration
	PingTimeout  time.Duration

	// OriginPatterns are host patterns accepted for cross-origin upgrades.
	// "*" accepts any origin.
	OriginPatterns []string
}

func DefaultConfig() Config {
	return Config{
		SendQueue:      DefaultSendQueue,
		WriteTimeout:   5 * time.Second,
		PingInterval:   30 * time.Second,
		PingTimeout:    10 * time.Second,
		OriginPatterns: []string{"*"},
	}
}

// LoadConfigFromEnv reads MINISOCIAL_FEED_* on top of DefaultConfig.
// Invalid values keep the default.
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()

	if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("MINISOCIAL_FEED_SEND_QUEUE"))); err == nil && n > 0 {
		cfg.SendQueue = n
	}
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"MINISOCIAL_FEED_WRITE_TIMEOUT", &cfg.WriteTimeout},
		{"MINISOCIAL_FEED_PING_INTERVAL", &cfg.PingInterval},
		{"MINISOCIAL_FEED_PING_TIMEOUT", &cfg.PingTimeout},
	}
	for _, d := range durations {
		if v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(d.key))); err == nil && v > 0 {
			*d.dst = v
		}
	}
	return cfg
}

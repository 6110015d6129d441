package token

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Format selects the token wire format.
type Format string

const (
	FormatJWT    Format = "jwt"
	FormatPaseto Format = "paseto"
)

// MinSecretBytes is the minimum HS256 secret length.
const MinSecretBytes = 32

// Config is process-wide and read-only after startup.
type Config struct {
	Format Format

	// Issuer is written to and required in the "iss" claim.
	Issuer string

	// TTL is the validity window: exp = iat + TTL.
	TTL time.Duration

	// ClockSkew is tolerated on exp and nbf checks.
	ClockSkew time.Duration

	// Secret signs HS256 tokens (FormatJWT).
	Secret []byte

	// PasetoV4SecretKeyHex is the hex Ed25519 secret key (FormatPaseto).
	PasetoV4SecretKeyHex string
}

// DefaultConfig returns defaults without any signing material.
func DefaultConfig() Config {
	return Config{
		Format:    FormatJWT,
		Issuer:    "minisocial",
		TTL:       7 * 24 * time.Hour,
		ClockSkew: 30 * time.Second,
	}
}

// LoadConfigFromEnv loads token configuration from environment variables.
//
// Required (depending on MINISOCIAL_TOKEN_FORMAT):
//   - MINISOCIAL_JWT_SECRET (jwt, at least 32 bytes)
//   - MINISOCIAL_PASETO_V4_SECRET_KEY_HEX (paseto)
//
// Optional:
//   - MINISOCIAL_TOKEN_FORMAT (jwt|paseto)
//   - MINISOCIAL_TOKEN_ISSUER
//   - MINISOCIAL_TOKEN_TTL
//   - MINISOCIAL_TOKEN_CLOCK_SKEW
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := env("MINISOCIAL_TOKEN_FORMAT"); v != "" {
		cfg.Format = Format(strings.ToLower(v))
	}
	if v := env("MINISOCIAL_TOKEN_ISSUER"); v != "" {
		cfg.Issuer = v
	}
	if v := env("MINISOCIAL_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: MINISOCIAL_TOKEN_TTL: %v", ErrConfig, err)
		}
		cfg.TTL = d
	}
	if v := env("MINISOCIAL_TOKEN_CLOCK_SKEW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: MINISOCIAL_TOKEN_CLOCK_SKEW: %v", ErrConfig, err)
		}
		cfg.ClockSkew = d
	}

	cfg.Secret = []byte(env("MINISOCIAL_JWT_SECRET"))
	cfg.PasetoV4SecretKeyHex = env("MINISOCIAL_PASETO_V4_SECRET_KEY_HEX")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the config for the selected format.
func (c Config) Validate() error {
	if c.TTL <= 0 {
		return fmt.Errorf("%w: ttl must be positive", ErrConfig)
	}
	if c.ClockSkew < 0 || c.ClockSkew >= c.TTL {
		return fmt.Errorf("%w: clock skew must be in [0, ttl)", ErrConfig)
	}
	if strings.TrimSpace(c.Issuer) == "" {
		return fmt.Errorf("%w: empty issuer", ErrConfig)
	}

	switch c.Format {
	case FormatJWT:
		if len(c.Secret) == 0 {
			return ErrSecretMissing
		}
		if len(c.Secret) < MinSecretBytes {
			return ErrSecretTooShort
		}
	case FormatPaseto:
		if c.PasetoV4SecretKeyHex == "" {
			return ErrSecretMissing
		}
	default:
		return fmt.Errorf("%w: unknown format %q", ErrConfig, c.Format)
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

package app

import (
	"errors"
	"fmt"
	"strings"

	"minisocial/cmd/security/token"
)

// LoadSecurityConfig reads token settings from env and reports problems with
// the env key an operator has to fix.
func LoadSecurityConfig() (token.Config, error) {
	cfg, err := token.LoadConfigFromEnv()
	if err != nil {
		format := token.Format(strings.ToLower(EnvString("MINISOCIAL_TOKEN_FORMAT", string(token.FormatJWT))))
		return token.Config{}, securityError(format, err)
	}
	return cfg, nil
}

func securityError(format token.Format, err error) error {
	switch {
	case errors.Is(err, token.ErrSecretMissing):
		if format == token.FormatPaseto {
			return errors.New("security policy: MINISOCIAL_PASETO_V4_SECRET_KEY_HEX is missing")
		}
		return errors.New("security policy: MINISOCIAL_JWT_SECRET is missing")
	case errors.Is(err, token.ErrSecretTooShort):
		return fmt.Errorf("security policy: MINISOCIAL_JWT_SECRET is too short (min %d bytes)", token.MinSecretBytes)
	default:
		return fmt.Errorf("security policy: %w", err)
	}
}

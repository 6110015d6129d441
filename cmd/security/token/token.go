package token

import (
	"fmt"
	"time"
)

// Claims is what a verified token says about its bearer.
type Claims struct {
	UserID    string
	TokenID   string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Manager issues and verifies access tokens.
type Manager interface {
	Issue(userID string, now time.Time) (token string, exp time.Time, err error)
	Verify(token string, now time.Time) (Claims, error)
}

// New builds the Manager selected by cfg.Format.
func New(cfg Config) (Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Format {
	case FormatPaseto:
		return NewPasetoV4PublicManager(cfg)
	case FormatJWT:
		return NewJWTManager(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrConfig, cfg.Format)
	}
}

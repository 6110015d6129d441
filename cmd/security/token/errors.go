package token

import (
	"errors"
	"fmt"
)

// ErrInvalidToken is the parent of every verification failure.
var ErrInvalidToken = errors.New("invalid token")

var (
	ErrMalformed     = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrBadSignature  = fmt.Errorf("%w: bad signature", ErrInvalidToken)
	ErrExpired       = fmt.Errorf("%w: expired", ErrInvalidToken)
	ErrInvalidClaims = fmt.Errorf("%w: invalid claims", ErrInvalidToken)
)

var (
	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid token config")

	ErrSecretMissing  = fmt.Errorf("%w: signing secret missing", ErrConfig)
	ErrSecretTooShort = fmt.Errorf("%w: signing secret too short", ErrConfig)
)

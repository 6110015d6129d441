// Package token issues and verifies stateless, signed access tokens.
//
// A token binds a user id to an expiry of issue time plus the configured TTL.
// Nothing is stored server-side; there is no revocation and logout is a client-side discard.
//
// Two wire formats are available behind the same Manager interface:
//   - "jwt": HS256 JWT signed with a shared secret (default)
//   - "paseto": PASETO v4.public signed with an Ed25519 key
//
// Verify failures are distinct so callers can report why a token was refused:
// ErrMalformed, ErrBadSignature, ErrExpired and ErrInvalidClaims all wrap ErrInvalidToken.
package token

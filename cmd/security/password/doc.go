// Package password hashes and verifies user credentials.
//
// Two algorithms are supported: Argon2id (default, PHC-style encoded string) and bcrypt.
// Verify picks the algorithm from the stored digest, so switching MINISOCIAL_PASSWORD_ALGO
// does not lock out users hashed under the previous setting.
//
// Stored digests are untrusted input. Malformed or out-of-bounds digests yield
// (false, ErrInvalidHash) and never panic.
package password

package password

import "strings"

// Hash returns a salted digest of password using the configured algorithm.
// Two calls with the same input return different digests.
func (c Config) Hash(password string) (string, error) {
	switch c.Algorithm {
	case AlgorithmBcrypt:
		return c.hashBcrypt(password)
	case AlgorithmArgon2id, "":
		return c.hashArgon2id(password)
	default:
		return "", ErrUnknownAlgorithm
	}
}

// Verify reports whether password matches digest. The algorithm is taken from
// the digest prefix, not from c.Algorithm.
//
// Returns (true, nil) on match, (false, nil) on mismatch and
// (false, ErrInvalidHash) when the digest cannot be parsed.
func (c Config) Verify(digest, password string) (bool, error) {
	switch {
	case strings.HasPrefix(digest, "$argon2id$"):
		return c.verifyArgon2id(digest, password)
	case isBcryptDigest(digest):
		return verifyBcrypt(digest, password)
	default:
		return false, ErrInvalidHash
	}
}

// Matches is Verify collapsed to a bool: any error counts as a mismatch.
func (c Config) Matches(digest, password string) bool {
	ok, err := c.Verify(digest, password)
	return err == nil && ok
}

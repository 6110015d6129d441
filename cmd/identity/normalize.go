package identity

import "strings"

// NormalizeEmail performs case-insensitive canonicalization for uniqueness checks.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CleanUsername trims surrounding whitespace; usernames keep their case.
func CleanUsername(s string) string {
	return strings.TrimSpace(s)
}

// Package identity owns user records: the principal that tokens and
// ownership checks refer to.
//
// Stores never hash passwords; callers pass a finished digest. Email is unique
// case-insensitively via its normalized form.
package identity

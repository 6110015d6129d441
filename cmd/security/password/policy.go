package password

import "unicode/utf8"

// Validate checks password against the policy. Length is counted in runes,
// except that bcrypt's byte limit applies when bcrypt is the active algorithm.
func (c Config) Validate(password string) error {
	n := utf8.RuneCountInString(password)
	if n < c.Policy.MinLength {
		return ErrPasswordTooShort
	}
	if n > c.Policy.MaxLength {
		return ErrPasswordTooLong
	}
	if c.Algorithm == AlgorithmBcrypt && len(password) > bcryptMaxBytes {
		return ErrPasswordTooLong
	}
	return nil
}

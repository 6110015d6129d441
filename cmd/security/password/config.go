package password

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Algorithm names the hashing scheme used for new digests.
type Algorithm string

const (
	AlgorithmArgon2id Algorithm = "argon2id"
	AlgorithmBcrypt   Algorithm = "bcrypt"
)

// Argon2idParams controls Argon2id cost. MemoryKiB is in KiB as argon2.IDKey expects.
type Argon2idParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Policy is enforced by Validate. Hash does not call it.
type Policy struct {
	MinLength int
	MaxLength int
}

// Config is the single configuration surface for this package.
type Config struct {
	Algorithm  Algorithm
	Params     Argon2idParams
	BcryptCost int
	Policy     Policy
}

// DefaultConfig uses the OWASP Argon2id baseline (19 MiB, t=2) and the
// signup rule of at least six characters.
func DefaultConfig() Config {
	threads := runtime.NumCPU()
	if threads < 1 {
		threads = 1
	}
	if threads > 4 {
		threads = 4
	}

	return Config{
		Algorithm: AlgorithmArgon2id,
		Params: Argon2idParams{
			MemoryKiB:   19 * 1024,
			Iterations:  2,
			Parallelism: uint8(threads), // #nosec G115 -- clamped to [1..4].
			SaltLength:  16,
			KeyLength:   32,
		},
		BcryptCost: bcrypt.DefaultCost,
		Policy: Policy{
			MinLength: 6,
			MaxLength: 256,
		},
	}
}

// FromEnv loads config from environment variables on top of DefaultConfig.
//
// Env surface:
//   - MINISOCIAL_PASSWORD_ALGO (argon2id|bcrypt)
//   - MINISOCIAL_PASSWORD_MIN_LEN
//   - MINISOCIAL_PASSWORD_MAX_LEN
//   - MINISOCIAL_BCRYPT_COST
//   - MINISOCIAL_ARGON2_MEMORY_KIB
//   - MINISOCIAL_ARGON2_ITERATIONS
//   - MINISOCIAL_ARGON2_PARALLELISM
//   - MINISOCIAL_ARGON2_SALT_LEN
//   - MINISOCIAL_ARGON2_KEY_LEN
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v, ok := lookup("MINISOCIAL_PASSWORD_ALGO"); ok {
		switch Algorithm(strings.ToLower(v)) {
		case AlgorithmArgon2id:
			cfg.Algorithm = AlgorithmArgon2id
		case AlgorithmBcrypt:
			cfg.Algorithm = AlgorithmBcrypt
		default:
			return Config{}, fmt.Errorf("MINISOCIAL_PASSWORD_ALGO: %w: %q", ErrUnknownAlgorithm, v)
		}
	}

	ints := []struct {
		key      string
		min, max int
		dst      *int
	}{
		{"MINISOCIAL_PASSWORD_MIN_LEN", 1, 1024, &cfg.Policy.MinLength},
		{"MINISOCIAL_PASSWORD_MAX_LEN", 1, 4096, &cfg.Policy.MaxLength},
		{"MINISOCIAL_BCRYPT_COST", bcrypt.MinCost, bcrypt.MaxCost, &cfg.BcryptCost},
	}
	for _, f := range ints {
		v, ok := lookup(f.key)
		if !ok {
			continue
		}
		n, err := parseBounded(v, uint64(f.min), uint64(f.max)) // #nosec G115 -- bounds are small positive constants.
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", f.key, err)
		}
		*f.dst = int(n)
	}

	u32s := []struct {
		key      string
		min, max uint64
		dst      *uint32
	}{
		{"MINISOCIAL_ARGON2_MEMORY_KIB", 8 * 1024, 1024 * 1024, &cfg.Params.MemoryKiB},
		{"MINISOCIAL_ARGON2_ITERATIONS", 1, 20, &cfg.Params.Iterations},
		{"MINISOCIAL_ARGON2_SALT_LEN", 8, 64, &cfg.Params.SaltLength},
		{"MINISOCIAL_ARGON2_KEY_LEN", 16, 64, &cfg.Params.KeyLength},
	}
	for _, f := range u32s {
		v, ok := lookup(f.key)
		if !ok {
			continue
		}
		n, err := parseBounded(v, f.min, f.max)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", f.key, err)
		}
		*f.dst = uint32(n) // #nosec G115 -- max bound fits in uint32.
	}

	if v, ok := lookup("MINISOCIAL_ARGON2_PARALLELISM"); ok {
		n, err := parseBounded(v, 1, math.MaxUint8)
		if err != nil {
			return Config{}, fmt.Errorf("MINISOCIAL_ARGON2_PARALLELISM: %w", err)
		}
		cfg.Params.Parallelism = uint8(n) // #nosec G115 -- bounded above.
	}

	if cfg.Policy.MinLength > cfg.Policy.MaxLength {
		return Config{}, fmt.Errorf(
			"password policy invalid: min_len(%d) > max_len(%d)",
			cfg.Policy.MinLength,
			cfg.Policy.MaxLength,
		)
	}

	return cfg, nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func parseBounded(s string, minVal, maxVal uint64) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not an unsigned integer")
	}
	if n < minVal || n > maxVal {
		return 0, fmt.Errorf("out of range [%d..%d]", minVal, maxVal)
	}
	return n, nil
}

package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// argon2Digest is the parsed form of
// $argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt_b64>$<key_b64>
type argon2Digest struct {
	params Argon2idParams
	salt   []byte
	key    []byte
}

var argon2B64 = base64.RawStdEncoding

func (d argon2Digest) String() string {
	return "$argon2id$v=" + strconv.Itoa(argon2.Version) +
		"$m=" + strconv.FormatUint(uint64(d.params.MemoryKiB), 10) +
		",t=" + strconv.FormatUint(uint64(d.params.Iterations), 10) +
		",p=" + strconv.FormatUint(uint64(d.params.Parallelism), 10) +
		"$" + argon2B64.EncodeToString(d.salt) +
		"$" + argon2B64.EncodeToString(d.key)
}

func (c Config) hashArgon2id(password string) (string, error) {
	p := c.Params
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}

	d := argon2Digest{
		params: p,
		salt:   salt,
		key:    argon2.IDKey([]byte(password), salt, p.Iterations, p.MemoryKiB, p.Parallelism, p.KeyLength),
	}
	return d.String(), nil
}

func (c Config) verifyArgon2id(encoded, password string) (bool, error) {
	d, err := parseArgon2Digest(encoded)
	if err != nil {
		return false, err
	}
	// Digests come from storage; refuse costs far above what we would produce ourselves.
	if !costAcceptable(d.params, c.Params) {
		return false, ErrInvalidHash
	}

	got := argon2.IDKey(
		[]byte(password),
		d.salt,
		d.params.Iterations,
		d.params.MemoryKiB,
		d.params.Parallelism,
		d.params.KeyLength,
	)
	return subtle.ConstantTimeCompare(got, d.key) == 1, nil
}

func costAcceptable(got, limits Argon2idParams) bool {
	switch {
	case got.MemoryKiB > limits.MemoryKiB*4:
		return false
	case got.Iterations > limits.Iterations*4:
		return false
	case uint32(got.Parallelism) > uint32(limits.Parallelism)*4:
		return false
	case got.SaltLength < 8 || got.SaltLength > 64:
		return false
	case got.KeyLength < 16 || got.KeyLength > 128:
		return false
	}
	return true
}

func parseArgon2Digest(encoded string) (argon2Digest, error) {
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != "argon2id" {
		return argon2Digest{}, ErrInvalidHash
	}
	if fields[2] != "v="+strconv.Itoa(argon2.Version) {
		return argon2Digest{}, ErrInvalidHash
	}

	var p Argon2idParams
	for _, kv := range strings.Split(fields[3], ",") {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return argon2Digest{}, ErrInvalidHash
		}
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || n == 0 {
			return argon2Digest{}, ErrInvalidHash
		}
		switch name {
		case "m":
			p.MemoryKiB = uint32(n)
		case "t":
			p.Iterations = uint32(n)
		case "p":
			if n > 255 {
				return argon2Digest{}, ErrInvalidHash
			}
			p.Parallelism = uint8(n)
		default:
			return argon2Digest{}, ErrInvalidHash
		}
	}
	if p.MemoryKiB == 0 || p.Iterations == 0 || p.Parallelism == 0 {
		return argon2Digest{}, ErrInvalidHash
	}

	salt, err := argon2B64.DecodeString(fields[4])
	if err != nil {
		return argon2Digest{}, ErrInvalidHash
	}
	key, err := argon2B64.DecodeString(fields[5])
	if err != nil {
		return argon2Digest{}, ErrInvalidHash
	}
	p.SaltLength = uint32(len(salt)) // #nosec G115 -- bounded by costAcceptable.
	p.KeyLength = uint32(len(key))   // #nosec G115 -- bounded by costAcceptable.

	return argon2Digest{params: p, salt: salt, key: key}, nil
}

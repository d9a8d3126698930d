package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const argon2Prefix = "$argon2id$"

// Argon2Params are the argon2id cost settings.
type Argon2Params struct {
	MemoryKiB  uint32 `mapstructure:"memory_kib"`
	Iterations uint32 `mapstructure:"iterations"`
	Threads    uint8  `mapstructure:"threads"`
	SaltLen    uint32 `mapstructure:"salt_len"`
	KeyLen     uint32 `mapstructure:"key_len"`
}

// DefaultArgon2Params follows the OWASP baseline for argon2id.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		MemoryKiB:  64 * 1024,
		Iterations: 3,
		Threads:    2,
		SaltLen:    16,
		KeyLen:     32,
	}
}

func (p Argon2Params) validate() error {
	switch {
	case p.MemoryKiB < 8*1024:
		return fmt.Errorf("argon2 memory must be >= 8192 KiB, got %d", p.MemoryKiB)
	case p.Iterations < 1:
		return fmt.Errorf("argon2 iterations must be >= 1")
	case p.Threads < 1:
		return fmt.Errorf("argon2 threads must be >= 1")
	case p.SaltLen < 16:
		return fmt.Errorf("argon2 salt length must be >= 16")
	case p.KeyLen < 16:
		return fmt.Errorf("argon2 key length must be >= 16")
	}
	return nil
}

type argon2Hash struct {
	params Argon2Params
	salt   []byte
	key    []byte
}

func hashArgon2(plain string, p Argon2Params) (string, error) {
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(plain), salt, p.Iterations, p.MemoryKiB, p.Threads, p.KeyLen)
	return encodeArgon2(argon2Hash{params: p, salt: salt, key: key}), nil
}

func encodeArgon2(h argon2Hash) string {
	b64 := base64.RawStdEncoding
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Prefix, argon2.Version,
		h.params.MemoryKiB, h.params.Iterations, h.params.Threads,
		b64.EncodeToString(h.salt), b64.EncodeToString(h.key))
}

// decodeArgon2 accepts padded and unpadded base64 segments, since both appear in
// hashes produced by other libraries.
func decodeArgon2(encoded string) (argon2Hash, error) {
	var h argon2Hash
	fields := strings.Split(strings.TrimPrefix(encoded, argon2Prefix), "$")
	if len(fields) != 4 {
		return h, fmt.Errorf("%w: argon2id needs 4 fields, got %d", ErrInvalidHash, len(fields))
	}

	var version int
	if _, err := fmt.Sscanf(fields[0], "v=%d", &version); err != nil || version != argon2.Version {
		return h, fmt.Errorf("%w: argon2 version %q", ErrInvalidHash, fields[0])
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(fields[1], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return h, fmt.Errorf("%w: argon2 parameters %q", ErrInvalidHash, fields[1])
	}

	salt, err := decodeSegment(fields[2])
	if err != nil {
		return h, fmt.Errorf("%w: argon2 salt", ErrInvalidHash)
	}
	key, err := decodeSegment(fields[3])
	if err != nil || len(key) == 0 {
		return h, fmt.Errorf("%w: argon2 key", ErrInvalidHash)
	}

	h.params = Argon2Params{
		MemoryKiB:  memory,
		Iterations: iterations,
		Threads:    threads,
		SaltLen:    uint32(len(salt)),
		KeyLen:     uint32(len(key)),
	}
	if err := h.params.validate(); err != nil {
		return h, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	h.salt = salt
	h.key = key
	return h, nil
}

func decodeSegment(s string) ([]byte, error) {
	if strings.HasSuffix(s, "=") {
		return base64.StdEncoding.DecodeString(s)
	}
	return base64.RawStdEncoding.DecodeString(s)
}

func verifyArgon2(plain, encoded string) (bool, error) {
	h, err := decodeArgon2(encoded)
	if err != nil {
		return false, err
	}
	got := argon2.IDKey([]byte(plain), h.salt, h.params.Iterations, h.params.MemoryKiB, h.params.Threads, h.params.KeyLen)
	return subtle.ConstantTimeCompare(got, h.key) == 1, nil
}

package password

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Scheme selects the encoding used for new hashes.
type Scheme string

const (
	SchemeArgon2id Scheme = "argon2id"
	SchemeBcrypt   Scheme = "bcrypt"
)

// Config selects the hashing scheme and its cost.
type Config struct {
	Scheme     Scheme       `mapstructure:"scheme"`
	Argon2     Argon2Params `mapstructure:"argon2"`
	BcryptCost int          `mapstructure:"bcrypt_cost"`
}

// DefaultConfig hashes with argon2id.
func DefaultConfig() Config {
	return Config{
		Scheme:     SchemeArgon2id,
		Argon2:     DefaultArgon2Params(),
		BcryptCost: bcrypt.DefaultCost,
	}
}

// Hasher hashes new passwords with one scheme and verifies any supported one.
// It is safe for concurrent use.
type Hasher struct {
	cfg   Config
	dummy string
}

// New validates cfg and precomputes the hash used by [Hasher.VerifyDummy].
func New(cfg Config) (*Hasher, error) {
	if cfg.Scheme == "" {
		cfg.Scheme = SchemeArgon2id
	}
	switch cfg.Scheme {
	case SchemeArgon2id:
		if err := cfg.Argon2.validate(); err != nil {
			return nil, err
		}
	case SchemeBcrypt:
		if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost must be in [%d,%d], got %d", bcrypt.MinCost, bcrypt.MaxCost, cfg.BcryptCost)
		}
	default:
		return nil, fmt.Errorf("unknown password scheme %q", cfg.Scheme)
	}

	h := &Hasher{cfg: cfg}
	dummy, err := h.Hash("dummy-password-for-timing")
	if err != nil {
		return nil, err
	}
	h.dummy = dummy
	return h, nil
}

// Hash encodes plain with the configured scheme.
func (h *Hasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}
	if h.cfg.Scheme == SchemeBcrypt {
		return hashBcrypt(plain, h.cfg.BcryptCost)
	}
	return hashArgon2(plain, h.cfg.Argon2)
}

// Verify reports whether plain matches encoded. A mismatch is (false, nil); an
// error means the stored hash itself is unusable.
func (h *Hasher) Verify(plain, encoded string) (bool, error) {
	switch {
	case strings.HasPrefix(encoded, argon2Prefix):
		return verifyArgon2(plain, encoded)
	case isBcrypt(encoded):
		return verifyBcrypt(plain, encoded)
	default:
		return false, ErrUnsupportedHash
	}
}

// VerifyDummy spends the same work as a real verification and always fails. Use
// it when the account does not exist.
func (h *Hasher) VerifyDummy(plain string) {
	_, _ = h.Verify(plain, h.dummy)
}

// NeedsRehash reports whether encoded was produced with a different scheme or
// weaker parameters than the current configuration.
func (h *Hasher) NeedsRehash(encoded string) bool {
	switch h.cfg.Scheme {
	case SchemeArgon2id:
		if !strings.HasPrefix(encoded, argon2Prefix) {
			return true
		}
		parsed, err := decodeArgon2(encoded)
		if err != nil {
			return true
		}
		p, want := parsed.params, h.cfg.Argon2
		return p.MemoryKiB < want.MemoryKiB || p.Iterations < want.Iterations ||
			p.Threads < want.Threads || p.KeyLen != want.KeyLen
	default:
		if !isBcrypt(encoded) {
			return true
		}
		cost, err := bcryptCost(encoded)
		return err != nil || cost < h.cfg.BcryptCost
	}
}

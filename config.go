package goToken

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/goToken/jwt"
	"github.com/MrEthical07/goToken/revocation"
)

// Config is the typed Engine configuration. Build it from [DefaultConfig] and
// override fields; [Builder.Build] validates it.
type Config struct {
	JWT        JWTConfig
	Revocation RevocationConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

// JWTConfig holds the signing key and token lifetimes.
type JWTConfig struct {
	// SigningKey is the raw HMAC key, at least 32 bytes.
	SigningKey []byte
	// Algorithm is HS256, HS384, HS512, or empty to pick by key length.
	Algorithm  string
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// Leeway is the tolerated clock skew, at most two minutes. Tokens are
	// still accepted up to Leeway past their expiry, so the effective
	// lifetime of a token is its TTL plus Leeway.
	Leeway time.Duration
}

// RevocationBackend selects the revocation store implementation.
type RevocationBackend string

const (
	RevocationMemory RevocationBackend = "memory"
	RevocationRedis  RevocationBackend = "redis"
)

// RevocationConfig selects and tunes the revocation store.
type RevocationConfig struct {
	Backend RevocationBackend
	// SweepInterval applies to the memory backend.
	SweepInterval time.Duration
	// RedisPrefix applies to the redis backend.
	RedisPrefix string
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns lifetimes of one hour (access) and two hours (refresh)
// with the in-memory revocation store. The signing key must still be set.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:  time.Hour,
			RefreshTTL: 2 * time.Hour,
		},
		Revocation: RevocationConfig{
			Backend:       RevocationMemory,
			SweepInterval: revocation.DefaultSweepInterval,
			RedisPrefix:   revocation.DefaultRedisPrefix,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.SigningKey = append([]byte(nil), cfg.JWT.SigningKey...)
	return out
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if len(c.JWT.SigningKey) == 0 {
		return errors.New("JWT SigningKey is required")
	}
	switch jwt.Algorithm(strings.ToUpper(c.JWT.Algorithm)) {
	case jwt.AlgorithmAuto, jwt.AlgorithmHS256, jwt.AlgorithmHS384, jwt.AlgorithmHS512:
	default:
		return fmt.Errorf("JWT Algorithm %q is not supported", c.JWT.Algorithm)
	}
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	if c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT RefreshTTL must be > 0")
	}
	if c.JWT.AccessTTL >= c.JWT.RefreshTTL {
		return errors.New("JWT AccessTTL must be shorter than RefreshTTL")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be within [0, 2m]")
	}

	switch c.Revocation.Backend {
	case RevocationMemory:
		if c.Revocation.SweepInterval < 0 {
			return errors.New("Revocation SweepInterval must be >= 0")
		}
	case RevocationRedis:
	default:
		return fmt.Errorf("Revocation Backend %q is not supported", c.Revocation.Backend)
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}
	return nil
}

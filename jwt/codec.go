package jwt

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

// Algorithm names an HMAC signing method.
type Algorithm string

const (
	// AlgorithmAuto picks the strongest HMAC variant the key length supports.
	AlgorithmAuto  Algorithm = ""
	AlgorithmHS256 Algorithm = "HS256"
	AlgorithmHS384 Algorithm = "HS384"
	AlgorithmHS512 Algorithm = "HS512"
)

const (
	minKeyBytes = 32
	maxLeeway   = 2 * time.Minute
)

// Config holds the single active signing key and claim validation settings.
type Config struct {
	Key       []byte
	Algorithm Algorithm
	Issuer    string
	Audience  string
	// Leeway is accepted past exp, nbf and iat.
	Leeway    time.Duration
	Now       func() time.Time
}

// Codec issues and verifies tokens. It is immutable after [NewCodec] and safe for
// concurrent use.
type Codec struct {
	key    []byte
	method gjwt.SigningMethod
	parser *gjwt.Parser
	cfg    Config
}

// DecodeKey parses base64 key material in the standard or URL alphabet, padded
// or not.
func DecodeKey(material string) ([]byte, error) {
	material = strings.TrimSpace(material)
	if material == "" {
		return nil, fmt.Errorf("%w: empty key material", ErrInvalidKey)
	}
	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}
	for _, enc := range encodings {
		if key, err := enc.DecodeString(material); err == nil {
			return key, nil
		}
	}
	return nil, fmt.Errorf("%w: key material is not base64", ErrInvalidKey)
}

// NewCodec validates the key and returns a ready codec. Any key problem is
// reported here so that the service fails at startup.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Key) == 0 {
		return nil, fmt.Errorf("%w: missing key", ErrInvalidKey)
	}
	if len(cfg.Key) < minKeyBytes {
		return nil, fmt.Errorf("%w: key must be at least %d bytes, got %d", ErrInvalidKey, minKeyBytes, len(cfg.Key))
	}
	if cfg.Leeway < 0 || cfg.Leeway > maxLeeway {
		return nil, errors.New("invalid leeway configuration")
	}

	method, err := resolveMethod(cfg.Algorithm, len(cfg.Key))
	if err != nil {
		return nil, err
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cfg.Key = append([]byte(nil), cfg.Key...)

	options := []gjwt.ParserOption{
		gjwt.WithValidMethods([]string{method.Alg()}),
		gjwt.WithExpirationRequired(),
		gjwt.WithTimeFunc(cfg.Now),
	}
	if cfg.Leeway > 0 {
		options = append(options, gjwt.WithLeeway(cfg.Leeway))
	}
	if cfg.Issuer != "" {
		options = append(options, gjwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		options = append(options, gjwt.WithAudience(cfg.Audience))
	}

	return &Codec{
		key:    cfg.Key,
		method: method,
		parser: gjwt.NewParser(options...),
		cfg:    cfg,
	}, nil
}

func resolveMethod(alg Algorithm, keyLen int) (gjwt.SigningMethod, error) {
	switch alg {
	case AlgorithmAuto:
		switch {
		case keyLen >= 64:
			return gjwt.SigningMethodHS512, nil
		case keyLen >= 48:
			return gjwt.SigningMethodHS384, nil
		default:
			return gjwt.SigningMethodHS256, nil
		}
	case AlgorithmHS256:
		return gjwt.SigningMethodHS256, nil
	case AlgorithmHS384:
		if keyLen < 48 {
			return nil, fmt.Errorf("%w: HS384 needs at least 48 bytes", ErrInvalidKey)
		}
		return gjwt.SigningMethodHS384, nil
	case AlgorithmHS512:
		if keyLen < 64 {
			return nil, fmt.Errorf("%w: HS512 needs at least 64 bytes", ErrInvalidKey)
		}
		return gjwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", alg)
	}
}

// Algorithm returns the signing method actually in use.
func (c *Codec) Algorithm() Algorithm {
	return Algorithm(c.method.Alg())
}

// Leeway returns the tolerated clock skew on expiry.
func (c *Codec) Leeway() time.Duration {
	return c.cfg.Leeway
}

// Now returns the codec clock.
func (c *Codec) Now() time.Time {
	return c.cfg.Now()
}

// Issue signs claims into a compact token string.
func (c *Codec) Issue(claims Claims) (string, error) {
	if !claims.Kind.Valid() {
		return "", fmt.Errorf("issue: unknown token kind %q", claims.Kind)
	}
	if claims.Subject == "" {
		return "", errors.New("issue: empty subject")
	}
	if !claims.ExpiresAt.After(claims.IssuedAt) {
		return "", errors.New("issue: expiry must be after issuance")
	}

	token := gjwt.NewWithClaims(c.method, claims.toWire(c.cfg.Issuer, c.cfg.Audience))
	return token.SignedString(c.key)
}

// Decode verifies tokenStr and returns its claims. Signature verification always
// happens before the expiry check, so an [ErrExpired] result still proves the
// token was minted with the active key.
func (c *Codec) Decode(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrMalformed
	}

	var wire wireClaims
	token, err := c.parser.ParseWithClaims(tokenStr, &wire, func(t *gjwt.Token) (interface{}, error) {
		if t.Method.Alg() != c.method.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return c.key, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if !token.Valid {
		return nil, ErrMalformed
	}

	claims := wire.toClaims()
	if !claims.Kind.Valid() || claims.Subject == "" {
		return nil, ErrMalformed
	}
	if claims.Kind == KindRefresh && claims.ID == "" {
		return nil, ErrMalformed
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, gjwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, gjwt.ErrTokenSignatureInvalid), errors.Is(err, gjwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	case errors.Is(err, gjwt.ErrTokenExpired):
		return ErrExpired
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}

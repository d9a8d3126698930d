package jwt

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// IssuerConfig carries the token lifetimes. The access lifetime must be strictly
// shorter than the refresh lifetime.
type IssuerConfig struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// NewID returns a fresh jti. Defaults to a random UUID.
	NewID func() string
}

// Pair is one access/refresh token pair.
type Pair struct {
	AccessToken      string
	RefreshToken     string
	RefreshID        string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	// ExpiresIn is the access lifetime in whole seconds.
	ExpiresIn int64
}

// Issuer mints token pairs through a [Codec].
type Issuer struct {
	codec *Codec
	cfg   IssuerConfig
}

// NewIssuer validates the lifetimes and binds them to codec.
func NewIssuer(codec *Codec, cfg IssuerConfig) (*Issuer, error) {
	if codec == nil {
		return nil, errors.New("issuer requires a codec")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.AccessTTL >= cfg.RefreshTTL {
		return nil, errors.New("access TTL must be shorter than refresh TTL")
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &Issuer{codec: codec, cfg: cfg}, nil
}

// AccessTTL returns the configured access lifetime.
func (i *Issuer) AccessTTL() time.Duration { return i.cfg.AccessTTL }

// RefreshTTL returns the configured refresh lifetime.
func (i *Issuer) RefreshTTL() time.Duration { return i.cfg.RefreshTTL }

// IssuePair builds and signs a new access/refresh pair for subject.
func (i *Issuer) IssuePair(subject, role string) (Pair, error) {
	if subject == "" {
		return Pair{}, errors.New("issue pair: empty subject")
	}
	now := i.codec.Now()
	jti := i.cfg.NewID()
	if jti == "" {
		return Pair{}, errors.New("issue pair: empty jti")
	}

	access := Claims{
		Subject:   subject,
		Kind:      KindAccess,
		PairID:    jti,
		Role:      role,
		IssuedAt:  now,
		ExpiresAt: now.Add(i.cfg.AccessTTL),
	}
	refresh := Claims{
		Subject:   subject,
		Kind:      KindRefresh,
		ID:        jti,
		Role:      role,
		IssuedAt:  now,
		ExpiresAt: now.Add(i.cfg.RefreshTTL),
	}

	accessToken, err := i.codec.Issue(access)
	if err != nil {
		return Pair{}, err
	}
	refreshToken, err := i.codec.Issue(refresh)
	if err != nil {
		return Pair{}, err
	}

	return Pair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		RefreshID:        jti,
		AccessExpiresAt:  access.ExpiresAt,
		RefreshExpiresAt: refresh.ExpiresAt,
		ExpiresIn:        int64(i.cfg.AccessTTL / time.Second),
	}, nil
}

package jwt

import (
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

// Kind tells access tokens apart from refresh tokens.
type Kind string

const (
	// KindAccess marks a short-lived bearer credential.
	KindAccess Kind = "access"
	// KindRefresh marks a single-use token that can only be exchanged for a new pair.
	KindRefresh Kind = "refresh"
)

// Valid reports whether k is one of the known token kinds.
func (k Kind) Valid() bool {
	return k == KindAccess || k == KindRefresh
}

// Claims is the decoded content of a token. Nothing here is trustworthy unless it
// was returned by [Codec.Decode].
type Claims struct {
	Subject string
	Kind    Kind
	// ID is the jti. Only refresh tokens carry one.
	ID string
	// PairID links an access token to the refresh token minted alongside it.
	PairID    string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Remaining returns how long the token stays valid after now, never negative.
func (c *Claims) Remaining(now time.Time) time.Duration {
	if c == nil {
		return 0
	}
	d := c.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

type wireClaims struct {
	Kind   Kind   `json:"typ"`
	PairID string `json:"pid,omitempty"`
	Role   string `json:"role,omitempty"`
	gjwt.RegisteredClaims
}

func (c Claims) toWire(issuer, audience string) wireClaims {
	w := wireClaims{
		Kind:   c.Kind,
		PairID: c.PairID,
		Role:   c.Role,
		RegisteredClaims: gjwt.RegisteredClaims{
			Subject:   c.Subject,
			ID:        c.ID,
			Issuer:    issuer,
			IssuedAt:  gjwt.NewNumericDate(c.IssuedAt),
			ExpiresAt: gjwt.NewNumericDate(c.ExpiresAt),
		},
	}
	if audience != "" {
		w.Audience = gjwt.ClaimStrings{audience}
	}
	return w
}

func (w *wireClaims) toClaims() *Claims {
	c := &Claims{
		Subject: w.Subject,
		Kind:    w.Kind,
		ID:      w.ID,
		PairID:  w.PairID,
		Role:    w.Role,
	}
	if w.IssuedAt != nil {
		c.IssuedAt = w.IssuedAt.Time
	}
	if w.ExpiresAt != nil {
		c.ExpiresAt = w.ExpiresAt.Time
	}
	return c
}

package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/goToken/jwt"
)

// TokenDecoder verifies a token string and returns its claims.
type TokenDecoder interface {
	Decode(token string) (*jwt.Claims, error)
}

// PairIssuer mints access/refresh pairs.
type PairIssuer interface {
	IssuePair(subject, role string) (jwt.Pair, error)
}

// Revocations is the slice of the revocation store the flows use.
type Revocations interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Deps groups flow dependency sets. The Engine builds this once at Build time.
type Deps struct {
	Login        LoginDeps
	Refresh      RefreshDeps
	Logout       LogoutDeps
	Authenticate AuthenticateDeps
}

// revocationTTL rounds d up to a whole second so that second-granularity expiry
// claims are always covered.
func revocationTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	if rem := d % time.Second; rem != 0 {
		d += time.Second - rem
	}
	return d
}

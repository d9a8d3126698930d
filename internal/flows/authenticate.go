package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/goToken/jwt"
)

// AuthenticateFailureKind classifies bearer token rejections.
type AuthenticateFailureKind int

const (
	AuthenticateFailureNone AuthenticateFailureKind = iota
	AuthenticateFailureMissing
	AuthenticateFailureRevocationCheck
	AuthenticateFailureRevoked
	AuthenticateFailureDecode
	AuthenticateFailureExpired
	AuthenticateFailureWrongKind
)

// AuthenticateResult carries verified access claims or failure metadata.
type AuthenticateResult struct {
	Failure AuthenticateFailureKind
	Err     error
	Claims  *jwt.Claims
}

// AuthenticateDeps captures bearer validation dependencies.
type AuthenticateDeps struct {
	Codec       TokenDecoder
	Revocations Revocations
}

// RunAuthenticate validates a bearer token. The revocation lookup runs before
// any signature work, and a store failure rejects the token.
func RunAuthenticate(ctx context.Context, token string, deps AuthenticateDeps) AuthenticateResult {
	if token == "" {
		return AuthenticateResult{Failure: AuthenticateFailureMissing}
	}

	revoked, err := deps.Revocations.IsRevoked(ctx, token)
	if err != nil {
		return AuthenticateResult{Failure: AuthenticateFailureRevocationCheck, Err: err}
	}
	if revoked {
		return AuthenticateResult{Failure: AuthenticateFailureRevoked}
	}

	claims, err := deps.Codec.Decode(token)
	if err != nil {
		if errors.Is(err, jwt.ErrExpired) {
			return AuthenticateResult{Failure: AuthenticateFailureExpired, Err: err}
		}
		return AuthenticateResult{Failure: AuthenticateFailureDecode, Err: err}
	}
	if claims.Kind != jwt.KindAccess {
		return AuthenticateResult{Failure: AuthenticateFailureWrongKind}
	}

	return AuthenticateResult{Claims: claims}
}

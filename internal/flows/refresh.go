package flows

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goToken/jwt"
	"github.com/MrEthical07/goToken/principal"
)

// RefreshFailureKind classifies refresh failures for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureDecode
	RefreshFailureExpired
	RefreshFailureWrongKind
	RefreshFailureRevocationCheck
	RefreshFailureRevoked
	RefreshFailurePrincipalGone
	RefreshFailurePrincipalStore
	RefreshFailureIssue
	RefreshFailureRevoke
)

// RefreshResult carries the rotated pair or failure metadata.
type RefreshResult struct {
	Failure RefreshFailureKind
	Err     error
	Subject string
	// RefreshID is the jti of the presented token, once decoded.
	RefreshID string
	Pair      jwt.Pair
}

// RefreshDeps captures refresh flow dependencies.
type RefreshDeps struct {
	Codec       TokenDecoder
	Issuer      PairIssuer
	Revocations Revocations
	Principals  principal.Store
	Now         func() time.Time
	// Leeway is added to the revocation TTL of the consumed token.
	Leeway time.Duration
}

// RunRefresh exchanges a refresh token for a new pair and revokes the old token.
// The new pair is minted before the old token is revoked, so a failure to mint
// never burns the caller's refresh token.
func RunRefresh(ctx context.Context, refreshToken string, deps RefreshDeps) RefreshResult {
	claims, err := deps.Codec.Decode(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrExpired) {
			return RefreshResult{Failure: RefreshFailureExpired, Err: err}
		}
		return RefreshResult{Failure: RefreshFailureDecode, Err: err}
	}
	if claims.Kind != jwt.KindRefresh {
		return RefreshResult{Failure: RefreshFailureWrongKind, Subject: claims.Subject}
	}

	base := RefreshResult{Subject: claims.Subject, RefreshID: claims.ID}
	fail := func(kind RefreshFailureKind, err error) RefreshResult {
		base.Failure = kind
		base.Err = err
		return base
	}

	revoked, err := deps.Revocations.IsRevoked(ctx, refreshToken)
	if err != nil {
		return fail(RefreshFailureRevocationCheck, err)
	}
	if revoked {
		return fail(RefreshFailureRevoked, nil)
	}

	p, err := deps.Principals.Load(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, principal.ErrNotFound) {
			return fail(RefreshFailurePrincipalGone, err)
		}
		return fail(RefreshFailurePrincipalStore, err)
	}
	if !p.Active {
		return fail(RefreshFailurePrincipalGone, errors.New("principal inactive"))
	}

	pair, err := deps.Issuer.IssuePair(p.Identity, p.Role.String())
	if err != nil {
		return fail(RefreshFailureIssue, err)
	}

	ttl := revocationTTL(claims.Remaining(deps.Now()) + deps.Leeway)
	if err := deps.Revocations.Revoke(ctx, refreshToken, ttl); err != nil {
		return fail(RefreshFailureRevoke, err)
	}

	base.Pair = pair
	return base
}

package flows

import (
	"context"
	"errors"
	"time"
)

// LogoutFailureKind classifies logout failures for root-level mapping.
type LogoutFailureKind int

const (
	LogoutFailureNone LogoutFailureKind = iota
	LogoutFailureMissingToken
	LogoutFailureRevoke
)

// LogoutResult reports the outcome of a logout.
type LogoutResult struct {
	Failure LogoutFailureKind
	Err     error
}

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	Revocations Revocations
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	Leeway      time.Duration
}

// RunLogout revokes both tokens for the longer of the two configured lifetimes. Tokens are
// not decoded: expired, malformed, or already revoked tokens are revoked just the
// same, which makes a repeated logout succeed.
func RunLogout(ctx context.Context, accessToken, refreshToken string, deps LogoutDeps) LogoutResult {
	if accessToken == "" || refreshToken == "" {
		return LogoutResult{Failure: LogoutFailureMissingToken, Err: errors.New("logout requires both tokens")}
	}

	// The caller picks which slot each token arrives in, so both get the
	// longest lifetime any token can have.
	ttl := revocationTTL(max(deps.AccessTTL, deps.RefreshTTL) + deps.Leeway)
	accessErr := deps.Revocations.Revoke(ctx, accessToken, ttl)
	refreshErr := deps.Revocations.Revoke(ctx, refreshToken, ttl)
	if err := errors.Join(accessErr, refreshErr); err != nil {
		return LogoutResult{Failure: LogoutFailureRevoke, Err: err}
	}
	return LogoutResult{}
}

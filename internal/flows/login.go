package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/goToken/jwt"
	"github.com/MrEthical07/goToken/principal"
)

// LoginFailureKind classifies login failures for root-level mapping.
type LoginFailureKind int

const (
	LoginFailureNone LoginFailureKind = iota
	LoginFailureCredentials
	LoginFailurePrincipalStore
	LoginFailureIssue
)

// LoginResult carries the issued pair or failure metadata.
type LoginResult struct {
	Failure   LoginFailureKind
	Err       error
	Principal principal.Principal
	Pair      jwt.Pair
}

// LoginDeps captures login flow dependencies.
type LoginDeps struct {
	Principals principal.Store
	Issuer     PairIssuer
}

// RunLogin checks credentials and mints the first token pair.
func RunLogin(ctx context.Context, identity, password string, deps LoginDeps) LoginResult {
	p, err := deps.Principals.Verify(ctx, identity, password)
	if err != nil {
		if errors.Is(err, principal.ErrInvalidCredentials) {
			return LoginResult{Failure: LoginFailureCredentials, Err: err}
		}
		return LoginResult{Failure: LoginFailurePrincipalStore, Err: err}
	}

	pair, err := deps.Issuer.IssuePair(p.Identity, p.Role.String())
	if err != nil {
		return LoginResult{Failure: LoginFailureIssue, Err: err, Principal: p}
	}

	return LoginResult{Principal: p, Pair: pair}
}

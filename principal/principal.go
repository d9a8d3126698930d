package principal

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrInvalidCredentials covers unknown accounts, wrong passwords, and
	// deactivated accounts alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotFound is returned by Load when no account matches.
	ErrNotFound = errors.New("principal not found")
	// ErrUnavailable wraps failures of the backing store.
	ErrUnavailable = errors.New("principal store unavailable")
)

// Principal is an account as seen by the token service.
type Principal struct {
	Identity string
	Role     Role
	Active   bool
}

// Store looks up principals.
type Store interface {
	// Verify checks the credentials and returns the active principal they belong to.
	Verify(ctx context.Context, identity, password string) (Principal, error)
	// Load returns the current state of identity, active or not.
	Load(ctx context.Context, identity string) (Principal, error)
}

// PasswordVerifier checks plaintext passwords against stored hashes.
// *password.Hasher satisfies it.
type PasswordVerifier interface {
	Verify(plain, encoded string) (bool, error)
	VerifyDummy(plain string)
}

// NormalizeIdentity trims and lower-cases an email identity.
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

// checkPassword runs the shared Verify tail for both backings: the hash check
// always runs, and inactive accounts are rejected only afterwards.
func checkPassword(v PasswordVerifier, p Principal, plain, encoded string) (Principal, error) {
	ok, err := v.Verify(plain, encoded)
	if err != nil {
		return Principal{}, errors.Join(ErrInvalidCredentials, err)
	}
	if !ok || !p.Active {
		return Principal{}, ErrInvalidCredentials
	}
	return p, nil
}

package goToken

import "errors"

var (
	// ErrUnauthorized is the coarse error shown to callers for any authentication failure.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials covers unknown users and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenMalformed covers structural and signature failures.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenExpired is returned for a verified token past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenRevoked is returned for a token present in the revocation store.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrTokenKind is returned when a refresh token is used as a bearer, or the reverse.
	ErrTokenKind = errors.New("wrong token kind")
	// ErrTokenMissing is returned when a required token is empty.
	ErrTokenMissing = errors.New("token missing")
	// ErrUserNotFound is returned by Refresh when the principal vanished or was deactivated.
	ErrUserNotFound = errors.New("user not found")
	// ErrStoreUnavailable is returned when a revocation or principal backing fails.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrEngineNotReady is returned by methods called on a nil or closed Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrTokenIssue is returned when signing a new pair fails.
	ErrTokenIssue = errors.New("token issuance failed")
)

// PublicError collapses authentication failures into ErrUnauthorized. Store
// outages and programming errors pass through unchanged so that the transport
// can answer with a 5xx.
func PublicError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStoreUnavailable),
		errors.Is(err, ErrEngineNotReady),
		errors.Is(err, ErrTokenIssue),
		errors.Is(err, ErrTokenMissing):
		return err
	default:
		return ErrUnauthorized
	}
}

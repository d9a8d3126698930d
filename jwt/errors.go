package jwt

import "errors"

var (
	// ErrMalformed reports a token that is structurally invalid or carries unusable claims.
	ErrMalformed = errors.New("token malformed")
	// ErrBadSignature reports a token whose signature or signing method does not verify.
	ErrBadSignature = errors.New("token signature invalid")
	// ErrExpired reports a well-formed, correctly signed token past its expiry.
	ErrExpired = errors.New("token expired")
	// ErrInvalidKey reports signing key material that is missing, unparsable or too short.
	ErrInvalidKey = errors.New("invalid signing key")
)

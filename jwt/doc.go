// Package jwt signs and verifies the compact HMAC tokens handed out by goToken.
//
// # Codec
//
// [Codec] turns a [Claims] set into a signed token string and back. Decoding runs
// structural parsing, the signing-method allow-list and signature verification
// before any claim is trusted; only then is expiry checked. Failures are reported
// as [ErrMalformed], [ErrBadSignature] or [ErrExpired] so that callers can tell a
// stale token from a hostile one.
//
// # Issuer
//
// [Issuer] builds an access/refresh pair for one subject. It is a pure function of
// the subject, the clock, the configured lifetimes and randomness; it never touches
// revocation state.
//
// # What this package must NOT do
//
//   - Consult the revocation store (callers layer that check on top).
//   - Import goToken or any sibling package.
//   - Read signing keys lazily: key problems surface from [NewCodec] at startup.
package jwt

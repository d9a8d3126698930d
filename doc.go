// Package goToken issues, rotates, and revokes stateless bearer tokens.
//
// An [Engine] is assembled once through [Builder] and is then safe for
// concurrent use. It exposes four operations: [Engine.Login] trades credentials
// for an access/refresh pair, [Engine.Refresh] exchanges a refresh token for a
// new pair and burns the old one, [Engine.Logout] revokes both tokens of a pair,
// and [Engine.Authenticate] validates a bearer token for an ordinary request.
//
// # Architecture boundaries
//
// goToken is the public surface. Signing lives in jwt/, revocation backings in
// revocation/, account lookup in principal/, and the step-by-step orchestration
// in internal/flows. The root package maps flow outcomes to errors, metrics,
// audit events, and log lines.
//
// # Error surface
//
// Engine methods return the precise sentinel (for example [ErrTokenRevoked] or
// [ErrUserNotFound]) so that callers can log it. Anything shown to an end user
// should go through [PublicError], which collapses every authentication failure
// into [ErrUnauthorized].
//
// # What this package must NOT do
//
//   - Log or audit raw token strings.
//   - Treat a revocation store failure as "not revoked".
//   - Import net/http; transport lives in middleware/ and httpapi/.
package goToken

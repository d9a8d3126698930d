// Package middleware adapts an authenticator (normally *goToken.Engine) to
// net/http.
//
// # Handlers
//
//   - [Authenticate] reads the bearer token and, when it validates, stores the
//     [goToken.Identity] in the request context. It never rejects a request:
//     a missing, invalid, revoked, or unverifiable token leaves the request
//     anonymous.
//   - [RequireAuthenticated] answers 401 for anonymous requests.
//   - [RequireRole] answers 401 for anonymous requests and 403 for the wrong role.
//   - [Guard] is Authenticate followed by RequireAuthenticated.
//
// # What this package must NOT do
//
//   - Parse or verify tokens itself.
//   - Tell the client why a token was rejected.
package middleware

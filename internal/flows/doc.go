// Package flows contains the orchestration behind every Engine operation.
//
// Each Run function (RunLogin, RunRefresh, RunLogout, RunAuthenticate) takes a
// typed dependency struct and returns a result carrying a Failure kind. The root
// Engine maps kinds to public errors, metrics, audit events, and log fields, so
// the exact reason for a rejection stays internal.
//
// # Architecture boundaries
//
// Flows coordinate the token codec, the pair issuer, the revocation store, and
// the principal store. They own none of them.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import the root package.
//   - Perform I/O other than through the dependency interfaces.
package flows

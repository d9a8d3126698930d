// Package revocation records tokens that must no longer be accepted before their
// natural expiry.
//
// # Architecture boundaries
//
// Entries are keyed by a digest of the raw token string, so nothing here parses or
// verifies tokens. Every entry carries a TTL and disappears on its own once it
// elapses; callers choose the TTL from the token's remaining lifetime.
//
// Two backings are provided: [MemoryStore] for single-process deployments and
// [RedisStore] for fleets that must share revocations.
//
// # What this package must NOT do
//
//   - Decode token claims.
//   - Keep an entry longer than the TTL it was given.
//   - Report a token as accepted when the backing cannot be reached.
package revocation

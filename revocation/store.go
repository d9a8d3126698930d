package revocation

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"time"
)

// Store is the revocation list contract shared by every backing.
type Store interface {
	// Revoke marks token as revoked for ttl. A non-positive ttl is a no-op.
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	// IsRevoked reports whether token is currently revoked. When the backing
	// fails it returns true together with an error wrapping ErrUnavailable.
	IsRevoked(ctx context.Context, token string) (bool, error)
	// Remove deletes a single entry. Removing an absent entry is not an error.
	Remove(ctx context.Context, token string) error
	// Clear drops every entry.
	Clear(ctx context.Context) error
	Close() error
}

// Key returns the storage key for token: the unpadded base64url SHA-256 digest.
func Key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

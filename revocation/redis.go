package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces revocation keys in a shared Redis.
const DefaultRedisPrefix = "blacklisted_token:"

const clearBatch = 500

// RedisStore is a [Store] shared across processes through Redis. Entry expiry is
// delegated to Redis key TTLs.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore wraps an existing client. The caller keeps ownership of the
// client; Close does not close it.
func NewRedisStore(redisClient redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *RedisStore) key(token string) string {
	return s.prefix + Key(token)
}

// revokeScript writes the entry unless it already outlives the requested TTL.
// Keys without an expiry are left alone.
var revokeScript = redis.NewScript(`
local ttl = tonumber(ARGV[1])
local cur = redis.call('PTTL', KEYS[1])
if cur == -1 or cur >= ttl then
	return 0
end
redis.call('SET', KEYS[1], '1', 'PX', ttl)
return 1
`)

// Revoke implements [Store]. An existing entry keeps the later expiry.
func (s *RedisStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	// Sub-millisecond TTLs would be rejected by PX.
	if ttl < time.Millisecond {
		ttl = time.Millisecond
	}
	err := revokeScript.Run(ctx, s.redis, []string{s.key(token)}, ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// IsRevoked implements [Store]. Backing failures report the token as revoked.
func (s *RedisStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := s.redis.Exists(ctx, s.key(token)).Result()
	if err != nil {
		return true, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n > 0, nil
}

// Remove implements [Store].
func (s *RedisStore) Remove(ctx context.Context, token string) error {
	if err := s.redis.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Clear implements [Store]. Only keys under the store prefix are touched. On a
// cluster client every master is scanned.
func (s *RedisStore) Clear(ctx context.Context) error {
	pattern := s.prefix + "*"
	var err error
	if cluster, ok := s.redis.(*redis.ClusterClient); ok {
		err = cluster.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
			return clearNode(ctx, node, pattern)
		})
	} else {
		err = clearNode(ctx, s.redis, pattern)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// clearNode deletes every key matching pattern on a single node. Keys are
// deleted one per command so a batch never spans hash slots.
func clearNode(ctx context.Context, c redis.Cmdable, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := c.Scan(ctx, cursor, pattern, clearBatch).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			_, err := c.Pipelined(ctx, func(p redis.Pipeliner) error {
				for _, k := range keys {
					p.Del(ctx, k)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Close implements [Store]. It is a no-op.
func (s *RedisStore) Close() error {
	return nil
}

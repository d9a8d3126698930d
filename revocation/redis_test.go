package revocation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStoreTest(t *testing.T) (*RedisStore, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return NewRedisStore(rdb, ""), mr, rdb
}

func TestRedisStoreRevokeAndTTL(t *testing.T) {
	s, mr, _ := newRedisStoreTest(t)
	ctx := context.Background()

	if err := s.Revoke(ctx, "tok-a", time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	key := DefaultRedisPrefix + Key("tok-a")
	if !mr.Exists(key) {
		t.Fatalf("expected key %q", key)
	}
	if ttl := mr.TTL(key); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	revoked, err := s.IsRevoked(ctx, "tok-a")
	if err != nil || !revoked {
		t.Fatalf("expected revoked, got %v err=%v", revoked, err)
	}

	mr.FastForward(time.Minute + time.Second)
	revoked, err = s.IsRevoked(ctx, "tok-a")
	if err != nil || revoked {
		t.Fatalf("expected entry to expire, got %v err=%v", revoked, err)
	}
}

func TestRedisStoreNonPositiveTTLIsNoop(t *testing.T) {
	s, mr, _ := newRedisStoreTest(t)
	ctx := context.Background()

	if err := s.Revoke(ctx, "tok", 0); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if len(mr.Keys()) != 0 {
		t.Fatalf("expected no keys, got %v", mr.Keys())
	}
}

func TestRedisStoreSharedAcrossInstances(t *testing.T) {
	s1, _, rdb := newRedisStoreTest(t)
	s2 := NewRedisStore(rdb, "")
	ctx := context.Background()

	if err := s1.Revoke(ctx, "tok", time.Hour); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked, err := s2.IsRevoked(ctx, "tok"); err != nil || !revoked {
		t.Fatalf("second instance should see revocation, got %v err=%v", revoked, err)
	}
}

func TestRedisStoreClearOnlyTouchesPrefix(t *testing.T) {
	s, mr, _ := newRedisStoreTest(t)
	ctx := context.Background()

	for _, tok := range []string{"a", "b", "c"} {
		if err := s.Revoke(ctx, tok, time.Hour); err != nil {
			t.Fatalf("revoke: %v", err)
		}
	}
	if err := mr.Set("unrelated", "x"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := s.Remove(ctx, "a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if revoked, _ := s.IsRevoked(ctx, "a"); revoked {
		t.Fatal("removed token still revoked")
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if revoked, _ := s.IsRevoked(ctx, "b"); revoked {
		t.Fatal("cleared token still revoked")
	}
	if !mr.Exists("unrelated") {
		t.Fatal("clear removed a key outside the prefix")
	}
}

func TestRedisStoreFailsClosed(t *testing.T) {
	s, mr, _ := newRedisStoreTest(t)
	ctx := context.Background()
	mr.Close()

	revoked, err := s.IsRevoked(ctx, "tok")
	if !revoked {
		t.Fatal("unreachable backing must report revoked")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if err := s.Revoke(ctx, "tok", time.Minute); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on revoke, got %v", err)
	}
	if err := s.Clear(ctx); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on clear, got %v", err)
	}
}

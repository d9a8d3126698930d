package revocation

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	nanos atomic.Int64
}

func newFakeClock(start time.Time) *fakeClock {
	c := &fakeClock{}
	c.nanos.Store(start.UnixNano())
	return c
}

func (c *fakeClock) Now() time.Time          { return time.Unix(0, c.nanos.Load()) }
func (c *fakeClock) Advance(d time.Duration) { c.nanos.Add(int64(d)) }

func TestMemoryStoreRevokeAndExpire(t *testing.T) {
	clock := newFakeClock(time.Unix(1_700_000_000, 0))
	s := NewMemoryStore(WithClock(clock.Now), WithSweepInterval(0))
	defer s.Close()
	ctx := context.Background()

	if err := s.Revoke(ctx, "tok-a", time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, err := s.IsRevoked(ctx, "tok-a")
	if err != nil || !revoked {
		t.Fatalf("expected revoked, got %v err=%v", revoked, err)
	}
	if revoked, _ := s.IsRevoked(ctx, "tok-b"); revoked {
		t.Fatal("unrelated token reported revoked")
	}

	clock.Advance(time.Minute)
	if revoked, _ := s.IsRevoked(ctx, "tok-a"); revoked {
		t.Fatal("entry outlived its ttl")
	}
	if s.Len() != 0 {
		t.Fatalf("expired entry should be dropped on lookup, len=%d", s.Len())
	}
}

func TestMemoryStoreNonPositiveTTLIsNoop(t *testing.T) {
	s := NewMemoryStore(WithSweepInterval(0))
	defer s.Close()
	ctx := context.Background()

	if err := s.Revoke(ctx, "tok", 0); err != nil {
		t.Fatalf("revoke zero ttl: %v", err)
	}
	if err := s.Revoke(ctx, "tok", -time.Second); err != nil {
		t.Fatalf("revoke negative ttl: %v", err)
	}
	if revoked, _ := s.IsRevoked(ctx, "tok"); revoked {
		t.Fatal("non-positive ttl must not revoke")
	}
}

func TestMemoryStoreRevokeKeepsLaterExpiry(t *testing.T) {
	clock := newFakeClock(time.Unix(1_700_000_000, 0))
	s := NewMemoryStore(WithClock(clock.Now), WithSweepInterval(0))
	defer s.Close()
	ctx := context.Background()

	_ = s.Revoke(ctx, "tok", time.Hour)
	_ = s.Revoke(ctx, "tok", time.Minute)

	clock.Advance(2 * time.Minute)
	if revoked, _ := s.IsRevoked(ctx, "tok"); !revoked {
		t.Fatal("shorter second revoke must not shorten the entry")
	}
}

func TestMemoryStoreSweep(t *testing.T) {
	clock := newFakeClock(time.Unix(1_700_000_000, 0))
	s := NewMemoryStore(WithClock(clock.Now), WithSweepInterval(0))
	defer s.Close()
	ctx := context.Background()

	_ = s.Revoke(ctx, "short-1", time.Second)
	_ = s.Revoke(ctx, "short-2", time.Second)
	_ = s.Revoke(ctx, "long", time.Hour)

	clock.Advance(time.Minute)
	if removed := s.Sweep(); removed != 2 {
		t.Fatalf("expected 2 swept entries, got %d", removed)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 live entry, got %d", s.Len())
	}
}

func TestMemoryStoreBackgroundSweeper(t *testing.T) {
	s := NewMemoryStore(WithSweepInterval(10 * time.Millisecond))
	defer s.Close()
	ctx := context.Background()

	_ = s.Revoke(ctx, "tok", time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for s.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("sweeper did not purge expired entry")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestMemoryStoreRemoveAndClear(t *testing.T) {
	s := NewMemoryStore(WithSweepInterval(0))
	defer s.Close()
	ctx := context.Background()

	_ = s.Revoke(ctx, "a", time.Hour)
	_ = s.Revoke(ctx, "b", time.Hour)

	if err := s.Remove(ctx, "a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Remove(ctx, "missing"); err != nil {
		t.Fatalf("remove missing: %v", err)
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
}

func TestMemoryStoreCloseIdempotent(t *testing.T) {
	s := NewMemoryStore(WithSweepInterval(time.Millisecond))
	if err := s.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	s := NewMemoryStore(WithSweepInterval(time.Millisecond))
	defer s.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				tok := string(rune('a'+g)) + "-tok"
				_ = s.Revoke(ctx, tok, time.Duration(i%3)*time.Millisecond)
				_, _ = s.IsRevoked(ctx, tok)
			}
		}(g)
	}
	wg.Wait()
}

func TestKeyIsStableAndOpaque(t *testing.T) {
	if Key("abc") != Key("abc") {
		t.Fatal("key must be deterministic")
	}
	if Key("abc") == Key("abd") {
		t.Fatal("distinct tokens must map to distinct keys")
	}
	if len(Key("abc")) != 43 {
		t.Fatalf("expected 43-char digest, got %d", len(Key("abc")))
	}
}

package revocation

import (
	"context"
	"sync"
	"time"
)

// DefaultSweepInterval is how often [MemoryStore] purges expired entries.
const DefaultSweepInterval = 5 * time.Minute

// MemoryOption tunes a [MemoryStore].
type MemoryOption func(*MemoryStore)

// WithSweepInterval overrides the purge period. Non-positive values disable the
// background sweeper; expired entries are then only dropped on lookup.
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(s *MemoryStore) { s.interval = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// MemoryStore is a process-local [Store]. Reads and writes never take a global
// lock.
type MemoryStore struct {
	entries  sync.Map // key -> expiry in unix nanoseconds (int64)
	now      func() time.Time
	interval time.Duration

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewMemoryStore starts the sweeper and returns the store. Call Close to stop it.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		now:      time.Now,
		interval: DefaultSweepInterval,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.interval > 0 {
		s.wg.Add(1)
		go s.sweepLoop()
	}
	return s
}

// Revoke implements [Store].
func (s *MemoryStore) Revoke(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	expiry := s.now().Add(ttl).UnixNano()
	key := Key(token)
	for {
		prev, loaded := s.entries.LoadOrStore(key, expiry)
		if !loaded {
			return nil
		}
		// Keep the later expiry when the same token is revoked twice.
		if prev.(int64) >= expiry {
			return nil
		}
		if s.entries.CompareAndSwap(key, prev, expiry) {
			return nil
		}
	}
}

// IsRevoked implements [Store]. It never fails.
func (s *MemoryStore) IsRevoked(_ context.Context, token string) (bool, error) {
	key := Key(token)
	v, ok := s.entries.Load(key)
	if !ok {
		return false, nil
	}
	if s.now().UnixNano() >= v.(int64) {
		s.entries.CompareAndDelete(key, v)
		return false, nil
	}
	return true, nil
}

// Remove implements [Store].
func (s *MemoryStore) Remove(_ context.Context, token string) error {
	s.entries.Delete(Key(token))
	return nil
}

// Clear implements [Store].
func (s *MemoryStore) Clear(context.Context) error {
	s.entries.Range(func(k, _ any) bool {
		s.entries.Delete(k)
		return true
	})
	return nil
}

// Len returns the number of stored entries, expired ones included until swept.
func (s *MemoryStore) Len() int {
	n := 0
	s.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Sweep removes every expired entry and returns how many were dropped.
func (s *MemoryStore) Sweep() int {
	now := s.now().UnixNano()
	removed := 0
	s.entries.Range(func(k, v any) bool {
		if now >= v.(int64) && s.entries.CompareAndDelete(k, v) {
			removed++
		}
		return true
	})
	return removed
}

// Close stops the sweeper. It is safe to call more than once.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
	return nil
}

func (s *MemoryStore) sweepLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.done:
			return
		}
	}
}

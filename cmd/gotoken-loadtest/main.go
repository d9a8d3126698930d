package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	mrand "math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goToken "github.com/MrEthical07/goToken"
	"github.com/MrEthical07/goToken/password"
	"github.com/MrEthical07/goToken/principal"
	"github.com/MrEthical07/goToken/revocation"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const loadPassword = "load-test-password"

type pairState struct {
	refresh string
	mu      sync.Mutex
}

func main() {
	var (
		tokens      = flag.Int("tokens", 100000, "number of tokens to revoke before the lookup phase")
		users       = flag.Int("users", 1000, "number of principals holding refresh tokens")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "loadtest:", "revocation key prefix")
	)
	flag.Parse()

	if *tokens <= 0 || *users <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "tokens, users, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()
	client, cleanup, err := connect(*redisAddr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer cleanup()

	store := revocation.NewRedisStore(client, *prefix)
	if err := store.Clear(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "clear failed: %v\n", err)
		os.Exit(1)
	}

	revoked := make([]string, *tokens)
	for i := range revoked {
		revoked[i] = randomToken()
	}
	revokeStats := runPhase(len(revoked), *concurrency, func(i int, _ *mrand.Rand) error {
		return store.Revoke(ctx, revoked[i], time.Hour)
	})

	lookupStats := runPhase(*ops, *concurrency, func(_ int, r *mrand.Rand) error {
		token := revoked[r.Intn(len(revoked))]
		if r.Intn(2) == 0 {
			token = randomToken()
		}
		_, err := store.IsRevoked(ctx, token)
		return err
	})

	engine, states, err := seedEngine(ctx, client, *prefix, *users)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer engine.Close()

	refreshStats := runPhase(*ops, *concurrency, func(_ int, r *mrand.Rand) error {
		state := &states[r.Intn(len(states))]
		state.mu.Lock()
		defer state.mu.Unlock()
		pair, err := engine.Refresh(ctx, state.refresh)
		if err != nil {
			return err
		}
		state.refresh = pair.RefreshToken
		return nil
	})

	fmt.Println("---- results ----")
	printStats("revoke", revokeStats)
	printStats("is-revoked", lookupStats)
	printStats("refresh", refreshStats)
}

func connect(addr string) (redis.UniversalClient, func(), error) {
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr != "" {
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		fmt.Printf("using redis at %s\n", addr)
		return client, func() { _ = client.Close() }, nil
	}

	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start miniredis: %w", err)
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
	fmt.Printf("using miniredis at %s\n", mr.Addr())
	return client, func() {
		_ = client.Close()
		mr.Close()
	}, nil
}

// seedEngine logs every principal in once so each worker starts from a live
// refresh token.
func seedEngine(ctx context.Context, client redis.UniversalClient, prefix string, users int) (*goToken.Engine, []pairState, error) {
	hasher, err := password.New(password.Config{Scheme: password.SchemeBcrypt, BcryptCost: bcrypt.MinCost})
	if err != nil {
		return nil, nil, err
	}
	hash, err := hasher.Hash(loadPassword)
	if err != nil {
		return nil, nil, err
	}

	principals := principal.NewMemoryStore(hasher)
	for i := 0; i < users; i++ {
		if err := principals.Put(identityFor(i), hash, principal.RoleCandidate, true); err != nil {
			return nil, nil, err
		}
	}

	key := make([]byte, 64)
	if _, err := rand.Read(key); err != nil {
		return nil, nil, err
	}
	cfg := goToken.DefaultConfig()
	cfg.JWT.SigningKey = key
	cfg.Revocation.Backend = goToken.RevocationRedis
	cfg.Revocation.RedisPrefix = prefix

	engine, err := goToken.New().
		WithConfig(cfg).
		WithRedis(client).
		WithPrincipalStore(principals).
		Build()
	if err != nil {
		return nil, nil, err
	}

	fmt.Printf("seeding %d refresh tokens...\n", users)
	start := time.Now()
	states := make([]pairState, users)
	for i := range states {
		pair, err := engine.Login(ctx, identityFor(i), loadPassword)
		if err != nil {
			_ = engine.Close()
			return nil, nil, fmt.Errorf("login %s: %w", identityFor(i), err)
		}
		states[i].refresh = pair.RefreshToken
	}
	fmt.Printf("seeded in %s\n", time.Since(start).Round(time.Millisecond))
	return engine, states, nil
}

func identityFor(i int) string {
	return fmt.Sprintf("user-%d@load.test", i)
}

func randomToken() string {
	return rand.Text()
}

func runPhase(ops, concurrency int, op func(i int, r *mrand.Rand) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    atomic.Int64
		failures  atomic.Int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := mrand.New(mrand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(cursor.Add(1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(i, r)
				d := time.Since(t0)
				if err != nil {
					failures.Add(1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures.Load())
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	return samples[(len(samples)-1)*p/100]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

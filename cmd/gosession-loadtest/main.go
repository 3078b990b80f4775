// Command gosession-loadtest seeds a session store and measures load and
// save throughput under concurrency. It drives the file backend by default
// (records under a temp directory) and the Redis backend with -backend
// redis; if no Redis address is given, an embedded miniredis is used.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/filestore"
	"github.com/MrEthical07/goSession/redisstore"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func main() {
	var (
		sessions    = flag.Int("sessions", 10000, "number of sessions to seed")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 100000, "operations per phase (load + save)")
		backend     = flag.String("backend", "file", "backend: file or redis")
		root        = flag.String("root", "", "file backend root; if empty, a temp directory is used")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "gs", "redis key prefix")
	)
	flag.Parse()

	if *sessions <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "sessions, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()
	policy := goSession.OnInactivity(24 * time.Hour)

	var (
		store   goSession.Store
		cleanup func()
	)
	switch *backend {
	case "file":
		dir := *root
		if dir == "" {
			tmp, err := os.MkdirTemp("", "gosession-loadtest-*")
			if err != nil {
				fmt.Fprintf(os.Stderr, "temp root: %v\n", err)
				os.Exit(1)
			}
			dir = tmp
			cleanup = func() { _ = os.RemoveAll(tmp) }
		} else {
			cleanup = func() {}
		}
		fs, err := filestore.New(filestore.Config{Root: dir})
		if err != nil {
			fmt.Fprintf(os.Stderr, "file store init: %v\n", err)
			os.Exit(1)
		}
		store = fs
		fmt.Printf("using file store at %s\n", dir)
	case "redis":
		addr := *redisAddr
		if addr == "" {
			addr = os.Getenv("REDIS_ADDR")
		}
		var client redis.UniversalClient
		if addr == "" {
			mr, err := miniredis.Run()
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
				os.Exit(1)
			}
			client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
			cleanup = func() {
				_ = client.Close()
				mr.Close()
			}
			fmt.Printf("using miniredis at %s\n", mr.Addr())
		} else {
			client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
			cleanup = func() { _ = client.Close() }
			fmt.Printf("using redis at %s\n", addr)
		}
		store = redisstore.New(client, *prefix, policy)
	default:
		fmt.Fprintf(os.Stderr, "unknown backend %q\n", *backend)
		os.Exit(2)
	}
	defer cleanup()

	ids := make([]string, *sessions)
	payload := []byte(`{"user":"loadtest","role":"member"}`)
	fmt.Printf("seeding %d sessions...\n", *sessions)
	startSeed := time.Now()
	for i := 0; i < *sessions; i++ {
		now := time.Now().Unix()
		rec := &goSession.Record{Payload: payload, CreatedAt: now, LastActiveAt: now}
		if err := store.Create(ctx, rec); err != nil {
			fmt.Fprintf(os.Stderr, "create failed: %v\n", err)
			os.Exit(1)
		}
		ids[i] = rec.SessionID
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	loadStats := runPhase(ctx, ids, *ops, *concurrency, func(ctx context.Context, id string) error {
		rec, err := store.Load(ctx, id)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("session %s vanished", id)
		}
		return nil
	})
	saveStats := runPhase(ctx, ids, *ops, *concurrency, func(ctx context.Context, id string) error {
		now := time.Now().Unix()
		return store.Save(ctx, &goSession.Record{
			SessionID:    id,
			Payload:      payload,
			CreatedAt:    now - 60,
			LastActiveAt: now,
		})
	})

	fmt.Println("---- results ----")
	printStats("load", loadStats)
	printStats("save", saveStats)
}

func runPhase(ctx context.Context, ids []string, ops, concurrency int, op func(context.Context, string) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				id := ids[r.Intn(len(ids))]
				t0 := time.Now()
				err := op(ctx, id)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
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
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
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

// Package cache provides a sharded in-process key/value cache with
// pluggable eviction strategies (LRU by default), per-entry TTL, bounded
// memory accounting, optional storage tiers, namespaces, and background
// maintenance.
//
// # Design
//
//   - Concurrency: the cache is split into shards, each protected by its
//     own RWMutex. Small caches (capacity <= 100) run unsharded; larger
//     ones default to 16 shards. Unrelated keys in different shards never
//     contend, and background maintenance holds one shard lock at a time.
//
//   - Storage: each shard keeps a map[string]*node for lookups and an
//     intrusive MRU-LRU doubly linked list for ordering. All single-key
//     operations are O(1) expected.
//
//   - Strategies: eviction is pluggable via the policy package. Four
//     strategies ship with the module: lru (move-to-front), lfu (bounded
//     minimum-frequency scan), fifo (insertion order), and ttl
//     (soonest-deadline first, LRU fallback). The shard enforces budgets
//     and performs removals; the strategy picks victims.
//
//   - TTL: entries carry absolute deadlines (UnixNano). Expiration is
//     lazy on read plus a background sweeper (CleanupInterval); expired
//     removals are counted separately from evictions.
//
//   - Memory budget: Options.MaxMemory bounds the estimated byte
//     footprint. Sizes come from Options.Sizer (default: the sampling
//     estimator in the sizeof package). Admission control evicts per the
//     strategy until both the entry and byte budgets hold; an oversized
//     single item is still admitted into an empty shard and logged.
//
//   - Tiers: Options.Tiers chains slower storage layers (bounded memory
//     ring, Redis) behind the shard store. Reads fill through; writes and
//     deletes propagate asynchronously, best-effort.
//
//   - Pressure: with Options.HeapLimit set, a monitor samples heap usage
//     and, on pressure level transitions, sweeps and shrinks the resident
//     set through the normal eviction path.
//
//   - Observability: Options.Metrics receives Hit/Miss/Evict/Expire/Size
//     signals (see metrics/prom for a Prometheus adapter), Stats()
//     returns synchronous counters, and Options.OnEvict observes every
//     eviction and expiration with a reason.
//
// # Basic usage
//
//	c := cache.New[[]byte](cache.Options[[]byte]{Capacity: 10_000})
//	defer c.Close()
//
//	_ = c.Set("a", []byte("1"))
//	if v, ok := c.Get("a"); ok {
//	    _ = v // use value
//	}
//	c.Delete("a")
//
// # With TTL
//
//	_ = c.SetWithTTL("tmp", []byte("v"), 200*time.Millisecond)
//	time.Sleep(300 * time.Millisecond)
//	_, ok := c.Get("tmp") // ok == false (expired)
//
// # Choosing a strategy
//
//	c := cache.New[string](cache.Options[string]{
//	    Capacity: 50_000,
//	    Policy:   lfu.New[string](),
//	})
//
// # Namespaces
//
//	users := c.Namespace("users")
//	_ = users.Set("42", profile)
//	users.Clear() // removes only "users:*" keys
//
// # Tiers
//
//	c := cache.New[Profile](cache.Options[Profile]{
//	    Capacity: 1_000,
//	    Tiers: []tier.Tier[Profile]{
//	        tier.NewRedis[Profile](client, nil, tier.WithPrefix("profiles")),
//	    },
//	})
//
// See Options for all configuration fields and package policy for the
// Policy/Hooks interfaces used to implement custom strategies.
package cache

package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/dkrylovsk/tiercache/policy"
	"github.com/dkrylovsk/tiercache/tier"
)

// Clock provides time in UnixNano; useful for deterministic tests.
type Clock interface{ NowUnixNano() int64 }

// Options configures the cache behavior. Zero values are safe;
// sane defaults are applied in New():
//   - Capacity <= 0   => 100
//   - nil Policy      => LRU
//   - Shards <= 0     => 1 below the sharding threshold, else 16
//   - DefaultTTL == 0 => 5 minutes (set a negative value for "never")
//   - nil Sizer       => sizeof.Estimate
//   - nil Metrics     => NoopMetrics
//   - nil Logger      => discard
type Options[V any] struct {
	// Capacity is the total entry count limit across all shards.
	Capacity int

	// Shards forces an explicit shard count (rounded up to a power of
	// two). Zero picks automatically: caches at or below 100 entries run
	// unsharded, larger ones get 16 shards.
	Shards int

	// Policy is the eviction strategy (lru/lfu/fifo/ttl); nil => LRU.
	Policy policy.Policy[V]

	// DefaultTTL applies to Set when no per-key TTL is provided.
	// Zero picks the 5-minute default; a negative value disables expiry.
	DefaultTTL time.Duration

	// CleanupInterval is the background sweep period. Zero picks the
	// 1-minute default; a negative value disables the sweeper (Cleanup
	// can still be called directly).
	CleanupInterval time.Duration

	// MaxMemory bounds the estimated total byte footprint across shards.
	// Zero disables memory-based eviction.
	MaxMemory int64

	// Sizer estimates the heap footprint of a value on Set.
	// Nil uses the sampling estimator from the sizeof package.
	Sizer func(v V) uint64

	// WarnCacheSize logs a warning when the resident entry count first
	// crosses this threshold. Zero disables the warning.
	WarnCacheSize int

	// Tiers are slower storage layers behind the shard store, ordered
	// nearest first. Reads that miss tier 0 walk them in order; writes
	// and deletes propagate asynchronously, best-effort.
	Tiers []tier.Tier[V]

	// TierTimeout bounds the synchronous read-through on a tier-0 miss.
	// Zero picks 250ms.
	TierTimeout time.Duration

	// OnTierError observes asynchronous tier failures ("set", "delete",
	// "clear"). Errors are additionally logged; they never reach callers.
	OnTierError func(op, key string, err error)

	// Loader fetches a value on cache miss. Used by GetOrLoad.
	Loader func(ctx context.Context, key string) (V, error)

	// OnEvict is called for every eviction and expiration, under the
	// shard lock; keep callbacks lightweight. A panicking callback is
	// recovered and logged, and the eviction proceeds.
	OnEvict func(key string, value V, reason Reason)

	// Metrics receives Hit/Miss/Evict/Expire/Size signals.
	Metrics Metrics

	// Clock overrides the time source (tests). Nil => time.Now().
	Clock Clock

	// Logger receives structured diagnostics. Nil discards.
	Logger *slog.Logger

	// HeapLimit enables the memory-pressure monitor: heap usage is
	// sampled against this byte limit and the cache shrinks on pressure
	// level transitions. Zero disables the monitor.
	HeapLimit uint64

	// PressureInterval is the monitor sampling period. Zero picks 10s.
	PressureInterval time.Duration
}

const (
	defaultCapacity        = 100
	defaultTTL             = 5 * time.Minute
	defaultCleanupInterval = time.Minute
	defaultTierTimeout     = 250 * time.Millisecond
	defaultPressurePeriod  = 10 * time.Second
)

package cache

import (
	"context"
	"time"
)

// Cache is a sharded, in-memory key/value cache with TTL expiration,
// a pluggable eviction strategy, and optional storage tiers.
// All methods are safe for concurrent use by multiple goroutines.
//
// Typical complexity for single-key operations is amortized O(1):
// a map lookup plus constant-time list adjustments under a shard lock.
type Cache[V any] interface {
	// Set inserts or updates key using the cache's DefaultTTL.
	// Returns ErrInvalidKey for an empty or blank key.
	Set(key string, value V) error

	// SetWithTTL inserts or updates key with a per-key TTL. A zero ttl
	// applies DefaultTTL; a negative ttl disables expiration. The same
	// convention holds everywhere a TTL is accepted (SetMany, Warmup,
	// tier options).
	SetWithTTL(key string, value V, ttl time.Duration) error

	// Add inserts key only if it is not present, using DefaultTTL.
	// Returns false if the key already exists (no update is performed).
	Add(key string, value V) bool

	// Get returns the value for key and a presence flag. On hit, the
	// entry is promoted according to the policy; on a shard miss,
	// configured tiers are consulted and a tier hit is filled back.
	Get(key string) (V, bool)

	// GetOrLoad returns the value for key, loading it via Options.Loader
	// on miss. Concurrent loads for the same key are coalesced.
	GetOrLoad(ctx context.Context, key string) (V, error)

	// Has reports whether key is resident and unexpired, without
	// promoting the entry or counting a hit/miss.
	Has(key string) bool

	// Delete removes key if present and returns true on success.
	Delete(key string) bool

	// Clear removes all entries from every shard and tier.
	Clear()

	// Len returns the total number of resident entries across all shards.
	Len() int

	// Keys returns a snapshot of all resident keys.
	Keys() []string

	// SetMany stores every entry with one shared TTL (zero = DefaultTTL,
	// negative = never expires).
	SetMany(entries map[string]V, ttl time.Duration) error

	// GetMany looks up every key, results aligned with the input order.
	GetMany(keys []string) []GetResult[V]

	// DeleteMany removes every listed key.
	DeleteMany(keys []string)

	// Warmup bulk-loads entries concurrently with per-item failure
	// isolation; the report counts successes and failures.
	Warmup(ctx context.Context, items []WarmupItem[V]) WarmupReport

	// Namespace returns a key-prefix view over this cache.
	Namespace(name string) *View[V]

	// Stats returns a snapshot of the cache counters.
	Stats() Stats

	// ResetStats zeroes the accumulating counters.
	ResetStats()

	// Cleanup sweeps expired entries from every shard immediately.
	Cleanup()

	// Close stops background work and releases all entries. Idempotent;
	// no callback fires against a closed instance.
	Close() error
}

// Compile-time check: the implementation satisfies the interface.
var _ Cache[any] = (*cache[any])(nil)

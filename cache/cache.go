package cache

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dkrylovsk/tiercache/internal/singleflight"
	"github.com/dkrylovsk/tiercache/internal/util"
	"github.com/dkrylovsk/tiercache/policy/lru"
	"github.com/dkrylovsk/tiercache/sizeof"
)

// cache is a sharded in-memory KV store with a pluggable eviction policy,
// TTL expiration, optional storage tiers, and background maintenance.
// All methods are safe for concurrent use by multiple goroutines.
type cache[V any] struct {
	shards []*shard[V]
	opt    Options[V]
	logger *slog.Logger

	closed   atomic.Bool
	done     chan struct{}
	bg       sync.WaitGroup // sweeper + pressure monitor
	tierMu   sync.Mutex     // serializes tier dispatch with Close
	tierWG   sync.WaitGroup // in-flight async tier writes
	warnedSz atomic.Bool    // WarnCacheSize fired

	// heapUsed is swappable for pressure-monitor tests.
	heapUsed func() uint64

	// singleflight group coalescing concurrent loads in GetOrLoad.
	sf singleflight.Group[V]
}

// New constructs a cache with the provided Options (see Options for the
// defaults applied here). The background sweeper and, when HeapLimit is
// set, the memory-pressure monitor start immediately; Close stops them.
func New[V any](opt Options[V]) Cache[V] {
	if opt.Capacity <= 0 {
		opt.Capacity = defaultCapacity
	}
	if opt.Policy == nil {
		opt.Policy = lru.New[V]()
	}
	if opt.DefaultTTL == 0 {
		opt.DefaultTTL = defaultTTL
	}
	if opt.CleanupInterval == 0 {
		opt.CleanupInterval = defaultCleanupInterval
	}
	if opt.TierTimeout <= 0 {
		opt.TierTimeout = defaultTierTimeout
	}
	if opt.PressureInterval <= 0 {
		opt.PressureInterval = defaultPressurePeriod
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Logger == nil {
		opt.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opt.Sizer == nil {
		opt.Sizer = func(v V) uint64 { return sizeof.Estimate(v) }
	}

	sh := util.ShardCount(opt.Shards, opt.Capacity)
	for sh > opt.Capacity && sh > 1 {
		sh /= 2 // keep at least one entry of capacity per shard (stays pow2)
	}

	// Budgets are floor-divided with the remainder spread over the first
	// shards, so the per-shard limits sum exactly to the configured caps
	// and the resident totals can never exceed Capacity or MaxMemory.
	capBase, capRem := opt.Capacity/sh, opt.Capacity%sh
	var memBase, memRem int64
	if opt.MaxMemory > 0 {
		memBase, memRem = opt.MaxMemory/int64(sh), opt.MaxMemory%int64(sh)
	}

	shards := make([]*shard[V], sh)
	for i := range shards {
		shardCap := capBase
		if i < capRem {
			shardCap++
		}
		var shardMem int64
		if opt.MaxMemory > 0 {
			shardMem = memBase
			if int64(i) < memRem {
				shardMem++
			}
			if shardMem == 0 {
				shardMem = 1 // a zero share must not disable the budget
			}
		}
		shards[i] = newShard(shardCap, shardMem, opt.Policy, &opt)
	}

	c := &cache[V]{
		shards:   shards,
		opt:      opt,
		logger:   opt.Logger,
		done:     make(chan struct{}),
		heapUsed: heapInUse,
	}

	if opt.CleanupInterval > 0 {
		c.bg.Add(1)
		go c.sweepLoop()
	}
	if opt.HeapLimit > 0 {
		c.bg.Add(1)
		go c.pressureLoop()
	}
	return c
}

// ---- Cache[V] implementation ----

// Set inserts or updates key with the cache's DefaultTTL.
// The key must not be empty or blank.
func (c *cache[V]) Set(key string, value V) error {
	return c.SetWithTTL(key, value, c.opt.DefaultTTL)
}

// SetWithTTL inserts or updates key with a per-key TTL. A zero ttl
// applies the cache's DefaultTTL; a negative ttl disables expiration
// for this entry.
func (c *cache[V]) SetWithTTL(key string, value V, ttl time.Duration) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if c.closed.Load() {
		return ErrClosed
	}

	size := c.opt.Sizer(value)
	c.shardFor(key).Set(key, value, c.deadline(ttl), size)
	c.warnIfLarge()
	c.writeTiers(key, value, ttl)
	return nil
}

// Add inserts key only if absent, using DefaultTTL.
// Returns false if the key already exists (no update is performed).
func (c *cache[V]) Add(key string, value V) bool {
	if validateKey(key) != nil || c.closed.Load() {
		return false
	}
	size := c.opt.Sizer(value)
	ok := c.shardFor(key).Add(key, value, c.deadline(c.opt.DefaultTTL), size)
	if ok {
		c.warnIfLarge()
		c.writeTiers(key, value, c.opt.DefaultTTL)
	}
	return ok
}

// Get returns the value for key and a presence flag. On a shard hit the
// entry is promoted per the active policy. On a miss, configured tiers
// are consulted in order and the first hit is filled back into the shard
// store; the shard miss still counts as a miss in stats.
func (c *cache[V]) Get(key string) (V, bool) {
	if c.closed.Load() {
		var zero V
		return zero, false
	}
	if v, ok := c.shardFor(key).Get(key); ok {
		return v, true
	}
	return c.readTiers(key)
}

// Has reports whether key is resident and unexpired in the shard store.
// Unlike Get it does not promote the entry and does not consult tiers.
func (c *cache[V]) Has(key string) bool {
	if c.closed.Load() {
		return false
	}
	return c.shardFor(key).Has(key)
}

// Delete removes key if present and returns true on success.
// The removal propagates to tiers asynchronously.
func (c *cache[V]) Delete(key string) bool {
	if c.closed.Load() {
		return false
	}
	ok := c.shardFor(key).Remove(key)
	c.deleteTiers(key)
	return ok
}

// Clear releases every entry across all shards and tiers.
func (c *cache[V]) Clear() {
	if c.closed.Load() {
		return
	}
	for _, s := range c.shards {
		s.Clear()
	}
	c.clearTiers()
}

// Len returns the total number of resident entries across all shards.
func (c *cache[V]) Len() int {
	total := 0
	for _, s := range c.shards {
		total += s.Len()
	}
	return total
}

// Keys returns a snapshot of all resident keys. Shards are visited one
// at a time; the snapshot is not atomic across shards.
func (c *cache[V]) Keys() []string {
	keys := make([]string, 0, c.Len())
	for _, s := range c.shards {
		keys = s.Keys(keys)
	}
	return keys
}

// SetMany stores every entry with one shared TTL (zero = DefaultTTL,
// negative = never expires). An invalid key aborts with ErrInvalidKey
// before any entry is written.
func (c *cache[V]) SetMany(entries map[string]V, ttl time.Duration) error {
	for key := range entries {
		if err := validateKey(key); err != nil {
			return err
		}
	}
	for key, value := range entries {
		if err := c.SetWithTTL(key, value, ttl); err != nil {
			return err
		}
	}
	return nil
}

// GetResult is one element of a GetMany response, aligned with the
// requested key order.
type GetResult[V any] struct {
	Value V
	OK    bool
}

// GetMany looks up every key and returns per-key results in input order.
func (c *cache[V]) GetMany(keys []string) []GetResult[V] {
	out := make([]GetResult[V], len(keys))
	for i, key := range keys {
		out[i].Value, out[i].OK = c.Get(key)
	}
	return out
}

// DeleteMany removes every listed key.
func (c *cache[V]) DeleteMany(keys []string) {
	for _, key := range keys {
		c.Delete(key)
	}
}

// GetOrLoad returns the value for key; on miss it loads via
// Options.Loader, coalescing concurrent loads for the same key
// (singleflight). If no Loader is configured, returns ErrNoLoader.
func (c *cache[V]) GetOrLoad(ctx context.Context, key string) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	if c.opt.Loader == nil {
		var zero V
		return zero, ErrNoLoader
	}

	return c.sf.Do(ctx, key, func() (V, error) {
		// double-check after flight join
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := c.opt.Loader(ctx, key)
		if err == nil {
			err = c.Set(key, v)
		}
		return v, err
	})
}

// Namespace returns a key-prefix view over this cache. All operations on
// the view transparently prepend "name:".
func (c *cache[V]) Namespace(name string) *View[V] {
	return &View[V]{c: c, prefix: name + ":"}
}

// Cleanup sweeps expired entries from every shard immediately, one shard
// lock at a time.
func (c *cache[V]) Cleanup() {
	if c.closed.Load() {
		return
	}
	swept := 0
	for _, s := range c.shards {
		swept += s.Cleanup()
	}
	if swept > 0 {
		c.logger.Debug("expired entries swept", slog.Int("count", swept))
	}
}

// Close stops the background sweeper and pressure monitor, waits for
// in-flight tier writes, and releases all entries. It is idempotent and
// guarantees that no timer callback runs against a torn-down instance.
func (c *cache[V]) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(c.done)
	c.bg.Wait()
	// A dispatcher holding tierMu either finished its Add before we
	// acquire the lock or will observe closed and skip, so the Wait below
	// never races a concurrent Add.
	c.tierMu.Lock()
	c.tierWG.Wait()
	c.tierMu.Unlock()
	for _, s := range c.shards {
		s.Clear()
	}
	return nil
}

// ---- background sweeper ----

func (c *cache[V]) sweepLoop() {
	defer c.bg.Done()

	ticker := time.NewTicker(c.opt.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.Cleanup()
		}
	}
}

// ---- helpers ----

// shardFor picks a shard by hashing the key. The hash is a pure function
// of the key bytes, so a key always routes to the same shard for the
// lifetime of the instance.
func (c *cache[V]) shardFor(key string) *shard[V] {
	idx := util.ShardIndex(util.HashKey(key), len(c.shards))
	return c.shards[idx]
}

// deadline converts a relative TTL into an absolute UnixNano deadline.
// A zero ttl falls back to the cache's DefaultTTL; a negative ttl (after
// the fallback) returns 0, meaning no expiration.
func (c *cache[V]) deadline(ttl time.Duration) int64 {
	if ttl == 0 {
		ttl = c.opt.DefaultTTL
	}
	if ttl < 0 {
		return 0
	}
	now := time.Now().UnixNano()
	if c.opt.Clock != nil {
		now = c.opt.Clock.NowUnixNano()
	}
	return now + int64(ttl)
}

// warnIfLarge logs once when the resident set first crosses the
// configured soft threshold.
func (c *cache[V]) warnIfLarge() {
	limit := c.opt.WarnCacheSize
	if limit <= 0 || c.warnedSz.Load() {
		return
	}
	if n := c.Len(); n > limit && c.warnedSz.CompareAndSwap(false, true) {
		c.logger.Warn("cache size crossed the configured warning threshold",
			slog.Int("size", n),
			slog.Int("threshold", limit))
	}
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	return nil
}

// ---- tier chain ----

// readTiers walks the configured tiers on a shard miss. The first hit is
// filled back into the shard store (keeping its remaining envelope TTL is
// not possible, so DefaultTTL applies) and returned. Tier errors degrade
// to a miss.
func (c *cache[V]) readTiers(key string) (V, bool) {
	var zero V
	if len(c.opt.Tiers) == 0 {
		return zero, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.opt.TierTimeout)
	defer cancel()

	for _, t := range c.opt.Tiers {
		v, err := t.Get(ctx, key)
		if err != nil {
			continue
		}
		// Fill tier 0 so the next read is a shard hit.
		size := c.opt.Sizer(v)
		c.shardFor(key).Set(key, v, c.deadline(c.opt.DefaultTTL), size)
		return v, true
	}
	return zero, false
}

// addTierWork registers one async tier operation with the close path.
// The lock makes the closed check and the Add atomic with respect to
// Close's Wait; a false return means the cache is shutting down.
func (c *cache[V]) addTierWork() bool {
	c.tierMu.Lock()
	defer c.tierMu.Unlock()
	if c.closed.Load() {
		return false
	}
	c.tierWG.Add(1)
	return true
}

// writeTiers propagates a write to tiers >= 1 asynchronously. Failures
// are reported to OnTierError and the logger, never to the caller, so a
// slow or broken persistent backend cannot stall tier-0 latency.
func (c *cache[V]) writeTiers(key string, value V, ttl time.Duration) {
	if len(c.opt.Tiers) == 0 || !c.addTierWork() {
		return
	}
	go func() {
		defer c.tierWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.opt.TierTimeout)
		defer cancel()
		for _, t := range c.opt.Tiers {
			if err := t.Set(ctx, key, value, ttl); err != nil {
				c.tierError("set", key, err)
			}
		}
	}()
}

func (c *cache[V]) deleteTiers(key string) {
	if len(c.opt.Tiers) == 0 || !c.addTierWork() {
		return
	}
	go func() {
		defer c.tierWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.opt.TierTimeout)
		defer cancel()
		for _, t := range c.opt.Tiers {
			if err := t.Delete(ctx, key); err != nil {
				c.tierError("delete", key, err)
			}
		}
	}()
}

func (c *cache[V]) clearTiers() {
	if len(c.opt.Tiers) == 0 || !c.addTierWork() {
		return
	}
	go func() {
		defer c.tierWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.opt.TierTimeout)
		defer cancel()
		for _, t := range c.opt.Tiers {
			if err := t.Clear(ctx); err != nil {
				c.tierError("clear", "", err)
			}
		}
	}()
}

func (c *cache[V]) tierError(op, key string, err error) {
	c.logger.Error("tier operation failed",
		slog.String("op", op),
		slog.String("key", key),
		slog.Any("error", err))
	if cb := c.opt.OnTierError; cb != nil {
		cb(op, key, err)
	}
}

package cache

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dkrylovsk/tiercache/internal/util"
	"github.com/dkrylovsk/tiercache/policy"
)

// shard is an independent partition of the cache with its own lock, map,
// and an intrusive doubly linked list (head=MRU, tail=LRU). The active
// policy decides ordering and victim selection through hooks; the shard
// owns the map, the byte accounting, and the actual removals.
type shard[V any] struct {
	// ---- guarded by mu ----
	mu     sync.RWMutex
	m      map[string]*node[V]
	head   *node[V] // MRU
	tail   *node[V] // LRU
	len    int      // number of resident entries
	mem    int64    // estimated resident bytes
	cap    int      // per-shard entry capacity
	maxMem int64    // per-shard byte limit (0 = disabled)

	pol policy.ShardPolicy[V]

	clock   Clock // nil = wall clock
	logger  *slog.Logger
	metrics Metrics
	onEvict func(key string, value V, reason Reason)

	// ---- hot counters (separate cache lines to avoid false sharing) ----
	_       util.CacheLinePad
	hits    util.PaddedAtomicUint64
	misses  util.PaddedAtomicUint64
	sets    util.PaddedAtomicUint64
	deletes util.PaddedAtomicUint64
	evicts  util.PaddedAtomicUint64
	expires util.PaddedAtomicUint64
}

// newShard initializes a shard with per-shard budgets and a shard-local
// policy instance bound to this shard's list hooks.
func newShard[V any](capacity int, maxMem int64, pol policy.Policy[V], opt *Options[V]) *shard[V] {
	s := &shard[V]{
		m:       make(map[string]*node[V], capacity),
		cap:     capacity,
		maxMem:  maxMem,
		clock:   opt.Clock,
		logger:  opt.Logger,
		metrics: opt.Metrics,
		onEvict: opt.OnEvict,
	}
	s.pol = pol.New(shardHooks[V]{s: s})
	return s
}

// Set inserts or updates an entry.
// exp is an absolute UnixNano deadline (0 = no TTL); size is the
// estimated byte footprint of the value.
func (s *shard[V]) Set(key string, v V, exp int64, size uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sets.Add(1)

	if n, ok := s.m[key]; ok {
		// In-place update: subtract the old footprint before adding the
		// new one, otherwise the entry is double counted.
		s.mem -= int64(n.size)
		n.val = v
		n.exp = exp
		n.size = size
		s.mem += int64(size)

		s.pol.OnUpdate(n)
		s.trimAfterUpdateLocked(n)
		s.metrics.Size(s.len, s.mem)
		return
	}

	s.admitLocked(size)
	s.insertLocked(key, v, exp, size)
	s.metrics.Size(s.len, s.mem)
}

// Add inserts only if the key is absent. Returns false on duplicate.
func (s *shard[V]) Add(key string, v V, exp int64, size uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.m[key]; exists {
		return false
	}
	s.sets.Add(1)
	s.admitLocked(size)
	s.insertLocked(key, v, exp, size)
	s.metrics.Size(s.len, s.mem)
	return true
}

// Get returns the value and promotes the entry according to the policy.
// An expired entry is removed at read time and counted as a miss.
func (s *shard[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.m[key]
	if !ok {
		s.misses.Add(1)
		s.metrics.Miss()
		var zero V
		return zero, false
	}
	if s.expiredLocked(n) {
		s.expireLocked(n)
		s.misses.Add(1)
		s.metrics.Miss()
		s.metrics.Size(s.len, s.mem)
		var zero V
		return zero, false
	}

	n.access++
	n.lastAccess = s.now()
	s.pol.OnGet(n)
	s.hits.Add(1)
	s.metrics.Hit()
	return n.val, true
}

// Has reports presence without promoting the entry or touching the
// hit/miss counters. Expired entries are still pruned on the spot.
func (s *shard[V]) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.m[key]
	if !ok {
		return false
	}
	if s.expiredLocked(n) {
		s.expireLocked(n)
		s.metrics.Size(s.len, s.mem)
		return false
	}
	return true
}

// Remove deletes an entry by key. Returns true if the entry existed.
func (s *shard[V]) Remove(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.m[key]
	if !ok {
		return false
	}
	s.pol.OnRemove(n)
	s.unlinkLocked(n)
	delete(s.m, key)
	s.deletes.Add(1)
	s.metrics.Size(s.len, s.mem)
	return true
}

// Clear releases every entry. Explicit clearing counts as deletes, not
// evictions, and does not run the eviction callback.
func (s *shard[V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.m {
		s.pol.OnRemove(n)
	}
	s.deletes.Add(uint64(s.len))
	s.m = make(map[string]*node[V])
	s.head, s.tail = nil, nil
	s.len = 0
	s.mem = 0
	s.metrics.Size(0, 0)
}

// Len returns the number of resident entries in this shard.
func (s *shard[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.len
}

// Mem returns the estimated resident bytes in this shard.
func (s *shard[V]) Mem() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mem
}

// Keys appends all resident keys to dst and returns it.
func (s *shard[V]) Keys(dst []string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for k := range s.m {
		dst = append(dst, k)
	}
	return dst
}

// KeysWithPrefix appends resident keys carrying the prefix to dst.
func (s *shard[V]) KeysWithPrefix(dst []string, prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for k := range s.m {
		if strings.HasPrefix(k, prefix) {
			dst = append(dst, k)
		}
	}
	return dst
}

// RemovePrefix deletes every entry whose key carries the prefix and
// returns how many were removed. Used by namespace Clear; it must never
// touch keys outside the prefix.
func (s *shard[V]) RemovePrefix(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, n := range s.m {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		s.pol.OnRemove(n)
		s.unlinkLocked(n)
		delete(s.m, k)
		removed++
	}
	if removed > 0 {
		s.deletes.Add(uint64(removed))
		s.metrics.Size(s.len, s.mem)
	}
	return removed
}

// Cleanup removes every expired entry and returns how many were swept.
func (s *shard[V]) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	swept := 0
	// Collect first: expireLocked mutates the map we'd be ranging over.
	var dead []*node[V]
	for _, n := range s.m {
		if n.exp != 0 && now > n.exp {
			dead = append(dead, n)
		}
	}
	for _, n := range dead {
		s.expireLocked(n)
		swept++
	}
	if swept > 0 {
		s.metrics.Size(s.len, s.mem)
	}
	return swept
}

// ShrinkTo evicts entries (through the policy) until at most target
// remain. Used by the memory-pressure monitor.
func (s *shard[V]) ShrinkTo(target int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if target < 0 {
		target = 0
	}
	removed := 0
	for s.len > target {
		victim := s.pol.Victim()
		if victim == nil {
			break
		}
		s.evictLocked(victim.(*node[V]), ReasonPressure)
		removed++
	}
	if removed > 0 {
		s.metrics.Size(s.len, s.mem)
	}
	return removed
}

// -------------------- internals (mu held) --------------------

func (s *shard[V]) now() int64 {
	if s.clock != nil {
		return s.clock.NowUnixNano()
	}
	return time.Now().UnixNano()
}

func (s *shard[V]) expiredLocked(n *node[V]) bool {
	return n.exp != 0 && s.now() > n.exp
}

// admitLocked makes room for a new entry of the given size: evict per
// policy until the entry count and memory budget hold or the shard is
// empty. An item larger than the whole budget is still admitted into an
// empty shard; that condition is logged rather than rejected.
func (s *shard[V]) admitLocked(incoming uint64) {
	for s.len >= s.cap && s.len > 0 {
		victim := s.pol.Victim()
		if victim == nil {
			break
		}
		s.evictLocked(victim.(*node[V]), ReasonCapacity)
	}
	if s.maxMem <= 0 {
		return
	}
	for s.mem+int64(incoming) > s.maxMem && s.len > 0 {
		victim := s.pol.Victim()
		if victim == nil {
			break
		}
		s.evictLocked(victim.(*node[V]), ReasonMemory)
	}
	if s.len == 0 && int64(incoming) > s.maxMem {
		s.logger.Warn("admitting item larger than the shard memory budget",
			slog.Uint64("size_bytes", incoming),
			slog.Int64("max_memory", s.maxMem))
	}
}

// trimAfterUpdateLocked restores the memory budget after an in-place
// update grew an entry. The updated node itself is never chosen, so a
// Set is always observable by the next Get.
func (s *shard[V]) trimAfterUpdateLocked(updated *node[V]) {
	if s.maxMem <= 0 {
		return
	}
	for s.mem > s.maxMem && s.len > 1 {
		victim := s.pol.Victim()
		if victim == nil || victim.(*node[V]) == updated {
			break
		}
		s.evictLocked(victim.(*node[V]), ReasonMemory)
	}
	if s.mem > s.maxMem {
		s.logger.Warn("resident entry exceeds the shard memory budget after update",
			slog.String("key", updated.key),
			slog.Uint64("size_bytes", updated.size),
			slog.Int64("max_memory", s.maxMem))
	}
}

func (s *shard[V]) insertLocked(key string, v V, exp int64, size uint64) {
	now := s.now()
	n := &node[V]{key: key, val: v, exp: exp, size: size, created: now, lastAccess: now}
	s.m[key] = n
	s.pol.OnAdd(n)
}

// evictLocked removes a still-valid entry to satisfy a budget.
func (s *shard[V]) evictLocked(n *node[V], reason Reason) {
	s.pol.OnRemove(n)
	s.unlinkLocked(n)
	delete(s.m, n.key)
	s.evicts.Add(1)
	s.metrics.Evict(reason)
	s.callbackLocked(n, reason)
}

// expireLocked removes an entry whose TTL elapsed. Expiration is counted
// separately from eviction.
func (s *shard[V]) expireLocked(n *node[V]) {
	s.pol.OnRemove(n)
	s.unlinkLocked(n)
	delete(s.m, n.key)
	s.expires.Add(1)
	s.metrics.Expire()
	s.callbackLocked(n, ReasonExpired)
}

// callbackLocked runs the eviction callback. A panicking callback must
// not corrupt the shard, so it is recovered and logged and the removal
// stands.
func (s *shard[V]) callbackLocked(n *node[V], reason Reason) {
	cb := s.onEvict
	if cb == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("eviction callback panicked",
				slog.String("key", n.key),
				slog.String("reason", reason.String()),
				slog.Any("panic", r))
		}
	}()
	cb(n.key, n.val, reason)
}

// insertFront inserts n at MRU in O(1).
func (s *shard[V]) insertFront(n *node[V]) {
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
	s.len++
	s.mem += int64(n.size)
}

// moveToFront promotes n to MRU in O(1): detach, then re-attach at head.
func (s *shard[V]) moveToFront(n *node[V]) {
	if n == s.head {
		return
	}
	// detach
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if s.tail == n {
		s.tail = n.prev
	}
	// insert at head
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
}

// unlinkLocked removes n from the list and updates counters in O(1).
func (s *shard[V]) unlinkLocked(n *node[V]) {
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if s.head == n {
		s.head = n.next
	}
	if s.tail == n {
		s.tail = n.prev
	}
	n.prev, n.next = nil, nil
	s.len--
	s.mem -= int64(n.size)
	if s.mem < 0 {
		s.mem = 0
	}
}

// back returns the current LRU node in O(1).
func (s *shard[V]) back() *node[V] { return s.tail }

// -------------------- policy hooks --------------------

// shardHooks adapts the shard's list operations to policy.Hooks.
// All hook calls happen under the shard lock.
type shardHooks[V any] struct{ s *shard[V] }

func (h shardHooks[V]) MoveToFront(x policy.Node[V]) { h.s.moveToFront(x.(*node[V])) }
func (h shardHooks[V]) PushFront(x policy.Node[V])   { h.s.insertFront(x.(*node[V])) }
func (h shardHooks[V]) Len() int                     { return h.s.len }

func (h shardHooks[V]) Back() policy.Node[V] {
	if n := h.s.back(); n != nil {
		return n
	}
	return nil
}

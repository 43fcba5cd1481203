// Package lfu implements least-frequently-used eviction with a bounded
// victim scan.
package lfu

import "github.com/dkrylovsk/tiercache/policy"

// DefaultScanLimit caps how many resident entries a single Victim call
// inspects. A full scan is O(n) per eviction; capping it trades exactness
// for a latency ceiling, which is the right trade on the Set hot path.
// Shards already bound n, so the scan rarely hits the cap in practice.
const DefaultScanLimit = 64

// lfu tracks shard membership itself (map iteration doubles as the
// candidate sample) and picks the entry with the minimum access count,
// breaking ties by earliest creation time.
type lfu[V any] struct {
	h       policy.Hooks[V]
	members map[policy.Node[V]]struct{}
	limit   int
}

type factory[V any] struct{ limit int }

// New returns a Policy factory with the default victim scan limit.
func New[V any]() policy.Policy[V] { return factory[V]{limit: DefaultScanLimit} }

// NewWithScanLimit returns a Policy factory with a custom victim scan
// limit. limit <= 0 falls back to DefaultScanLimit.
func NewWithScanLimit[V any](limit int) policy.Policy[V] {
	if limit <= 0 {
		limit = DefaultScanLimit
	}
	return factory[V]{limit: limit}
}

func (f factory[V]) New(h policy.Hooks[V]) policy.ShardPolicy[V] {
	return &lfu[V]{
		h:       h,
		members: make(map[policy.Node[V]]struct{}),
		limit:   f.limit,
	}
}

// OnAdd places the entry in the list (kept for diagnostics and Back
// fallback) and registers it as a victim candidate.
func (p *lfu[V]) OnAdd(n policy.Node[V]) {
	p.h.PushFront(n)
	p.members[n] = struct{}{}
}

// OnGet does not touch the list; frequency lives on the node itself.
func (p *lfu[V]) OnGet(_ policy.Node[V]) {}

// OnUpdate does not reorder; an update is not a read.
func (p *lfu[V]) OnUpdate(_ policy.Node[V]) {}

// OnRemove forgets the node.
func (p *lfu[V]) OnRemove(n policy.Node[V]) { delete(p.members, n) }

// Victim scans up to the configured limit of members and returns the one
// with the lowest access count, ties broken by earliest CreatedAt.
// Map iteration order is randomized, so repeated bounded scans sample
// different candidates; with small shards the scan is exhaustive.
func (p *lfu[V]) Victim() policy.Node[V] {
	var best policy.Node[V]
	scanned := 0
	for n := range p.members {
		if best == nil || less(n, best) {
			best = n
		}
		scanned++
		if scanned >= p.limit {
			break
		}
	}
	if best == nil {
		return p.h.Back()
	}
	return best
}

func less[V any](a, b policy.Node[V]) bool {
	ac, bc := a.AccessCount(), b.AccessCount()
	if ac != bc {
		return ac < bc
	}
	return a.CreatedAt() < b.CreatedAt()
}

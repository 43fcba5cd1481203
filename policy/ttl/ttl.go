// Package ttl implements deadline-first eviction: the entry closest to
// expiring is removed first, entries without a TTL are never selected
// ahead of one that has a deadline.
package ttl

import "github.com/dkrylovsk/tiercache/policy"

// DefaultScanLimit caps the number of candidates a Victim call inspects.
const DefaultScanLimit = 64

// ttl keeps the shard list in recency order (reads promote) so that when
// no resident entry carries a deadline the victim falls back to the LRU
// tail. Entries with a deadline are tracked in a candidate set.
type ttl[V any] struct {
	h     policy.Hooks[V]
	dated map[policy.Node[V]]struct{} // only nodes with ExpiresAt != 0
	limit int
}

type factory[V any] struct{ limit int }

// New returns a Policy factory that constructs per-shard TTL-first instances.
func New[V any]() policy.Policy[V] { return factory[V]{limit: DefaultScanLimit} }

func (f factory[V]) New(h policy.Hooks[V]) policy.ShardPolicy[V] {
	return &ttl[V]{
		h:     h,
		dated: make(map[policy.Node[V]]struct{}),
		limit: f.limit,
	}
}

// OnAdd places the entry at MRU and tracks it if it carries a deadline.
func (p *ttl[V]) OnAdd(n policy.Node[V]) {
	p.h.PushFront(n)
	if n.ExpiresAt() != 0 {
		p.dated[n] = struct{}{}
	}
}

// OnGet promotes for the LRU fallback ordering.
func (p *ttl[V]) OnGet(n policy.Node[V]) { p.h.MoveToFront(n) }

// OnUpdate re-checks deadline membership: an update may add or drop a TTL.
func (p *ttl[V]) OnUpdate(n policy.Node[V]) {
	p.h.MoveToFront(n)
	if n.ExpiresAt() != 0 {
		p.dated[n] = struct{}{}
	} else {
		delete(p.dated, n)
	}
}

// OnRemove forgets the node.
func (p *ttl[V]) OnRemove(n policy.Node[V]) { delete(p.dated, n) }

// Victim returns the tracked entry with the soonest deadline (bounded
// scan). With no dated entries resident it falls back to the LRU tail.
func (p *ttl[V]) Victim() policy.Node[V] {
	var best policy.Node[V]
	scanned := 0
	for n := range p.dated {
		if best == nil || n.ExpiresAt() < best.ExpiresAt() {
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

package cache

// node is an intrusive doubly linked list element owned by a shard.
// It stores the key/value alongside list links and the access metadata
// that eviction strategies and TTL/memory accounting rely on.
type node[V any] struct {
	key string
	val V

	// Intrusive list links: head is MRU, tail is LRU.
	prev *node[V]
	next *node[V]

	// created is the admission time (UnixNano). An in-place update keeps
	// it; only a fresh insert after removal gets a new one.
	created int64

	// lastAccess is the time of the most recent read (UnixNano).
	lastAccess int64

	// exp is the absolute expiration deadline in UnixNano.
	// Zero means "no TTL".
	exp int64

	// access counts reads served by this entry (LFU victim selection).
	access uint64

	// size is the estimated heap footprint in bytes.
	size uint64
}

// Key returns the node key (part of policy.Node).
func (n *node[V]) Key() string { return n.key }

// Value returns a pointer to the stored value (part of policy.Node).
// NOTE: callers must only read/write through this pointer while holding
// the shard lock; otherwise data races may occur.
func (n *node[V]) Value() *V { return &n.val }

// AccessCount returns the number of reads served (part of policy.Node).
func (n *node[V]) AccessCount() uint64 { return n.access }

// CreatedAt returns the admission time in UnixNano (part of policy.Node).
func (n *node[V]) CreatedAt() int64 { return n.created }

// ExpiresAt returns the deadline in UnixNano, 0 = none (part of policy.Node).
func (n *node[V]) ExpiresAt() int64 { return n.exp }

// Package policy defines the contracts between a cache shard and its
// eviction strategy. Strategies are shard-local: a Policy is a factory
// that binds a fresh instance to one shard's list hooks.
package policy

// Node is the minimal contract a cache entry must satisfy for a policy.
// Besides the key and a value pointer it exposes the access metadata
// that frequency- and deadline-based strategies select victims by.
// All accessors must only be called under the owning shard's lock.
type Node[V any] interface {
	Key() string
	Value() *V
	// AccessCount is the number of reads the entry has served.
	AccessCount() uint64
	// CreatedAt is the admission time in UnixNano (ties in LFU).
	CreatedAt() int64
	// ExpiresAt is the absolute deadline in UnixNano; 0 means no TTL.
	ExpiresAt() int64
}

// Hooks expose O(1) list operations that a policy can use to manipulate
// the shard's intrusive MRU/LRU list. Implementations are provided by the shard.
//
// Concurrency: all hook calls happen under the shard lock.
// Important: hooks manage only the list; the shard owns the key->node map.
type Hooks[V any] interface {
	// MoveToFront promotes the node to MRU.
	MoveToFront(Node[V])
	// PushFront inserts the node at MRU (used on admission).
	PushFront(Node[V])
	// Back returns the current LRU node (or nil if empty).
	Back() Node[V]
	// Len returns the number of resident nodes in the shard.
	Len() int
}

// ShardPolicy is a per-shard eviction policy instance bound to shard hooks.
// All methods are invoked under the shard lock.
//
// Semantics:
//   - OnAdd places a newly admitted node (typically PushFront).
//   - OnGet/OnUpdate may promote the node (e.g., move to MRU).
//   - OnRemove is a notification to drop policy-internal state for a node
//     that the shard is deleting (expiry, eviction, or explicit delete).
//   - Victim proposes the next entry to evict when the shard is over its
//     entry or memory budget; nil means the shard is empty.
type ShardPolicy[V any] interface {
	OnAdd(Node[V])
	OnGet(Node[V])
	OnUpdate(Node[V])
	OnRemove(Node[V])
	Victim() Node[V]
}

// Policy is a factory that creates shard-local policy instances
// bound to a particular shard's hooks.
type Policy[V any] interface {
	New(Hooks[V]) ShardPolicy[V]
}

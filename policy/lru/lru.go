// Package lru implements the least-recently-used eviction strategy.
package lru

import "github.com/dkrylovsk/tiercache/policy"

// lru is a classic "move-to-front" policy. It delegates all list
// manipulation to policy.Hooks provided by the shard; the victim is
// always the list tail.
type lru[V any] struct {
	h policy.Hooks[V]
}

type factory[V any] struct{}

// New returns a Policy factory that constructs per-shard LRU instances.
func New[V any]() policy.Policy[V] { return factory[V]{} }

func (factory[V]) New(h policy.Hooks[V]) policy.ShardPolicy[V] {
	return &lru[V]{h: h}
}

// OnAdd places the new entry at MRU.
func (p *lru[V]) OnAdd(n policy.Node[V]) { p.h.PushFront(n) }

// OnGet promotes the entry to MRU.
func (p *lru[V]) OnGet(n policy.Node[V]) { p.h.MoveToFront(n) }

// OnUpdate promotes the entry to MRU (updates are treated as recent use).
func (p *lru[V]) OnUpdate(n policy.Node[V]) { p.h.MoveToFront(n) }

// OnRemove is a no-op for pure LRU (nothing to clean up in policy state).
func (p *lru[V]) OnRemove(_ policy.Node[V]) {}

// Victim is the least-recently-used entry: the list tail.
func (p *lru[V]) Victim() policy.Node[V] { return p.h.Back() }

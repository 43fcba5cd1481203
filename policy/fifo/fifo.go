// Package fifo implements first-in-first-out eviction.
package fifo

import "github.com/dkrylovsk/tiercache/policy"

// fifo keeps the shard list in pure insertion order: entries are pushed
// to the front on admission and never promoted afterwards, so the tail
// is always the oldest insertion regardless of access pattern.
type fifo[V any] struct {
	h policy.Hooks[V]
}

type factory[V any] struct{}

// New returns a Policy factory that constructs per-shard FIFO instances.
func New[V any]() policy.Policy[V] { return factory[V]{} }

func (factory[V]) New(h policy.Hooks[V]) policy.ShardPolicy[V] {
	return &fifo[V]{h: h}
}

// OnAdd records insertion order by pushing to the front.
func (p *fifo[V]) OnAdd(n policy.Node[V]) { p.h.PushFront(n) }

// OnGet does not promote: reads never change FIFO order.
func (p *fifo[V]) OnGet(_ policy.Node[V]) {}

// OnUpdate does not promote: an in-place update keeps the original slot.
func (p *fifo[V]) OnUpdate(_ policy.Node[V]) {}

// OnRemove is a no-op.
func (p *fifo[V]) OnRemove(_ policy.Node[V]) {}

// Victim is the oldest insertion: the list tail.
func (p *fifo[V]) Victim() policy.Node[V] { return p.h.Back() }

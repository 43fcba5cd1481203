package tier

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// memEntry holds a cached value with its deadline and key.
type memEntry[V any] struct {
	key      string
	value    V
	deadline int64 // unix millis, 0 = never
}

// Memory is a bounded in-memory tier holding a ring of recent items.
//
// It is deliberately simpler than the cache's tier-0 store: a map for
// lookups plus a queue in insertion order, evicted FIFO when the size cap
// is hit. Its TTL and capacity are independent of the primary cache's
// strategy — the tier is a recency buffer, not an authority.
type Memory[V any] struct {
	mu    sync.Mutex
	items map[string]*list.Element
	queue *list.List // front = oldest insertion
	opts  *memoryOptions
}

// MemoryOption configures the in-memory tier.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	capacity   int
	defaultTTL time.Duration
}

func defaultMemoryOptions() *memoryOptions {
	return &memoryOptions{
		capacity:   1024,
		defaultTTL: time.Hour,
	}
}

// WithCapacity sets the maximum number of entries held by the tier.
// When the limit is reached the oldest insertion is dropped.
// Default: 1024.
func WithCapacity(n int) MemoryOption {
	return func(o *memoryOptions) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithDefaultTTL sets the expiration applied when Set is called with a
// zero TTL. Default: 1 hour.
func WithDefaultTTL(d time.Duration) MemoryOption {
	return func(o *memoryOptions) {
		o.defaultTTL = d
	}
}

// NewMemory creates a bounded FIFO in-memory tier.
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	o := defaultMemoryOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Memory[V]{
		items: make(map[string]*list.Element),
		queue: list.New(),
		opts:  o,
	}
}

// Get retrieves a value by key. An expired entry is pruned and reported
// as ErrNotFound.
func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.items[key]
	if !ok {
		var zero V
		return zero, ErrNotFound
	}
	e := elem.Value.(*memEntry[V])
	if expired(e.deadline, time.Now()) {
		m.queue.Remove(elem)
		delete(m.items, key)
		var zero V
		return zero, ErrNotFound
	}
	return e.value, nil
}

// Set stores a value. An existing key is updated in place without
// changing its queue position; a new key may push out the oldest entry.
func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	deadline := deadlineMillis(ttl, m.opts.defaultTTL, time.Now())

	if elem, ok := m.items[key]; ok {
		e := elem.Value.(*memEntry[V])
		e.value = value
		e.deadline = deadline
		return nil
	}

	if m.queue.Len() >= m.opts.capacity {
		if oldest := m.queue.Front(); oldest != nil {
			m.queue.Remove(oldest)
			delete(m.items, oldest.Value.(*memEntry[V]).key)
		}
	}

	e := &memEntry[V]{key: key, value: value, deadline: deadline}
	m.items[key] = m.queue.PushBack(e)
	return nil
}

// Delete removes a key.
func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, ok := m.items[key]; ok {
		m.queue.Remove(elem)
		delete(m.items, key)
	}
	return nil
}

// Clear removes all entries.
func (m *Memory[V]) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = make(map[string]*list.Element)
	m.queue.Init()
	return nil
}

// Len returns the number of resident entries (expired included until read).
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.Len()
}

var _ Tier[any] = (*Memory[any])(nil)

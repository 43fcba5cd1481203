package cache

import (
	"context"
	"strings"
	"time"
)

// View is a key-prefix partition over a single cache instance. Keys are
// stored as "{name}:{key}"; the underlying shards, budgets, stats, and
// tiers are shared with the parent cache.
type View[V any] struct {
	c      *cache[V]
	prefix string
}

// Set stores a value under the namespaced key with DefaultTTL.
func (v *View[V]) Set(key string, value V) error {
	return v.c.Set(v.prefix+key, value)
}

// SetWithTTL stores a value under the namespaced key with a per-key TTL.
func (v *View[V]) SetWithTTL(key string, value V, ttl time.Duration) error {
	return v.c.SetWithTTL(v.prefix+key, value, ttl)
}

// Get retrieves a value from the namespace.
func (v *View[V]) Get(key string) (V, bool) {
	return v.c.Get(v.prefix + key)
}

// GetOrLoad retrieves or loads a value within the namespace.
func (v *View[V]) GetOrLoad(ctx context.Context, key string) (V, error) {
	return v.c.GetOrLoad(ctx, v.prefix+key)
}

// Has reports whether the namespaced key is resident and unexpired.
func (v *View[V]) Has(key string) bool {
	return v.c.Has(v.prefix + key)
}

// Delete removes the namespaced key.
func (v *View[V]) Delete(key string) bool {
	return v.c.Delete(v.prefix + key)
}

// Keys returns the keys resident in this namespace, with the prefix
// stripped. Every shard is visited; prefix matching is anchored at the
// start of the stored key, never a substring search.
func (v *View[V]) Keys() []string {
	var raw []string
	for _, s := range v.c.shards {
		raw = s.KeysWithPrefix(raw, v.prefix)
	}
	keys := make([]string, len(raw))
	for i, k := range raw {
		keys[i] = strings.TrimPrefix(k, v.prefix)
	}
	return keys
}

// Len returns the number of resident entries in this namespace.
func (v *View[V]) Len() int {
	total := 0
	for _, s := range v.c.shards {
		total += len(s.KeysWithPrefix(nil, v.prefix))
	}
	return total
}

// Clear deletes only the keys carrying this namespace's prefix, shard by
// shard. Other namespaces and unprefixed keys are untouched.
func (v *View[V]) Clear() {
	if v.c.closed.Load() {
		return
	}
	for _, s := range v.c.shards {
		s.RemovePrefix(v.prefix)
	}
}

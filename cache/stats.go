package cache

// Stats is a point-in-time snapshot of the cache counters.
//
// Counters accumulate monotonically from construction (or the last
// ResetStats); Size, MemoryUsage, and AverageItemSize reflect the current
// resident set. Counters are updated synchronously inside each operation,
// so HitRate is always consistent with the latest completed call.
type Stats struct {
	Hits        uint64
	Misses      uint64
	Sets        uint64
	Deletes     uint64
	Evictions   uint64
	Expirations uint64

	// Size is the resident entry count across all shards.
	Size int
	// HitRate is Hits/(Hits+Misses), 0 when no reads happened yet.
	HitRate float64
	// MemoryUsage is the estimated resident byte footprint.
	MemoryUsage uint64
	// AverageItemSize is MemoryUsage/Size, 0 for an empty cache.
	AverageItemSize uint64
}

// Stats aggregates per-shard counters into one snapshot.
func (c *cache[V]) Stats() Stats {
	var st Stats
	var mem int64
	for _, s := range c.shards {
		st.Hits += s.hits.Load()
		st.Misses += s.misses.Load()
		st.Sets += s.sets.Load()
		st.Deletes += s.deletes.Load()
		st.Evictions += s.evicts.Load()
		st.Expirations += s.expires.Load()
		st.Size += s.Len()
		mem += s.Mem()
	}
	if mem > 0 {
		st.MemoryUsage = uint64(mem)
	}
	if reads := st.Hits + st.Misses; reads > 0 {
		st.HitRate = float64(st.Hits) / float64(reads)
	}
	if st.Size > 0 {
		st.AverageItemSize = st.MemoryUsage / uint64(st.Size)
	}
	return st
}

// ResetStats zeroes the accumulating counters. The resident set (Size,
// MemoryUsage) is unaffected.
func (c *cache[V]) ResetStats() {
	for _, s := range c.shards {
		s.hits.Store(0)
		s.misses.Store(0)
		s.sets.Store(0)
		s.deletes.Store(0)
		s.evicts.Store(0)
		s.expires.Store(0)
	}
}

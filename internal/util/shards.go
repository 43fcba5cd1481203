package util

// IsPowerOfTwo reports whether x is a power of two (> 0).
func IsPowerOfTwo(x uint64) bool {
	return x != 0 && (x&(x-1)) == 0
}

// NextPow2 returns the smallest power of two >= x.
// Special cases:
//   - x == 0  -> 1
//   - if the exact next power would overflow 64 bits, the result is clamped to 1<<63
func NextPow2(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	x--
	x |= x >> 1
	x |= x >> 2
	x |= x >> 4
	x |= x >> 8
	x |= x >> 16
	x |= x >> 32
	x++
	if x == 0 {
		return 1 << 63
	}
	return x
}

// ShardThreshold is the capacity above which sharding pays for itself.
// Below it a single store avoids the routing and per-shard bookkeeping cost.
const ShardThreshold = 100

// DefaultShards is the shard count used once capacity crosses ShardThreshold.
const DefaultShards = 16

// ShardCount picks the shard count for a given configured capacity.
// requested > 0 forces an explicit count (rounded up to a power of two);
// otherwise small caches stay unsharded and large ones get DefaultShards.
func ShardCount(requested, capacity int) int {
	if requested > 0 {
		return int(NextPow2(uint64(requested)))
	}
	if capacity <= ShardThreshold {
		return 1
	}
	return DefaultShards
}

// ShardIndex maps a 64-bit hash to a shard index.
// Assumes shard count is a power of two for the fast mask path,
// but remains correct for arbitrary shard counts (uses modulo).
func ShardIndex(hash uint64, shards int) int {
	if shards <= 1 {
		return 0
	}
	if IsPowerOfTwo(uint64(shards)) {
		return int(hash & uint64(shards-1))
	}
	return int(hash % uint64(shards))
}

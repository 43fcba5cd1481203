// Package util contains internal helpers (key routing, sharding, padding).
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import "github.com/cespare/xxhash/v2"

// HashKey hashes a cache key for shard routing. xxhash is a fast
// non-cryptographic hash with good avalanche behavior on short strings,
// which keeps shard load even for prefixed key families ("ns:...").
func HashKey(key string) uint64 {
	return xxhash.Sum64String(key)
}

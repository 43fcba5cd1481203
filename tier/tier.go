// Package tier provides slower storage layers behind the in-process cache.
//
// Tiers form an ordered read-through/write-through chain: the cache's
// shard store is always tier 0 and authoritative for eviction; tiers
// registered here are best-effort. A read that misses tier 0 walks the
// chain in order and fills the first hit back into tier 0; writes are
// propagated asynchronously and errors never reach the caller.
//
// Every tier stores an envelope {value, expires} and self-prunes on an
// expired read, because most persistent backends have no native TTL.
package tier

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Sentinel errors for tier operations.
var (
	// ErrNotFound is returned when a key does not exist in the tier or has expired.
	ErrNotFound = errors.New("tier: entry not found")

	// ErrMarshal is returned when value serialization fails.
	ErrMarshal = errors.New("tier: failed to marshal value")

	// ErrUnmarshal is returned when a stored envelope cannot be decoded.
	ErrUnmarshal = errors.New("tier: failed to unmarshal value")
)

// Tier is one storage layer in the chain.
//
// TTL semantics for Set:
//   - Positive duration: item expires after this duration
//   - Zero: use the tier's configured default TTL
//   - Negative: item never expires
type Tier[V any] interface {
	// Get retrieves a value by key.
	// Returns ErrNotFound if the key does not exist or has expired.
	Get(ctx context.Context, key string) (V, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value V, ttl time.Duration) error

	// Delete removes a key from the tier.
	Delete(ctx context.Context, key string) error

	// Clear removes all entries owned by this tier.
	Clear(ctx context.Context) error
}

// Marshaler serializes and deserializes values for backends that need a
// byte representation (e.g., Redis).
type Marshaler[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

type jsonMarshaler[V any] struct{}

func (jsonMarshaler[V]) Marshal(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (jsonMarshaler[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

// envelope is the stored record: the serialized value plus its absolute
// deadline in unix milliseconds. Expires == 0 means "never expires".
type envelope struct {
	Value   json.RawMessage `json:"value"`
	Expires int64           `json:"expires"`
}

// deadlineMillis converts a relative TTL (with the tier's default applied)
// into the envelope deadline. 0 means no expiry.
func deadlineMillis(ttl, defaultTTL time.Duration, now time.Time) int64 {
	if ttl == 0 {
		ttl = defaultTTL
	}
	if ttl <= 0 {
		return 0
	}
	return now.Add(ttl).UnixMilli()
}

// expired reports whether an envelope deadline has passed.
func expired(deadline int64, now time.Time) bool {
	return deadline != 0 && now.UnixMilli() > deadline
}

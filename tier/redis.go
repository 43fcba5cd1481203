package tier

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a persistent tier backed by Redis.
//
// Values are stored as a JSON envelope {value, expires} under
// "{prefix}:{key}". The envelope deadline is authoritative: an entry read
// past its deadline is deleted and reported as a miss even if the backend
// still holds the record. A matching native Redis TTL is also set when
// the entry expires, so abandoned records do not accumulate.
type Redis[V any] struct {
	client    redis.UniversalClient
	opts      *redisOptions
	marshaler Marshaler[V]
}

// RedisOption configures the Redis tier.
type RedisOption func(*redisOptions)

type redisOptions struct {
	prefix     string
	defaultTTL time.Duration
}

func defaultRedisOptions() *redisOptions {
	return &redisOptions{
		prefix:     "tiercache",
		defaultTTL: time.Hour,
	}
}

// WithPrefix sets the key prefix for all tier operations. Keys are stored
// as "{prefix}:{key}", which keeps Clear scoped to this tier when the
// Redis instance is shared. Default: "tiercache".
func WithPrefix(prefix string) RedisOption {
	return func(o *redisOptions) {
		o.prefix = prefix
	}
}

// WithRedisDefaultTTL sets the expiration applied when Set is called
// with a zero TTL. Default: 1 hour.
func WithRedisDefaultTTL(d time.Duration) RedisOption {
	return func(o *redisOptions) {
		o.defaultTTL = d
	}
}

// NewRedis creates a Redis-backed tier. An optional Marshaler customizes
// value serialization inside the envelope; nil means JSON.
func NewRedis[V any](client redis.UniversalClient, m Marshaler[V], opts ...RedisOption) *Redis[V] {
	o := defaultRedisOptions()
	for _, opt := range opts {
		opt(o)
	}
	if m == nil {
		m = jsonMarshaler[V]{}
	}
	return &Redis[V]{
		client:    client,
		opts:      o,
		marshaler: m,
	}
}

// Get retrieves a value by key. A corrupt or expired envelope degrades to
// ErrNotFound (wrapping the decode error for the caller's error hook);
// expired records are pruned on read.
func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V

	data, err := r.client.Get(ctx, r.prefixedKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, ErrNotFound
		}
		return zero, err
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return zero, errors.Join(ErrNotFound, ErrUnmarshal, err)
	}
	if expired(env.Expires, time.Now()) {
		// Self-prune: the envelope deadline ran out before the backend's.
		_ = r.client.Del(ctx, r.prefixedKey(key)).Err()
		return zero, ErrNotFound
	}

	v, err := r.marshaler.Unmarshal(env.Value)
	if err != nil {
		return zero, errors.Join(ErrNotFound, err)
	}
	return v, nil
}

// Set stores a value with the given TTL (see Tier for TTL semantics).
func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	raw, err := r.marshaler.Marshal(value)
	if err != nil {
		return err
	}

	now := time.Now()
	env := envelope{Value: raw, Expires: deadlineMillis(ttl, r.opts.defaultTTL, now)}
	data, err := json.Marshal(env)
	if err != nil {
		return errors.Join(ErrMarshal, err)
	}

	// Mirror the envelope deadline as a native TTL so Redis reclaims
	// records we never read again. 0 = persist.
	var redisTTL time.Duration
	if env.Expires != 0 {
		redisTTL = time.UnixMilli(env.Expires).Sub(now)
	}

	return r.client.Set(ctx, r.prefixedKey(key), data, redisTTL).Err()
}

// Delete removes a key.
func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefixedKey(key)).Err()
}

// Clear removes all keys under this tier's prefix using SCAN, which does
// not block the server.
func (r *Redis[V]) Clear(ctx context.Context) error {
	pattern := r.opts.prefix + ":*"
	var cursor uint64

	for {
		keys, nextCursor, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = nextCursor
		if cursor == 0 {
			return nil
		}
	}
}

func (r *Redis[V]) prefixedKey(key string) string {
	return r.opts.prefix + ":" + key
}

var _ Tier[any] = (*Redis[any])(nil)

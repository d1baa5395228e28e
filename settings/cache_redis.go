package settings

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// RedisBackend is a CacheBackend shared between processes through redis.
// Snapshots are stored msgpack encoded.
type RedisBackend struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisBackend creates a RedisBackend; prefix is prepended to the slot keys
func NewRedisBackend(client redis.UniversalClient, prefix string) *RedisBackend {
	return &RedisBackend{
		client: client,
		prefix: prefix,
	}
}

// Get implements the CacheBackend interface
func (r *RedisBackend) Get(ctx context.Context, key string) (Snapshot, bool, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "redis get")
	}
	var snap Snapshot
	if err = msgpack.Unmarshal(data, &snap); err != nil {
		return nil, false, errors.Wrap(err, "could not decode cached snapshot")
	}
	if snap == nil {
		snap = Snapshot{}
	}
	return snap, true, nil
}

// Set implements the CacheBackend interface
func (r *RedisBackend) Set(ctx context.Context, key string, snap Snapshot, ttl time.Duration) error {
	data, err := msgpack.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "could not encode snapshot")
	}
	return errors.Wrap(r.client.Set(ctx, r.prefix+key, data, ttl).Err(), "redis set")
}

// Delete implements the CacheBackend interface
func (r *RedisBackend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = r.prefix + k
	}
	return errors.Wrap(r.client.Del(ctx, prefixed...).Err(), "redis del")
}

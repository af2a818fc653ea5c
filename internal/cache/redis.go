package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/rueidis"
)

type RedisCache struct {
	client rueidis.Client
	prefix string
}

func NewRedisCache(client rueidis.Client, prefix string) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
	}
}

func (r *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	cmd := r.client.B().Get().Key(r.prefix + key).Build()
	data, err := r.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return false, nil
		}
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if ttl > 0 {
		cmd := r.client.B().Set().Key(r.prefix + key).Value(string(data)).PxMilliseconds(ttlMillis(ttl)).Build()
		return r.client.Do(ctx, cmd).Error()
	}

	cmd := r.client.B().Set().Key(r.prefix + key).Value(string(data)).Build()
	return r.client.Do(ctx, cmd).Error()
}

func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = r.prefix + key
	}

	cmd := r.client.B().Del().Key(prefixed...).Build()
	return r.client.Do(ctx, cmd).Error()
}

// ttlMillis rounds a positive ttl to whole milliseconds, at least one.
func ttlMillis(ttl time.Duration) int64 {
	ms := ttl.Milliseconds()
	if ms < 1 {
		return 1
	}
	return ms
}

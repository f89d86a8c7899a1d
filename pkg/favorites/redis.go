package favorites

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisSlot keeps the collection under a single string key.
type RedisSlot struct {
	redis *redis.Client
	key   string
	owned bool
}

func NewRedisSlot(client *redis.Client, key string) *RedisSlot {
	return &RedisSlot{redis: client, key: "console:favorites:" + key}
}

// OpenRedisSlot dials addr and owns the resulting client.
func OpenRedisSlot(ctx context.Context, addr, key string) (*RedisSlot, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	slot := NewRedisSlot(client, key)
	slot.owned = true
	return slot, nil
}

func (r *RedisSlot) Read(ctx context.Context) ([]byte, error) {
	result, err := r.redis.Get(ctx, r.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return result, nil
}

func (r *RedisSlot) Write(ctx context.Context, data []byte) error {
	return r.redis.Set(ctx, r.key, data, 0).Err()
}

func (r *RedisSlot) Close() error {
	if !r.owned {
		return nil
	}
	return r.redis.Close()
}

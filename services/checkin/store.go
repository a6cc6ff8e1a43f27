package checkin

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// KVStore is the short-TTL key-value store backing the rate limiter and
// the replay guard. Implementations must provide atomic increment and
// set-if-absent semantics; a read-then-write here would open a race
// window between concurrent validations of the same token.
type KVStore interface {
	// Incr atomically increments the counter at key, applying ttl when
	// the key is created, and returns the new value.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// SetNX sets the key with a TTL only if it does not exist and
	// reports whether this caller won the write.
	SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Set unconditionally sets the key with a TTL.
	Set(ctx context.Context, key string, ttl time.Duration) error
}

// RedisKVStore implements KVStore on a shared Redis client.
type RedisKVStore struct {
	client *redis.Client
}

// NewRedisKVStore wraps an existing Redis client.
func NewRedisKVStore(client *redis.Client) *RedisKVStore {
	return &RedisKVStore{client: client}
}

// incrWithTTL increments the counter and applies the window TTL on the
// first increment in one script. Separate INCR and EXPIRE calls could
// strand a counter without expiry if the connection died in between,
// throttling that key forever.
var incrWithTTL = redis.NewScript(`
local v = redis.call("INCR", KEYS[1])
if v == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return v`)

func (s *RedisKVStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	n, err := incrWithTTL.Run(ctx, s.client, []string{key}, ttl.Milliseconds()).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to increment key %s: %w", key, err)
	}
	return n, nil
}

func (s *RedisKVStore) SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to setnx key %s: %w", key, err)
	}
	return ok, nil
}

func (s *RedisKVStore) Set(ctx context.Context, key string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

package analytics

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const defaultCounterKey = "smartquote:analytics:counts"

// RedisCounter keeps per-event totals in a single Redis hash.
type RedisCounter struct {
	client *redis.Client
	key    string
}

// NewRedisCounter returns nil when client is nil.
func NewRedisCounter(client *redis.Client, key string) *RedisCounter {
	if client == nil {
		return nil
	}
	if key == "" {
		key = defaultCounterKey
	}
	return &RedisCounter{client: client, key: key}
}

func (c *RedisCounter) Incr(ctx context.Context, name string) error {
	if err := c.client.HIncrBy(ctx, c.key, name, 1).Err(); err != nil {
		return fmt.Errorf("analytics: incr %s: %w", name, err)
	}
	return nil
}

func (c *RedisCounter) Counts(ctx context.Context) (map[string]int64, error) {
	raw, err := c.client.HGetAll(ctx, c.key).Result()
	if err != nil {
		return nil, fmt.Errorf("analytics: read counts: %w", err)
	}
	out := make(map[string]int64, len(raw))
	for name, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		out[name] = n
	}
	return out, nil
}

var _ Counter = (*RedisCounter)(nil)

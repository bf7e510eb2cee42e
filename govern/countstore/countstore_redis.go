package countstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisCountPrefix string = "count/"

// RedisCountStore keeps counters in Redis, for deployments where multiple
// governance instances share rate accounting. The window is realized as a key
// TTL set on the first increment (EXPIRE NX), so it is anchored at the first
// event of the window rather than sliding.
type RedisCountStore struct {
	Client *redis.Client
	window time.Duration
}

func NewRedisCountStore(redisURL string, window time.Duration) (*RedisCountStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	_, err = rdb.Ping(context.TODO()).Result()
	if err != nil {
		return nil, err
	}
	rcs := RedisCountStore{
		Client: rdb,
		window: window,
	}
	return &rcs, nil
}

func (s *RedisCountStore) GetCount(ctx context.Context, name, val string) (int, error) {
	key := redisCountPrefix + counterKey(name, val)
	c, err := s.Client.Get(ctx, key).Int()
	if err == redis.Nil {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return c, nil
}

func (s *RedisCountStore) Increment(ctx context.Context, name, val string) error {
	key := redisCountPrefix + counterKey(name, val)

	// increment and set the window TTL in a single redis round-trip
	multi := s.Client.Pipeline()
	multi.Incr(ctx, key)
	multi.ExpireNX(ctx, key, s.window)
	_, err := multi.Exec(ctx)
	return err
}

func (s *RedisCountStore) Reserve(ctx context.Context, name, val string, cap int) (int, bool, error) {
	key := redisCountPrefix + counterKey(name, val)

	multi := s.Client.Pipeline()
	incr := multi.Incr(ctx, key)
	multi.ExpireNX(ctx, key, s.window)
	if _, err := multi.Exec(ctx); err != nil {
		return 0, false, err
	}

	current := int(incr.Val())
	if current > cap {
		// over the cap: hand the slot back, so rejected attempts never count
		if err := s.Client.Decr(ctx, key).Err(); err != nil {
			return cap, false, err
		}
		return current - 1, false, nil
	}
	return current, true, nil
}

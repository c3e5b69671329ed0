package quota

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "playlens:quota:"

// RedisStore shares counters between server instances. Expiry is handled by
// Redis key TTLs, which requires Redis 7 for EXPIRE NX.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects to redisURL and verifies the connection.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("quota: invalid redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("quota: redis unreachable: %w", err)
	}

	slog.Info("quota: redis connected", slog.String("addr", opts.Addr))
	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (Window, error) {
	k := redisKeyPrefix + key

	var (
		incr *redis.IntCmd
		pttl *redis.DurationCmd
	)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, window)
		pttl = pipe.PTTL(ctx, k)
		return nil
	})
	if err != nil {
		return Window{}, fmt.Errorf("quota: incr %s: %w", key, err)
	}

	return Window{Count: incr.Val(), ResetAt: resetFromTTL(pttl.Val(), window)}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (Window, bool, error) {
	k := redisKeyPrefix + key

	var (
		get  *redis.StringCmd
		pttl *redis.DurationCmd
	)
	_, err := s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		get = pipe.Get(ctx, k)
		pttl = pipe.PTTL(ctx, k)
		return nil
	})
	if errors.Is(err, redis.Nil) {
		return Window{}, false, nil
	}
	if err != nil {
		return Window{}, false, fmt.Errorf("quota: get %s: %w", key, err)
	}

	count, err := get.Int64()
	if err != nil {
		return Window{}, false, fmt.Errorf("quota: get %s: %w", key, err)
	}
	return Window{Count: count, ResetAt: resetFromTTL(pttl.Val(), 0)}, true, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// resetFromTTL turns a PTTL reply into an absolute time. Negative replies mean
// no expiry is set, in which case fallback is assumed.
func resetFromTTL(ttl, fallback time.Duration) time.Time {
	if ttl < 0 {
		ttl = fallback
	}
	return time.Now().Add(ttl)
}

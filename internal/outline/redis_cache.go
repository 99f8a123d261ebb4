package outline

import (
	"context"
	"time"

	"kerala-map/internal/logger"

	"github.com/redis/go-redis/v9"
)

// RedisCache：跨进程复用合并结果；键前缀 outline:
// 约束：Redis 不可用时静默降级为未命中，不影响流水线
type RedisCache struct {
	rc     *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisCache(rc *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rc: rc, ttl: ttl, prefix: "outline:"}
}

func (c *RedisCache) Get(ctx context.Context, k string) (*Outline, bool) {
	b, err := c.rc.Get(ctx, c.prefix+k).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.L().Warn("outline_cache_redis_get_error", "err", err)
		}
		return nil, false
	}
	o, err := decodeOutline(b)
	if err != nil {
		logger.L().Warn("outline_cache_decode_error", "key", k, "err", err)
		return nil, false
	}
	return o, true
}

func (c *RedisCache) Set(ctx context.Context, k string, o *Outline) {
	b, err := encodeOutline(o)
	if err != nil {
		return
	}
	if err := c.rc.Set(ctx, c.prefix+k, b, c.ttl).Err(); err != nil {
		logger.L().Warn("outline_cache_redis_set_error", "err", err)
	}
}

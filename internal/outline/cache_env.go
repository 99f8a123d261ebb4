package outline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"kerala-map/internal/config"
	"kerala-map/internal/logger"
	"kerala-map/internal/utils"
)

// CacheFromEnv：OUTLINE_CACHE=none|memory|redis（默认 memory）
// 背景：redis 模式为内存 + Redis 两级；Redis Ping 失败时记录错误并退回内存缓存
// 返回的 close 函数在命令退出前调用
func CacheFromEnv(ctx context.Context) (Cache, func(), error) {
	ttl := time.Duration(config.Int("OUTLINE_CACHE_TTL_S", 7*24*3600)) * time.Second
	mem := NewLRU(config.Int("OUTLINE_CACHE_SIZE", 64), ttl)
	noop := func() {}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("OUTLINE_CACHE"))) {
	case "none", "off":
		return nil, noop, nil
	case "", "memory":
		return mem, noop, nil
	case "redis":
		rc := utils.OpenRedisFromEnv()
		if err := rc.Ping(ctx).Err(); err != nil {
			logger.L().Error("redis_ping_error", "err", err)
			_ = rc.Close()
			return mem, noop, nil
		}
		logger.L().Info("redis_ping_ok")
		return Chain{mem, NewRedisCache(rc, ttl)}, func() { _ = rc.Close() }, nil
	}
	return nil, noop, fmt.Errorf("unknown OUTLINE_CACHE %q", os.Getenv("OUTLINE_CACHE"))
}

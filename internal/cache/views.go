package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"colonia-dashboard/internal/logger"
	"colonia-dashboard/internal/metrics"
)

// 文档注释：两级视图缓存
// 背景：进程内 LRU 命中优先；LRU 未命中（淘汰、过期或新实例）时读 Redis 并回填 LRU。
// 约束：rc 为 nil 时只用 LRU；Redis 故障只记日志并视为未命中，不影响主流程。
// 跨实例共享取决于调用方的键：只有键相同的实例才会读到彼此写入的视图。
type Views struct {
	lru    *LRU[[]byte]
	rc     *redis.Client
	ttl    time.Duration
	prefix string
}

func NewViews(size int, ttl time.Duration, rc *redis.Client, prefix string) *Views {
	return &Views{lru: NewLRU[[]byte](size, ttl), rc: rc, ttl: ttl, prefix: prefix}
}

func (v *Views) Get(ctx context.Context, key string) ([]byte, bool) {
	if b, ok := v.lru.Get(key); ok {
		metrics.CacheHitsTotal.WithLabelValues("memory").Inc()
		return b, true
	}
	if v.rc != nil {
		b, err := v.rc.Get(ctx, v.prefix+key).Bytes()
		switch {
		case err == nil:
			metrics.CacheHitsTotal.WithLabelValues("redis").Inc()
			v.lru.Set(key, b)
			return b, true
		case !errors.Is(err, redis.Nil):
			logger.L().Warn("view_cache_redis_get_error", "key", key, "err", err)
		}
	}
	metrics.CacheMissesTotal.Inc()
	return nil, false
}

func (v *Views) Set(ctx context.Context, key string, b []byte) {
	v.lru.Set(key, b)
	if v.rc == nil {
		return
	}
	if err := v.rc.Set(ctx, v.prefix+key, b, v.ttl).Err(); err != nil {
		logger.L().Warn("view_cache_redis_set_error", "key", key, "err", err)
	}
}

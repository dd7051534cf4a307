// 包 utils：Redis 连接工具
package utils

import (
	"github.com/redis/go-redis/v9"

	"colonia-dashboard/internal/config"
	"colonia-dashboard/internal/logger"
)

// OpenRedis：未启用时返回 nil，调用方据此退化为纯进程内缓存
func OpenRedis(cfg config.RedisConfig) *redis.Client {
	if !cfg.Enabled {
		return nil
	}
	addr := cfg.Addr()
	logger.L().Debug("redis_env", "addr", addr, "db", cfg.DB)
	return redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Pass, DB: cfg.DB})
}

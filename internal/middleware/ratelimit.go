package middleware

import (
	"net/http"

	"golang.org/x/time/rate"

	"colonia-dashboard/internal/config"
	"colonia-dashboard/internal/logger"
)

// 文档注释：令牌桶限流中间件（每秒）
// 背景：每次切换筛选都会请求视图接口，限制突发流量避免聚合计算占满 CPU。
// 约束：不排队，超限直接 429；未启用时原样返回 next。
func RateLimit(cfg config.RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled {
			return next
		}
		qps := cfg.QPS
		if qps <= 0 {
			qps = 50
		}
		lim := rate.NewLimiter(rate.Limit(qps), qps)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lim.Allow() {
				logger.L().Debug("rate_limited", "path", r.URL.Path, "ip", r.RemoteAddr)
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

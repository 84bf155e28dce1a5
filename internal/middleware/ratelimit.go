package middleware

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"clubip-api/internal/config"
	"clubip-api/internal/logger"
	"clubip-api/internal/metrics"

	"golang.org/x/time/rate"
)

// 文档注释：全局令牌桶限流中间件
// 背景：在流量峰值时对入口限速，保护仓库会话配额；关闭时原样返回 next。
// 约束：不排队，超限直接返回 429 与 Retry-After；不区分访客，仅限制进程总体速率。
func Wrap(next http.Handler, c config.RateLimit) http.Handler {
	if !c.Enabled || c.QPS <= 0 {
		return next
	}
	burst := c.Burst
	if burst <= 0 {
		burst = c.QPS
	}
	lim := rate.NewLimiter(rate.Limit(c.QPS), burst)
	logger.L().Info("rate_limit_enabled", "qps", c.QPS, "burst", burst)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := lim.Reserve()
		if d := res.Delay(); !res.OK() || d > 0 {
			res.Cancel()
			metrics.RateLimitedTotal.Inc()
			secs := int(math.Ceil(d.Seconds()))
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("retry-after", strconv.Itoa(secs))
			w.Header().Set("content-type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Too many requests."})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// 包 utils：Redis 连接与 TLS 证书等启动期工具
package utils

import (
	"context"
	"time"

	"clubip-api/internal/config"
	"clubip-api/internal/logger"

	"github.com/redis/go-redis/v9"
)

// 文档注释：按配置打开 Redis 客户端
// 背景：Redis 仅承载查询计数，未启用或不可达时返回 nil，业务路径自动降级为不计数。
// 约束：启动时 Ping 一次，超时 2 秒；失败只记录日志。
func OpenRedis(ctx context.Context, c config.Redis) *redis.Client {
	if !c.Enabled || c.Addr == "" {
		logger.L().Info("redis_disabled")
		return nil
	}
	rc := redis.NewClient(&redis.Options{Addr: c.Addr, Password: c.Pass, DB: c.DB})
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		logger.L().Error("redis_ping_error", "addr", c.Addr, "err", err)
		_ = rc.Close()
		return nil
	}
	logger.L().Info("redis_ping_ok", "addr", c.Addr, "db", c.DB)
	return rc
}

// 包 stats：基于 Redis 的查询计数（累计与当日），供 /stats 端点展示
package stats

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	totalKey    = "clubip:stats:total"
	dailyPrefix = "clubip:stats:daily:"
	dailyTTL    = 48 * time.Hour
)

// Counter：rc 为 nil 时所有操作为空操作
type Counter struct {
	rc  *redis.Client
	now func() time.Time
}

func New(rc *redis.Client) *Counter { return &Counter{rc: rc, now: time.Now} }

// Totals：按查询定义名称聚合的计数
type Totals struct {
	Total map[string]int64 `json:"total"`
	Today map[string]int64 `json:"today"`
}

func (c *Counter) dailyKey() string { return dailyPrefix + c.now().UTC().Format("20060102") }

// 文档注释：成功查询后递增累计与当日计数
// 背景：一次往返完成两个 HINCRBY 与过期设置；计数失败不影响查询结果，只返回错误供调用方记录。
func (c *Counter) Incr(ctx context.Context, lookup string) error {
	if c == nil || c.rc == nil {
		return nil
	}
	day := c.dailyKey()
	_, err := c.rc.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HIncrBy(ctx, totalKey, lookup, 1)
		p.HIncrBy(ctx, day, lookup, 1)
		p.Expire(ctx, day, dailyTTL)
		return nil
	})
	return err
}

// Totals：读取累计与当日计数；未启用时返回空表
func (c *Counter) Totals(ctx context.Context) (*Totals, error) {
	t := &Totals{Total: map[string]int64{}, Today: map[string]int64{}}
	if c == nil || c.rc == nil {
		return t, nil
	}
	total, err := c.rc.HGetAll(ctx, totalKey).Result()
	if err != nil {
		return t, err
	}
	today, err := c.rc.HGetAll(ctx, c.dailyKey()).Result()
	if err != nil {
		return t, err
	}
	fill(t.Total, total)
	fill(t.Today, today)
	return t, nil
}

func fill(dst map[string]int64, src map[string]string) {
	for k, v := range src {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			dst[k] = n
		}
	}
}

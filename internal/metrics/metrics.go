package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LookupRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clubip_lookup_requests_total",
		Help: "Total number of completed lookups by definition and match mode",
	}, []string{"lookup", "mode"})
	LookupRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clubip_lookup_rejected_total",
		Help: "Total number of lookups rejected for invalid input",
	}, []string{"lookup"})
	LookupErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clubip_lookup_errors_total",
		Help: "Total number of lookups failed in the warehouse",
	}, []string{"lookup"})
	LookupDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "clubip_lookup_duration_ms",
		Help:    "Warehouse query duration in milliseconds",
		Buckets: []float64{5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000},
	}, []string{"lookup"})
	EmptyResultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clubip_empty_results_total",
		Help: "Total number of lookups returning no rows",
	}, []string{"lookup"})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clubip_rate_limited_total",
		Help: "Total number of requests denied by the rate limiter",
	})
)

func init() {
	prometheus.MustRegister(LookupRequestsTotal)
	prometheus.MustRegister(LookupRejectedTotal)
	prometheus.MustRegister(LookupErrorsTotal)
	prometheus.MustRegister(LookupDurationMs)
	prometheus.MustRegister(EmptyResultsTotal)
	prometheus.MustRegister(RateLimitedTotal)
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：统一暴露注册指标到 /metrics 路径，供 Prometheus 抓取；在主入口挂载。
func Handler() http.Handler { return promhttp.Handler() }

// 包 api：集中注册 HTTP API 路由以解耦主入口；每个查询定义对应一个端点
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"clubip-api/internal/logger"
	"clubip-api/internal/lookup"
	"clubip-api/internal/stats"
)

// Pinger：健康检查依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

type errorBody struct {
	Error string `json:"error"`
}

// Options：路由依赖；Counter 与 Health 可为空
type Options struct {
	Service *lookup.Service
	Counter *stats.Counter
	Health  Pinger
	// Backend：500 响应中的后端名称，例如 Snowflake
	Backend string
}

// 文档注释：构建并返回 API 路由
// 背景：独立 ServeMux 便于在主入口挂载到 API_BASE 前缀；查询端点完全由定义列表生成。
func BuildRoutes(o Options) *http.ServeMux {
	mux := http.NewServeMux()
	if o.Backend == "" {
		o.Backend = "Snowflake"
	}
	for _, d := range o.Service.Definitions() {
		mux.Handle(d.Path, recoverJSON(o.Backend, lookupHandler(o, d)))
		logger.L().Debug("route_register", "path", d.Path, "lookup", d.Name)
	}

	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		t, err := o.Counter.Totals(r.Context())
		if err != nil {
			logger.L().Error("stats_read_error", "err", err)
		}
		writeJSON(w, http.StatusOK, t)
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if o.Health != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()
			if err := o.Health.Ping(ctx); err != nil {
				logger.L().Error("health_ping_error", "err", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

// 文档注释：单个查询端点
// 背景：输入错误直接 400 并返回提示；仓库错误只记录日志，对外统一为通用 500，不泄露内部细节。
func lookupHandler(o Options, d *lookup.Definition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		res, err := o.Service.Run(ctx, d.Name, r.URL.Query().Get(d.Param))
		if err != nil {
			var ie *lookup.InputError
			if errors.As(err, &ie) {
				writeJSON(w, http.StatusBadRequest, errorBody{Error: ie.Message})
				return
			}
			logger.L().Error("lookup_failed", "lookup", d.Name, "request_id", logger.RequestID(ctx), "err", err)
			writeJSON(w, http.StatusInternalServerError, serverError(o.Backend))
			return
		}
		if err := o.Counter.Incr(ctx, d.Name); err != nil {
			logger.L().Debug("stats_incr_error", "lookup", d.Name, "err", err)
		}
		writeJSON(w, http.StatusOK, res.Envelope())
	}
}

func serverError(backend string) errorBody {
	return errorBody{Error: "Server error querying " + backend + "."}
}

// recoverJSON：驱动层 panic 转为通用 500，避免错误越过处理器边界
func recoverJSON(backend string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.L().Error("handler_panic", "path", r.URL.Path, "request_id", logger.RequestID(r.Context()), "panic", v)
				writeJSON(w, http.StatusInternalServerError, serverError(backend))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L().Debug("response_write_error", "err", err)
	}
}

// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"clubip-api/internal/api"
	"clubip-api/internal/config"
	"clubip-api/internal/geo"
	"clubip-api/internal/logger"
	"clubip-api/internal/lookup"
	"clubip-api/internal/metrics"
	"clubip-api/internal/middleware"
	"clubip-api/internal/migrate"
	"clubip-api/internal/stats"
	"clubip-api/internal/store"
	"clubip-api/internal/utils"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	// 日志初始化
	l := logger.Setup()
	l.Debug("log_init_ok")
	cfg := config.FromEnv()
	l.Debug("config_api_base", "base", cfg.APIBase)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.Warehouse)
	if err != nil {
		l.Error("store_open_error", "driver", cfg.Warehouse.Driver, "err", err)
		os.Exit(1)
	}
	defer st.Close()
	l.Info("store_open_ok", "driver", cfg.Warehouse.Driver)
	if cfg.MigrateLocal {
		if err := migrate.EnsureSchema(st.DB(), st.Dialect()); err != nil {
			l.Error("schema_error", "err", err)
			os.Exit(1)
		}
		l.Info("schema_ok")
	}

	defs, err := lookup.LoadDefinitions(cfg.LookupsFile)
	if err != nil {
		l.Error("lookups_load_error", "file", cfg.LookupsFile, "err", err)
		os.Exit(1)
	}
	var opts []lookup.Option
	// 背景：地理信息仅为补充；数据库缺失或损坏时记录日志并继续提供查询
	if g, err := geo.Open(cfg.GeoIP.CityPath, cfg.GeoIP.ASNPath); err != nil {
		l.Error("geoip_open_error", "err", err)
	} else if g != nil {
		defer g.Close()
		opts = append(opts, lookup.WithGeo(g))
	}
	svc, err := lookup.NewService(st, defs, opts...)
	if err != nil {
		l.Error("lookups_invalid", "err", err)
		os.Exit(1)
	}
	l.Info("lookups_ready", "count", len(defs))

	rc := utils.OpenRedis(ctx, cfg.Redis)
	if rc != nil {
		defer rc.Close()
	}

	// 文档注释：构建路由
	apiMux := api.BuildRoutes(api.Options{
		Service: svc,
		Counter: stats.New(rc),
		Health:  st,
		Backend: cfg.Warehouse.Backend(),
	})
	mux := http.NewServeMux()
	mux.Handle(cfg.APIBase+"/", http.StripPrefix(cfg.APIBase, apiMux))
	mux.Handle(cfg.APIBase+"/metrics", metrics.Handler())

	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler, cfg.RateLimit)
	s := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		if cfg.TLS.Enabled {
			if err := utils.EnsureSelfSignedCert(cfg.TLS.CertPath, cfg.TLS.KeyPath, "clubip-api.local"); err != nil {
				l.Error("tls_cert_error", "err", err)
			}
			l.Info("listening_tls", "addr", cfg.Addr, "cert", cfg.TLS.CertPath)
			errc <- s.ListenAndServeTLS(cfg.TLS.CertPath, cfg.TLS.KeyPath)
			return
		}
		l.Info("listening", "addr", cfg.Addr)
		errc <- s.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			l.Error("server_error", "err", err)
		}
	case <-ctx.Done():
		l.Info("shutdown_begin")
		sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.Shutdown(sctx); err != nil {
			l.Error("shutdown_error", "err", err)
		}
		l.Info("shutdown_done")
	}
}

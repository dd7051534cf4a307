// 程序入口：读取配置、构建看板上下文并启动 HTTP 服务；路由注册在 internal/api
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"colonia-dashboard/internal/api"
	"colonia-dashboard/internal/config"
	"colonia-dashboard/internal/dashboard"
	"colonia-dashboard/internal/geo"
	"colonia-dashboard/internal/logger"
	"colonia-dashboard/internal/middleware"
	"colonia-dashboard/internal/utils"
)

func main() {
	cfg, err := config.Load()
	l := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		l.Error("config_error", "err", err)
		os.Exit(1)
	}
	l.Debug("config_loaded", "addr", cfg.Addr, "api_base", cfg.APIBase, "polygons", cfg.Polygons.Path)

	rc := utils.OpenRedis(cfg.Redis)
	if rc == nil {
		l.Info("redis_disabled")
	} else if err := rc.Ping(context.Background()).Err(); err != nil {
		l.Error("redis_ping_error", "err", err)
	} else {
		l.Info("redis_ping_ok")
	}

	st, err := dashboard.New(cfg, dashboard.Deps{Logger: l, Redis: rc})
	if err != nil {
		var le *geo.LoadError
		if errors.As(err, &le) {
			l.Error("startup_error", "kind", "load", "path", le.Path, "err", le.Err)
		} else {
			l.Error("startup_error", "err", err)
		}
		if rc != nil {
			_ = rc.Close()
		}
		os.Exit(1)
	}
	defer func() {
		if err := st.Close(); err != nil {
			l.Error("shutdown_close_error", "err", err)
		}
	}()

	handler := api.BuildRoutes(st, cfg.APIBase, l)
	handler = logger.AccessMiddleware(l)(handler)
	handler = middleware.RateLimit(cfg.RateLimit)(handler)
	s := &http.Server{Addr: cfg.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		l.Info("listening", "addr", cfg.Addr, "district", st.District, "run_id", st.RunID)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("listen_error", "err", err)
			stop()
		}
	}()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		l.Error("shutdown_error", "err", err)
	}
	l.Info("shutdown_done")
}

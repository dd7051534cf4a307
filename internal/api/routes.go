// 包 api：集中注册 HTTP 路由（页面、视图接口、边界 GeoJSON、指标），主入口只负责挂载
package api

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"colonia-dashboard/internal/dashboard"
	"colonia-dashboard/internal/metrics"
)

//go:embed web
var webFS embed.FS

// BuildRoutes：apiBase 下挂载 JSON 接口，根路径提供单页看板
func BuildRoutes(st *dashboard.State, apiBase string, l *slog.Logger) http.Handler {
	h := &handlers{st: st, log: l}
	apiBase = "/" + strings.Trim(apiBase, "/")

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Route(apiBase, func(api chi.Router) {
		api.Get("/options", h.options)
		api.Get("/dashboard", h.dashboard)
		api.Get("/colonias", h.colonias)
		api.Get("/healthz", h.health)
		api.Method(http.MethodGet, "/metrics", metrics.Handler())
	})

	// NOTE: 向前端暴露 API 基础路径，避免硬编码
	r.Get("/config.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/javascript; charset=utf-8")
		w.Header().Set("cache-control", "no-store")
		_, _ = w.Write([]byte("window.__API_BASE__='" + apiBase + "';\n"))
	})

	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		panic(err)
	}
	r.Handle("/*", http.FileServer(http.FS(sub)))
	return r
}

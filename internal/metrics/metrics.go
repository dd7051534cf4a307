package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DashboardRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_requests_total",
		Help: "Total number of dashboard view requests",
	}, []string{"service", "status"})
	DashboardDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dashboard_request_duration_ms",
		Help:    "Dashboard view build duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	EmptyResultsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_empty_results_total",
		Help: "Total number of views with an empty selection",
	})
	CacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_view_cache_hits_total",
		Help: "View cache hits by tier",
	}, []string{"tier"})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_view_cache_misses_total",
		Help: "View cache misses",
	})
	DegeneratePolygonsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_degenerate_polygons_total",
		Help: "Colonia/service pairs skipped because no interior point could be sampled",
	})
	ColoniasLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_colonias_loaded",
		Help: "Colonias in the filtered district",
	})
	ReportsGenerated = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_reports_generated",
		Help: "Synthetic reports generated at startup",
	})
)

func init() {
	prometheus.MustRegister(DashboardRequestsTotal)
	prometheus.MustRegister(DashboardDurationMs)
	prometheus.MustRegister(EmptyResultsTotal)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(DegeneratePolygonsTotal)
	prometheus.MustRegister(ColoniasLoaded)
	prometheus.MustRegister(ReportsGenerated)
}

// 文档注释：返回 Prometheus 指标监听器，在 API 路由下挂载 /metrics
func Handler() http.Handler { return promhttp.Handler() }

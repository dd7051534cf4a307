package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"colonia-dashboard/internal/dashboard"
	"colonia-dashboard/internal/metrics"
	"colonia-dashboard/internal/reports"
	"colonia-dashboard/internal/view"
)

type handlers struct {
	st  *dashboard.State
	log *slog.Logger
}

type option struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Theme string `json:"theme,omitempty"`
}

type optionsResponse struct {
	District string    `json:"district"`
	RunID    string    `json:"run_id"`
	Seed     uint64    `json:"seed"`
	BuiltAt  time.Time `json:"built_at"`
	Services []option  `json:"services"`
	Statuses []option  `json:"statuses"`
}

// options：下拉框选项；状态首项为“全部”
func (h *handlers) options(w http.ResponseWriter, r *http.Request) {
	res := optionsResponse{
		District: h.st.District,
		RunID:    h.st.RunID,
		Seed:     h.st.Seed,
		BuiltAt:  h.st.BuiltAt,
		Statuses: []option{{Key: reports.AllStatuses, Label: "Todos"}},
	}
	for _, s := range reports.Services() {
		res.Services = append(res.Services, option{Key: string(s), Label: s.Label(), Theme: view.Theme(s)})
	}
	for _, s := range reports.Statuses() {
		res.Statuses = append(res.Statuses, option{Key: string(s), Label: s.Label()})
	}
	writeJSON(w, http.StatusOK, res)
}

// dashboard：service 缺省为第一个服务，status 缺省为 all；未知取值返回 400
func (h *handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	t0 := time.Now()
	q := r.URL.Query()
	svc := reports.Services()[0]
	if v := q.Get("service"); v != "" {
		s, err := reports.ParseService(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		svc = s
	}
	status, err := reports.ParseStatusFilter(q.Get("status"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	statusKey := reports.AllStatuses
	if status != nil {
		statusKey = string(*status)
	}
	metrics.DashboardRequestsTotal.WithLabelValues(string(svc), statusKey).Inc()

	b, empty, err := h.st.ViewJSON(r.Context(), svc, status)
	if err != nil {
		h.log.Error("dashboard_view_error", "service", svc, "status", statusKey, "err", err)
		writeError(w, http.StatusInternalServerError, "view unavailable")
		return
	}
	if empty {
		metrics.EmptyResultsTotal.Inc()
		h.log.Debug("dashboard_empty_selection", "service", svc, "status", statusKey)
	}
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
	metrics.DashboardDurationMs.Observe(float64(time.Since(t0).Milliseconds()))
}

// colonias：区内边界 GeoJSON，reportes 属性为全部服务的报告数
func (h *handlers) colonias(w http.ResponseWriter, r *http.Request) {
	fc := view.FeatureCollection(h.st.Colonias, h.st.Totals())
	b, err := fc.MarshalJSON()
	if err != nil {
		h.log.Error("colonias_encode_error", "err", err)
		writeError(w, http.StatusInternalServerError, "encode failed")
		return
	}
	w.Header().Set("content-type", "application/geo+json; charset=utf-8")
	w.Header().Set("cache-control", "public, max-age=300")
	_, _ = w.Write(b)
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"colonias": len(h.st.Colonias),
		"reports":  len(h.st.Reports),
		"skipped":  len(h.st.Skipped),
		"run_id":   h.st.RunID,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colonia-dashboard/internal/config"
	"colonia-dashboard/internal/dashboard"
	"colonia-dashboard/internal/geo"
	"colonia-dashboard/internal/view"
)

func newServer(t *testing.T, perService int) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.Generator.Seed = 7
	cfg.Generator.PerService = perService

	ring := func(x float64) orb.MultiPolygon {
		return orb.MultiPolygon{{orb.Ring{{x, 0}, {x, 1}, {x + 1, 1}, {x + 1, 0}, {x, 0}}}}
	}
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := dashboard.New(cfg, dashboard.Deps{
		Logger: quiet,
		Now:    func() time.Time { return time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC) },
		Colonias: []geo.Colonia{
			geo.NewColonia("Lindavista", "Gustavo A. Madero", ring(0)),
			geo.NewColonia("Aragón", "Gustavo A. Madero", ring(2)),
		},
	})
	require.NoError(t, err)

	srv := httptest.NewServer(BuildRoutes(st, cfg.APIBase, quiet))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	res, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, b
}

func TestOptions(t *testing.T) {
	srv := newServer(t, 5)
	res, body := get(t, srv, "/api/options")
	require.Equal(t, http.StatusOK, res.StatusCode)

	var opts optionsResponse
	require.NoError(t, json.Unmarshal(body, &opts))
	assert.Equal(t, "Gustavo A. Madero", opts.District)
	require.Len(t, opts.Services, 7)
	assert.Equal(t, option{Key: "water_leak", Label: "Fugas de Agua", Theme: "blues"}, opts.Services[0])
	require.Len(t, opts.Statuses, 4)
	assert.Equal(t, "all", opts.Statuses[0].Key)
	assert.NotEmpty(t, opts.RunID)
}

func TestDashboardDefaultsAndFilters(t *testing.T) {
	srv := newServer(t, 5)

	res, body := get(t, srv, "/api/dashboard")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var d view.Dashboard
	require.NoError(t, json.Unmarshal(body, &d))
	assert.Equal(t, "water_leak", string(d.Service))
	assert.Equal(t, "all", d.Status)
	assert.Equal(t, 10, d.KPIs.Total)
	assert.Len(t, d.Table, 10)
	require.NotNil(t, d.Choropleth)
	assert.Equal(t, 5, d.Choropleth.Intensity["Aragón"])

	res, body = get(t, srv, "/api/dashboard?service=Baches&status=pending")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.Unmarshal(body, &d))
	assert.Equal(t, "pothole", string(d.Service))
	assert.Equal(t, d.KPIs.Pending, d.KPIs.Total)
	assert.Zero(t, d.KPIs.Resolved)
	for _, row := range d.Table {
		assert.Equal(t, "Pendiente", row.Estado)
	}
}

func TestDashboardEmptySelection(t *testing.T) {
	srv := newServer(t, 0)
	res, body := get(t, srv, "/api/dashboard?service=fire&status=resolved")
	require.Equal(t, http.StatusOK, res.StatusCode)

	var d view.Dashboard
	require.NoError(t, json.Unmarshal(body, &d))
	assert.True(t, d.Empty)
	assert.Equal(t, view.EmptyMessage, d.Message)
	assert.Zero(t, d.KPIs.Resolved)
}

func TestDashboardRejectsUnknownKeys(t *testing.T) {
	srv := newServer(t, 1)

	res, body := get(t, srv, "/api/dashboard?service=tsunami")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, string(body), "tsunami")

	res, _ = get(t, srv, "/api/dashboard?service=fire&status=closed")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestColoniasGeoJSON(t *testing.T) {
	srv := newServer(t, 2)
	res, body := get(t, srv, "/api/colonias")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, strings.HasPrefix(res.Header.Get("content-type"), "application/geo+json"))

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(body, &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "Lindavista", fc.Features[0].Properties["colonia"])
	assert.EqualValues(t, 14, fc.Features[0].Properties["reportes"])
}

func TestHealthPageAndConfig(t *testing.T) {
	srv := newServer(t, 1)

	res, body := get(t, srv, "/api/healthz")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), `"status":"ok"`)

	res, body = get(t, srv, "/config.js")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "window.__API_BASE__='/api'")

	res, body = get(t, srv, "/")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "Dashboard de Servicios")

	res, _ = get(t, srv, "/api/metrics")
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

// 包 view：把筛选结果与聚合值转换为前端渲染器（Vega-Lite 地图/热力图、表格、KPI）直接消费的结构
package view

import (
	"fmt"

	"github.com/paulmach/orb/geojson"

	"colonia-dashboard/internal/aggregate"
	"colonia-dashboard/internal/geo"
	"colonia-dashboard/internal/reports"
)

// EmptyMessage：筛选结果为空时前端展示的提示
const EmptyMessage = "No hay datos para el servicio y estado seleccionados."

// DateLayout：明细表日期格式
const DateLayout = "2006-01-02 15:04"

// 服务 → Vega 配色方案名
var themes = map[reports.Service]string{
	reports.WaterLeak:   "blues",
	reports.Fire:        "inferno",
	reports.GasLeak:     "greens",
	reports.Crime:       "magma",
	reports.Pothole:     "reds",
	reports.Flood:       "turbo",
	reports.PowerOutage: "viridis",
}

// Theme：未知服务返回 viridis
func Theme(s reports.Service) string {
	if t, ok := themes[s]; ok {
		return t
	}
	return "viridis"
}

// Input：一次渲染所需的全部已计算数据
type Input struct {
	Service      reports.Service
	Status       *reports.Status
	Filtered     []reports.Report
	Aggregates   []aggregate.ColoniaAggregate
	StatusCounts map[reports.Status]int
	Heatmap      []aggregate.HeatCell
}

type KPIs struct {
	Total      int `json:"total"`
	Resolved   int `json:"resolved"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
}

type StatusCount struct {
	Status reports.Status `json:"status"`
	Label  string         `json:"label"`
	Count  int            `json:"count"`
}

// Choropleth：colonia → 强度；Max 用于色阶上限
type Choropleth struct {
	Intensity map[string]int `json:"intensity"`
	Max       int            `json:"max"`
}

type Marker struct {
	Lon   float64 `json:"lon"`
	Lat   float64 `json:"lat"`
	Label string  `json:"label"`
}

type TableRow struct {
	Colonia     string `json:"colonia"`
	Estado      string `json:"estado"`
	Fecha       string `json:"fecha"`
	Coordenadas string `json:"coordenadas"`
}

type HeatCell struct {
	Colonia string `json:"colonia"`
	Estado  string `json:"estado"`
	Count   int    `json:"count"`
}

// Dashboard：前端单次渲染的视图模型
// 约束：Empty 为 true 时 Choropleth 为 nil，Markers/Table 为空数组，KPI 仍然给出（全 0）
type Dashboard struct {
	Service       reports.Service `json:"service"`
	ServiceLabel  string          `json:"service_label"`
	Status        string          `json:"status"`
	Theme         string          `json:"theme"`
	Empty         bool            `json:"empty"`
	Message       string          `json:"message,omitempty"`
	KPIs          KPIs            `json:"kpis"`
	StatusSummary []StatusCount   `json:"status_summary"`
	Choropleth    *Choropleth     `json:"choropleth,omitempty"`
	Markers       []Marker        `json:"markers"`
	Table         []TableRow      `json:"table"`
	Heatmap       []HeatCell      `json:"heatmap"`
}

// Build：纯转换，不做筛选或计数
func Build(in Input) Dashboard {
	d := Dashboard{
		Service:       in.Service,
		ServiceLabel:  in.Service.Label(),
		Status:        reports.AllStatuses,
		Theme:         Theme(in.Service),
		StatusSummary: make([]StatusCount, 0, 3),
		Markers:       make([]Marker, 0, len(in.Filtered)),
		Table:         make([]TableRow, 0, len(in.Filtered)),
		Heatmap:       make([]HeatCell, 0, len(in.Heatmap)),
	}
	if in.Status != nil {
		d.Status = string(*in.Status)
	}
	d.KPIs = KPIs{
		Total:      len(in.Filtered),
		Resolved:   in.StatusCounts[reports.Resolved],
		Pending:    in.StatusCounts[reports.Pending],
		InProgress: in.StatusCounts[reports.InProgress],
	}
	for _, s := range reports.Statuses() {
		d.StatusSummary = append(d.StatusSummary, StatusCount{Status: s, Label: s.Label(), Count: in.StatusCounts[s]})
	}
	for _, c := range in.Heatmap {
		d.Heatmap = append(d.Heatmap, HeatCell{Colonia: c.Colonia, Estado: c.Status.Label(), Count: c.Count})
	}

	if len(in.Filtered) == 0 {
		d.Empty = true
		d.Message = EmptyMessage
		return d
	}

	ch := &Choropleth{Intensity: make(map[string]int, len(in.Aggregates))}
	for _, a := range in.Aggregates {
		ch.Intensity[a.Colonia] = a.Count
		if a.Count > ch.Max {
			ch.Max = a.Count
		}
	}
	d.Choropleth = ch

	for _, r := range in.Filtered {
		d.Markers = append(d.Markers, Marker{
			Lon:   r.Location.Lon(),
			Lat:   r.Location.Lat(),
			Label: fmt.Sprintf("Reporte: %s - %s - %s", r.Colonia, r.Status.Label(), r.Service.Label()),
		})
		d.Table = append(d.Table, TableRow{
			Colonia:     r.Colonia,
			Estado:      r.Status.Label(),
			Fecha:       r.ReportedAt.Format(DateLayout),
			Coordenadas: FormatCoord(r.Location.Lon(), r.Location.Lat()),
		})
	}
	return d
}

// FormatCoord：与原始明细表一致的 "(x, y)" 五位小数
func FormatCoord(x, y float64) string { return fmt.Sprintf("(%.5f, %.5f)", x, y) }

// FeatureCollection：colonia 边界的 GeoJSON，属性含名称与可选计数（供地图 lookup）
func FeatureCollection(cs []geo.Colonia, aggs []aggregate.ColoniaAggregate) *geojson.FeatureCollection {
	counts := make(map[string]int, len(aggs))
	for _, a := range aggs {
		counts[a.Colonia] = a.Count
	}
	fc := geojson.NewFeatureCollection()
	for _, c := range cs {
		f := geojson.NewFeature(c.Geometry)
		f.ID = c.Name
		f.Properties["colonia"] = c.Name
		f.Properties["alcaldia"] = c.District
		f.Properties["reportes"] = counts[c.Name]
		fc.Append(f)
	}
	return fc
}

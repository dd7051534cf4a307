// 包 aggregate：对只读报告集合做筛选与分组计数；全部为纯函数，可重复调用
package aggregate

import (
	"colonia-dashboard/internal/geo"
	"colonia-dashboard/internal/reports"
)

// ColoniaAggregate：分级设色用的 colonia 计数，无报告时为 0
type ColoniaAggregate struct {
	Colonia string `json:"colonia"`
	Count   int    `json:"count"`
}

// HeatCell：colonia × 状态 计数
type HeatCell struct {
	Colonia string         `json:"colonia"`
	Status  reports.Status `json:"status"`
	Count   int            `json:"count"`
}

// CountByColonia：按 colonia 分组计数；仅包含出现过的 colonia
func CountByColonia(rs []reports.Report) map[string]int {
	out := make(map[string]int)
	for _, r := range rs {
		out[r.Colonia]++
	}
	return out
}

// MergeCounts：以多边形集合为左表做左连接，缺失计数补 0；不在集合内的名称被丢弃
func MergeCounts(cs []geo.Colonia, counts map[string]int) []ColoniaAggregate {
	out := make([]ColoniaAggregate, len(cs))
	for i, c := range cs {
		out[i] = ColoniaAggregate{Colonia: c.Name, Count: counts[c.Name]}
	}
	return out
}

// Filter：按服务筛选，status 非 nil 时再按状态筛选；保持输入相对顺序
func Filter(rs []reports.Report, service reports.Service, status *reports.Status) []reports.Report {
	out := make([]reports.Report, 0)
	for _, r := range rs {
		if r.Service != service {
			continue
		}
		if status != nil && r.Status != *status {
			continue
		}
		out = append(out, r)
	}
	return out
}

// CountByStatus：三种状态键始终存在
func CountByStatus(rs []reports.Report) map[reports.Status]int {
	out := make(map[reports.Status]int, 3)
	for _, s := range reports.Statuses() {
		out[s] = 0
	}
	for _, r := range rs {
		out[r.Status]++
	}
	return out
}

// StatusMatrix：热力图矩阵，colonia 顺序 × 状态顺序，每个组合都有值
func StatusMatrix(cs []geo.Colonia, rs []reports.Report) []HeatCell {
	type key struct {
		colonia string
		status  reports.Status
	}
	counts := make(map[key]int)
	for _, r := range rs {
		counts[key{r.Colonia, r.Status}]++
	}
	sts := reports.Statuses()
	out := make([]HeatCell, 0, len(cs)*len(sts))
	for _, c := range cs {
		for _, s := range sts {
			out = append(out, HeatCell{Colonia: c.Name, Status: s, Count: counts[key{c.Name, s}]})
		}
	}
	return out
}

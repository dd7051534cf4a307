package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// 文档注释：点入多边形判定
// 背景：生成器的拒绝采样与测试共用同一判定；外环命中且不在洞内视为命中。
// 约束：外环边界上的点视为命中，洞边界上的点视为落在洞内而不命中（orb/planar 语义）；坐标按 (lon, lat) 平面处理，不做投影。
func (c Colonia) Contains(p orb.Point) bool {
	if !c.Bound.Contains(p) {
		return false
	}
	return planar.MultiPolygonContains(c.Geometry, p)
}

// Area：平面面积（度²），仅用于识别退化多边形
func (c Colonia) Area() float64 {
	if len(c.Geometry) == 0 {
		return 0
	}
	return math.Abs(planar.Area(c.Geometry))
}

// Degenerate：无环、外环少于 4 个点或面积为 0
func (c Colonia) Degenerate() bool {
	if len(c.Geometry) == 0 {
		return true
	}
	usable := false
	for _, poly := range c.Geometry {
		if len(poly) > 0 && len(poly[0]) >= 4 {
			usable = true
			break
		}
	}
	return !usable || c.Area() == 0
}

// ringsToMultiPolygon：按环方向分组
// 约束：shapefile 约定外环顺时针、洞逆时针；首环无论方向都视为外环，逆时针环挂到前一个外环下
func ringsToMultiPolygon(rings []orb.Ring) orb.MultiPolygon {
	var mp orb.MultiPolygon
	for _, r := range rings {
		if len(r) < 3 {
			continue
		}
		if !r.Closed() {
			r = append(r, r[0])
		}
		if len(mp) == 0 || r.Orientation() == orb.CW {
			mp = append(mp, orb.Polygon{r})
			continue
		}
		last := len(mp) - 1
		mp[last] = append(mp[last], r)
	}
	return mp
}

package geo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"colonia-dashboard/internal/logger"
)

// 文档注释：从数据文件加载 colonia 边界
// 背景：原始数据为 CDMX colonias shapefile（.shp + .dbf）；同时支持导出为 GeoJSON 的同一数据集。
// 约束：按扩展名选择读取器；文件缺失、损坏或缺少字段映射时返回 *LoadError；无几何或无名称的记录跳过并记日志。
func Load(path string, opts LoadOptions) ([]Colonia, error) {
	if opts.ColoniaField == "" || opts.DistrictField == "" {
		return nil, &LoadError{Path: path, Err: errors.New("colonia and district fields are required")}
	}
	if _, err := os.Stat(path); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	var (
		rows []row
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		rows, err = readShapefile(path, opts)
	case ".geojson", ".json":
		rows, err = readGeoJSON(path, opts)
	default:
		err = fmt.Errorf("unsupported extension %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	out := mergeRows(rows)
	logger.L().Info("polygons_loaded", "path", path, "rows", len(rows), "colonias", len(out))
	return out, nil
}

// row：数据源中的一条记录，district 为空表示缺失值
type row struct {
	name     string
	district string
	geom     orb.MultiPolygon
}

// mergeRows：同区同名记录合并为一个 MultiPolygon，保持首次出现的顺序
func mergeRows(rows []row) []Colonia {
	idx := make(map[string]int, len(rows))
	var out []Colonia
	for _, r := range rows {
		key := r.district + "\x00" + r.name
		if i, ok := idx[key]; ok {
			mp := append(out[i].Geometry, r.geom...)
			out[i] = NewColonia(r.name, r.district, mp)
			continue
		}
		idx[key] = len(out)
		out = append(out, NewColonia(r.name, r.district, r.geom))
	}
	return out
}

func readGeoJSON(path string, opts LoadOptions) ([]row, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}
	var rows []row
	seenField := false
	for i, f := range fc.Features {
		name, ok := propString(f.Properties, opts.ColoniaField)
		if ok {
			seenField = true
		}
		if name == "" {
			logger.L().Debug("polygon_skip", "index", i, "reason", "no_name")
			continue
		}
		district, _ := propString(f.Properties, opts.DistrictField)
		mp := toMultiPolygon(f.Geometry)
		if len(mp) == 0 {
			logger.L().Warn("polygon_skip", "index", i, "colonia", name, "reason", "no_polygon_geometry")
			continue
		}
		rows = append(rows, row{name: name, district: district, geom: mp})
	}
	if len(fc.Features) > 0 && !seenField {
		return nil, fmt.Errorf("field %q not found in feature properties", opts.ColoniaField)
	}
	return rows, nil
}

func toMultiPolygon(g orb.Geometry) orb.MultiPolygon {
	switch v := g.(type) {
	case orb.Polygon:
		if len(v) == 0 {
			return nil
		}
		return orb.MultiPolygon{v}
	case orb.MultiPolygon:
		return v
	}
	return nil
}

// propString：读取属性为字符串；null 视为缺失，数值按文本输出
func propString(p geojson.Properties, key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	switch x := v.(type) {
	case nil:
		return "", true
	case string:
		return strings.TrimSpace(x), true
	default:
		return strings.TrimSpace(fmt.Sprint(x)), true
	}
}

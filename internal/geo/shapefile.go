package geo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"colonia-dashboard/internal/logger"
)

// readShapefile：读取 .shp 几何与同名 .dbf 属性
// 约束：仅接受 Polygon 记录；DBF 文本按 opts.DBFEncoding 解码；同名 .dbf 缺失、记录截断或解析器 panic 均返回错误
func readShapefile(path string, opts LoadOptions) (rows []row, err error) {
	dec, err := dbfDecoder(opts.DBFEncoding)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(strings.TrimSuffix(path, filepath.Ext(path)) + ".dbf"); err != nil {
		return nil, fmt.Errorf("attribute table: %w", err)
	}
	r, err := shp.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	defer func() {
		if p := recover(); p != nil {
			rows, err = nil, fmt.Errorf("malformed shapefile: %v", p)
		}
	}()

	nameIdx, distIdx := -1, -1
	for i, f := range r.Fields() {
		switch {
		case strings.EqualFold(f.String(), opts.ColoniaField):
			nameIdx = i
		case strings.EqualFold(f.String(), opts.DistrictField):
			distIdx = i
		}
	}
	if nameIdx < 0 {
		return nil, fmt.Errorf("field %q not found in dbf", opts.ColoniaField)
	}
	if distIdx < 0 {
		return nil, fmt.Errorf("field %q not found in dbf", opts.DistrictField)
	}

	for r.Next() {
		n, s := r.Shape()
		name := decodeAttr(dec, r.ReadAttribute(n, nameIdx))
		if name == "" {
			logger.L().Debug("polygon_skip", "index", n, "reason", "no_name")
			continue
		}
		poly, ok := s.(*shp.Polygon)
		if !ok {
			logger.L().Warn("polygon_skip", "index", n, "colonia", name, "reason", "not_polygon")
			continue
		}
		mp := ringsToMultiPolygon(shpRings(poly))
		if len(mp) == 0 {
			logger.L().Warn("polygon_skip", "index", n, "colonia", name, "reason", "no_rings")
			continue
		}
		district := decodeAttr(dec, r.ReadAttribute(n, distIdx))
		rows = append(rows, row{name: name, district: district, geom: mp})
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("read shapefile: %w", err)
	}
	return rows, nil
}

// shpRings：Parts 为各环在 Points 中的起始下标
func shpRings(p *shp.Polygon) []orb.Ring {
	rings := make([]orb.Ring, 0, len(p.Parts))
	for i, start := range p.Parts {
		end := int32(len(p.Points))
		if i+1 < len(p.Parts) {
			end = p.Parts[i+1]
		}
		if start < 0 || start > end || int(end) > len(p.Points) {
			continue
		}
		ring := make(orb.Ring, 0, end-start)
		for _, pt := range p.Points[start:end] {
			ring = append(ring, orb.Point{pt.X, pt.Y})
		}
		rings = append(rings, ring)
	}
	return rings
}

func dbfDecoder(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	}
	return nil, fmt.Errorf("unsupported dbf encoding %q", name)
}

func decodeAttr(dec *encoding.Decoder, s string) string {
	s = strings.TrimSpace(strings.TrimRight(s, "\x00"))
	if dec == nil || s == "" {
		return s
	}
	if out, err := dec.String(s); err == nil {
		return out
	}
	return s
}

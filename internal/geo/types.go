package geo

import (
	"fmt"

	"github.com/paulmach/orb"
)

// 文档注释：colonia 边界的最小数据结构
// 背景：统一承载 colonia 名称、所属区（alcaldía）与几何；载入后只读，常驻内存供生成与判定共享。
// 约束：几何统一为 MultiPolygon；每个 Polygon 第一环为外环，其余为洞；同区同名的源记录合并为一个 Colonia。
type Colonia struct {
	Name     string
	District string
	Geometry orb.MultiPolygon
	Bound    orb.Bound
}

// NewColonia：构造并预计算包围盒
func NewColonia(name, district string, mp orb.MultiPolygon) Colonia {
	return Colonia{Name: name, District: district, Geometry: mp, Bound: mp.Bound()}
}

// LoadOptions：数据源字段映射
type LoadOptions struct {
	ColoniaField  string
	DistrictField string
	// DBFEncoding：utf-8（默认）、latin1/iso-8859-1、windows-1252；仅对 shapefile 生效
	DBFEncoding string
}

// LoadError：数据源缺失、不可读或结构不符合约定
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string { return fmt.Sprintf("load polygons %s: %v", e.Path, e.Err) }

func (e *LoadError) Unwrap() error { return e.Err }

package geo

import (
	"strings"

	"golang.org/x/text/cases"
)

// FilterByDistrict：按区名做大小写不敏感的子串匹配，空区名永不命中；保持输入顺序
func FilterByDistrict(cs []Colonia, pattern string) []Colonia {
	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(pattern))
	out := make([]Colonia, 0, len(cs))
	for _, c := range cs {
		if c.District == "" {
			continue
		}
		if strings.Contains(fold.String(c.District), want) {
			out = append(out, c)
		}
	}
	return out
}

// Names：按顺序返回 colonia 名称
func Names(cs []Colonia) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

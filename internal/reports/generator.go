package reports

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/paulmach/orb"

	"colonia-dashboard/internal/geo"
)

// DefaultMaxAttempts：单个点的拒绝采样上限
const DefaultMaxAttempts = 10000

// MaxAgeDays：报告日期回溯的最大天数（含）
const MaxAgeDays = 30

// DegeneratePolygonError：在上限次数内无法落点；Attempts 为 0 表示几何本身退化（无环或零面积），未尝试采样
type DegeneratePolygonError struct {
	Colonia  string
	Service  Service
	Attempts int
}

func (e *DegeneratePolygonError) Error() string {
	if e.Attempts == 0 {
		return fmt.Sprintf("colonia %q (%s): degenerate geometry", e.Colonia, e.Service)
	}
	return fmt.Sprintf("colonia %q (%s): no interior point after %d attempts", e.Colonia, e.Service, e.Attempts)
}

// 文档注释：模拟报告生成器
// 背景：对每个 (服务, colonia) 组合在包围盒内均匀取点并做点入多边形判定，命中即接受。
// 约束：随机源与时钟均由调用方注入；相同种子与时钟得到完全一致的序列。生成器不可并发使用。
type Generator struct {
	Rand        *rand.Rand
	Now         func() time.Time
	MaxAttempts int
}

// NewGenerator：PCG 随机源，now 为空时使用 time.Now
func NewGenerator(seed uint64, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{
		Rand:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		Now:         now,
		MaxAttempts: DefaultMaxAttempts,
	}
}

// Generate：顺序为服务优先、其次 colonia 顺序、最后生成顺序
// 返回：报告切片始终可用；err 非空时为各 *DegeneratePolygonError 的 errors.Join，对应组合贡献 0 条报告
func (g *Generator) Generate(colonias []geo.Colonia, svcs []Service, perColonia int) ([]Report, error) {
	if perColonia < 0 {
		return nil, fmt.Errorf("reports per colonia must be >= 0, got %d", perColonia)
	}
	maxAttempts := g.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	now := g.Now()
	out := make([]Report, 0, len(svcs)*len(colonias)*perColonia)
	var errs []error
	for _, svc := range svcs {
		for _, c := range colonias {
			if perColonia == 0 {
				continue
			}
			if c.Degenerate() {
				errs = append(errs, &DegeneratePolygonError{Colonia: c.Name, Service: svc})
				continue
			}
			batch := make([]Report, 0, perColonia)
			var failed error
			for i := 0; i < perColonia; i++ {
				p, ok := g.samplePoint(c, maxAttempts)
				if !ok {
					failed = &DegeneratePolygonError{Colonia: c.Name, Service: svc, Attempts: maxAttempts}
					break
				}
				batch = append(batch, Report{
					Colonia:    c.Name,
					Service:    svc,
					Status:     statuses[g.Rand.IntN(len(statuses))],
					ReportedAt: now.AddDate(0, 0, -g.Rand.IntN(MaxAgeDays+1)),
					Location:   p,
				})
			}
			if failed != nil {
				errs = append(errs, failed)
				continue
			}
			out = append(out, batch...)
		}
	}
	return out, errors.Join(errs...)
}

// samplePoint：包围盒内均匀取点，命中多边形即返回
func (g *Generator) samplePoint(c geo.Colonia, maxAttempts int) (orb.Point, bool) {
	minX, minY := c.Bound.Min.X(), c.Bound.Min.Y()
	w, h := c.Bound.Max.X()-minX, c.Bound.Max.Y()-minY
	for i := 0; i < maxAttempts; i++ {
		p := orb.Point{minX + g.Rand.Float64()*w, minY + g.Rand.Float64()*h}
		if c.Contains(p) {
			return p, true
		}
	}
	return orb.Point{}, false
}

// DegenerateErrors：拆出 Generate 返回的全部退化错误
func DegenerateErrors(err error) []*DegeneratePolygonError {
	if err == nil {
		return nil
	}
	var out []*DegeneratePolygonError
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range j.Unwrap() {
			out = append(out, DegenerateErrors(e)...)
		}
		return out
	}
	var d *DegeneratePolygonError
	if errors.As(err, &d) {
		out = append(out, d)
	}
	return out
}

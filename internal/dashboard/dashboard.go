// 包 dashboard：进程级上下文对象，启动时加载多边形并一次性生成报告，之后只读共享给所有请求
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"colonia-dashboard/internal/aggregate"
	"colonia-dashboard/internal/cache"
	"colonia-dashboard/internal/config"
	"colonia-dashboard/internal/geo"
	"colonia-dashboard/internal/metrics"
	"colonia-dashboard/internal/reports"
	"colonia-dashboard/internal/view"
)

// Deps：可注入依赖；零值字段使用默认实现
type Deps struct {
	Logger *slog.Logger
	Redis  *redis.Client
	Now    func() time.Time
	// Colonias 非 nil 时跳过文件加载（测试与嵌入场景）
	Colonias []geo.Colonia
}

// State：启动后只读；除缓存外无共享可变状态
type State struct {
	District string
	RunID    string
	Seed     uint64
	BuiltAt  time.Time
	Colonias []geo.Colonia
	Reports  []reports.Report
	Skipped  []*reports.DegeneratePolygonError
	log      *slog.Logger
	redis    *redis.Client
	views    *cache.Views
	viewNS   string
	totals   []aggregate.ColoniaAggregate
}

// New：加载 → 按区过滤 → 生成报告
// 约束：加载失败或过滤后为空返回 *geo.LoadError；退化多边形仅记录并跳过
func New(cfg config.Config, deps Deps) (*State, error) {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	all := deps.Colonias
	if all == nil {
		var err error
		all, err = geo.Load(cfg.Polygons.Path, geo.LoadOptions{
			ColoniaField:  cfg.Polygons.ColoniaField,
			DistrictField: cfg.Polygons.DistrictField,
			DBFEncoding:   cfg.Polygons.DBFEncoding,
		})
		if err != nil {
			return nil, err
		}
	}
	cs := geo.FilterByDistrict(all, cfg.Polygons.District)
	if len(cs) == 0 {
		return nil, &geo.LoadError{
			Path: cfg.Polygons.Path,
			Err:  fmt.Errorf("no colonias match district %q (%d loaded)", cfg.Polygons.District, len(all)),
		}
	}
	log.Info("district_filtered", "district", cfg.Polygons.District, "colonias", len(cs), "loaded", len(all))

	seed := cfg.Generator.Seed
	if seed == 0 {
		seed = uint64(now().UnixNano())
	}
	gen := reports.NewGenerator(seed, now)
	gen.MaxAttempts = cfg.Generator.MaxAttempts
	rs, genErr := gen.Generate(cs, reports.Services(), cfg.Generator.PerService)
	if genErr != nil && len(reports.DegenerateErrors(genErr)) == 0 {
		return nil, fmt.Errorf("generate reports: %w", genErr)
	}
	skipped := reports.DegenerateErrors(genErr)
	for _, d := range skipped {
		log.Warn("generator_degenerate_polygon", "colonia", d.Colonia, "service", d.Service, "attempts", d.Attempts)
	}
	metrics.DegeneratePolygonsTotal.Add(float64(len(skipped)))
	metrics.ColoniasLoaded.Set(float64(len(cs)))
	metrics.ReportsGenerated.Set(float64(len(rs)))

	s := &State{
		District: cfg.Polygons.District,
		RunID:    uuid.NewString(),
		Seed:     seed,
		BuiltAt:  now(),
		Colonias: cs,
		Reports:  rs,
		Skipped:  skipped,
		log:      log,
		redis:    deps.Redis,
		views: cache.NewViews(cfg.ViewCache.Size, time.Duration(cfg.ViewCache.TTLSec)*time.Second,
			deps.Redis, "colonia-dashboard:view:"),
	}
	s.totals = aggregate.MergeCounts(cs, aggregate.CountByColonia(rs))
	ns, err := contentKey(s.District, cs, rs)
	if err != nil {
		return nil, err
	}
	s.viewNS = ns
	log.Info("reports_generated", "run_id", s.RunID, "seed", seed, "reports", len(rs), "skipped", len(skipped), "view_ns", ns)
	return s, nil
}

// View：筛选 + 聚合 + 视图转换，不经过缓存
func (s *State) View(service reports.Service, status *reports.Status) view.Dashboard {
	filtered := aggregate.Filter(s.Reports, service, status)
	return view.Build(view.Input{
		Service:      service,
		Status:       status,
		Filtered:     filtered,
		Aggregates:   aggregate.MergeCounts(s.Colonias, aggregate.CountByColonia(filtered)),
		StatusCounts: aggregate.CountByStatus(filtered),
		Heatmap:      aggregate.StatusMatrix(s.Colonias, s.Reports),
	})
}

// 文档注释：带缓存的序列化视图
// 背景：缓存键以报告集内容摘要为命名空间；固定种子与时钟下生成相同报告的实例共享 Redis 中的视图。
// 约束：时间种子或不同启动时刻得到不同摘要，此时 Redis 仅作为进程内 LRU 淘汰后的二级缓存；
// 缓存内容无法解码时记日志并按未命中重建。
func (s *State) ViewJSON(ctx context.Context, service reports.Service, status *reports.Status) ([]byte, bool, error) {
	key := s.cacheKey(service, status)
	if b, ok := s.views.Get(ctx, key); ok {
		empty, err := emptyFlag(b)
		if err == nil {
			s.log.Debug("view_cache_hit", "key", key)
			return b, empty, nil
		}
		s.log.Warn("view_cache_corrupt", "key", key, "err", err)
	}
	d := s.View(service, status)
	b, err := json.Marshal(d)
	if err != nil {
		return nil, false, fmt.Errorf("encode view: %w", err)
	}
	s.views.Set(ctx, key, b)
	return b, d.Empty, nil
}

// Totals：全部报告按 colonia 计数（左连接），供概览与边界 GeoJSON 使用
func (s *State) Totals() []aggregate.ColoniaAggregate { return s.totals }

// Close：释放外部连接；可重复调用
func (s *State) Close() error {
	if s.redis == nil {
		return nil
	}
	err := s.redis.Close()
	s.redis = nil
	if err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}
	return nil
}

func (s *State) cacheKey(service reports.Service, status *reports.Status) string {
	st := reports.AllStatuses
	if status != nil {
		st = string(*status)
	}
	return s.viewNS + ":" + string(service) + ":" + st
}

// contentKey：区名、colonia 顺序与报告 JSON 的 xxhash 摘要
func contentKey(district string, cs []geo.Colonia, rs []reports.Report) (string, error) {
	h := xxhash.New()
	_, _ = h.WriteString(district)
	for _, c := range cs {
		_, _ = h.WriteString("\x00" + c.Name)
	}
	if err := json.NewEncoder(h).Encode(rs); err != nil {
		return "", fmt.Errorf("hash reports: %w", err)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

func emptyFlag(b []byte) (bool, error) {
	var head struct {
		Empty bool `json:"empty"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return false, err
	}
	return head.Empty, nil
}

package district

import (
	"context"
	"errors"
	"os"
	"time"

	"kerala-map/internal/hierarchy"
	"kerala-map/internal/logger"
	"kerala-map/internal/metrics"
	"kerala-map/internal/outline"
	"kerala-map/internal/results"

	"github.com/twpayne/go-geom/encoding/geojson"
)

// Builder：逐个组织区执行 加载 → 抽取 → 合并 → 结果关联
type Builder struct {
	path    func(district string) string
	merger  *outline.Merger
	results *results.Set
	metrics *metrics.Metrics
}

// NewBuilder：path 给出组织区层级文件路径；rs 与 m 可为 nil
func NewBuilder(path func(string) string, merger *outline.Merger, rs *results.Set, m *metrics.Metrics) *Builder {
	if rs == nil {
		rs = &results.Set{}
	}
	return &Builder{path: path, merger: merger, results: rs, metrics: m}
}

// 文档注释：构建单个组织区记录
// 背景：文件缺失、JSON 损坏或无可用面时仍返回记录，统计字段照常由结果表填充。
// 约束：返回的 error 仅用于日志与指标；调用方不应据此丢弃记录。
func (b *Builder) Build(ctx context.Context, name string) (Record, error) {
	rec := b.base(name)
	l := logger.L()

	doc, err := hierarchy.LoadFile(name, b.path(name))
	if err != nil {
		rec.Status = metrics.StatusPlaceholder
		if errors.Is(err, os.ErrNotExist) {
			l.Warn("hierarchy_file_missing", "district", name, "path", b.path(name))
		} else {
			l.Error("hierarchy_load_error", "district", name, "err", err)
		}
		return rec, &StageError{District: name, Stage: StageLoad, Err: err}
	}

	ex := hierarchy.ExtractFeatures(doc)
	lbs := hierarchy.ExtractLocalBodies(doc)
	rec.LBCount = lbs.Total
	rec.LocalBodies = localBodyGroups(lbs)
	if b.metrics != nil {
		b.metrics.FeaturesTotal.Add(float64(len(ex.Features)))
		b.metrics.FeaturesSkipped.Add(float64(ex.Skipped))
	}
	l.Info("hierarchy_extracted", "district", name, "features", len(ex.Features), "skipped", ex.Skipped,
		"panchayat", len(lbs.Panchayat), "municipality", len(lbs.Municipality), "corporation", len(lbs.Corporation))

	start := time.Now()
	o, err := b.merger.Merge(ctx, ex.Features)
	if err != nil {
		rec.Status = metrics.StatusNoOutline
		if errors.Is(err, outline.ErrNoPolygons) {
			l.Warn("outline_no_polygons", "district", name)
		} else {
			l.Error("outline_merge_error", "district", name, "err", err)
		}
		return rec, &StageError{District: name, Stage: StageMerge, Err: err}
	}
	b.observe(name, o, time.Since(start))

	rec.Outline = o
	rec.GeoJSON = o.FeatureCollection(name)
	rec.Centroid = o.Label
	rec.Status = metrics.StatusOK
	l.Info("district_built", "district", name, "strategy", o.Strategy, "inputs", o.Inputs,
		"repaired", o.Repaired, "dropped", o.Dropped, "fallback", o.Fallback,
		"coverage", o.Coverage, "cached", o.Cached, "ms", time.Since(start).Milliseconds())
	return rec, nil
}

// BuildAll：按给定顺序构建全部组织区；结果条数恒等于 names 长度
func (b *Builder) BuildAll(ctx context.Context, names []string) []Record {
	defer logger.Timed("districts_build", "count", len(names))()
	out := make([]Record, 0, len(names))
	failed := 0
	for _, name := range names {
		rec, err := b.Build(ctx, name)
		if err != nil {
			failed++
		}
		b.metrics.District(rec.Status)
		out = append(out, rec)
	}
	if failed > 0 {
		logger.L().Warn("districts_incomplete", "failed", failed, "total", len(names))
	}
	return out
}

// base：仅含结果表统计的空记录
func (b *Builder) base(name string) Record {
	rows := b.results.Categories[name]
	if rows == nil {
		rows = map[string]results.Row{}
	}
	s := b.results.Summaries[name]
	rec := Record{
		Name:          name,
		GeoJSON:       &geojson.FeatureCollection{Features: []*geojson.Feature{}},
		CSVData:       rows,
		VoteShareData: buildVoteShares(rows, s),
		LocalBodies:   localBodyGroups(hierarchy.LocalBodies{}),
	}
	applyAggregates(&rec, rows, s, b.results.Sheets[name])
	return rec
}

func (b *Builder) observe(name string, o *outline.Outline, d time.Duration) {
	m := b.metrics
	if m == nil {
		return
	}
	m.ObserveMerge(d, o.Cached)
	m.PolygonsRepaired.Add(float64(o.Repaired))
	m.PolygonsDropped.Add(float64(o.Dropped))
	if o.Fallback {
		m.OutlineFallbacks.Inc()
	}
	m.OutlineCoverage.WithLabelValues(name).Set(o.Coverage)
}

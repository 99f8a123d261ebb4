// 包 outline：把一个组织区内的地方机构多边形合并为单一外轮廓
package outline

import (
	"context"
	"errors"
	"fmt"

	"kerala-map/internal/logger"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geos"
)

// ErrNoPolygons：输入中没有可用的面几何
var ErrNoPolygons = errors.New("no usable polygons")

// 文档注释：合并结果
// 背景：Geometry 为去洞后的 Polygon/MultiPolygon（smooth 策略可能保留洞）；Label 为标注点 [lon, lat]。
// 约束：raw 策略不产生 Geometry，仅透传 Features；Label 为空表示无法确定标注点。
type Outline struct {
	Strategy Strategy           `json:"strategy"`
	Geometry geom.T             `json:"-"`
	Features []*geojson.Feature `json:"-"`
	Label    *[2]float64        `json:"label,omitempty"`
	Inputs   int                `json:"inputs"`
	Repaired int                `json:"repaired"`
	Dropped  int                `json:"dropped"`
	Fallback bool               `json:"fallback"`
	Coverage float64            `json:"coverage"`
	Cached   bool               `json:"-"`
}

// FeatureCollection：前端使用的 GeoJSON；合并结果为单一特征，properties.name 为组织区名
func (o *Outline) FeatureCollection(name string) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{}}
	if o == nil {
		return fc
	}
	if o.Strategy == StrategyRaw {
		fc.Features = append(fc.Features, o.Features...)
		return fc
	}
	if o.Geometry != nil {
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   o.Geometry,
			Properties: map[string]interface{}{"name": name},
		})
	}
	return fc
}

// Merger：带缓存的合并器
type Merger struct {
	params Params
	cache  Cache
}

// NewMerger：cache 可为 nil
func NewMerger(p Params, c Cache) *Merger {
	return &Merger{params: p, cache: c}
}

func (m *Merger) Params() Params { return m.params }

// Merge：先查缓存，未命中再执行 GEOS 流水线并回写
func (m *Merger) Merge(ctx context.Context, features []*geojson.Feature) (*Outline, error) {
	if m.params.Strategy == StrategyRaw || m.cache == nil {
		return Merge(features, m.params)
	}
	key, err := Key(features, m.params)
	if err != nil {
		logger.L().Debug("outline_cache_key_error", "err", err)
		return Merge(features, m.params)
	}
	if o, ok := m.cache.Get(ctx, key); ok {
		o.Cached = true
		return o, nil
	}
	o, err := Merge(features, m.params)
	if err != nil {
		return nil, err
	}
	m.cache.Set(ctx, key, o)
	return o, nil
}

// 文档注释：合并流水线（无缓存）
// 背景：每个面先 MakeValid 修复；gapfill 外扩使相邻面在缺失机构处相接，合并后内缩平滑，最后去洞并保拓扑简化。
// 约束：GEOS 异常以 panic 形式抛出，这里统一恢复为 error；内缩后为空时回退到保守参数重新合并。
func Merge(features []*geojson.Feature, p Params) (out *Outline, err error) {
	if p.Strategy == StrategyRaw {
		return &Outline{Strategy: StrategyRaw, Features: features, Inputs: len(features), Coverage: 1}, nil
	}
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("geos: %v", r)
		}
	}()
	polys, inputs, stats := collectPolygons(features)
	if len(polys) == 0 {
		return nil, ErrNoPolygons
	}
	o := &Outline{Strategy: p.Strategy, Inputs: len(polys), Repaired: stats.repaired, Dropped: stats.dropped}

	var merged *geos.Geom
	switch p.Strategy {
	case StrategySmooth:
		merged = unionAll(polys).Buffer(p.Expand, p.QuadSegs).Buffer(-p.Shrink, p.QuadSegs)
		merged = merged.TopologyPreserveSimplify(p.Simplify)
	case StrategyComponent:
		merged = unionAll(polys)
		if merged.TypeID() == geos.TypeIDMultiPolygon {
			parts := make([]*geos.Geom, 0, merged.NumGeometries())
			for i := 0; i < merged.NumGeometries(); i++ {
				parts = append(parts, merged.Geometry(i).Buffer(p.Expand, p.QuadSegs))
			}
			merged = unionAll(parts)
		} else {
			merged = merged.Buffer(p.Expand, p.QuadSegs)
		}
		merged = merged.Buffer(-p.Shrink, p.QuadSegs)
		merged = removeHoles(merged).TopologyPreserveSimplify(p.Simplify)
	default:
		expanded := make([]*geos.Geom, 0, len(polys))
		for _, poly := range polys {
			expanded = append(expanded, poly.Buffer(p.Expand, p.QuadSegs))
		}
		merged = unionAll(expanded).Buffer(-p.Shrink, p.QuadSegs)
		merged = removeHoles(merged).TopologyPreserveSimplify(p.Simplify)
	}
	if !merged.IsValid() {
		merged = merged.MakeValid()
		if p.Strategy != StrategySmooth {
			merged = removeHoles(merged)
		}
	}
	if merged.IsEmpty() {
		logger.L().Debug("outline_fallback", "strategy", p.Strategy, "inputs", len(polys))
		o.Fallback = true
		merged = unionAll(polys).Buffer(p.FallbackExpand, p.QuadSegs).Buffer(-p.FallbackShrink, p.QuadSegs)
		merged = removeHoles(merged)
	}
	if merged.IsEmpty() {
		return nil, ErrNoPolygons
	}

	var lp *geos.Geom
	if p.Label == LabelCentroid {
		lp = merged.Centroid()
	} else {
		lp = merged.PointOnSurface()
	}
	if lp != nil && !lp.IsEmpty() {
		o.Label = &[2]float64{lp.X(), lp.Y()}
	}

	g, err := fromGEOS(merged)
	if err != nil {
		return nil, fmt.Errorf("convert outline: %w", err)
	}
	o.Geometry = g
	o.Coverage = coverage(inputs, g)
	return o, nil
}

type collectStats struct {
	repaired int
	dropped  int
}

// collectPolygons：筛选面几何并修复；返回 GEOS 几何与对应的内部采样点（用于覆盖率）
func collectPolygons(features []*geojson.Feature) ([]*geos.Geom, [][2]float64, collectStats) {
	var st collectStats
	var polys []*geos.Geom
	var samples [][2]float64
	for _, f := range features {
		if f == nil || f.Geometry == nil || !isPolygonal(f.Geometry) {
			continue
		}
		g, err := toGEOS(f.Geometry)
		if err != nil {
			st.dropped++
			continue
		}
		if !g.IsValid() {
			g = g.MakeValid()
			st.repaired++
		}
		if !g.IsValid() || g.IsEmpty() {
			st.dropped++
			continue
		}
		polys = append(polys, g)
		if pt := g.PointOnSurface(); pt != nil && !pt.IsEmpty() {
			samples = append(samples, [2]float64{pt.X(), pt.Y()})
		}
	}
	return polys, samples, st
}

// unionAll：一次性 UnaryUnion；集合持有克隆，原几何可继续使用
func unionAll(gs []*geos.Geom) *geos.Geom {
	clones := make([]*geos.Geom, len(gs))
	for i, g := range gs {
		clones[i] = g.Clone()
	}
	return geos.NewCollection(geos.TypeIDGeometryCollection, clones).UnaryUnion()
}

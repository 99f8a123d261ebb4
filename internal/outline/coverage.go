package outline

import "github.com/twpayne/go-geom"

// 文档注释：覆盖率（输入面的内部点落在合并轮廓内的比例）
// 背景：外扩/内缩参数过小时会漏掉孤立的机构面，过大时会吞并邻区；覆盖率用于日志与指标中观察参数效果。
// 约束：点入面采用 Even-Odd 射线法，先以包围盒过滤；外环命中且不在洞内视为命中。
func coverage(samples [][2]float64, g geom.T) float64 {
	if len(samples) == 0 {
		return 0
	}
	polys := polygonsOf(g)
	hit := 0
	for _, pt := range samples {
		for _, p := range polys {
			if inBounds(pt, p.Bounds()) && pointInPolygon(pt, p) {
				hit++
				break
			}
		}
	}
	return float64(hit) / float64(len(samples))
}

// Contains：点 [lon, lat] 是否落在轮廓内
func (o *Outline) Contains(pt [2]float64) bool {
	if o == nil || o.Geometry == nil {
		return false
	}
	for _, p := range polygonsOf(o.Geometry) {
		if inBounds(pt, p.Bounds()) && pointInPolygon(pt, p) {
			return true
		}
	}
	return false
}

func polygonsOf(g geom.T) []*geom.Polygon {
	switch x := g.(type) {
	case *geom.Polygon:
		return []*geom.Polygon{x}
	case *geom.MultiPolygon:
		out := make([]*geom.Polygon, 0, x.NumPolygons())
		for i := 0; i < x.NumPolygons(); i++ {
			out = append(out, x.Polygon(i))
		}
		return out
	}
	return nil
}

func pointInPolygon(pt [2]float64, p *geom.Polygon) bool {
	if p.NumLinearRings() == 0 {
		return false
	}
	if !pointInRing(pt, p.LinearRing(0).Coords()) {
		return false
	}
	for i := 1; i < p.NumLinearRings(); i++ {
		if pointInRing(pt, p.LinearRing(i).Coords()) {
			return false
		}
	}
	return true
}

// 射线法判定点是否在环内
func pointInRing(pt [2]float64, ring []geom.Coord) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	x, y := pt[0], pt[1]
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i].X(), ring[i].Y()
		xj, yj := ring[j].X(), ring[j].Y()
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi+1e-12)+xi {
			inside = !inside
		}
	}
	return inside
}

func inBounds(pt [2]float64, b *geom.Bounds) bool {
	if b == nil || b.IsEmpty() {
		return false
	}
	return pt[0] >= b.Min(0) && pt[0] <= b.Max(0) && pt[1] >= b.Min(1) && pt[1] <= b.Max(1)
}

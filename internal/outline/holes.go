package outline

import "github.com/twpayne/go-geos"

// maxHoleRounds：去洞与合并的最大轮数
const maxHoleRounds = 8

// 文档注释：只保留外环
// 背景：大片缺失机构留下的洞中可能还有孤立的机构面；只取外环后孤岛落在外环内部，构成非法的嵌套 MultiPolygon。
// 约束：多个外环时合并一次，合并可能再围出新洞，因此循环直到无洞；GeometryCollection 中非面部分丢弃，空面丢弃。
func removeHoles(g *geos.Geom) *geos.Geom {
	for round := 0; round < maxHoleRounds; round++ {
		parts := shells(g)
		switch len(parts) {
		case 0:
			return g
		case 1:
			return parts[0]
		}
		g = unionAll(parts)
		if !hasHoles(g) {
			return g
		}
	}
	return g
}

// shells：全部非空面的外环
// 约束：子几何归父几何所有，只能复制坐标，不能直接放入新集合
func shells(g *geos.Geom) []*geos.Geom {
	switch g.TypeID() {
	case geos.TypeIDPolygon:
		if g.IsEmpty() {
			return nil
		}
		return []*geos.Geom{exteriorOnly(g)}
	case geos.TypeIDMultiPolygon, geos.TypeIDGeometryCollection:
		var parts []*geos.Geom
		for i := 0; i < g.NumGeometries(); i++ {
			parts = append(parts, shells(g.Geometry(i))...)
		}
		return parts
	}
	return nil
}

func hasHoles(g *geos.Geom) bool {
	switch g.TypeID() {
	case geos.TypeIDPolygon:
		return !g.IsEmpty() && g.NumInteriorRings() > 0
	case geos.TypeIDMultiPolygon, geos.TypeIDGeometryCollection:
		for i := 0; i < g.NumGeometries(); i++ {
			if hasHoles(g.Geometry(i)) {
				return true
			}
		}
	}
	return false
}

func exteriorOnly(p *geos.Geom) *geos.Geom {
	return geos.NewPolygon([][][]float64{p.ExteriorRing().CoordSeq().ToCoords()})
}

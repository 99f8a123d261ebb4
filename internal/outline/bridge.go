package outline

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
	"github.com/twpayne/go-geos"
)

// go-geom 与 GEOS 之间以 WKB 互转；解析与输出走 go-geom，几何运算走 GEOS

func toGEOS(g geom.T) (*geos.Geom, error) {
	b, err := wkb.Marshal(g, wkb.NDR)
	if err != nil {
		return nil, err
	}
	return geos.NewGeomFromWKB(b)
}

func fromGEOS(g *geos.Geom) (geom.T, error) {
	return wkb.Unmarshal(g.ToWKB())
}

// isPolygonal：仅 Polygon/MultiPolygon 参与合并
func isPolygonal(g geom.T) bool {
	switch g.(type) {
	case *geom.Polygon, *geom.MultiPolygon:
		return true
	}
	return false
}

package district

import (
	"encoding/json"
	"fmt"
	"time"

	"kerala-map/internal/metrics"
	"kerala-map/internal/store"

	"github.com/twpayne/go-geom/encoding/geojson"
)

// publishStats：写入 stats 列的派生统计
type publishStats struct {
	TotalLocalBodiesWon int      `json:"totalLocalBodiesWon"`
	LocalBodyWon        int      `json:"localBodyWon"`
	TargetLocalBody     int      `json:"targetLocalBody"`
	TotalLocalBody      int      `json:"totalLocalBody"`
	LB2020Won           int      `json:"lb2020Won"`
	LocalBody2ndNoTie   int      `json:"localBody2ndNoTie"`
	LocalBody2ndWithTie int      `json:"localBody2ndWithTie"`
	Ward2ndNoTie        int      `json:"ward2ndNoTie"`
	Ward2ndWithTie      int      `json:"ward2ndWithTie"`
	Inputs              int      `json:"inputs"`
	Repaired            int      `json:"repaired"`
	Dropped             int      `json:"dropped"`
	Fallback            bool     `json:"fallback"`
	Coverage            *float64 `json:"coverage"`
}

// ToStore：记录 → 发布行；builtAt 统一为本次构建时间
func ToStore(recs []Record, builtAt time.Time) ([]store.District, error) {
	out := make([]store.District, 0, len(recs))
	for _, r := range recs {
		fc := r.GeoJSON
		if fc == nil {
			fc = &geojson.FeatureCollection{Features: []*geojson.Feature{}}
		}
		gj, err := json.Marshal(fc)
		if err != nil {
			return nil, fmt.Errorf("geojson %s: %w", r.Name, err)
		}
		st := publishStats{
			TotalLocalBodiesWon: r.TotalLocalBodiesWon,
			LocalBodyWon:        r.LocalBodyWon,
			TargetLocalBody:     r.TargetLocalBody,
			TotalLocalBody:      r.TotalLocalBody,
			LB2020Won:           r.LB2020Won,
			LocalBody2ndNoTie:   r.LocalBody2ndNoTie,
			LocalBody2ndWithTie: r.LocalBody2ndWithTie,
			Ward2ndNoTie:        r.Ward2ndNoTie,
			Ward2ndWithTie:      r.Ward2ndWithTie,
		}
		strategy := ""
		if o := r.Outline; o != nil {
			strategy = string(o.Strategy)
			st.Inputs, st.Repaired, st.Dropped, st.Fallback = o.Inputs, o.Repaired, o.Dropped, o.Fallback
			cov := o.Coverage
			st.Coverage = &cov
		}
		stats, err := json.Marshal(st)
		if err != nil {
			return nil, err
		}
		out = append(out, store.District{
			Name:     r.Name,
			GeoJSON:  gj,
			Label:    r.Centroid,
			LBCount:  r.LBCount,
			Stats:    stats,
			Strategy: strategy,
			Status:   r.Status,
			BuiltAt:  builtAt,
		})
	}
	return out, nil
}

// Failed：非 ok 状态的记录数
func Failed(recs []Record) int {
	n := 0
	for _, r := range recs {
		if r.Status != metrics.StatusOK {
			n++
		}
	}
	return n
}

// Collection：每个组织区的轮廓特征合并为一个 FeatureCollection；无轮廓的组织区不输出特征
func Collection(recs []Record) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{}}
	for _, r := range recs {
		if r.GeoJSON == nil {
			continue
		}
		for _, f := range r.GeoJSON.Features {
			props := make(map[string]interface{}, len(f.Properties)+2)
			for k, v := range f.Properties {
				props[k] = v
			}
			props["district"] = r.Name
			props["lbCount"] = r.LBCount
			fc.Features = append(fc.Features, &geojson.Feature{ID: f.ID, Geometry: f.Geometry, Properties: props})
		}
	}
	return fc
}

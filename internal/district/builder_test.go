package district

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"kerala-map/internal/metrics"
	"kerala-map/internal/outline"
	"kerala-map/internal/results"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alphaHierarchy = `{
  "blocks": [{
    "lsgi_type": "G",
    "local_bodies": [{"name": "P1", "code": "G1", "ward_count": 12}, {"name": "P2", "code": "G2", "ward_count": 14}],
    "geojson": {"type": "FeatureCollection", "features": [
      {"type": "Feature", "properties": {"name": "P1"},
       "geometry": {"type": "Polygon", "coordinates": [[[76,10],[76.1,10],[76.1,10.1],[76,10.1],[76,10]]]}},
      {"type": "Feature", "properties": {"name": "P2"},
       "geometry": {"type": "Polygon", "coordinates": [[[76.105,10],[76.2,10],[76.2,10.1],[76.105,10.1],[76.105,10]]]}}
    ]}
  }, {
    "lsgi_type": "M",
    "local_bodies": [{"name": "M1", "code": "M1", "ward_count": 30}]
  }]
}`

const noGeometryHierarchy = `{"lsgi_type": "C", "local_bodies": [{"name": "C1", "code": "C1", "ward_count": 55}]}`

func writeHierarchy(t *testing.T, dir, name, body string) {
	t.Helper()
	d := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(d, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(d, name+"_hierarchy_with_geojson.json"), []byte(body), 0o644))
}

func sampleResults() *results.Set {
	return &results.Set{
		Categories: map[string]map[string]results.Row{
			"Alpha": {
				results.CatOrgPanchayat30:       {"Org District": "Alpha", "2025 Vote Share": "21.5%", "2024 Vote Share": " ", "2020 Vote Share": "18%"},
				results.CatCorporation:          {"Org District": "Alpha", "2025 Vote Share": "30%"},
				results.CatPanchayatSecondNoTie: {"Org District": "Alpha", "NDA - 2025 Result Wards": "1,204"},
				results.CatMunicipality2ndNoTie: {"Org District": "Alpha", "NDA - 2025 Result Wards": "96"},
				results.CatMunicipality2ndTie:   {"Org District": "Alpha", "NDA - 2025 Result Wards": "-"},
			},
		},
		Summaries: map[string]results.Summary{
			"Alpha": {GPFirstNoTie: 3, GPFirstTie: 1, GPSecondNoTie: 4, GPSecondTie: 2, MunicipalityFirst: 1, Municipality2ndNoTie: 2, Municipality2ndTie: 1, CorporationFirst: 1},
			"Beta":  {GPFirstNoTie: 5},
		},
		Sheets: map[string]results.Sheet{
			"Alpha": {GPTotal: 50, GP2020Won: 2, GP2025Target: 10, MTotal: 3, M2020Won: 1, M2025Target: 2, CTotal: 1, C2020Won: 0, C2025Target: 1},
		},
	}
}

func newTestBuilder(t *testing.T, m *metrics.Metrics) (*Builder, string) {
	dir := t.TempDir()
	writeHierarchy(t, dir, "Alpha", alphaHierarchy)
	writeHierarchy(t, dir, "Gamma", "{not json")
	writeHierarchy(t, dir, "Delta", noGeometryHierarchy)
	path := func(d string) string { return filepath.Join(dir, d, d+"_hierarchy_with_geojson.json") }
	merger := outline.NewMerger(outline.DefaultParams(outline.StrategyGapFill), nil)
	return NewBuilder(path, merger, sampleResults(), m), dir
}

func TestBuildMergedDistrict(t *testing.T) {
	b, _ := newTestBuilder(t, nil)
	rec, err := b.Build(context.Background(), "Alpha")
	require.NoError(t, err)

	assert.Equal(t, metrics.StatusOK, rec.Status)
	assert.Equal(t, 3, rec.LBCount)
	require.Len(t, rec.GeoJSON.Features, 1)
	assert.Equal(t, "Alpha", rec.GeoJSON.Features[0].Properties["name"])
	require.NotNil(t, rec.Centroid)
	assert.True(t, rec.Outline.Contains(*rec.Centroid))
	assert.Equal(t, 2, rec.LocalBodies["panchayat"].Count)
	assert.Equal(t, 1, rec.LocalBodies["municipality"].Count)
	assert.Equal(t, 0, rec.LocalBodies["corporation"].Count)
}

func TestAggregates(t *testing.T) {
	b, _ := newTestBuilder(t, nil)
	rec, _ := b.Build(context.Background(), "Alpha")

	assert.Equal(t, 6, rec.LocalBodyWon)
	assert.Equal(t, 15, rec.TotalLocalBodiesWon)
	assert.Equal(t, 13, rec.TargetLocalBody)
	assert.Equal(t, 54, rec.TotalLocalBody)
	assert.Equal(t, 3, rec.LB2020Won)
	assert.Equal(t, 6, rec.LocalBody2ndNoTie)
	assert.Equal(t, 3, rec.LocalBody2ndWithTie)
	assert.Equal(t, 1300, rec.Ward2ndNoTie)
	assert.Equal(t, 0, rec.Ward2ndWithTie)
}

func TestVoteShares(t *testing.T) {
	b, _ := newTestBuilder(t, nil)
	rec, _ := b.Build(context.Background(), "Alpha")
	v := rec.VoteShareData

	require.NotNil(t, v.Panchayat.Overall.VoteShare)
	assert.Equal(t, "21.5%", *v.Panchayat.Overall.VoteShare.Y2025)
	assert.Nil(t, v.Panchayat.Overall.VoteShare.Y2024)
	assert.Nil(t, v.Panchayat.Overall.Count)
	assert.Nil(t, v.Panchayat.FirstTie.VoteShare)
	assert.Equal(t, 1, *v.Panchayat.FirstTie.Count)
	assert.Nil(t, v.Municipality.First.VoteShare)
	assert.Same(t, v.Corporation.Overall.VoteShare, v.Corporation.First.VoteShare)
}

func TestMissingAndMalformedGivePlaceholders(t *testing.T) {
	b, _ := newTestBuilder(t, nil)

	rec, err := b.Build(context.Background(), "Beta")
	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageLoad, se.Stage)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Equal(t, metrics.StatusPlaceholder, rec.Status)
	assert.Equal(t, 0, rec.LBCount)
	assert.Empty(t, rec.GeoJSON.Features)
	assert.Nil(t, rec.Centroid)
	assert.Equal(t, 5, rec.LocalBodyWon)

	rec, err = b.Build(context.Background(), "Gamma")
	require.Error(t, err)
	assert.Equal(t, metrics.StatusPlaceholder, rec.Status)
}

func TestNoPolygonsKeepsLocalBodies(t *testing.T) {
	b, _ := newTestBuilder(t, nil)
	rec, err := b.Build(context.Background(), "Delta")
	require.ErrorIs(t, err, outline.ErrNoPolygons)
	assert.Equal(t, metrics.StatusNoOutline, rec.Status)
	assert.Equal(t, 1, rec.LBCount)
	assert.Equal(t, 1, rec.LocalBodies["corporation"].Count)
	assert.Empty(t, rec.GeoJSON.Features)
	assert.Nil(t, rec.Centroid)
}

func TestBuildAllKeepsOrderAndCount(t *testing.T) {
	m := metrics.New()
	b, _ := newTestBuilder(t, m)
	names := []string{"Gamma", "Alpha", "Beta", "Delta"}
	recs := b.BuildAll(context.Background(), names)

	require.Len(t, recs, len(names))
	for i, n := range names {
		assert.Equal(t, n, recs[i].Name)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DistrictsTotal.WithLabelValues(metrics.StatusOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DistrictsTotal.WithLabelValues(metrics.StatusPlaceholder)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DistrictsTotal.WithLabelValues(metrics.StatusNoOutline)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FeaturesTotal))
}

func TestRecordJSONShape(t *testing.T) {
	b, _ := newTestBuilder(t, nil)
	rec, _ := b.Build(context.Background(), "Beta")
	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	for _, k := range []string{"name", "lbCount", "geojson", "centroid", "csvData", "voteShareData",
		"totalLocalBodiesWon", "localBodyWon", "targetLocalBody", "totalLocalBody", "lb2020Won",
		"localBody2ndNoTie", "localBody2ndWithTie", "ward2ndNoTie", "ward2ndWithTie", "localBodies"} {
		assert.Contains(t, m, k)
	}
	assert.NotContains(t, m, "Status")
	assert.Nil(t, m["centroid"])
	assert.Equal(t, map[string]any{}, m["csvData"])
	gj := m["geojson"].(map[string]any)
	assert.Equal(t, "FeatureCollection", gj["type"])
	assert.Equal(t, []any{}, gj["features"])
	lb := m["localBodies"].(map[string]any)["panchayat"].(map[string]any)
	assert.Equal(t, []any{}, lb["list"])
}

package hierarchy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

const sampleHierarchy = `{
  "district": "Wayanad",
  "geojson": {"type": "FeatureCollection", "features": [
    {"type": "Feature", "id": 7, "properties": {"name": "Top"},
     "geometry": {"type": "Polygon", "coordinates": [[[76,11],[76.1,11],[76.1,11.1],[76,11.1],[76,11]]]}}
  ]},
  "blocks": [
    {
      "lsgi_type": "G",
      "local_bodies": [
        {"name": "Meenangadi", "code": "G120101", "ward_count": 19},
        {"name": "Ambalavayal", "code": 120102, "ward_count": "17"}
      ],
      "geojson": {"features": [
        {"type": "Feature", "properties": {},
         "geometry": {"type": "MultiPolygon", "coordinates": [[[[76.2,11],[76.3,11],[76.3,11.1],[76.2,11]]]]}},
        {"type": "Feature", "properties": {}, "geometry": {"type": "Bogus", "coordinates": []}},
        "not a feature"
      ]}
    },
    {
      "lsgi_type": "m",
      "local_bodies": [{"name": "Kalpetta", "code": "M12001", "ward_count": 28}]
    },
    {
      "lsgi_type": "X",
      "local_bodies": [{"name": "Unknown"}]
    }
  ]
}`

func TestExtractFeatures(t *testing.T) {
	doc, err := Parse("Wayanad", "mem", []byte(sampleHierarchy))
	require.NoError(t, err)

	ex := ExtractFeatures(doc)
	require.Len(t, ex.Features, 2)
	assert.Equal(t, 2, ex.Skipped)

	var polys, multis int
	for _, f := range ex.Features {
		switch f.Geometry.(type) {
		case *geom.Polygon:
			polys++
			assert.Equal(t, "7", f.ID)
		case *geom.MultiPolygon:
			multis++
		}
	}
	assert.Equal(t, 1, polys)
	assert.Equal(t, 1, multis)
}

func TestExtractLocalBodies(t *testing.T) {
	doc, err := Parse("Wayanad", "mem", []byte(sampleHierarchy))
	require.NoError(t, err)

	lbs := ExtractLocalBodies(doc)
	assert.Equal(t, 4, lbs.Total)
	require.Len(t, lbs.Panchayat, 2)
	assert.Equal(t, LocalBody{Name: "Ambalavayal", Code: "120102", WardCount: 17}, findLB(lbs.Panchayat, "Ambalavayal"))
	require.Len(t, lbs.Municipality, 1)
	assert.Equal(t, 28, lbs.Municipality[0].WardCount)
	assert.Empty(t, lbs.Corporation)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("Nowhere", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestLoadFileMalformed(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(p, []byte("{not json"), 0o644))
	_, err := LoadFile("Bad", p)
	require.Error(t, err)
	assert.False(t, os.IsNotExist(err))
}

func TestNilDocument(t *testing.T) {
	assert.Empty(t, ExtractFeatures(nil).Features)
	assert.Zero(t, ExtractLocalBodies(nil).Total)
}

func findLB(list []LocalBody, name string) LocalBody {
	for _, lb := range list {
		if lb.Name == name {
			return lb
		}
	}
	return LocalBody{}
}

const siblingHierarchy = `{
  "zeta":  {"lsgi_type": "G", "local_bodies": [{"name": "A"}],
            "geojson": {"features": [{"type": "Feature", "id": "fa", "properties": {},
              "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,0]]]}}]}},
  "alpha": {"lsgi_type": "G", "local_bodies": [{"name": "B"}],
            "geojson": {"features": [{"type": "Feature", "id": "fb", "properties": {},
              "geometry": {"type": "Polygon", "coordinates": [[[2,0],[3,0],[3,1],[2,0]]]}}]}},
  "mid":   [{"lsgi_type": "G", "local_bodies": [{"name": "C"}, {"name": "D"}]}],
  "beta":  {"lsgi_type": "G", "local_bodies": [{"name": "E"}]}
}`

func TestExtractionFollowsDocumentOrder(t *testing.T) {
	for i := 0; i < 20; i++ {
		doc, err := Parse("Order", "mem", []byte(siblingHierarchy))
		require.NoError(t, err)

		var names []string
		for _, lb := range ExtractLocalBodies(doc).Panchayat {
			names = append(names, lb.Name)
		}
		require.Equal(t, []string{"A", "B", "C", "D", "E"}, names)

		ex := ExtractFeatures(doc)
		require.Len(t, ex.Features, 2)
		require.Equal(t, "fa", ex.Features[0].ID)
		require.Equal(t, "fb", ex.Features[1].ID)
	}
}

func TestDuplicateKeysKeepLastValue(t *testing.T) {
	doc, err := Parse("Dup", "mem", []byte(`{"lsgi_type": "M", "local_bodies": [{"name": "x"}], "lsgi_type": "C"}`))
	require.NoError(t, err)
	lbs := ExtractLocalBodies(doc)
	assert.Empty(t, lbs.Municipality)
	require.Len(t, lbs.Corporation, 1)
}

func TestParseRejectsTrailingData(t *testing.T) {
	_, err := Parse("Trail", "mem", []byte(`{} {}`))
	assert.Error(t, err)
}

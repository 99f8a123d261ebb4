package render

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rec struct {
	Name     string      `json:"name"`
	Centroid *[2]float64 `json:"centroid"`
}

var dataRe = regexp.MustCompile(`const districtsData = (.*);\n`)

func TestInjectDefaultTemplate(t *testing.T) {
	records := []rec{{Name: "തൃശൂർ & Co"}, {Name: "Wayanad", Centroid: &[2]float64{76.1, 11.6}}}
	out, err := Inject(DefaultTemplate(), records)
	require.NoError(t, err)
	assert.NotContains(t, string(out), Placeholder)
	assert.Contains(t, string(out), "തൃശൂർ & Co")

	m := dataRe.FindSubmatch(out)
	require.Len(t, m, 2)
	var got []rec
	require.NoError(t, json.Unmarshal(m[1], &got))
	require.Len(t, got, 2)
	assert.Nil(t, got[0].Centroid)
	assert.Equal(t, 11.6, got[1].Centroid[1])
}

func TestInjectEscapesScriptClose(t *testing.T) {
	out, err := Inject([]byte("<script>x = DISTRICTS_DATA_PLACEHOLDER;</script>"), []rec{{Name: "</script><b>"}})
	require.NoError(t, err)
	assert.Equal(t, `<script>x = [{"name":"<\/script><b>","centroid":null}];</script>`, string(out))
}

func TestInjectRequiresPlaceholder(t *testing.T) {
	_, err := Inject([]byte("<html></html>"), []rec{})
	assert.ErrorIs(t, err, ErrNoPlaceholder)
}

func TestSetTitle(t *testing.T) {
	out := SetTitle(DefaultTemplate(), "Results <2025>")
	assert.Contains(t, string(out), "<title>Results &lt;2025&gt;</title>")
	assert.Equal(t, "no marker", string(SetTitle([]byte("no marker"), "x")))
}

func TestLoadTemplate(t *testing.T) {
	b, err := LoadTemplate("")
	require.NoError(t, err)
	assert.Contains(t, string(b), Placeholder)

	_, err = LoadTemplate(filepath.Join(t.TempDir(), "missing.html"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteFileReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "map.html")
	require.NoError(t, os.WriteFile(p, []byte("old"), 0o644))
	require.NoError(t, WriteFile(p, []byte("new")))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "new", string(b))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteFileMissingDir(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "nope", "map.html"), []byte("x"))
	assert.Error(t, err)
}

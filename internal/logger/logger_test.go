package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel(" DEBUG "))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestSetupWriterJSON(t *testing.T) {
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("LOG_FORMAT", "json")
	var buf bytes.Buffer
	SetupWriter(&buf)

	L().Debug("hidden")
	L().Info("district_built", "district", "Wayanad", "inputs", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "district_built", rec["msg"])
	assert.Equal(t, "Wayanad", rec["district"])
	assert.Equal(t, 3.0, rec["inputs"])
}

func TestTimedLogsBeginAndDone(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	var buf bytes.Buffer
	SetupWriter(&buf)

	Timed("outline_merge", "district", "Kasaragod")()

	out := buf.String()
	assert.Contains(t, out, "msg=outline_merge_begin")
	assert.Contains(t, out, "msg=outline_merge_done")
	assert.Contains(t, out, "district=Kasaragod")
	assert.Contains(t, out, "duration_ms=")
}

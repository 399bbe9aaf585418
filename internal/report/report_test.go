package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pdwriter/internal/prediction"
	"github.com/banshee-data/pdwriter/internal/testutil"
)

func syntheticObjects(t *testing.T) *prediction.Objects {
	return testutil.SyntheticObjects(t, "ctx-report", 5, 3)
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, "nightly predictions", syntheticObjects(t), 0))

	html := buf.String()
	assert.Contains(t, html, "nightly predictions")
	assert.Contains(t, html, "Score distribution")
	assert.Contains(t, html, "Objects by type")
	assert.Contains(t, html, "TYPE_VEHICLE")
	assert.Contains(t, html, "TYPE_CYCLIST")
}

func TestWriteHTML_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, "empty", &prediction.Objects{}, 0))
	assert.Contains(t, buf.String(), "Score distribution")
}

func TestWriteScoreHistogramPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.png")
	require.NoError(t, WriteScoreHistogramPNG(path, syntheticObjects(t), DefaultBins))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), data[:8])
}

func TestWriteScoreHistogramPNG_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	require.NoError(t, WriteScoreHistogramPNG(path, &prediction.Objects{}, 4))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestWriteScoreHistogramPNG_BadPath(t *testing.T) {
	err := WriteScoreHistogramPNG(filepath.Join(t.TempDir(), "missing", "scores.png"), prediction.ExampleObjects(), 0)
	assert.Error(t, err)
}

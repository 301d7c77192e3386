package visualize

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/sotafujii/pokeml/metrics"
)

func sampleConfusion(t *testing.T) *metrics.ConfusionMatrix {
	t.Helper()
	yTrue := mat.NewVecDense(8, []float64{0, 0, 0, 0, 1, 1, 1, 1})
	yPred := mat.NewVecDense(8, []float64{0, 0, 0, 1, 1, 1, 0, 1})
	cm, err := metrics.NewConfusionMatrix(yTrue, yPred)
	require.NoError(t, err)
	return cm
}

func assertNonEmptyFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestConfusionMatrixHeatmap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cm.png")
	require.NoError(t, ConfusionMatrixHeatmap(sampleConfusion(t), "confusion matrix", path))
	assertNonEmptyFile(t, path)
}

func TestConfusionMatrixHeatmapEmpty(t *testing.T) {
	err := ConfusionMatrixHeatmap(nil, "", filepath.Join(t.TempDir(), "cm.png"))
	require.Error(t, err)
}

func TestFeatureImportanceBars(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imp.png")
	names := []string{"attack", "defense", "speed", "hp"}
	imps := []float64{0.4, 0.1, 0.3, 0.2}

	require.NoError(t, FeatureImportanceBars(names, imps, 3, "importances", path))
	assertNonEmptyFile(t, path)
}

func TestFeatureImportanceBarsMismatch(t *testing.T) {
	err := FeatureImportanceBars([]string{"a", "b"}, []float64{0.5}, 0, "", filepath.Join(t.TempDir(), "x.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension mismatch")
}

func TestHistogram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hist.png")
	values := []float64{1, 2, 2, 3, 3, 3, 4, math.NaN(), 5}

	require.NoError(t, Histogram(values, 5, "hp", path))
	assertNonEmptyFile(t, path)
}

func TestHistogramAllMissing(t *testing.T) {
	err := Histogram([]float64{math.NaN(), math.NaN()}, 5, "", filepath.Join(t.TempDir(), "h.png"))
	require.Error(t, err)
}

func TestCVScoreBars(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.png")
	require.NoError(t, CVScoreBars([]float64{0.91, 0.88, 0.95, 0.9, 0.93}, "cv accuracy", path))
	assertNonEmptyFile(t, path)
}

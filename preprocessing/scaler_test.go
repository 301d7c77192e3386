package preprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestStandardScaler(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 100,
		2, 200,
		3, 300,
		4, 400,
	})

	scaler := NewStandardScalerDefault()
	out, err := scaler.FitTransform(X)
	require.NoError(t, err)

	r, c := out.Dims()
	require.Equal(t, 4, r)
	require.Equal(t, 2, c)

	// Each column has mean 0 and unit variance after scaling.
	for j := 0; j < c; j++ {
		sum, sumSq := 0.0, 0.0
		for i := 0; i < r; i++ {
			v := out.At(i, j)
			sum += v
			sumSq += v * v
		}
		assert.InDelta(t, 0.0, sum/float64(r), 1e-12, "column %d mean", j)
		assert.InDelta(t, 1.0, sumSq/float64(r), 1e-12, "column %d variance", j)
	}
}

func TestStandardScalerInverseTransform(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{10, 20, 30})

	scaler := NewStandardScalerDefault()
	scaled, err := scaler.FitTransform(X)
	require.NoError(t, err)

	back, err := scaler.InverseTransform(scaled)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(X, back, 1e-12))
}

func TestStandardScalerConstantFeature(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{7, 7, 7})

	scaler := NewStandardScalerDefault()
	out, err := scaler.FitTransform(X)
	require.NoError(t, err)

	// Constant feature maps to zero, not Inf.
	for i := 0; i < 3; i++ {
		assert.Equal(t, 0.0, out.At(i, 0))
	}
}

func TestStandardScalerNotFitted(t *testing.T) {
	scaler := NewStandardScalerDefault()
	_, err := scaler.Transform(mat.NewDense(1, 1, []float64{1}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not fitted")
}

func TestMinMaxScaler(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		0, 50,
		5, 100,
		10, 150,
	})

	scaler := NewMinMaxScalerDefault()
	out, err := scaler.FitTransform(X)
	require.NoError(t, err)

	assert.Equal(t, 0.0, out.At(0, 0))
	assert.Equal(t, 0.5, out.At(1, 0))
	assert.Equal(t, 1.0, out.At(2, 0))
	assert.Equal(t, 0.0, out.At(0, 1))
	assert.Equal(t, 1.0, out.At(2, 1))
}

func TestMinMaxScalerCustomRange(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{0, 10})

	scaler := NewMinMaxScaler([2]float64{-1, 1})
	out, err := scaler.FitTransform(X)
	require.NoError(t, err)

	assert.Equal(t, -1.0, out.At(0, 0))
	assert.Equal(t, 1.0, out.At(1, 0))
}

func TestStandardScalerRejectsNaN(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{1, math.NaN()})

	err := NewStandardScalerDefault().Fit(X)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-finite")
}

func TestMinMaxScalerInvalidRange(t *testing.T) {
	scaler := NewMinMaxScaler([2]float64{1, 1})
	err := scaler.Fit(mat.NewDense(1, 1, []float64{1}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feature_range")
}

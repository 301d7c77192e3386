package modelselection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestTrainTestSplit(t *testing.T) {
	X, y := labelled(10, func(i int) float64 { return float64(i % 2) })

	split, err := TrainTestSplit(X, y, 0.3, 42, false)
	require.NoError(t, err)

	trainRows, _ := split.XTrain.Dims()
	testRows, _ := split.XTest.Dims()
	assert.Equal(t, 7, trainRows)
	assert.Equal(t, 3, testRows)

	yTrainRows, _ := split.YTrain.Dims()
	yTestRows, _ := split.YTest.Dims()
	assert.Equal(t, 7, yTrainRows)
	assert.Equal(t, 3, yTestRows)

	// Every original row appears exactly once across the two parts,
	// carrying its label with it (feature 0 equals the row index).
	seen := make(map[float64]float64)
	collect := func(X, y *mat.Dense) {
		r, _ := X.Dims()
		for i := 0; i < r; i++ {
			seen[X.At(i, 0)] = y.At(i, 0)
		}
	}
	collect(split.XTrain, split.YTrain)
	collect(split.XTest, split.YTest)
	require.Len(t, seen, 10)
	for row, label := range seen {
		assert.Equal(t, float64(int(row)%2), label, "row %v", row)
	}
}

func TestTrainTestSplitDeterministic(t *testing.T) {
	X, y := labelled(20, func(i int) float64 { return float64(i % 2) })

	a, err := TrainTestSplit(X, y, 0.25, 7, false)
	require.NoError(t, err)
	b, err := TrainTestSplit(X, y, 0.25, 7, false)
	require.NoError(t, err)

	assert.True(t, mat.Equal(a.XTest, b.XTest))
	assert.True(t, mat.Equal(a.YTrain, b.YTrain))
}

func TestTrainTestSplitStratified(t *testing.T) {
	// 20% positives; a stratified 25% test split keeps one positive out
	// of the four held-out samples.
	X, y := labelled(20, func(i int) float64 {
		if i < 4 {
			return 1
		}
		return 0
	})

	split, err := TrainTestSplit(X, y, 0.25, 3, true)
	require.NoError(t, err)

	testRows, _ := split.XTest.Dims()
	require.Equal(t, 5, testRows)

	pos := 0
	for i := 0; i < testRows; i++ {
		if split.YTest.At(i, 0) == 1 {
			pos++
		}
	}
	assert.Equal(t, 1, pos)
}

func TestTrainTestSplitValidation(t *testing.T) {
	X, y := labelled(4, func(i int) float64 { return 0 })

	_, err := TrainTestSplit(X, y, 0, 0, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test_size")

	_, err = TrainTestSplit(X, y, 1.5, 0, false)
	require.Error(t, err)

	_, err = TrainTestSplit(X, mat.NewDense(3, 1, nil), 0.5, 0, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension mismatch")
}

package modelselection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func labelled(n int, labelOf func(i int) float64) (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		X.Set(i, 1, float64(i)*2)
		y.Set(i, 0, labelOf(i))
	}
	return X, y
}

func TestKFoldPartition(t *testing.T) {
	X, y := labelled(10, func(i int) float64 { return float64(i % 2) })

	kf := NewKFold(3, false, 0)
	folds := kf.Split(X, y)
	require.Len(t, folds, 3)

	// 10 samples over 3 folds: sizes 4, 3, 3.
	assert.Len(t, folds[0].TestIndices, 4)
	assert.Len(t, folds[1].TestIndices, 3)
	assert.Len(t, folds[2].TestIndices, 3)

	seen := make(map[int]int)
	for _, fold := range folds {
		assert.Len(t, fold.TrainIndices, 10-len(fold.TestIndices))
		for _, idx := range fold.TestIndices {
			seen[idx]++
		}
		inTrain := make(map[int]bool)
		for _, idx := range fold.TrainIndices {
			inTrain[idx] = true
		}
		for _, idx := range fold.TestIndices {
			assert.False(t, inTrain[idx], "index %d in both train and test", idx)
		}
	}
	// Every sample lands in exactly one test fold.
	require.Len(t, seen, 10)
	for idx, count := range seen {
		assert.Equal(t, 1, count, "index %d", idx)
	}
}

func TestKFoldShuffleDeterministic(t *testing.T) {
	X, y := labelled(20, func(i int) float64 { return 0 })

	a := NewKFold(4, true, 42).Split(X, y)
	b := NewKFold(4, true, 42).Split(X, y)
	assert.Equal(t, a, b, "same seed must give the same folds")

	c := NewKFold(4, true, 7).Split(X, y)
	assert.NotEqual(t, a, c, "different seeds should differ")
}

func TestKFoldDefaultSplits(t *testing.T) {
	kf := NewKFold(1, false, 0)
	assert.Equal(t, 5, kf.GetNSplits())
}

func TestStratifiedKFoldPreservesProportions(t *testing.T) {
	// 20 samples, 25% positives.
	X, y := labelled(20, func(i int) float64 {
		if i%4 == 0 {
			return 1
		}
		return 0
	})

	skf := NewStratifiedKFold(5, false, 0)
	folds := skf.Split(X, y)
	require.Len(t, folds, 5)

	for fi, fold := range folds {
		require.Len(t, fold.TestIndices, 4, "fold %d", fi)
		pos := 0
		for _, idx := range fold.TestIndices {
			if y.At(idx, 0) == 1 {
				pos++
			}
		}
		assert.Equal(t, 1, pos, "fold %d must hold one positive", fi)
	}
}

func TestStratifiedKFoldShuffleDeterministic(t *testing.T) {
	X, y := labelled(30, func(i int) float64 { return float64(i % 2) })

	a := NewStratifiedKFold(3, true, 9).Split(X, y)
	b := NewStratifiedKFold(3, true, 9).Split(X, y)
	assert.Equal(t, a, b)
}

func TestExtractSubset(t *testing.T) {
	X, y := labelled(5, func(i int) float64 { return float64(i) })

	xSub, ySub := extractSubset(X, y, []int{4, 1})

	r, c := xSub.Dims()
	require.Equal(t, 2, r)
	require.Equal(t, 2, c)
	// Rows come back in ascending index order.
	assert.Equal(t, 1.0, xSub.At(0, 0))
	assert.Equal(t, 4.0, xSub.At(1, 0))
	assert.Equal(t, 1.0, ySub.At(0, 0))
	assert.Equal(t, 4.0, ySub.At(1, 0))
}

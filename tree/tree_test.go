package tree

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// twoBlobs builds a linearly separable two-class set: class 0 clusters
// around (0, 0), class 1 around (10, 10), with mild jitter.
func twoBlobs(n int, seed int64) (*mat.Dense, *mat.Dense) {
	rng := rand.New(rand.NewSource(seed))
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		center := 0.0
		label := 0.0
		if i%2 == 1 {
			center = 10.0
			label = 1.0
		}
		X.Set(i, 0, center+rng.NormFloat64())
		X.Set(i, 1, center+rng.NormFloat64())
		y.Set(i, 0, label)
	}
	return X, y
}

func TestDecisionTreeSeparableData(t *testing.T) {
	X, y := twoBlobs(100, 42)

	clf := NewDecisionTreeClassifier()
	require.NoError(t, clf.Fit(X, y))

	score, err := clf.Score(X, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, score, "training accuracy on separable data")
	assert.Equal(t, []int{0, 1}, clf.Classes())
}

func TestDecisionTreeXOR(t *testing.T) {
	// XOR is not linearly separable but a depth-2 tree fits it exactly.
	X := mat.NewDense(8, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
		0, 0,
		0, 1,
		1, 0,
		1, 1,
	})
	y := mat.NewDense(8, 1, []float64{0, 1, 1, 0, 0, 1, 1, 0})

	clf := NewDecisionTreeClassifier(WithTreeMaxDepth(2))
	require.NoError(t, clf.Fit(X, y))

	score, err := clf.Score(X, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
}

func TestDecisionTreeCategoricalSplit(t *testing.T) {
	// One label-encoded feature with three codes; code 1 marks class 1.
	X := mat.NewDense(9, 1, []float64{0, 1, 2, 0, 1, 2, 0, 1, 2})
	y := mat.NewDense(9, 1, []float64{0, 1, 0, 0, 1, 0, 0, 1, 0})

	clf := NewDecisionTreeClassifier(WithTreeMaxDepth(1))
	require.NoError(t, clf.Fit(X, y))

	// A single threshold split cannot isolate the middle code, so only
	// an equality split reaches perfect accuracy at depth 1.
	score, err := clf.Score(X, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
}

func TestDecisionTreeMissingValues(t *testing.T) {
	nan := math.NaN()
	X := mat.NewDense(8, 1, []float64{1, 2, 1, 2, 9, 10, 9, nan})
	y := mat.NewDense(8, 1, []float64{0, 0, 0, 0, 1, 1, 1, 1})

	clf := NewDecisionTreeClassifier()
	require.NoError(t, clf.Fit(X, y))

	// A NaN query follows the heavier branch and still gets a prediction.
	pred, err := clf.Predict(mat.NewDense(1, 1, []float64{nan}))
	require.NoError(t, err)
	assert.Contains(t, []float64{0, 1}, pred.At(0, 0))

	pred, err = clf.Predict(mat.NewDense(2, 1, []float64{1.5, 9.5}))
	require.NoError(t, err)
	assert.Equal(t, 0.0, pred.At(0, 0))
	assert.Equal(t, 1.0, pred.At(1, 0))
}

func TestDecisionTreePredictProba(t *testing.T) {
	X, y := twoBlobs(60, 7)

	clf := NewDecisionTreeClassifier(WithTreeMaxDepth(3))
	require.NoError(t, clf.Fit(X, y))

	proba, err := clf.PredictProba(X)
	require.NoError(t, err)

	r, c := proba.Dims()
	require.Equal(t, 60, r)
	require.Equal(t, 2, c)
	for i := 0; i < r; i++ {
		assert.InDelta(t, 1.0, proba.At(i, 0)+proba.At(i, 1), 1e-12, "row %d", i)
	}
}

func TestDecisionTreeFeatureImportances(t *testing.T) {
	// Only the first feature carries signal; the second is constant.
	X := mat.NewDense(6, 2, []float64{
		1, 5,
		2, 5,
		3, 5,
		8, 5,
		9, 5,
		10, 5,
	})
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 1, 1, 1})

	clf := NewDecisionTreeClassifier()
	require.NoError(t, clf.Fit(X, y))

	imp, err := clf.FeatureImportances()
	require.NoError(t, err)
	require.Len(t, imp, 2)
	assert.InDelta(t, 1.0, imp[0], 1e-12)
	assert.Equal(t, 0.0, imp[1])
}

func TestDecisionTreeMinSamplesLeaf(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{0, 0, 1, 1})

	clf := NewDecisionTreeClassifier(WithTreeMinSamplesLeaf(3))
	require.NoError(t, clf.Fit(X, y))

	// No split satisfies the leaf minimum, so the root stays a leaf and
	// every prediction carries the 50/50 prior.
	proba, err := clf.PredictProba(X)
	require.NoError(t, err)
	assert.Equal(t, 0.5, proba.At(0, 0))
	assert.Equal(t, 0.5, proba.At(0, 1))
}

func TestDecisionTreeValidation(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{1, 2})

	t.Run("label count mismatch", func(t *testing.T) {
		err := NewDecisionTreeClassifier().Fit(X, mat.NewDense(3, 1, []float64{0, 1, 0}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dimension mismatch")
	})

	t.Run("NaN label", func(t *testing.T) {
		err := NewDecisionTreeClassifier().Fit(X, mat.NewDense(2, 1, []float64{0, math.NaN()}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "NaN")
	})

	t.Run("non-integer label", func(t *testing.T) {
		err := NewDecisionTreeClassifier().Fit(X, mat.NewDense(2, 1, []float64{0, 0.5}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "integers")
	})

	t.Run("bad criterion", func(t *testing.T) {
		err := NewDecisionTreeClassifier(WithTreeCriterion("chi2")).Fit(X, mat.NewDense(2, 1, []float64{0, 1}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "criterion")
	})
}

func TestDecisionTreeNotFitted(t *testing.T) {
	clf := NewDecisionTreeClassifier()
	_, err := clf.Predict(mat.NewDense(1, 1, []float64{1}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not fitted")
}

func TestDecisionTreeEntropyCriterion(t *testing.T) {
	X, y := twoBlobs(80, 3)

	clf := NewDecisionTreeClassifier(WithTreeCriterion(CriterionEntropy))
	require.NoError(t, clf.Fit(X, y))

	score, err := clf.Score(X, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
}

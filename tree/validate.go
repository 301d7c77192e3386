package tree

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/sotafujii/pokeml/core/model"
	"github.com/sotafujii/pokeml/pkg/errors"
)

// validateXY checks the shapes of a training pair and materializes X as
// row slices and y as integer labels. Feature NaNs pass through; label
// NaNs and non-integer labels are rejected.
func validateXY(op string, X, y mat.Matrix) ([][]float64, []int, error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	yr, yc := y.Dims()
	if yc != 1 {
		return nil, nil, errors.NewDimensionError(op, 1, yc, 1)
	}
	if yr != r {
		return nil, nil, errors.NewDimensionError(op, r, yr, 0)
	}

	rows := make([][]float64, r)
	for i := 0; i < r; i++ {
		row := make([]float64, c)
		mat.Row(row, i, X)
		rows[i] = row
	}

	labels := make([]int, r)
	for i := 0; i < r; i++ {
		v := y.At(i, 0)
		if math.IsNaN(v) {
			return nil, nil, errors.NewValueError(op, "labels must not contain NaN")
		}
		if v != math.Trunc(v) {
			return nil, nil, errors.NewValueError(op, "labels must be integers")
		}
		labels[i] = int(v)
	}
	return rows, labels, nil
}

// uniqueClasses returns the sorted distinct labels.
func uniqueClasses(labels []int) []int {
	seen := make(map[int]struct{})
	for _, lab := range labels {
		seen[lab] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for lab := range seen {
		out = append(out, lab)
	}
	sort.Ints(out)
	return out
}

// classifierAccuracy scores a fitted classifier by the fraction of rows
// whose predicted label matches y.
func classifierAccuracy(clf model.Predictor, X, y mat.Matrix) (float64, error) {
	pred, err := clf.Predict(X)
	if err != nil {
		return 0, err
	}
	r, _ := pred.Dims()
	yr, _ := y.Dims()
	if yr != r {
		return 0, errors.NewDimensionError("Score", r, yr, 0)
	}
	correct := 0
	for i := 0; i < r; i++ {
		if pred.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(r), nil
}

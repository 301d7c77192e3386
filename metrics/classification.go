// Package metrics provides classification evaluation metrics over gonum
// vectors and matrices: accuracy, precision/recall/F1, confusion
// matrices, ROC AUC and log loss.
package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/sotafujii/pokeml/pkg/errors"
)

// logLossEpsilon clips predicted probabilities away from 0 and 1 so the
// log never blows up.
const logLossEpsilon = 1e-15

// AUC computes the area under the ROC curve for binary labels using the
// rank statistic (Mann-Whitney U). Tied scores receive their average
// rank. When only one class is present the metric is undefined; a
// warning is emitted and 0.5 is returned.
func AUC(yTrue, yPred *mat.VecDense) (float64, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewModelError("AUC", "nil input", errors.ErrEmptyData)
	}
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewModelError("AUC", "empty data", errors.ErrEmptyData)
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("AUC", n, yPred.Len(), 0)
	}

	nPos, nNeg := 0, 0
	for i := 0; i < n; i++ {
		switch yTrue.AtVec(i) {
		case 1:
			nPos++
		case 0:
			nNeg++
		default:
			return 0, errors.NewValueError("AUC", "labels must be 0 or 1")
		}
	}
	if nPos == 0 || nNeg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("AUC", "only one class present in y_true", 0.5))
		return 0.5, nil
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		return yPred.AtVec(idx[a]) < yPred.AtVec(idx[b])
	})

	// Average ranks across tied scores, then sum the positive ranks.
	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && yPred.AtVec(idx[j]) == yPred.AtVec(idx[i]) {
			j++
		}
		avg := float64(i+j+1) / 2 // ranks are 1-based
		for k := i; k < j; k++ {
			ranks[idx[k]] = avg
		}
		i = j
	}

	sumPos := 0.0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == 1 {
			sumPos += ranks[i]
		}
	}
	u := sumPos - float64(nPos)*float64(nPos+1)/2
	return u / (float64(nPos) * float64(nNeg)), nil
}

// AUCMatrix computes AUC from matrix inputs, using the first column of
// each matrix.
func AUCMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	tv, err := firstColumn("AUCMatrix", yTrue)
	if err != nil {
		return 0, err
	}
	pv, err := firstColumn("AUCMatrix", yPred)
	if err != nil {
		return 0, err
	}
	return AUC(tv, pv)
}

// BinaryLogLoss computes the negative log likelihood of binary labels
// under predicted probabilities, clipping the probabilities to
// [eps, 1-eps].
func BinaryLogLoss(yTrue, yPred *mat.VecDense) (float64, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewModelError("BinaryLogLoss", "nil input", errors.ErrEmptyData)
	}
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewModelError("BinaryLogLoss", "empty data", errors.ErrEmptyData)
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("BinaryLogLoss", n, yPred.Len(), 0)
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		t := yTrue.AtVec(i)
		if t != 0 && t != 1 {
			return 0, errors.NewValueError("BinaryLogLoss", "labels must be 0 or 1")
		}
		p := yPred.AtVec(i)
		if p < logLossEpsilon {
			p = logLossEpsilon
		}
		if p > 1-logLossEpsilon {
			p = 1 - logLossEpsilon
		}
		sum += t*math.Log(p) + (1-t)*math.Log(1-p)
	}
	return -sum / float64(n), nil
}

// Accuracy returns the fraction of exactly matching labels.
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewModelError("Accuracy", "nil input", errors.ErrEmptyData)
	}
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewModelError("Accuracy", "empty data", errors.ErrEmptyData)
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("Accuracy", n, yPred.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ClassificationError returns 1 - Accuracy.
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - acc, nil
}

// AccuracyMatrix computes accuracy from matrix inputs, using the first
// column of each matrix.
func AccuracyMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	tv, err := firstColumn("AccuracyMatrix", yTrue)
	if err != nil {
		return 0, err
	}
	pv, err := firstColumn("AccuracyMatrix", yPred)
	if err != nil {
		return 0, err
	}
	return Accuracy(tv, pv)
}

// Precision returns TP / (TP + FP) for the given positive label. When no
// positive predictions exist the metric is undefined; a warning is
// emitted and 0 is returned.
func Precision(yTrue, yPred *mat.VecDense, positive float64) (float64, error) {
	tp, fp, _, err := binaryCounts("Precision", yTrue, yPred, positive)
	if err != nil {
		return 0, err
	}
	if tp+fp == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("Precision", "no predicted positives", 0))
		return 0, nil
	}
	return float64(tp) / float64(tp+fp), nil
}

// Recall returns TP / (TP + FN) for the given positive label. When no
// true positives exist in y_true the metric is undefined; a warning is
// emitted and 0 is returned.
func Recall(yTrue, yPred *mat.VecDense, positive float64) (float64, error) {
	tp, _, fn, err := binaryCounts("Recall", yTrue, yPred, positive)
	if err != nil {
		return 0, err
	}
	if tp+fn == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("Recall", "no true positives in y_true", 0))
		return 0, nil
	}
	return float64(tp) / float64(tp+fn), nil
}

// F1Score returns the harmonic mean of precision and recall for the
// given positive label, 0 when both are 0.
func F1Score(yTrue, yPred *mat.VecDense, positive float64) (float64, error) {
	p, err := Precision(yTrue, yPred, positive)
	if err != nil {
		return 0, err
	}
	r, err := Recall(yTrue, yPred, positive)
	if err != nil {
		return 0, err
	}
	if p+r == 0 {
		return 0, nil
	}
	return 2 * p * r / (p + r), nil
}

func binaryCounts(op string, yTrue, yPred *mat.VecDense, positive float64) (tp, fp, fn int, err error) {
	if yTrue == nil || yPred == nil {
		return 0, 0, 0, errors.NewModelError(op, "nil input", errors.ErrEmptyData)
	}
	n := yTrue.Len()
	if n == 0 {
		return 0, 0, 0, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if yPred.Len() != n {
		return 0, 0, 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}

	for i := 0; i < n; i++ {
		t := yTrue.AtVec(i) == positive
		p := yPred.AtVec(i) == positive
		switch {
		case t && p:
			tp++
		case !t && p:
			fp++
		case t && !p:
			fn++
		}
	}
	return tp, fp, fn, nil
}

// firstColumn extracts column 0 of m as a vector.
func firstColumn(op string, m mat.Matrix) (*mat.VecDense, error) {
	if m == nil {
		return nil, errors.NewModelError(op, "nil input", errors.ErrEmptyData)
	}
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	v := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v, nil
}

package modelselection

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/sotafujii/pokeml/core/model"
	"github.com/sotafujii/pokeml/metrics"
	"github.com/sotafujii/pokeml/pkg/errors"
)

// Scoring metric names accepted by CrossValidate.
const (
	ScoringAccuracy = "accuracy"
	ScoringF1       = "f1"
	ScoringLogLoss  = "logloss"
)

// ClassifierFactory builds a fresh, unfitted classifier for one fold.
// Each fold trains its own instance so folds can run concurrently.
type ClassifierFactory func() model.Classifier

// CVResult holds per-fold cross-validation scores.
type CVResult struct {
	TrainScores []float64
	TestScores  []float64
	Models      []model.Classifier
}

// GetMeanScore returns the mean test score.
func (cv *CVResult) GetMeanScore() float64 {
	if len(cv.TestScores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range cv.TestScores {
		sum += s
	}
	return sum / float64(len(cv.TestScores))
}

// BestFold returns the index of the best test score and the score
// itself. Higher is better for accuracy and f1; for logloss the caller
// wants the minimum, so lowerIsBetter flips the comparison.
func (cv *CVResult) BestFold(lowerIsBetter bool) (int, float64) {
	if len(cv.TestScores) == 0 {
		return -1, 0
	}
	best, bestScore := 0, cv.TestScores[0]
	for i, s := range cv.TestScores[1:] {
		if (lowerIsBetter && s < bestScore) || (!lowerIsBetter && s > bestScore) {
			best, bestScore = i+1, s
		}
	}
	return best, bestScore
}

// GetStdScore returns the sample standard deviation of the test scores.
func (cv *CVResult) GetStdScore() float64 {
	if len(cv.TestScores) <= 1 {
		return 0
	}
	mean := cv.GetMeanScore()
	sumSq := 0.0
	for _, s := range cv.TestScores {
		diff := s - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(cv.TestScores)-1))
}

// CrossValidate trains one classifier per fold concurrently and scores
// it on the held-out part. An empty scoring name means accuracy.
func CrossValidate(factory ClassifierFactory, X, y mat.Matrix, splitter KFoldSplitter, scoring string) (*CVResult, error) {
	if scoring == "" {
		scoring = ScoringAccuracy
	}
	score, err := scorerFor(scoring)
	if err != nil {
		return nil, err
	}

	nSamples, _ := X.Dims()
	if n := splitter.GetNSplits(); n > nSamples {
		return nil, errors.NewValidationError("n_splits",
			fmt.Sprintf("cannot exceed the %d samples", nSamples), n)
	}

	folds := splitter.Split(X, y)
	nFolds := len(folds)

	// Stratified splitting can still leave a fold without test rows when
	// every class has fewer members than there are folds.
	for i, fold := range folds {
		if len(fold.TestIndices) == 0 || len(fold.TrainIndices) == 0 {
			return nil, errors.NewValidationError("n_splits",
				fmt.Sprintf("fold %d of %d is empty for %d samples", i, nFolds, nSamples),
				splitter.GetNSplits())
		}
	}

	result := &CVResult{
		TrainScores: make([]float64, nFolds),
		TestScores:  make([]float64, nFolds),
		Models:      make([]model.Classifier, nFolds),
	}
	foldErrs := make([]error, nFolds)

	var wg sync.WaitGroup
	for foldIdx := 0; foldIdx < nFolds; foldIdx++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			fold := folds[idx]
			trainX, trainY := extractSubset(X, y, fold.TrainIndices)
			testX, testY := extractSubset(X, y, fold.TestIndices)

			clf := factory()
			if err := clf.Fit(trainX, trainY); err != nil {
				foldErrs[idx] = errors.Wrapf(err, "pokeml: CrossValidate: fold %d training failed", idx)
				return
			}
			result.Models[idx] = clf

			trainScore, err := score(clf, trainX, trainY)
			if err != nil {
				foldErrs[idx] = errors.Wrapf(err, "pokeml: CrossValidate: fold %d train scoring failed", idx)
				return
			}
			result.TrainScores[idx] = trainScore

			testScore, err := score(clf, testX, testY)
			if err != nil {
				foldErrs[idx] = errors.Wrapf(err, "pokeml: CrossValidate: fold %d test scoring failed", idx)
				return
			}
			result.TestScores[idx] = testScore
		}(foldIdx)
	}
	wg.Wait()

	for _, err := range foldErrs {
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// scorer evaluates one fitted classifier on a data pair.
type scorer func(clf model.Classifier, X, y mat.Matrix) (float64, error)

func scorerFor(scoring string) (scorer, error) {
	switch scoring {
	case ScoringAccuracy:
		return func(clf model.Classifier, X, y mat.Matrix) (float64, error) {
			pred, err := clf.Predict(X)
			if err != nil {
				return 0, err
			}
			return metrics.AccuracyMatrix(y, pred)
		}, nil

	case ScoringF1:
		return func(clf model.Classifier, X, y mat.Matrix) (float64, error) {
			pred, err := clf.Predict(X)
			if err != nil {
				return 0, err
			}
			return metrics.F1Score(columnVec(y), columnVec(pred), 1)
		}, nil

	case ScoringLogLoss:
		return func(clf model.Classifier, X, y mat.Matrix) (float64, error) {
			proba, err := clf.PredictProba(X)
			if err != nil {
				return 0, err
			}
			// Column of the positive class in Classes() order.
			posCol := 0
			for i, c := range clf.Classes() {
				if c == 1 {
					posCol = i
				}
			}
			r, _ := proba.Dims()
			pos := mat.NewVecDense(r, nil)
			for i := 0; i < r; i++ {
				pos.SetVec(i, proba.At(i, posCol))
			}
			return metrics.BinaryLogLoss(columnVec(y), pos)
		}, nil

	default:
		return nil, errors.NewValidationError("scoring", "must be accuracy, f1 or logloss", scoring)
	}
}

func columnVec(m mat.Matrix) *mat.VecDense {
	r, _ := m.Dims()
	v := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v
}

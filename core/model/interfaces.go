// Package model provides the estimator contracts shared by every
// learning algorithm in the library.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns a goodness-of-fit measure of the prediction
	// (accuracy for classifiers).
	Score(X mat.Matrix, y mat.Matrix) (float64, error)
}

// Classifier combines the interfaces a classification model must satisfy.
type Classifier interface {
	Fitter
	Predictor
	Scorer

	// PredictProba returns probability estimates, one column per class.
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes returns the unique class labels seen during fitting.
	Classes() []int
}

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}

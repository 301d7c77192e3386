package model

import "gonum.org/v1/gonum/mat"

// Transformer is the interface for stateful data transformations
// (scalers, imputers, encoders).
type Transformer interface {
	// Fit learns the parameters needed for the transformation.
	Fit(X mat.Matrix) error

	// Transform applies the learned transformation to X.
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform fits on X and transforms the same data.
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

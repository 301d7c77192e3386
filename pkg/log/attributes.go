// Standard attribute keys for machine learning log events. Using these
// keys keeps logs filterable across packages: every fit, transform and
// scoring operation reports the same vocabulary.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the type of model or transformer.
	// Examples: "RandomForestClassifier", "KNNImputer"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "transform", "score", "cross_validate"
	OperationKey = "ml.operation"

	// ComponentKey identifies the package performing the operation.
	// Examples: "tree", "preprocessing", "metrics"
	ComponentKey = "ml.component"
)

// Data shape and characteristics.
const (
	// SamplesKey is the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of features (columns) in the dataset.
	FeaturesKey = "data.features"

	// MissingKey is the number of missing cells before imputation.
	MissingKey = "data.missing"
)

// Performance and results.
const (
	// DurationMsKey is the wall-clock duration of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey is a reported accuracy score.
	AccuracyKey = "metric.accuracy"

	// FoldKey identifies a cross-validation fold.
	FoldKey = "cv.fold"
)

// Package pokeml is a small machine-learning toolkit for tabular
// classification, built around one workload: predicting whether a Pokemon
// is legendary from its Pokedex attributes.
//
// The library follows a scikit-learn-like API over gonum matrices, so the
// whole workflow reads like the notebook it replaces:
//
//	table, _ := dataset.ReadCSV("pokemon.csv", dataset.PokemonOptions())
//	X, y, _ := table.Matrix("is_legendary")
//
//	imputer := preprocessing.NewKNNImputer(5)
//	X, _ = imputer.FitTransform(X)
//
//	split, _ := modelselection.TrainTestSplit(X, y, 0.25, 42)
//
//	clf := tree.NewRandomForestClassifier(
//	    tree.WithNEstimators(200),
//	    tree.WithRandomState(42),
//	)
//	_ = clf.Fit(split.XTrain, split.YTrain)
//
//	pred, _ := clf.Predict(split.XTest)
//	cm, _ := metrics.NewConfusionMatrix(split.YTest, pred)
//	fmt.Println(cm)
//
// # Packages
//
//   - dataset: CSV loading into typed tables, matrix conversion
//   - preprocessing: imputation (simple and k-NN), encoding, scaling
//   - tree: CART decision trees and random forests
//   - metrics: classification metrics, confusion matrix, report
//   - modelselection: train/test split, k-fold cross-validation
//   - visualize: confusion matrix heatmaps, importance charts, histograms
//   - core/model, core/parallel: estimator contracts and CPU helpers
//
// Estimators validate their inputs and return structured errors from
// pkg/errors; nothing in the library panics across an API boundary.
// All randomized steps (splitting, bagging, feature subsampling) are
// driven by explicit seeds so a fixed seed reproduces a run exactly.
package pokeml

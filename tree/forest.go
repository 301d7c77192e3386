package tree

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/sotafujii/pokeml/core/model"
	"github.com/sotafujii/pokeml/core/parallel"
	"github.com/sotafujii/pokeml/pkg/errors"
)

// RandomForestClassifier is a bagging ensemble of decision trees with
// per-split feature subsampling. Predictions average the per-tree class
// probabilities; Predict takes the arg-max class.
type RandomForestClassifier struct {
	model.BaseEstimator

	// NEstimators is the number of trees.
	NEstimators int

	// MaxDepth limits each tree's depth; 0 means unlimited.
	MaxDepth int

	// MinSamplesSplit is the minimum sample count to attempt a split.
	MinSamplesSplit int

	// MinSamplesLeaf is the minimum sample count in each leaf.
	MinSamplesLeaf int

	// Criterion is gini or entropy.
	Criterion string

	// MaxFeatures is the number of features sampled per split;
	// 0 selects round(sqrt(n_features)).
	MaxFeatures int

	// Bootstrap draws each tree's training set with replacement.
	Bootstrap bool

	// Seed fixes bootstrap sampling and feature subsampling.
	Seed int64

	trees     []*DecisionTreeClassifier
	classes   []int
	nFeatures int
}

// ForestOption configures a RandomForestClassifier.
type ForestOption func(*RandomForestClassifier)

// WithNEstimators sets the number of trees.
func WithNEstimators(n int) ForestOption {
	return func(f *RandomForestClassifier) { f.NEstimators = n }
}

// WithMaxDepth limits each tree's depth; 0 means unlimited.
func WithMaxDepth(d int) ForestOption {
	return func(f *RandomForestClassifier) { f.MaxDepth = d }
}

// WithMinSamplesSplit sets the minimum sample count to attempt a split.
func WithMinSamplesSplit(n int) ForestOption {
	return func(f *RandomForestClassifier) { f.MinSamplesSplit = n }
}

// WithMinSamplesLeaf sets the minimum sample count per leaf.
func WithMinSamplesLeaf(n int) ForestOption {
	return func(f *RandomForestClassifier) { f.MinSamplesLeaf = n }
}

// WithCriterion selects the impurity criterion.
func WithCriterion(c string) ForestOption {
	return func(f *RandomForestClassifier) { f.Criterion = c }
}

// WithMaxFeatures sets how many features each split samples;
// 0 selects round(sqrt(n_features)).
func WithMaxFeatures(k int) ForestOption {
	return func(f *RandomForestClassifier) { f.MaxFeatures = k }
}

// WithBootstrap toggles sampling with replacement per tree.
func WithBootstrap(b bool) ForestOption {
	return func(f *RandomForestClassifier) { f.Bootstrap = b }
}

// WithRandomState fixes the seed, making training deterministic.
func WithRandomState(seed int64) ForestOption {
	return func(f *RandomForestClassifier) { f.Seed = seed }
}

// NewRandomForestClassifier returns a forest with sklearn-like defaults:
// 100 trees, gini impurity, bootstrap sampling, sqrt(p) features per split.
func NewRandomForestClassifier(opts ...ForestOption) *RandomForestClassifier {
	f := &RandomForestClassifier{
		NEstimators:     100,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Criterion:       CriterionGini,
		Bootstrap:       true,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fit trains the ensemble. Trees train concurrently; each tree draws its
// own bootstrap sample and feature subsets from a seed derived from the
// forest seed and the tree index, so results do not depend on scheduling.
func (f *RandomForestClassifier) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "RandomForestClassifier.Fit")

	if f.NEstimators <= 0 {
		return errors.NewValidationError("n_estimators", "must be positive", f.NEstimators)
	}
	rows, labels, verr := validateXY("RandomForestClassifier.Fit", X, y)
	if verr != nil {
		return verr
	}
	if f.Criterion != CriterionGini && f.Criterion != CriterionEntropy {
		return errors.NewValidationError("criterion", "must be gini or entropy", f.Criterion)
	}

	f.nFeatures = len(rows[0])
	f.classes = uniqueClasses(labels)

	maxFeatures := f.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = int(math.Round(math.Sqrt(float64(f.nFeatures))))
		if maxFeatures < 1 {
			maxFeatures = 1
		}
	}
	if maxFeatures > f.nFeatures {
		maxFeatures = f.nFeatures
	}

	f.trees = make([]*DecisionTreeClassifier, f.NEstimators)
	errs := make([]error, f.NEstimators)

	parallel.Parallelize(f.NEstimators, func(start, end int) {
		for t := start; t < end; t++ {
			treeSeed := f.Seed + int64(t)
			sampleX, sampleY := f.sample(rows, labels, treeSeed)

			clf := NewDecisionTreeClassifier(
				WithTreeMaxDepth(f.MaxDepth),
				WithTreeMinSamplesSplit(f.MinSamplesSplit),
				WithTreeMinSamplesLeaf(f.MinSamplesLeaf),
				WithTreeCriterion(f.Criterion),
				WithTreeMaxFeatures(maxFeatures),
				WithTreeSeed(treeSeed),
			)
			errs[t] = clf.Fit(sampleX, sampleY)
			f.trees[t] = clf
		}
	})

	for _, e := range errs {
		if e != nil {
			return errors.Wrap(e, "pokeml: RandomForestClassifier.Fit: tree training failed")
		}
	}

	f.SetFitted()
	return nil
}

// sample builds one tree's training pair: a bootstrap draw when Bootstrap
// is set, the full data otherwise.
func (f *RandomForestClassifier) sample(rows [][]float64, labels []int, seed int64) (mat.Matrix, mat.Matrix) {
	n := len(rows)
	p := len(rows[0])

	pick := make([]int, n)
	if f.Bootstrap {
		rng := rand.New(rand.NewSource(seed))
		for i := range pick {
			pick[i] = rng.Intn(n)
		}
	} else {
		for i := range pick {
			pick[i] = i
		}
	}

	X := mat.NewDense(n, p, nil)
	y := mat.NewDense(n, 1, nil)
	for i, src := range pick {
		X.SetRow(i, rows[src])
		y.Set(i, 0, float64(labels[src]))
	}
	return X, y
}

// Predict returns the class with the highest averaged probability per row.
func (f *RandomForestClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := f.PredictProba(X)
	if err != nil {
		return nil, err
	}
	r, _ := proba.Dims()
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		best, bestP := 0, proba.At(i, 0)
		for j := 1; j < len(f.classes); j++ {
			if p := proba.At(i, j); p > bestP {
				best, bestP = j, p
			}
		}
		out.Set(i, 0, float64(f.classes[best]))
	}
	return out, nil
}

// PredictProba averages the per-tree class probabilities. Trees that
// never saw a class during their bootstrap draw contribute zero to that
// class's column.
func (f *RandomForestClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !f.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForestClassifier", "PredictProba")
	}
	r, c := X.Dims()
	if c != f.nFeatures {
		return nil, errors.NewDimensionError("RandomForestClassifier.PredictProba", f.nFeatures, c, 1)
	}

	classCol := make(map[int]int, len(f.classes))
	for j, cl := range f.classes {
		classCol[cl] = j
	}

	// Per-tree probabilities evaluate concurrently; the reduction stays
	// sequential.
	probas := make([]mat.Matrix, len(f.trees))
	errs := make([]error, len(f.trees))
	parallel.Parallelize(len(f.trees), func(start, end int) {
		for t := start; t < end; t++ {
			probas[t], errs[t] = f.trees[t].PredictProba(X)
		}
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	sum := mat.NewDense(r, len(f.classes), nil)
	for t, proba := range probas {
		for i := 0; i < r; i++ {
			for j, cl := range f.trees[t].Classes() {
				col := classCol[cl]
				sum.Set(i, col, sum.At(i, col)+proba.At(i, j))
			}
		}
	}

	scale := 1.0 / float64(len(f.trees))
	sum.Scale(scale, sum)
	return sum, nil
}

// Classes returns the class labels in probability-column order.
func (f *RandomForestClassifier) Classes() []int {
	return f.classes
}

// Score returns accuracy on X against y.
func (f *RandomForestClassifier) Score(X, y mat.Matrix) (float64, error) {
	if !f.IsFitted() {
		return 0, errors.NewNotFittedError("RandomForestClassifier", "Score")
	}
	return classifierAccuracy(f, X, y)
}

// FeatureImportances averages the per-tree impurity decrease and
// renormalizes to sum 1.
func (f *RandomForestClassifier) FeatureImportances() ([]float64, error) {
	if !f.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForestClassifier", "FeatureImportances")
	}

	out := make([]float64, f.nFeatures)
	for _, t := range f.trees {
		imp, err := t.FeatureImportances()
		if err != nil {
			return nil, err
		}
		for j, v := range imp {
			out[j] += v
		}
	}

	total := 0.0
	for _, v := range out {
		total += v
	}
	if total > 0 {
		for j := range out {
			out[j] /= total
		}
	}
	return out, nil
}

// GetParams returns the forest's hyperparameters.
func (f *RandomForestClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators":      f.NEstimators,
		"max_depth":         f.MaxDepth,
		"min_samples_split": f.MinSamplesSplit,
		"min_samples_leaf":  f.MinSamplesLeaf,
		"criterion":         f.Criterion,
		"max_features":      f.MaxFeatures,
		"bootstrap":         f.Bootstrap,
		"random_state":      f.Seed,
	}
}

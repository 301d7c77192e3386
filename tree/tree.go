// Package tree implements CART decision trees and random forests for
// binary and multi-class classification over gonum matrices.
//
// The split search understands the two column flavours the Pokedex table
// produces: continuous numeric features (threshold splits) and
// label-encoded categoricals with a small number of integer codes
// (equality splits). Missing values (NaN) are tolerated during both
// training and prediction.
package tree

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/sotafujii/pokeml/core/model"
	"github.com/sotafujii/pokeml/pkg/errors"
)

// Split criteria.
const (
	CriterionGini    = "gini"
	CriterionEntropy = "entropy"
)

// maxCategoricalCardinality bounds how many distinct integer-like values
// a feature may have before equality splits are no longer attempted.
const maxCategoricalCardinality = 30

// DecisionTreeClassifier is a CART-style classifier.
type DecisionTreeClassifier struct {
	model.BaseEstimator

	// MaxDepth limits tree depth; 0 means unlimited.
	MaxDepth int

	// MinSamplesSplit is the minimum sample count to attempt a split.
	MinSamplesSplit int

	// MinSamplesLeaf is the minimum sample count in each leaf.
	MinSamplesLeaf int

	// Criterion is gini or entropy.
	Criterion string

	// MaxFeatures is the number of features sampled per split; 0 uses all.
	MaxFeatures int

	// MinImpurityDecrease is the minimum gain to accept a split.
	MinImpurityDecrease float64

	// Seed drives feature subsampling.
	Seed int64

	root        *node
	classes     []int
	nFeatures   int
	importances []float64
}

// node is one tree node. Leaves carry a class distribution; internal
// nodes carry a split.
type node struct {
	isLeaf    bool
	feature   int
	threshold float64 // numeric: x <= threshold goes left
	isCat     bool    // categorical: x == threshold goes left
	left      *node
	right     *node

	n      int
	probas []float64
}

// TreeOption configures a DecisionTreeClassifier.
type TreeOption func(*DecisionTreeClassifier)

// WithTreeMaxDepth limits tree depth; 0 means unlimited.
func WithTreeMaxDepth(d int) TreeOption {
	return func(t *DecisionTreeClassifier) { t.MaxDepth = d }
}

// WithTreeMinSamplesSplit sets the minimum sample count to attempt a split.
func WithTreeMinSamplesSplit(n int) TreeOption {
	return func(t *DecisionTreeClassifier) { t.MinSamplesSplit = n }
}

// WithTreeMinSamplesLeaf sets the minimum sample count per leaf.
func WithTreeMinSamplesLeaf(n int) TreeOption {
	return func(t *DecisionTreeClassifier) { t.MinSamplesLeaf = n }
}

// WithTreeCriterion selects the impurity criterion.
func WithTreeCriterion(c string) TreeOption {
	return func(t *DecisionTreeClassifier) { t.Criterion = c }
}

// WithTreeMaxFeatures sets how many features are sampled per split; 0 uses all.
func WithTreeMaxFeatures(k int) TreeOption {
	return func(t *DecisionTreeClassifier) { t.MaxFeatures = k }
}

// WithTreeSeed fixes the seed for feature subsampling.
func WithTreeSeed(seed int64) TreeOption {
	return func(t *DecisionTreeClassifier) { t.Seed = seed }
}

// NewDecisionTreeClassifier returns a classifier with sklearn-like defaults.
func NewDecisionTreeClassifier(opts ...TreeOption) *DecisionTreeClassifier {
	t := &DecisionTreeClassifier{
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Criterion:       CriterionGini,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Fit trains the tree on X (n_samples × n_features) and y (n_samples × 1
// integer class labels). Missing feature values must be NaN.
func (t *DecisionTreeClassifier) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "DecisionTreeClassifier.Fit")

	rows, labels, verr := validateXY("DecisionTreeClassifier.Fit", X, y)
	if verr != nil {
		return verr
	}
	if t.Criterion != CriterionGini && t.Criterion != CriterionEntropy {
		return errors.NewValidationError("criterion", "must be gini or entropy", t.Criterion)
	}

	t.nFeatures = len(rows[0])
	t.classes = uniqueClasses(labels)
	t.importances = make([]float64, t.nFeatures)

	classIdx := make(map[int]int, len(t.classes))
	for i, c := range t.classes {
		classIdx[c] = i
	}
	yIdx := make([]int, len(labels))
	for i, lab := range labels {
		yIdx[i] = classIdx[lab]
	}

	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}

	b := &builder{
		tree:   t,
		X:      rows,
		y:      yIdx,
		nTotal: len(rows),
		rng:    rand.New(rand.NewSource(t.Seed)),
	}
	t.root = b.build(idx, 0)

	// Importances normalize to sum 1 when any split happened.
	total := 0.0
	for _, v := range t.importances {
		total += v
	}
	if total > 0 {
		for f := range t.importances {
			t.importances[f] /= total
		}
	}

	t.SetFitted()
	return nil
}

// Predict returns the majority class per row as an n×1 matrix.
func (t *DecisionTreeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := t.PredictProba(X)
	if err != nil {
		return nil, err
	}
	r, _ := proba.Dims()
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		best, bestP := 0, proba.At(i, 0)
		for j := 1; j < len(t.classes); j++ {
			if p := proba.At(i, j); p > bestP {
				best, bestP = j, p
			}
		}
		out.Set(i, 0, float64(t.classes[best]))
	}
	return out, nil
}

// PredictProba returns per-class probabilities, one column per class in
// Classes() order.
func (t *DecisionTreeClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !t.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "PredictProba")
	}
	r, c := X.Dims()
	if c != t.nFeatures {
		return nil, errors.NewDimensionError("DecisionTreeClassifier.PredictProba", t.nFeatures, c, 1)
	}

	out := mat.NewDense(r, len(t.classes), nil)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, X)
		probas := t.predictRow(row)
		for j, p := range probas {
			out.Set(i, j, p)
		}
	}
	return out, nil
}

// Classes returns the class labels in probability-column order.
func (t *DecisionTreeClassifier) Classes() []int {
	return t.classes
}

// Score returns accuracy on X against y.
func (t *DecisionTreeClassifier) Score(X, y mat.Matrix) (float64, error) {
	return classifierAccuracy(t, X, y)
}

// FeatureImportances returns the normalized impurity decrease per
// feature, summing to 1 (or all zeros for a stump).
func (t *DecisionTreeClassifier) FeatureImportances() ([]float64, error) {
	if !t.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "FeatureImportances")
	}
	return append([]float64(nil), t.importances...), nil
}

// GetParams returns the tree's hyperparameters.
func (t *DecisionTreeClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"max_depth":             t.MaxDepth,
		"min_samples_split":     t.MinSamplesSplit,
		"min_samples_leaf":      t.MinSamplesLeaf,
		"criterion":             t.Criterion,
		"max_features":          t.MaxFeatures,
		"min_impurity_decrease": t.MinImpurityDecrease,
	}
}

func (t *DecisionTreeClassifier) predictRow(x []float64) []float64 {
	nd := t.root
	for !nd.isLeaf {
		v := x[nd.feature]
		if math.IsNaN(v) {
			// Missing value: follow the branch that saw more samples.
			if nd.left.n >= nd.right.n {
				nd = nd.left
			} else {
				nd = nd.right
			}
			continue
		}
		goLeft := false
		if nd.isCat {
			goLeft = v == nd.threshold
		} else {
			goLeft = v <= nd.threshold
		}
		if goLeft {
			nd = nd.left
		} else {
			nd = nd.right
		}
	}
	return nd.probas
}

// builder carries the shared state of one Fit call.
type builder struct {
	tree   *DecisionTreeClassifier
	X      [][]float64
	y      []int // class indices
	nTotal int
	rng    *rand.Rand
}

func (b *builder) impurity(counts []int) float64 {
	if b.tree.Criterion == CriterionEntropy {
		return entropyFromCounts(counts)
	}
	return giniFromCounts(counts)
}

func (b *builder) build(idx []int, depth int) *node {
	t := b.tree
	counts := make([]int, len(t.classes))
	for _, i := range idx {
		counts[b.y[i]]++
	}

	leaf := func() *node {
		return &node{isLeaf: true, n: len(idx), probas: countsToProbas(counts)}
	}

	if isPure(counts) || len(idx) < t.MinSamplesSplit {
		return leaf()
	}
	if t.MaxDepth > 0 && depth >= t.MaxDepth {
		return leaf()
	}

	// A zero-gain split is still taken when the node is impure: nested
	// structure (XOR-like data) only pays off deeper down.
	best := b.findBestSplit(idx, counts)
	if best.feature < 0 || best.gain < t.MinImpurityDecrease {
		return leaf()
	}

	// Importance accumulates the gain weighted by node size.
	t.importances[best.feature] += best.gain * float64(len(idx)) / float64(b.nTotal)

	nd := &node{
		feature:   best.feature,
		threshold: best.threshold,
		isCat:     best.isCat,
		n:         len(idx),
	}
	nd.left = b.build(best.leftIdx, depth+1)
	nd.right = b.build(best.rightIdx, depth+1)
	return nd
}

// split is a candidate split and its children.
type split struct {
	gain      float64
	feature   int
	threshold float64
	isCat     bool
	leftIdx   []int
	rightIdx  []int
}

func (b *builder) findBestSplit(idx []int, counts []int) split {
	t := b.tree
	p := t.nFeatures

	features := make([]int, p)
	for j := range features {
		features[j] = j
	}
	if t.MaxFeatures > 0 && t.MaxFeatures < p {
		b.rng.Shuffle(p, func(i, j int) {
			features[i], features[j] = features[j], features[i]
		})
		features = features[:t.MaxFeatures]
		// Deterministic candidate order regardless of shuffle outcome.
		sort.Ints(features)
	}

	parent := b.impurity(counts)
	best := split{feature: -1, gain: math.Inf(-1)}
	for _, f := range features {
		if s := b.bestSplitForFeature(idx, f, parent); s.gain > best.gain {
			best = s
		}
	}
	return best
}

// valued pairs a sample index with its value on the feature under search.
type valued struct {
	v float64
	i int
}

func (b *builder) bestSplitForFeature(idx []int, f int, parent float64) split {
	t := b.tree
	best := split{feature: -1, gain: math.Inf(-1)}

	valid := make([]valued, 0, len(idx))
	var nans []int
	for _, i := range idx {
		v := b.X[i][f]
		if math.IsNaN(v) {
			nans = append(nans, i)
		} else {
			valid = append(valid, valued{v: v, i: i})
		}
	}
	if len(valid) == 0 {
		return best
	}

	nClasses := len(t.classes)
	total := len(idx)

	evaluate := func(left, right []int, threshold float64, isCat bool) {
		if len(left) < t.MinSamplesLeaf || len(right) < t.MinSamplesLeaf {
			return
		}
		lc := make([]int, nClasses)
		for _, i := range left {
			lc[b.y[i]]++
		}
		rc := make([]int, nClasses)
		for _, i := range right {
			rc[b.y[i]]++
		}
		weighted := float64(len(left))/float64(total)*b.impurity(lc) +
			float64(len(right))/float64(total)*b.impurity(rc)
		if gain := parent - weighted; gain > best.gain {
			best = split{
				gain:      gain,
				feature:   f,
				threshold: threshold,
				isCat:     isCat,
				leftIdx:   left,
				rightIdx:  right,
			}
		}
	}

	// Equality splits for small integer-coded categorical features.
	if uniq := smallIntegerSet(valid); uniq != nil {
		for _, uv := range uniq {
			var left, right []int
			for _, pv := range valid {
				if pv.v == uv {
					left = append(left, pv.i)
				} else {
					right = append(right, pv.i)
				}
			}
			// Missing values tried on both sides.
			evaluate(concat(left, nans), right, uv, true)
			if len(nans) > 0 {
				evaluate(left, concat(right, nans), uv, true)
			}
		}
	}

	// Threshold splits between consecutive distinct values.
	sort.Slice(valid, func(a, c int) bool { return valid[a].v < valid[c].v })
	for s := 1; s < len(valid); s++ {
		if valid[s].v == valid[s-1].v {
			continue
		}
		thr := (valid[s-1].v + valid[s].v) / 2
		left := indices(valid[:s])
		right := indices(valid[s:])
		evaluate(concat(left, nans), right, thr, false)
		if len(nans) > 0 {
			evaluate(left, concat(right, nans), thr, false)
		}
	}

	return best
}

// smallIntegerSet returns the sorted distinct values when the feature
// looks like an encoded categorical, nil otherwise.
func smallIntegerSet(valid []valued) []float64 {
	seen := make(map[float64]struct{})
	for _, p := range valid {
		if _, frac := math.Modf(math.Abs(p.v)); frac > 1e-9 && frac < 1-1e-9 {
			return nil
		}
		seen[p.v] = struct{}{}
		if len(seen) > maxCategoricalCardinality {
			return nil
		}
	}
	out := make([]float64, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}

func concat(a, b []int) []int {
	if len(b) == 0 {
		return a
	}
	out := make([]int, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

func indices(vals []valued) []int {
	out := make([]int, len(vals))
	for i, p := range vals {
		out[i] = p.i
	}
	return out
}

func giniFromCounts(counts []int) float64 {
	n := 0.0
	for _, c := range counts {
		n += float64(c)
	}
	if n == 0 {
		return 0
	}
	res := 0.0
	for _, c := range counts {
		p := float64(c) / n
		res += p * (1 - p)
	}
	return res
}

func entropyFromCounts(counts []int) float64 {
	n := 0.0
	for _, c := range counts {
		n += float64(c)
	}
	if n == 0 {
		return 0
	}
	res := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		res -= p * math.Log2(p)
	}
	return res
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func countsToProbas(counts []int) []float64 {
	n := 0
	for _, c := range counts {
		n += c
	}
	probas := make([]float64, len(counts))
	if n == 0 {
		return probas
	}
	for i, c := range counts {
		probas[i] = float64(c) / float64(n)
	}
	return probas
}

package preprocessing

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/sotafujii/pokeml/core/model"
	"github.com/sotafujii/pokeml/core/parallel"
	"github.com/sotafujii/pokeml/pkg/errors"
)

// Imputation strategies for SimpleImputer.
const (
	StrategyMean         = "mean"
	StrategyMedian       = "median"
	StrategyMostFrequent = "most_frequent"
	StrategyConstant     = "constant"
)

// SimpleImputer fills missing values (NaN) column by column using a
// fixed statistic of the training data.
type SimpleImputer struct {
	model.BaseEstimator

	// Strategy is one of mean, median, most_frequent or constant.
	Strategy string

	// FillValue is used by the constant strategy.
	FillValue float64

	// Statistics holds the fitted per-column fill values.
	Statistics []float64

	// NFeatures is the number of features seen during Fit.
	NFeatures int
}

// NewSimpleImputer creates a SimpleImputer with the given strategy.
func NewSimpleImputer(strategy string) *SimpleImputer {
	return &SimpleImputer{Strategy: strategy}
}

// NewConstantImputer creates a SimpleImputer that fills with a constant.
func NewConstantImputer(fillValue float64) *SimpleImputer {
	return &SimpleImputer{Strategy: StrategyConstant, FillValue: fillValue}
}

// Fit computes the per-column fill statistic from the observed values.
func (im *SimpleImputer) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("SimpleImputer.Fit", "empty data", errors.ErrEmptyData)
	}

	switch im.Strategy {
	case StrategyMean, StrategyMedian, StrategyMostFrequent, StrategyConstant:
	default:
		return errors.NewValidationError("strategy", "unknown imputation strategy", im.Strategy)
	}

	im.NFeatures = c
	im.Statistics = make([]float64, c)

	for j := 0; j < c; j++ {
		observed := make([]float64, 0, r)
		for i := 0; i < r; i++ {
			if v := X.At(i, j); !math.IsNaN(v) {
				observed = append(observed, v)
			}
		}
		im.Statistics[j] = im.fillFor(observed)
	}

	im.SetFitted()
	return nil
}

func (im *SimpleImputer) fillFor(observed []float64) float64 {
	if im.Strategy == StrategyConstant {
		return im.FillValue
	}
	if len(observed) == 0 {
		// A fully missing column has no statistic; zero keeps downstream
		// estimators working.
		return 0
	}
	switch im.Strategy {
	case StrategyMean:
		sum := 0.0
		for _, v := range observed {
			sum += v
		}
		return sum / float64(len(observed))
	case StrategyMedian:
		sorted := append([]float64(nil), observed...)
		sort.Float64s(sorted)
		mid := len(sorted) / 2
		if len(sorted)%2 == 0 {
			return (sorted[mid-1] + sorted[mid]) / 2
		}
		return sorted[mid]
	default: // most_frequent
		counts := make(map[float64]int)
		best, bestCount := observed[0], 0
		for _, v := range observed {
			counts[v]++
			if counts[v] > bestCount || (counts[v] == bestCount && v < best) {
				best, bestCount = v, counts[v]
			}
		}
		return best
	}
}

// Transform replaces NaN cells with the fitted statistics.
func (im *SimpleImputer) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !im.IsFitted() {
		return nil, errors.NewNotFittedError("SimpleImputer", "Transform")
	}

	r, c := X.Dims()
	if c != im.NFeatures {
		return nil, errors.NewDimensionError("SimpleImputer.Transform", im.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			if math.IsNaN(v) {
				v = im.Statistics[j]
			}
			result.Set(i, j, v)
		}
	}
	return result, nil
}

// FitTransform fits on X and transforms the same data.
func (im *SimpleImputer) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := im.Fit(X); err != nil {
		return nil, err
	}
	return im.Transform(X)
}

// KNNImputer fills missing values from the k nearest neighbours of each
// incomplete sample. Distances are nan-euclidean: squared differences
// are summed over the coordinates both samples observe and rescaled by
// the fraction of usable coordinates, so sparsely observed pairs are not
// rewarded for having fewer terms.
type KNNImputer struct {
	model.BaseEstimator

	// NNeighbors is k, the number of neighbours averaged per missing cell.
	NNeighbors int

	// train is the fitted reference data, missing cells included.
	train *mat.Dense

	// colMeans is the fallback when no neighbour observes a column.
	colMeans []float64

	// NFeatures is the number of features seen during Fit.
	NFeatures int
}

// NewKNNImputer creates a KNNImputer with the given neighbour count.
func NewKNNImputer(nNeighbors int) *KNNImputer {
	return &KNNImputer{NNeighbors: nNeighbors}
}

// Fit stores X as the neighbour reference set and computes column means
// as a fallback.
func (im *KNNImputer) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("KNNImputer.Fit", "empty data", errors.ErrEmptyData)
	}
	if im.NNeighbors < 1 {
		return errors.NewValidationError("n_neighbors", "must be positive", im.NNeighbors)
	}
	if im.NNeighbors > r {
		return errors.NewValidationError("n_neighbors", "must not exceed the number of samples", im.NNeighbors)
	}

	im.NFeatures = c
	im.train = mat.DenseCopyOf(X)

	im.colMeans = make([]float64, c)
	for j := 0; j < c; j++ {
		sum, n := 0.0, 0
		for i := 0; i < r; i++ {
			if v := X.At(i, j); !math.IsNaN(v) {
				sum += v
				n++
			}
		}
		if n > 0 {
			im.colMeans[j] = sum / float64(n)
		}
	}

	im.SetFitted()
	return nil
}

// Transform fills every NaN cell of X from the fitted reference set.
// Complete rows are copied through untouched. Rows are processed in
// parallel; the result is deterministic because neighbour order ties
// break on row index.
func (im *KNNImputer) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !im.IsFitted() {
		return nil, errors.NewNotFittedError("KNNImputer", "Transform")
	}

	r, c := X.Dims()
	if c != im.NFeatures {
		return nil, errors.NewDimensionError("KNNImputer.Transform", im.NFeatures, c, 1)
	}

	result := mat.DenseCopyOf(X)

	parallel.ParallelizeWithThreshold(r, 64, func(start, end int) {
		row := make([]float64, c)
		for i := start; i < end; i++ {
			mat.Row(row, i, X)
			if !hasNaN(row) {
				continue
			}
			im.imputeRow(result, i, row)
		}
	})

	return result, nil
}

// neighbour pairs a reference row with its distance to the query row.
type neighbour struct {
	dist float64
	row  int
}

func (im *KNNImputer) imputeRow(dst *mat.Dense, rowIdx int, row []float64) {
	nTrain, c := im.train.Dims()

	// Distances to every reference row that shares at least one observed
	// coordinate with the query.
	nbrs := make([]neighbour, 0, nTrain)
	ref := make([]float64, c)
	for t := 0; t < nTrain; t++ {
		mat.Row(ref, t, im.train)
		d, ok := nanEuclidean(row, ref)
		if ok {
			nbrs = append(nbrs, neighbour{dist: d, row: t})
		}
	}
	sort.Slice(nbrs, func(a, b int) bool {
		if nbrs[a].dist != nbrs[b].dist {
			return nbrs[a].dist < nbrs[b].dist
		}
		return nbrs[a].row < nbrs[b].row
	})

	for j := 0; j < c; j++ {
		if !math.IsNaN(row[j]) {
			continue
		}
		// Average the k nearest neighbours that observe column j.
		sum, n := 0.0, 0
		for _, nb := range nbrs {
			v := im.train.At(nb.row, j)
			if math.IsNaN(v) {
				continue
			}
			sum += v
			n++
			if n == im.NNeighbors {
				break
			}
		}
		if n > 0 {
			dst.Set(rowIdx, j, sum/float64(n))
		} else {
			dst.Set(rowIdx, j, im.colMeans[j])
		}
	}
}

// FitTransform fits on X and transforms the same data.
func (im *KNNImputer) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := im.Fit(X); err != nil {
		return nil, err
	}
	return im.Transform(X)
}

// GetParams returns the imputer's hyperparameters.
func (im *KNNImputer) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_neighbors": im.NNeighbors,
	}
}

func hasNaN(row []float64) bool {
	for _, v := range row {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// nanEuclidean returns the distance between two rows over their mutually
// observed coordinates, scaled by total/observed coordinate count. The
// second return value is false when no coordinate is mutually observed.
func nanEuclidean(a, b []float64) (float64, bool) {
	sum, used := 0.0, 0
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		d := a[i] - b[i]
		sum += d * d
		used++
	}
	if used == 0 {
		return 0, false
	}
	return math.Sqrt(sum * float64(len(a)) / float64(used)), true
}

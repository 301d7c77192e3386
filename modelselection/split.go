package modelselection

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/sotafujii/pokeml/pkg/errors"
)

// Split is the result of a train/test partition.
type Split struct {
	XTrain *mat.Dense
	XTest  *mat.Dense
	YTrain *mat.Dense
	YTest  *mat.Dense
}

// TrainTestSplit shuffles the samples and partitions them by testSize
// (a fraction in (0, 1)). With stratify set, the partition preserves the
// class proportions of y. The same seed always yields the same split.
func TrainTestSplit(X, y mat.Matrix, testSize float64, seed int, stratify bool) (*Split, error) {
	nSamples, _ := X.Dims()
	if nSamples == 0 {
		return nil, errors.NewModelError("TrainTestSplit", "empty data", errors.ErrEmptyData)
	}
	yr, _ := y.Dims()
	if yr != nSamples {
		return nil, errors.NewDimensionError("TrainTestSplit", nSamples, yr, 0)
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, errors.NewValidationError("test_size", "must be in (0, 1)", testSize)
	}

	nTest := int(math.Round(float64(nSamples) * testSize))
	if nTest < 1 {
		nTest = 1
	}
	if nTest >= nSamples {
		nTest = nSamples - 1
	}

	r := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))

	var testIdx []int
	if stratify {
		byClass := make(map[float64][]int)
		var labels []float64
		for i := 0; i < nSamples; i++ {
			label := y.At(i, 0)
			if _, ok := byClass[label]; !ok {
				labels = append(labels, label)
			}
			byClass[label] = append(byClass[label], i)
		}
		sort.Float64s(labels)

		for _, label := range labels {
			indices := byClass[label]
			r.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
			take := int(math.Round(float64(len(indices)) * testSize))
			if take < 1 && len(indices) > 1 {
				take = 1
			}
			if take >= len(indices) {
				take = len(indices) - 1
			}
			testIdx = append(testIdx, indices[:take]...)
		}
	} else {
		indices := make([]int, nSamples)
		for i := range indices {
			indices[i] = i
		}
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
		testIdx = indices[:nTest]
	}

	inTest := make(map[int]bool, len(testIdx))
	for _, idx := range testIdx {
		inTest[idx] = true
	}
	trainIdx := make([]int, 0, nSamples-len(testIdx))
	for i := 0; i < nSamples; i++ {
		if !inTest[i] {
			trainIdx = append(trainIdx, i)
		}
	}

	xTrain, yTrain := extractSubset(X, y, trainIdx)
	xTest, yTest := extractSubset(X, y, testIdx)
	return &Split{XTrain: xTrain, XTest: xTest, YTrain: yTrain, YTest: yTest}, nil
}

package preprocessing

import (
	"math"
	"sort"

	"github.com/sotafujii/pokeml/core/model"
	"github.com/sotafujii/pokeml/pkg/errors"
)

// LabelEncoder maps string categories to integer codes. Categories get
// codes in sorted order so encoding does not depend on row order. The
// empty string marks a missing cell: it encodes to -1 (or NaN through
// TransformFloat) and never receives a code of its own.
type LabelEncoder struct {
	model.BaseEstimator

	// ClassMap maps each category to its code.
	ClassMap map[string]int

	// ClassList holds categories ordered by code.
	ClassList []string
}

// NewLabelEncoder creates an empty LabelEncoder.
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{}
}

// Fit learns the category set of values. Empty strings are skipped; they
// represent missing cells and keep no code of their own.
func (le *LabelEncoder) Fit(values []string) error {
	if len(values) == 0 {
		return errors.NewModelError("LabelEncoder.Fit", "empty data", errors.ErrEmptyData)
	}

	seen := make(map[string]bool)
	for _, v := range values {
		if v == "" {
			continue
		}
		seen[v] = true
	}
	if len(seen) == 0 {
		return errors.NewValueError("LabelEncoder.Fit", "no observed categories")
	}

	le.ClassList = make([]string, 0, len(seen))
	for v := range seen {
		le.ClassList = append(le.ClassList, v)
	}
	sort.Strings(le.ClassList)

	le.ClassMap = make(map[string]int, len(le.ClassList))
	for i, v := range le.ClassList {
		le.ClassMap[v] = i
	}

	le.SetFitted()
	return nil
}

// Transform encodes values as integer codes. Unknown categories are an
// error; missing cells ("") encode as -1.
func (le *LabelEncoder) Transform(values []string) ([]int, error) {
	if !le.IsFitted() {
		return nil, errors.NewNotFittedError("LabelEncoder", "Transform")
	}

	out := make([]int, len(values))
	for i, v := range values {
		if v == "" {
			out[i] = -1
			continue
		}
		code, ok := le.ClassMap[v]
		if !ok {
			return nil, errors.NewValueError("LabelEncoder.Transform", "unseen category: "+v)
		}
		out[i] = code
	}
	return out, nil
}

// TransformFloat encodes values as float64 codes with NaN for missing
// cells, the representation the imputers expect.
func (le *LabelEncoder) TransformFloat(values []string) ([]float64, error) {
	codes, err := le.Transform(values)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(codes))
	for i, code := range codes {
		if code < 0 {
			out[i] = math.NaN()
		} else {
			out[i] = float64(code)
		}
	}
	return out, nil
}

// FitTransformFloat fits on values and encodes them as floats.
func (le *LabelEncoder) FitTransformFloat(values []string) ([]float64, error) {
	if err := le.Fit(values); err != nil {
		return nil, err
	}
	return le.TransformFloat(values)
}

// InverseTransform maps codes back to category strings.
func (le *LabelEncoder) InverseTransform(codes []int) ([]string, error) {
	if !le.IsFitted() {
		return nil, errors.NewNotFittedError("LabelEncoder", "InverseTransform")
	}

	out := make([]string, len(codes))
	for i, code := range codes {
		if code == -1 {
			out[i] = ""
			continue
		}
		if code < 0 || code >= len(le.ClassList) {
			return nil, errors.Newf("pokeml: LabelEncoder.InverseTransform: code %d out of range [0, %d)", code, len(le.ClassList))
		}
		out[i] = le.ClassList[code]
	}
	return out, nil
}

// OneHotEncoder expands a categorical column into one indicator column
// per category.
type OneHotEncoder struct {
	model.BaseEstimator

	le *LabelEncoder
}

// NewOneHotEncoder creates an empty OneHotEncoder.
func NewOneHotEncoder() *OneHotEncoder {
	return &OneHotEncoder{le: NewLabelEncoder()}
}

// Fit learns the category set of values.
func (oh *OneHotEncoder) Fit(values []string) error {
	if err := oh.le.Fit(values); err != nil {
		return err
	}
	oh.SetFitted()
	return nil
}

// Categories returns the learned categories ordered by output column.
func (oh *OneHotEncoder) Categories() []string {
	return oh.le.ClassList
}

// Transform returns one row of indicators per input value. Missing cells
// produce an all-zero row.
func (oh *OneHotEncoder) Transform(values []string) ([][]float64, error) {
	if !oh.IsFitted() {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}

	codes, err := oh.le.Transform(values)
	if err != nil {
		return nil, err
	}

	width := len(oh.le.ClassList)
	out := make([][]float64, len(codes))
	for i, code := range codes {
		row := make([]float64, width)
		if code >= 0 {
			row[code] = 1
		}
		out[i] = row
	}
	return out, nil
}

// FitTransform fits on values and transforms the same data.
func (oh *OneHotEncoder) FitTransform(values []string) ([][]float64, error) {
	if err := oh.Fit(values); err != nil {
		return nil, err
	}
	return oh.Transform(values)
}

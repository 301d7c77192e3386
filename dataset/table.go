// Package dataset loads tabular CSV data into typed, column-oriented
// tables and converts them into gonum matrices for the estimators.
//
// The reference workload is the Pokedex table: roughly 800 rows and 40
// columns of mixed numeric, categorical and boolean attributes, with a
// boolean "is_legendary" target. Missing cells are represented as NaN in
// numeric columns and "" in categorical ones.
package dataset

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/sotafujii/pokeml/pkg/errors"
)

// ColumnKind is the inferred type of a table column.
type ColumnKind int

const (
	// KindNumeric holds float64 values, NaN for missing.
	KindNumeric ColumnKind = iota
	// KindCategorical holds raw string categories, "" for missing.
	KindCategorical
	// KindBoolean holds 0/1 values parsed from boolean tokens, NaN for missing.
	KindBoolean
)

func (k ColumnKind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindCategorical:
		return "categorical"
	case KindBoolean:
		return "boolean"
	}
	return "unknown"
}

// Column is a single named column of a Table. Exactly one of Float or
// Str is populated, depending on Kind.
type Column struct {
	Name  string
	Kind  ColumnKind
	Float []float64
	Str   []string
}

// Table is an immutable-width, column-oriented data table.
type Table struct {
	cols  []Column
	index map[string]int
	nRows int
}

// NewTable builds a table from prepared columns. All columns must have
// the same length.
func NewTable(cols []Column) (*Table, error) {
	if len(cols) == 0 {
		return nil, errors.NewValueError("NewTable", "no columns")
	}
	nRows := columnLen(cols[0])
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if columnLen(c) != nRows {
			return nil, errors.NewDimensionError("NewTable", nRows, columnLen(c), 0)
		}
		if _, dup := index[c.Name]; dup {
			return nil, errors.NewValueError("NewTable", "duplicate column name: "+c.Name)
		}
		index[c.Name] = i
	}
	return &Table{cols: cols, index: index, nRows: nRows}, nil
}

func columnLen(c Column) int {
	if c.Kind == KindCategorical {
		return len(c.Str)
	}
	return len(c.Float)
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.nRows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, error) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, errors.NewValueError("Table.Column", "unknown column: "+name)
	}
	return t.cols[i], nil
}

// HasColumn reports whether the table contains the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Strings returns the raw string values of a categorical column.
func (t *Table) Strings(name string) ([]string, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if c.Kind != KindCategorical {
		return nil, errors.NewValueError("Table.Strings", "column "+name+" is "+c.Kind.String()+", not categorical")
	}
	return c.Str, nil
}

// Floats returns the float values of a numeric or boolean column.
func (t *Table) Floats(name string) ([]float64, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if c.Kind == KindCategorical {
		return nil, errors.NewValueError("Table.Floats", "column "+name+" is categorical; encode it first")
	}
	return c.Float, nil
}

// ReplaceWithNumeric swaps the named column for a numeric column holding
// values. Used after encoding a categorical column.
func (t *Table) ReplaceWithNumeric(name string, values []float64) error {
	i, ok := t.index[name]
	if !ok {
		return errors.NewValueError("Table.ReplaceWithNumeric", "unknown column: "+name)
	}
	if len(values) != t.nRows {
		return errors.NewDimensionError("Table.ReplaceWithNumeric", t.nRows, len(values), 0)
	}
	t.cols[i] = Column{Name: name, Kind: KindNumeric, Float: values}
	return nil
}

// DropColumns returns a new table without the named columns. Unknown
// names are ignored, matching the forgiving behaviour of dataframe drops.
func (t *Table) DropColumns(names ...string) *Table {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	kept := make([]Column, 0, len(t.cols))
	index := make(map[string]int)
	for _, c := range t.cols {
		if drop[c.Name] {
			continue
		}
		index[c.Name] = len(kept)
		kept = append(kept, c)
	}
	return &Table{cols: kept, index: index, nRows: t.nRows}
}

// CategoricalColumns returns the names of all categorical columns.
func (t *Table) CategoricalColumns() []string {
	var names []string
	for _, c := range t.cols {
		if c.Kind == KindCategorical {
			names = append(names, c.Name)
		}
	}
	return names
}

// MissingCount returns the number of missing cells across all columns.
func (t *Table) MissingCount() int {
	missing := 0
	for _, c := range t.cols {
		switch c.Kind {
		case KindCategorical:
			for _, s := range c.Str {
				if s == "" {
					missing++
				}
			}
		default:
			for _, v := range c.Float {
				if math.IsNaN(v) {
					missing++
				}
			}
		}
	}
	return missing
}

// Matrix converts the table into a feature matrix X and a label vector y
// taken from the target column. Every non-target column must already be
// numeric or boolean; categorical columns must be encoded first. The
// target must be boolean or numeric with 0/1 values and no missing
// entries. Feature names are returned in X's column order.
func (t *Table) Matrix(target string) (X *mat.Dense, y *mat.VecDense, featureNames []string, err error) {
	ti, ok := t.index[target]
	if !ok {
		return nil, nil, nil, errors.NewValueError("Table.Matrix", "unknown target column: "+target)
	}
	tc := t.cols[ti]
	if tc.Kind == KindCategorical {
		return nil, nil, nil, errors.NewValueError("Table.Matrix", "target column "+target+" is categorical")
	}

	for _, c := range t.cols {
		if c.Name == target {
			continue
		}
		if c.Kind == KindCategorical {
			return nil, nil, nil, errors.NewValueError("Table.Matrix", "column "+c.Name+" is categorical; encode it before Matrix")
		}
		featureNames = append(featureNames, c.Name)
	}
	if len(featureNames) == 0 {
		return nil, nil, nil, errors.NewValueError("Table.Matrix", "no feature columns")
	}

	X = mat.NewDense(t.nRows, len(featureNames), nil)
	col := 0
	for _, c := range t.cols {
		if c.Name == target {
			continue
		}
		for i := 0; i < t.nRows; i++ {
			X.Set(i, col, c.Float[i])
		}
		col++
	}

	y = mat.NewVecDense(t.nRows, nil)
	for i := 0; i < t.nRows; i++ {
		v := tc.Float[i]
		if math.IsNaN(v) {
			return nil, nil, nil, errors.NewValueError("Table.Matrix", "target column contains missing values")
		}
		if v != 0 && v != 1 {
			return nil, nil, nil, errors.NewValueError("Table.Matrix", "target column must be binary 0/1")
		}
		y.SetVec(i, v)
	}
	return X, y, featureNames, nil
}

package dataset

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadSample(t *testing.T) *Table {
	t.Helper()
	table, err := ReadCSV(filepath.Join("testdata", "pokemon_sample.csv"), PokemonOptions())
	require.NoError(t, err)
	return table
}

func TestReadCSVInfersKinds(t *testing.T) {
	table := loadSample(t)

	assert.Equal(t, 16, table.NumRows())
	assert.Equal(t, 12, table.NumCols())

	cases := map[string]ColumnKind{
		"name":         KindCategorical,
		"type1":        KindCategorical,
		"type2":        KindCategorical,
		"hp":           KindNumeric,
		"height_m":     KindNumeric,
		"generation":   KindNumeric,
		"is_legendary": KindBoolean,
	}
	for name, want := range cases {
		col, err := table.Column(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, col.Kind, "column %s", name)
	}
}

func TestReadCSVMissingValues(t *testing.T) {
	table := loadSample(t)

	heights, err := table.Floats("height_m")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(heights[14]), "Mew's NA height should be NaN")

	types, err := table.Strings("type2")
	require.NoError(t, err)
	assert.Equal(t, "", types[1], "empty type2 should be missing")
	assert.Equal(t, "poison", types[0])

	// type2 has 8 empty cells, height_m has 1 NA.
	assert.Equal(t, 9, table.MissingCount())
}

func TestReadCSVBooleanTarget(t *testing.T) {
	table := loadSample(t)

	labels, err := table.Floats(PokemonTarget)
	require.NoError(t, err)

	legendaries := 0
	for _, v := range labels {
		if v == 1 {
			legendaries++
		}
	}
	assert.Equal(t, 6, legendaries)
}

func TestReadCSVRejectsRaggedRows(t *testing.T) {
	_, err := readCSV(strings.NewReader("a,b\n1,2\n3\n"), DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fields")
}

func TestReadCSVRejectsHeaderOnly(t *testing.T) {
	_, err := readCSV(strings.NewReader("a,b\n"), DefaultOptions())
	require.Error(t, err)
}

func TestMatrixRequiresEncodedFeatures(t *testing.T) {
	table := loadSample(t)
	_, _, _, err := table.Matrix(PokemonTarget)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "categorical")
}

func TestMatrixAfterDropAndEncode(t *testing.T) {
	table := loadSample(t).DropColumns("name", "pokedex_number")

	// Stand-in for a label encoder: hash categories to small ints.
	for _, name := range table.CategoricalColumns() {
		vals, err := table.Strings(name)
		require.NoError(t, err)
		codes := make(map[string]float64)
		encoded := make([]float64, len(vals))
		for i, v := range vals {
			if _, ok := codes[v]; !ok {
				codes[v] = float64(len(codes))
			}
			encoded[i] = codes[v]
		}
		require.NoError(t, table.ReplaceWithNumeric(name, encoded))
	}

	X, y, names, err := table.Matrix(PokemonTarget)
	require.NoError(t, err)

	r, c := X.Dims()
	assert.Equal(t, 16, r)
	assert.Equal(t, 9, c)
	assert.Len(t, names, 9)
	assert.Equal(t, 16, y.Len())
	assert.NotContains(t, names, PokemonTarget)

	// Articuno is row 10 and legendary.
	assert.Equal(t, 1.0, y.AtVec(10))
}

func TestDropColumnsIgnoresUnknown(t *testing.T) {
	table := loadSample(t)
	dropped := table.DropColumns("no_such_column", "name")
	assert.Equal(t, table.NumCols()-1, dropped.NumCols())
	assert.False(t, dropped.HasColumn("name"))
}

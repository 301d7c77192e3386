package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/sotafujii/pokeml/pkg/errors"
)

// Options configures CSV loading.
type Options struct {
	// MissingTokens are cell values treated as missing, compared after
	// trimming whitespace.
	MissingTokens []string

	// BooleanColumns forces the named columns to be parsed as booleans
	// even if inference would classify them differently.
	BooleanColumns []string

	// Comma is the field delimiter. Zero means ','.
	Comma rune
}

// DefaultOptions returns loader options matching common CSV exports.
func DefaultOptions() Options {
	return Options{
		MissingTokens: []string{"", "NA", "NaN", "N/A", "null"},
	}
}

var booleanTokens = map[string]float64{
	"true": 1, "True": 1, "TRUE": 1, "1": 1,
	"false": 0, "False": 0, "FALSE": 0, "0": 0,
}

// ReadCSV loads a headered CSV file into a Table, inferring a kind for
// each column: boolean when every observed value is a boolean token,
// numeric when every observed value parses as a float, categorical
// otherwise. Missing tokens become NaN (numeric/boolean) or "" (categorical).
func ReadCSV(path string, opts Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "dataset: open csv")
	}
	defer f.Close()
	return readCSV(f, opts)
}

func readCSV(r io.Reader, opts Options) (*Table, error) {
	reader := csv.NewReader(r)
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "dataset: read csv")
	}
	if len(records) < 2 {
		return nil, errors.NewValueError("ReadCSV", "need a header row and at least one data row")
	}

	header := records[0]
	rows := records[1:]
	nCols := len(header)
	for i, rec := range rows {
		if len(rec) != nCols {
			return nil, errors.Newf("dataset: row %d has %d fields, header has %d", i+2, len(rec), nCols)
		}
	}

	missing := make(map[string]bool, len(opts.MissingTokens))
	for _, tok := range opts.MissingTokens {
		missing[tok] = true
	}
	forceBool := make(map[string]bool, len(opts.BooleanColumns))
	for _, name := range opts.BooleanColumns {
		forceBool[name] = true
	}

	cols := make([]Column, nCols)
	for j := 0; j < nCols; j++ {
		raw := make([]string, len(rows))
		for i := range rows {
			raw[i] = strings.TrimSpace(rows[i][j])
		}
		cols[j] = buildColumn(strings.TrimSpace(header[j]), raw, missing, forceBool[strings.TrimSpace(header[j])])
	}
	return NewTable(cols)
}

func buildColumn(name string, raw []string, missing map[string]bool, forceBool bool) Column {
	kind := inferKind(raw, missing, forceBool)
	switch kind {
	case KindCategorical:
		vals := make([]string, len(raw))
		for i, s := range raw {
			if missing[s] {
				vals[i] = ""
			} else {
				vals[i] = s
			}
		}
		return Column{Name: name, Kind: KindCategorical, Str: vals}
	case KindBoolean:
		vals := make([]float64, len(raw))
		for i, s := range raw {
			if missing[s] {
				vals[i] = math.NaN()
			} else {
				vals[i] = booleanTokens[s]
			}
		}
		return Column{Name: name, Kind: KindBoolean, Float: vals}
	default:
		vals := make([]float64, len(raw))
		for i, s := range raw {
			if missing[s] {
				vals[i] = math.NaN()
			} else {
				v, _ := strconv.ParseFloat(s, 64)
				vals[i] = v
			}
		}
		return Column{Name: name, Kind: KindNumeric, Float: vals}
	}
}

func inferKind(raw []string, missing map[string]bool, forceBool bool) ColumnKind {
	observed := 0
	allBool := true
	allNumeric := true
	for _, s := range raw {
		if missing[s] {
			continue
		}
		observed++
		if _, ok := booleanTokens[s]; !ok {
			allBool = false
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			allNumeric = false
		}
	}
	if observed == 0 {
		// A fully missing column stays numeric (all NaN) so imputers can
		// decide what to do with it.
		return KindNumeric
	}
	if forceBool && allBool {
		return KindBoolean
	}
	if allBool && !allNumeric {
		// "True"/"False" style tokens. Numeric-looking 0/1 columns stay
		// numeric unless forced, since integers are more often counts.
		return KindBoolean
	}
	if allNumeric {
		return KindNumeric
	}
	return KindCategorical
}

package errors

import (
	"fmt"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// NumericalInstabilityError reports NaN or Inf values where a
// computation requires finite input.
type NumericalInstabilityError struct {
	Op    string
	Count int
}

func (e *NumericalInstabilityError) Error() string {
	return fmt.Sprintf("pokeml: %s: %d non-finite values in input", e.Op, e.Count)
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (e *NumericalInstabilityError) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("error_type", "numerical_instability").
		Str("operation", e.Op).
		Int("non_finite_count", e.Count)
}

// NewNumericalInstabilityError creates a stacktraced instability error.
func NewNumericalInstabilityError(op string, count int) error {
	return errors.WithStack(&NumericalInstabilityError{Op: op, Count: count})
}

// CheckFinite returns an error when values contains NaN or Inf.
func CheckFinite(op string, values []float64) error {
	count := 0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			count++
		}
	}
	if count > 0 {
		return NewNumericalInstabilityError(op, count)
	}
	return nil
}

// CheckFiniteMatrix returns an error when the matrix contains NaN or Inf.
func CheckFiniteMatrix(op string, m interface{ At(int, int) float64 }, rows, cols int) error {
	count := 0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				count++
			}
		}
	}
	if count > 0 {
		return NewNumericalInstabilityError(op, count)
	}
	return nil
}

package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		kind     string
		err      error
		wantMsg  string
		hasStack bool
	}{
		{
			name:     "with original error",
			op:       "Fit",
			kind:     "invalid input",
			err:      fmt.Errorf("test error"),
			wantMsg:  "pokeml: Fit: invalid input: test error",
			hasStack: true,
		},
		{
			name:     "without original error",
			op:       "Predict",
			kind:     "not fitted",
			err:      nil,
			wantMsg:  "pokeml: Predict: not fitted",
			hasStack: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			if tt.hasStack {
				formatted := fmt.Sprintf("%+v", err)
				if !strings.Contains(formatted, "errors_test.go") {
					t.Error("Expected stack trace to contain test file name")
				}
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("RandomForestClassifier", "Predict")

	want := "pokeml: RandomForestClassifier: this model is not fitted yet. Call Fit() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var nfErr *NotFittedError
	if !As(err, &nfErr) {
		t.Fatal("Error should be castable to *NotFittedError")
	}
	if nfErr.ModelName != "RandomForestClassifier" {
		t.Errorf("ModelName = %v, want RandomForestClassifier", nfErr.ModelName)
	}
}

func TestNewDimensionError(t *testing.T) {
	tests := []struct {
		name string
		axis int
		want string
	}{
		{
			name: "feature axis",
			axis: 1,
			want: "pokeml: Transform: dimension mismatch on axis 1 (features). Expected 40, got 39",
		},
		{
			name: "row axis",
			axis: 0,
			want: "pokeml: Transform: dimension mismatch on axis 0 (rows). Expected 40, got 39",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDimensionError("Transform", 40, 39, tt.axis)
			if err.Error() != tt.want {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.want)
			}
		})
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("n_neighbors", "must be positive", -1)

	if !strings.Contains(err.Error(), "n_neighbors") {
		t.Errorf("Error() should mention parameter name: %v", err)
	}
	var valErr *ValidationError
	if !As(err, &valErr) {
		t.Fatal("Error should be castable to *ValidationError")
	}
	if valErr.Value != -1 {
		t.Errorf("Value = %v, want -1", valErr.Value)
	}
}

func TestWarnHandler(t *testing.T) {
	var captured error
	SetWarningHandler(func(w error) { captured = w })
	defer SetWarningHandler(nil)

	warning := NewUndefinedMetricWarning("precision", "no predicted samples", 0.0)
	Warn(warning)

	if captured == nil {
		t.Fatal("warning handler was not invoked")
	}
	if !strings.Contains(captured.Error(), "precision") {
		t.Errorf("captured warning = %v, want mention of precision", captured)
	}
}

func TestUndefinedMetricWarningMessage(t *testing.T) {
	w := NewUndefinedMetricWarning("recall", "no true samples", 0.0)
	want := "'recall' is ill-defined and being set to 0.000000 due to no true samples."
	if w.Error() != want {
		t.Errorf("Error() = %v, want %v", w.Error(), want)
	}
}

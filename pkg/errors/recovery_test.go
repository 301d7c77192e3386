package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestRecover_WithPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		panic("test panic message")
	}

	err := testFunc()

	if err == nil {
		t.Fatal("Expected error from recovered panic, got nil")
	}

	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("Expected PanicError, got %T", err)
	}

	if panicErr.Operation != "TestOperation" {
		t.Errorf("Expected operation 'TestOperation', got '%s'", panicErr.Operation)
	}

	if panicErr.PanicValue != "test panic message" {
		t.Errorf("Expected panic value 'test panic message', got '%v'", panicErr.PanicValue)
	}

	if panicErr.StackTrace == "" {
		t.Error("Expected non-empty stack trace")
	}
}

func TestRecover_NoPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "CleanOperation")
		return nil
	}

	if err := testFunc(); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
}

func TestRecover_PanicWithExistingError(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "MixedOperation")
		err = fmt.Errorf("original failure")
		panic("late panic")
	}

	err := testFunc()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "original failure") {
		t.Errorf("wrapped error should preserve the original: %v", err)
	}
	if !strings.Contains(err.Error(), "late panic") {
		t.Errorf("wrapped error should mention the panic: %v", err)
	}
}

func TestSafeExecute(t *testing.T) {
	t.Run("function succeeds", func(t *testing.T) {
		err := SafeExecute("ok", func() error { return nil })
		if err != nil {
			t.Errorf("Expected nil, got %v", err)
		}
	})

	t.Run("function returns error", func(t *testing.T) {
		want := fmt.Errorf("boom")
		err := SafeExecute("fails", func() error { return want })
		if !errors.Is(err, want) {
			t.Errorf("Expected %v, got %v", want, err)
		}
	})

	t.Run("function panics", func(t *testing.T) {
		err := SafeExecute("panics", func() error { panic("oops") })
		var panicErr *PanicError
		if !errors.As(err, &panicErr) {
			t.Fatalf("Expected PanicError, got %T", err)
		}
	})
}

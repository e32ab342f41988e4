package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// TestRecover_WithPanic tests the Recover function when a panic occurs
func TestRecover_WithPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "kernel.Evaluate")
		panic("input vectors must have the same length")
	}

	err := testFunc()
	if err == nil {
		t.Fatal("Expected error from recovered panic, got nil")
	}

	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("Expected PanicError, got %T", err)
	}

	if panicErr.Operation != "kernel.Evaluate" {
		t.Errorf("Expected operation 'kernel.Evaluate', got '%s'", panicErr.Operation)
	}
	if panicErr.StackTrace == "" {
		t.Error("Expected non-empty stack trace")
	}

	expectedMsg := "panic in kernel.Evaluate: input vectors must have the same length"
	if panicErr.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, panicErr.Error())
	}
}

func TestRecover_WithoutPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		return nil
	}

	if err := testFunc(); err != nil {
		t.Fatalf("Expected no error when no panic occurs, got: %v", err)
	}
}

// TestRecover_WithExistingError tests Recover when function has existing error and panic occurs
func TestRecover_WithExistingError(t *testing.T) {
	originalErr := fmt.Errorf("original error")

	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		err = originalErr
		panic("panic after error")
	}

	err := testFunc()
	if err == nil {
		t.Fatal("Expected error from recovered panic with existing error, got nil")
	}

	errMsg := err.Error()
	if !strings.Contains(errMsg, "panic in TestOperation") {
		t.Errorf("Error message should contain panic info: %s", errMsg)
	}
	if !errors.Is(err, originalErr) {
		t.Error("Should be able to identify original error with errors.Is")
	}
}

func TestSafeExecute(t *testing.T) {
	originalErr := fmt.Errorf("function error")

	tests := []struct {
		name      string
		fn        func() error
		wantPanic bool
		wantErr   error
	}{
		{name: "success", fn: func() error { return nil }},
		{name: "function error", fn: func() error { return originalErr }, wantErr: originalErr},
		{name: "panic", fn: func() error { panic("boom") }, wantPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SafeExecute("trial 0", tt.fn)

			var panicErr *PanicError
			if got := errors.As(err, &panicErr); got != tt.wantPanic {
				t.Fatalf("errors.As(PanicError) = %v, want %v (err: %v)", got, tt.wantPanic, err)
			}
			if !tt.wantPanic && err != tt.wantErr {
				t.Fatalf("SafeExecute() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPanicError_Unwrap(t *testing.T) {
	cause := NewDimensionError("kernel.Evaluate", 2, 3, 1)
	panicErr := NewPanicError("trial 1", cause)

	var dimErr *DimensionError
	if !errors.As(panicErr, &dimErr) {
		t.Fatal("PanicError should unwrap to the error it was raised with")
	}

	if NewPanicError("trial 1", "text").Unwrap() != nil {
		t.Error("PanicError.Unwrap() should return nil for non-error panic values")
	}

	if !strings.Contains(panicErr.String(), "Stack trace:") {
		t.Error("String() should include stack trace information")
	}
}

// TestRecover_DifferentPanicTypes tests Recover with different types of panic values
func TestRecover_DifferentPanicTypes(t *testing.T) {
	testCases := []struct {
		name          string
		panicValue    interface{}
		expectedValue interface{}
	}{
		{"string panic", "string panic", "string panic"},
		{"int panic", 42, 42},
		{"error panic", fmt.Errorf("error as panic"), fmt.Errorf("error as panic")},
		{"nil panic", nil, "panic called with nil argument"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			testFunc := func() (err error) {
				defer Recover(&err, "TypeTest")
				panic(tc.panicValue)
			}

			err := testFunc()
			if err == nil {
				t.Fatal("Expected error from panic")
			}

			var panicErr *PanicError
			if !errors.As(err, &panicErr) {
				t.Fatalf("Expected PanicError, got %T", err)
			}

			if fmt.Sprintf("%v", panicErr.PanicValue) != fmt.Sprintf("%v", tc.expectedValue) {
				t.Errorf("Expected panic value %v, got %v", tc.expectedValue, panicErr.PanicValue)
			}
		})
	}
}

// BenchmarkSafeExecute_NoPanic benchmarks SafeExecute with no panic
func BenchmarkSafeExecute_NoPanic(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = SafeExecute("BenchmarkOp", func() error {
			return nil
		})
	}
}

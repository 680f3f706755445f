package srs

import "fmt"

// InvalidRetentionError indicates a target retention outside (0, 1].
type InvalidRetentionError struct {
	Provided float64
}

// Error implements the error interface.
func (e *InvalidRetentionError) Error() string {
	return fmt.Sprintf("target retention must be in (0, 1], got %v", e.Provided)
}

// InvalidElapsedDaysError indicates a negative or non-finite elapsed-day
// count passed to a review scheduling call.
type InvalidElapsedDaysError struct {
	Provided float64
}

// Error implements the error interface.
func (e *InvalidElapsedDaysError) Error() string {
	return fmt.Sprintf("elapsed days must be finite and non-negative, got %v", e.Provided)
}

// ModelError wraps a failure reported by the underlying memory model.
type ModelError struct {
	Err error
}

// Error implements the error interface.
func (e *ModelError) Error() string {
	return fmt.Sprintf("memory model error: %v", e.Err)
}

// Unwrap returns the underlying error to support errors.Is/As.
func (e *ModelError) Unwrap() error {
	return e.Err
}

package session

import (
	"errors"
	"fmt"
)

// Session errors.
var (
	// ErrEmptySession is returned when selection yields no cards to study.
	ErrEmptySession = errors.New("session has no cards")

	// ErrSessionCompleted is returned when an operation requires an active
	// session but the session has already completed.
	ErrSessionCompleted = errors.New("session already completed")

	// ErrSessionActive is returned when an operation requires a completed
	// session but cards remain unanswered.
	ErrSessionActive = errors.New("session still in progress")

	// ErrSummaryAssigned is returned when a summary id would be assigned
	// to a session that already has one.
	ErrSummaryAssigned = errors.New("session summary id already assigned")
)

// StorageError wraps a repository failure surfaced through the session
// layer. The underlying error is carried opaquely, never inspected.
type StorageError struct {
	Err error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("session storage error: %v", e.Err)
}

// Unwrap returns the underlying error to support errors.Is/As.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// ReviewError wraps a scheduling failure raised while answering a card.
type ReviewError struct {
	Err error
}

// Error implements the error interface.
func (e *ReviewError) Error() string {
	return fmt.Sprintf("session review error: %v", e.Err)
}

// Unwrap returns the underlying error to support errors.Is/As.
func (e *ReviewError) Unwrap() error {
	return e.Err
}

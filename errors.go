package loopgo

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameters is matched by every *ParameterError.
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrInvariantViolation is returned when a caller breaks an input contract.
	ErrInvariantViolation = errors.New("invariant violation")
)

// ParameterError indicates a rejected configuration value.
//
// It satisfies errors.Is(err, ErrInvalidParameters); the underlying error
// (if any) can be accessed via errors.Unwrap.
type ParameterError struct {
	Field string
	cause error
}

func (e *ParameterError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("%v: %s", ErrInvalidParameters, e.Field)
	}
	return fmt.Sprintf("%v: %s: %v", ErrInvalidParameters, e.Field, e.cause)
}

func (e *ParameterError) Unwrap() error { return e.cause }

// Is reports ErrInvalidParameters as a match.
func (e *ParameterError) Is(target error) bool { return target == ErrInvalidParameters }

func invalid(field, format string, args ...any) *ParameterError {
	return &ParameterError{Field: field, cause: fmt.Errorf(format, args...)}
}

// ErrLengthMismatch indicates keypoints and descriptors of different lengths.
type ErrLengthMismatch struct {
	Keypoints   int
	Descriptors int
}

func (e *ErrLengthMismatch) Error() string {
	return fmt.Sprintf("%v: %d keypoints, %d descriptors", ErrInvariantViolation, e.Keypoints, e.Descriptors)
}

// Is reports ErrInvariantViolation as a match.
func (e *ErrLengthMismatch) Is(target error) bool { return target == ErrInvariantViolation }

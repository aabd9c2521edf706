package rewrite

import (
	"errors"
	"fmt"
)

// PatternErrorCode categorizes pattern contract violations.
type PatternErrorCode string

const (
	// ErrCodeInvalidOperationShape indicates the host offered an operation
	// that violates the pattern's preconditions (wrong operand count, or a
	// result type inconsistent with the base operand). This is an
	// integration bug, not malformed user input: the attempt is aborted and
	// the program left unchanged.
	ErrCodeInvalidOperationShape PatternErrorCode = "INVALID_OPERATION_SHAPE"
)

// PatternError reports a contract violation detected by a pattern.
type PatternError struct {
	// Code identifies the error category.
	Code PatternErrorCode

	// Pattern is the name of the pattern that detected the violation.
	Pattern string

	// Op is the result name of the offending operation.
	Op string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *PatternError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %%%s: %s", e.Code, e.Pattern, e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Pattern, e.Message)
}

// IsInvalidShape reports whether err is an invalid-operation-shape violation.
// Uses errors.As to handle wrapped errors.
func IsInvalidShape(err error) bool {
	var pe *PatternError
	if errors.As(err, &pe) {
		return pe.Code == ErrCodeInvalidOperationShape
	}
	return false
}

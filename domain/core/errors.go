package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Scenario encoding errors
	ErrMalformedScenarioKey = errors.New("malformed scenario key")

	// Table shape errors
	ErrSchemaMismatch = errors.New("schema mismatch")
	ErrMissingColumn  = errors.New("missing column")

	// Numeric errors
	ErrDivisionByZero = errors.New("division by zero")
	ErrOutOfRange     = errors.New("value out of range")

	// Design errors
	ErrInvalidDesign       = errors.New("invalid design file")
	ErrUnsupportedCategory = errors.New("unsupported hypothesis category")
)

// Error constructors with context
func NewMalformedKeyError(input string, reason string) error {
	return fmt.Errorf("%w %q: %s", ErrMalformedScenarioKey, input, reason)
}

func NewSchemaMismatchError(file string, reason string) error {
	return fmt.Errorf("%w in %s: %s", ErrSchemaMismatch, file, reason)
}

func NewMissingColumnError(file string, column string) error {
	return fmt.Errorf("%w %q in %s", ErrMissingColumn, column, file)
}

func NewDivisionByZeroError(what string) error {
	return fmt.Errorf("%w: %s", ErrDivisionByZero, what)
}

func NewInvalidDesignError(file string, reason string) error {
	return fmt.Errorf("%w %s: %s", ErrInvalidDesign, file, reason)
}

// Error checking helpers
func IsMalformedKeyError(err error) bool {
	return errors.Is(err, ErrMalformedScenarioKey)
}

func IsSchemaError(err error) bool {
	return errors.Is(err, ErrSchemaMismatch) ||
		errors.Is(err, ErrMissingColumn)
}

func IsNumericError(err error) bool {
	return errors.Is(err, ErrDivisionByZero) ||
		errors.Is(err, ErrOutOfRange)
}

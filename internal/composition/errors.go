package composition

import (
	"errors"
	"fmt"
)

// ValidationErrorCode categorizes construction failures.
type ValidationErrorCode string

const (
	// ErrCodeUnknownSymbol indicates a species not present in the registry.
	ErrCodeUnknownSymbol ValidationErrorCode = "UNKNOWN_SYMBOL"

	// ErrCodeNegativeCount indicates a count below zero.
	ErrCodeNegativeCount ValidationErrorCode = "NEGATIVE_COUNT"

	// ErrCodeNonInteger indicates a count that is not a whole number.
	ErrCodeNonInteger ValidationErrorCode = "NON_INTEGER_COUNT"

	// ErrCodeMalformed indicates a serialized composition that cannot be read.
	ErrCodeMalformed ValidationErrorCode = "MALFORMED"

	// ErrCodeCountOverflow indicates a count or atom total beyond the int range.
	ErrCodeCountOverflow ValidationErrorCode = "COUNT_OVERFLOW"
)

// ValidationError is returned when a Composition cannot be constructed.
// No Composition is produced when this error is returned.
type ValidationError struct {
	Code    ValidationErrorCode
	Species string // offending species, empty for ErrCodeMalformed
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Species != "" {
		return fmt.Sprintf("%s: %s (species=%q)", e.Code, e.Message, e.Species)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// InvalidArgumentErrorCode categorizes rejected arguments.
type InvalidArgumentErrorCode string

const (
	// ErrCodeInvalidPacking indicates an unknown packing model.
	ErrCodeInvalidPacking InvalidArgumentErrorCode = "INVALID_PACKING"

	// ErrCodeInvalidOrder indicates an unknown formula ordering.
	ErrCodeInvalidOrder InvalidArgumentErrorCode = "INVALID_ORDER"

	// ErrCodeInvalidHex indicates a species encoding that is not hexadecimal.
	ErrCodeInvalidHex InvalidArgumentErrorCode = "INVALID_HEX"
)

// InvalidArgumentError is returned when an operation receives an argument
// outside its accepted set.
type InvalidArgumentError struct {
	Code     InvalidArgumentErrorCode
	Argument string
	Value    string
}

// Error implements the error interface.
func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s: non-valid %s: %q", e.Code, e.Argument, e.Value)
}

// IsValidationError returns true if err is a ValidationError.
// Uses errors.As to handle wrapped errors.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsInvalidArgument returns true if err is an InvalidArgumentError.
// Uses errors.As to handle wrapped errors.
func IsInvalidArgument(err error) bool {
	var ie *InvalidArgumentError
	return errors.As(err, &ie)
}

func newUnknownSymbolError(symbol string) *ValidationError {
	return &ValidationError{
		Code:    ErrCodeUnknownSymbol,
		Species: symbol,
		Message: "not a recognized atomic symbol",
	}
}

func newNegativeCountError(symbol string, n int64) *ValidationError {
	return &ValidationError{
		Code:    ErrCodeNegativeCount,
		Species: symbol,
		Message: fmt.Sprintf("count must be non-negative, got %d", n),
	}
}

func newCountOverflowError(symbol string) *ValidationError {
	return &ValidationError{
		Code:    ErrCodeCountOverflow,
		Species: symbol,
		Message: "total atom count exceeds the int range",
	}
}

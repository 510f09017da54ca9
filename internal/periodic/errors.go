package periodic

import (
	"errors"
	"fmt"
)

// TableErrorCode categorizes element table errors.
type TableErrorCode string

const (
	// ErrCodeTableNotFound indicates the table file could not be read.
	ErrCodeTableNotFound TableErrorCode = "TABLE_NOT_FOUND"

	// ErrCodeTableParse indicates the file is not valid YAML or CUE.
	ErrCodeTableParse TableErrorCode = "TABLE_PARSE"

	// ErrCodeTableSchema indicates an entry violates the element schema.
	ErrCodeTableSchema TableErrorCode = "TABLE_SCHEMA"

	// ErrCodeTableDuplicate indicates a symbol appears more than once.
	ErrCodeTableDuplicate TableErrorCode = "TABLE_DUPLICATE"
)

// TableError is returned when an element table cannot be built.
type TableError struct {
	Code    TableErrorCode
	Message string
	Path    string // empty for in-memory tables
	Err     error
}

// Error implements the error interface.
func (e *TableError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *TableError) Unwrap() error {
	return e.Err
}

// IsTableError reports whether err is a TableError with the given code.
// Uses errors.As to handle wrapped errors.
func IsTableError(err error, code TableErrorCode) bool {
	var te *TableError
	if errors.As(err, &te) {
		return te.Code == code
	}
	return false
}

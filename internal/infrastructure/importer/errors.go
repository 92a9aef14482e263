package importer

import (
	"errors"
	"fmt"

	"github.com/schoolpay/backend/internal/domain/bulk"
)

// Import error codes
const (
	ErrCodeInvalidFile     = "ERR_IMPORT_INVALID_FILE"
	ErrCodeEmptyFile       = "ERR_IMPORT_EMPTY_FILE"
	ErrCodeFileTooLarge    = "ERR_IMPORT_FILE_TOO_LARGE"
	ErrCodeInvalidEncoding = "ERR_IMPORT_INVALID_ENCODING"
	ErrCodeMissingHeader   = "ERR_IMPORT_MISSING_HEADER"
	ErrCodeMalformedRow    = "ERR_IMPORT_MALFORMED_ROW"
	ErrCodeRequiredField   = "ERR_IMPORT_REQUIRED_FIELD"
	ErrCodeInvalidFormat   = "ERR_IMPORT_INVALID_FORMAT"
	ErrCodeDuplicateInFile = "ERR_IMPORT_DUPLICATE_IN_FILE"
	ErrCodeDuplicateInDB   = "ERR_IMPORT_DUPLICATE_IN_DB"
	ErrCodeTooManyRows     = "ERR_IMPORT_TOO_MANY_ROWS"
)

// File-level errors that abort parsing before any row is processed
var (
	ErrEmptyFile       = errors.New("roster file is empty")
	ErrInvalidEncoding = errors.New("roster file is not valid UTF-8")
	ErrMissingHeader   = errors.New("roster file is missing its header row")
	ErrFileTooLarge    = errors.New("roster file exceeds the maximum allowed size")
	ErrTooManyRows     = errors.New("roster file exceeds the maximum allowed row count")
)

// RowError is a per-row import error. Row errors never abort the import;
// they are collected and reported alongside the created count.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// NewRowError creates a new RowError
func NewRowError(row int, column, code, message string) RowError {
	return RowError{Row: row, Column: column, Code: code, Message: message}
}

// ErrorCollection accumulates row errors up to a cap; the total count keeps
// growing so truncation stays visible
type ErrorCollection struct {
	errors     []RowError
	maxErrors  int
	totalCount int
}

// NewErrorCollection creates an ErrorCollection with a maximum error limit
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{
		errors:    make([]RowError, 0, maxErrors),
		maxErrors: maxErrors,
	}
}

// Add adds an error to the collection
func (ec *ErrorCollection) Add(err RowError) {
	ec.totalCount++
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, err)
	}
}

// AddRequired adds a missing required field error
func (ec *ErrorCollection) AddRequired(row int, column string) {
	ec.Add(NewRowError(row, column, ErrCodeRequiredField, fmt.Sprintf("field '%s' is required", column)))
}

// AddFormat adds an invalid value error
func (ec *ErrorCollection) AddFormat(row int, column, message string) {
	ec.Add(NewRowError(row, column, ErrCodeInvalidFormat, message))
}

// AddDuplicate adds a duplicate student error
func (ec *ErrorCollection) AddDuplicate(row int, name string, persisted bool) {
	code := ErrCodeDuplicateInFile
	msg := fmt.Sprintf("student '%s' appears more than once in the file", name)
	if persisted {
		code = ErrCodeDuplicateInDB
		msg = fmt.Sprintf("student '%s' is already enrolled in this class", name)
	}
	ec.Add(NewRowError(row, "", code, msg))
}

// Errors returns the collected errors
func (ec *ErrorCollection) Errors() []RowError {
	return ec.errors
}

// TotalCount returns the total number of errors including those past the cap
func (ec *ErrorCollection) TotalCount() int {
	return ec.totalCount
}

// HasErrors reports whether any error was recorded
func (ec *ErrorCollection) HasErrors() bool {
	return ec.totalCount > 0
}

// IsTruncated reports whether some errors were dropped by the cap
func (ec *ErrorCollection) IsTruncated() bool {
	return ec.totalCount > ec.maxErrors
}

// Details converts the collected errors to the persisted history format
func (ec *ErrorCollection) Details() []bulk.ImportErrorDetail {
	details := make([]bulk.ImportErrorDetail, len(ec.errors))
	for i, err := range ec.errors {
		details[i] = bulk.ImportErrorDetail{
			Row:     err.Row,
			Column:  err.Column,
			Code:    err.Code,
			Message: err.Message,
		}
	}
	return details
}

// Package domain defines the core chart types, request/result shapes, and errors.
package domain

import "fmt"

// Validation error codes.
const (
	CodeMissingParameter = "missing_parameter"
	CodeInvalidParameter = "invalid_parameter"
	CodeUnknownColumn    = "unknown_column"
	CodeInvalidBandwidth = "invalid_bandwidth"
)

// Insufficient data codes.
const (
	CodeInsufficientNumericColumns = "insufficient_numeric_columns"
	CodeEmptyDataset               = "empty_dataset"
)

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid input. Field names the offending
// parameter when there is one.
type ValidationError struct {
	Code    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// TypeMismatchError indicates a column has the wrong role for the
// parameter it was bound to.
type TypeMismatchError struct {
	Field  string
	Column string
	Want   string
	Got    string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("column %q for %s must be %s, got %s", e.Column, e.Field, e.Want, e.Got)
}

// InsufficientDataError indicates the dataset cannot support the requested chart.
type InsufficientDataError struct {
	Code    string
	Message string
}

func (e *InsufficientDataError) Error() string { return e.Message }

// UnsupportedChartTypeError is returned for chart types outside the closed set.
type UnsupportedChartTypeError struct {
	ChartType string
}

func (e *UnsupportedChartTypeError) Error() string {
	return fmt.Sprintf("Chart type %s not implemented", e.ChartType)
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Code: CodeInvalidParameter, Message: fmt.Sprintf(format, args...)}
}

// ErrInvalidParameter creates a ValidationError bound to a parameter.
func ErrInvalidParameter(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Code: CodeInvalidParameter, Field: field, Message: fmt.Sprintf(format, args...)}
}

// ErrMissingParameter reports a required parameter that was not supplied.
// An empty message falls back to "<field> is required".
func ErrMissingParameter(field, message string) *ValidationError {
	if message == "" {
		message = field + " is required"
	}
	return &ValidationError{Code: CodeMissingParameter, Field: field, Message: message}
}

// ErrUnknownColumn reports a parameter that names a column the dataset lacks.
func ErrUnknownColumn(field, column string) *ValidationError {
	return &ValidationError{
		Code:    CodeUnknownColumn,
		Field:   field,
		Message: fmt.Sprintf("column %q referenced by %s does not exist", column, field),
	}
}

// ErrInsufficientData creates an InsufficientDataError.
func ErrInsufficientData(code, format string, args ...interface{}) *InsufficientDataError {
	return &InsufficientDataError{Code: code, Message: fmt.Sprintf(format, args...)}
}

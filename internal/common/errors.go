package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	// Field names the anchor, label or raw value the error is about.
	Field string
	Cause error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
)

// Document processing errors. All of them are fatal for the document.
var (
	ErrFormatNotRecognized = errors.New("format not recognized")
	ErrMalformedDocument   = errors.New("malformed document")
	ErrNumericParse        = errors.New("numeric parse failure")
	ErrDateParse           = errors.New("date parse failure")
	ErrSchemaValidation    = errors.New("schema validation failure")
)

const (
	CodeFormatNotRecognized = "FORMAT_NOT_RECOGNIZED"
	CodeMalformedDocument   = "MALFORMED_DOCUMENT"
	CodeNumericParse        = "NUMERIC_PARSE_FAILURE"
	CodeDateParse           = "DATE_PARSE_FAILURE"
	CodeSchemaValidation    = "SCHEMA_VALIDATION_FAILURE"
	CodeInternal            = "INTERNAL"
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeDatabase            = "DATABASE"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// FormatNotRecognized reports that no registered extractor accepted the document.
func FormatNotRecognized(filename string) *AppError {
	return &AppError{
		Code:    CodeFormatNotRecognized,
		Message: fmt.Sprintf("no extractor matches document %q", filename),
		Field:   filename,
		Cause:   ErrFormatNotRecognized,
	}
}

// MalformedDocument reports a missing anchor or a required pattern that did not match.
func MalformedDocument(vendor, anchor, detail string) *AppError {
	msg := fmt.Sprintf("%s: anchor %q", vendor, anchor)
	if detail != "" {
		msg += ": " + detail
	}
	return &AppError{
		Code:    CodeMalformedDocument,
		Message: msg,
		Field:   anchor,
		Cause:   ErrMalformedDocument,
	}
}

// NumericParseFailure reports a number that could not be normalized.
func NumericParseFailure(raw string) *AppError {
	return &AppError{
		Code:    CodeNumericParse,
		Message: fmt.Sprintf("cannot parse number %q", raw),
		Field:   raw,
		Cause:   ErrNumericParse,
	}
}

// DateParseFailure reports a date or time token that could not be normalized.
func DateParseFailure(raw string) *AppError {
	return &AppError{
		Code:    CodeDateParse,
		Message: fmt.Sprintf("cannot parse date/time %q", raw),
		Field:   raw,
		Cause:   ErrDateParse,
	}
}

// SchemaError is returned when an assembled order violates the schema contract.
type SchemaError struct {
	ContractID string
	Violations []ValidationError
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return fmt.Sprintf("%s: order violates %s: %s", CodeSchemaValidation, e.ContractID, strings.Join(parts, "; "))
}

func (e *SchemaError) Unwrap() error {
	return ErrSchemaValidation
}

// ErrorCode returns the taxonomy code of err, or CodeInternal.
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	if errors.Is(err, ErrSchemaValidation) {
		return CodeSchemaValidation
	}
	return CodeInternal
}

// IsDocumentError reports whether err is a deterministic per-document failure
// (as opposed to I/O or infrastructure trouble).
func IsDocumentError(err error) bool {
	return errors.Is(err, ErrFormatNotRecognized) ||
		errors.Is(err, ErrMalformedDocument) ||
		errors.Is(err, ErrNumericParse) ||
		errors.Is(err, ErrDateParse) ||
		errors.Is(err, ErrSchemaValidation)
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func InvalidArgumentErrorf(format string, args ...interface{}) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}

func InternalErrorf(format string, args ...interface{}) error {
	return InternalError(fmt.Sprintf(format, args...))
}

// ToStatus maps the error taxonomy onto gRPC status codes.
func ToStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrSchemaValidation):
		return status.Error(codes.FailedPrecondition, err.Error())
	case IsDocumentError(err), errors.Is(err, ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// HTTPStatus maps the error taxonomy onto HTTP status codes.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsDocumentError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

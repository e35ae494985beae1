// Package errors provides categorized error types for the export pipeline.
//
// Every error carries a category (which maps to a process exit code for the
// CLI), a machine-readable code, optional context fields for logging, and an
// optional suggestion shown to the user. Failures below the section level are
// absorbed by their callers; failures at the workbook level or above abort the
// export and surface one of these errors to the caller.
package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of export errors
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryCollection ErrorCategory = "collection"
	CategoryChart      ErrorCategory = "chart"
	CategoryWorkbook   ErrorCategory = "workbook"
	CategoryFile       ErrorCategory = "file"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// Validation errors
	CodeInvalidPeriod     ErrorCode = "invalid_period"
	CodeNoAccounts        ErrorCode = "no_accounts"
	CodeInvalidReportType ErrorCode = "invalid_report_type"
	CodeMissingField      ErrorCode = "missing_field"

	// Collection errors
	CodeSectionFailed ErrorCode = "section_failed"
	CodeQueryFailed   ErrorCode = "query_failed"

	// Chart errors
	CodeChartBuildFailed ErrorCode = "chart_build_failed"
	CodeChartDataInvalid ErrorCode = "chart_data_invalid"

	// Workbook errors
	CodeLayoutFailed    ErrorCode = "layout_failed"
	CodeSerializeFailed ErrorCode = "serialize_failed"

	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFileWrite      ErrorCode = "file_write"
	CodeFileIntegrity  ErrorCode = "file_integrity"
	CodeDirectoryError ErrorCode = "directory_error"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// ExportError is the base error type for all application errors
type ExportError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *ExportError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *ExportError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *ExportError) GetExitCode() int {
	switch e.Category {
	case CategoryValidation:
		return 2
	case CategoryFile:
		return 3
	case CategoryCollection, CategoryChart:
		return 4
	case CategoryWorkbook, CategoryInternal:
		return 5
	default:
		return 1
	}
}

// IsFatal reports whether the error aborts the whole export.
// Collection and chart failures are absorbed by the pipeline and degrade
// gracefully; everything else stops the export.
func (e *ExportError) IsFatal() bool {
	switch e.Category {
	case CategoryCollection, CategoryChart:
		return false
	default:
		return true
	}
}

// WithContext adds context information to the error
func (e *ExportError) WithContext(key string, value interface{}) *ExportError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *ExportError) WithSuggestion(suggestion string) *ExportError {
	e.Suggestion = suggestion
	return e
}

// New creates a new ExportError
func New(category ErrorCategory, code ErrorCode, message string) *ExportError {
	return &ExportError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with ExportError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *ExportError {
	if err == nil {
		return nil
	}

	return &ExportError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Specific error constructors

// ValidationError creates a request-validation error. These are surfaced
// before any pipeline work runs.
func ValidationError(code ErrorCode, field string, value interface{}) *ExportError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidPeriod:
		message = fmt.Sprintf("invalid report period: %v", value)
		suggestion = "the end date must not be before the start date"
	case CodeNoAccounts:
		message = "no accounts selected for the report"
		suggestion = "select at least one account to include in the export"
	case CodeInvalidReportType:
		message = fmt.Sprintf("invalid report type: %v", value)
		suggestion = "use one of: default, audit, budget, category, tag, double"
	case CodeMissingField:
		message = fmt.Sprintf("required field '%s' is missing or empty", field)
		suggestion = "provide a value for this required field"
	default:
		message = fmt.Sprintf("validation error in field '%s': %v", field, value)
		suggestion = "check the field value and format"
	}

	return New(CategoryValidation, code, message).
		WithSuggestion(suggestion).
		WithContext("field", field).
		WithContext("value", value)
}

// SectionError creates a section-collection error. Callers absorb these and
// replace the failing section with an inline error payload.
func SectionError(section string, err error) *ExportError {
	message := fmt.Sprintf("failed to collect report section '%s'", section)

	var result *ExportError
	if err != nil {
		result = Wrap(err, CategoryCollection, CodeSectionFailed, message)
	} else {
		result = New(CategoryCollection, CodeSectionFailed, message)
	}

	return result.
		WithSuggestion("check the data source for this section; the export continues without it").
		WithContext("section", section)
}

// ChartError creates a chart-construction error. Callers absorb these and
// omit the affected chart sheet.
func ChartError(chart string, err error) *ExportError {
	message := fmt.Sprintf("failed to build chart '%s'", chart)

	var result *ExportError
	if err != nil {
		result = Wrap(err, CategoryChart, CodeChartBuildFailed, message)
	} else {
		result = New(CategoryChart, CodeChartBuildFailed, message)
	}

	return result.
		WithSuggestion("the chart is omitted; the export continues without it").
		WithContext("chart", chart)
}

// WorkbookError creates a workbook generation error. These are fatal for the
// whole export.
func WorkbookError(code ErrorCode, operation string, err error) *ExportError {
	var message string
	var suggestion string

	switch code {
	case CodeLayoutFailed:
		message = fmt.Sprintf("workbook layout failed during %s", operation)
		suggestion = "check the collected report data for this report type"
	case CodeSerializeFailed:
		message = fmt.Sprintf("workbook serialization failed during %s", operation)
		suggestion = "check available memory and disk space, then retry the export"
	default:
		message = fmt.Sprintf("workbook error during %s", operation)
		suggestion = "retry the export"
	}

	var result *ExportError
	if err != nil {
		result = Wrap(err, CategoryWorkbook, code, message)
	} else {
		result = New(CategoryWorkbook, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("operation", operation)
}

// FileError creates a file-related error
func FileError(code ErrorCode, path string, err error) *ExportError {
	var message string
	var suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFileWrite:
		message = fmt.Sprintf("failed to write file: %s", path)
		suggestion = "check directory permissions and available disk space"
	case CodeFileIntegrity:
		message = fmt.Sprintf("generated file is missing or unreadable: %s", path)
		suggestion = "retry the export; if the problem persists check the export directory"
	case CodeDirectoryError:
		message = fmt.Sprintf("directory error: %s", path)
		suggestion = "ensure the directory exists and is writable"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	var result *ExportError
	if err != nil {
		result = Wrap(err, CategoryFile, code, message)
	} else {
		result = New(CategoryFile, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// InternalError creates an internal error
func InternalError(operation string, err error) *ExportError {
	message := fmt.Sprintf("unexpected error during %s", operation)

	var result *ExportError
	if err != nil {
		result = Wrap(err, CategoryInternal, CodeUnexpectedError, message)
	} else {
		result = New(CategoryInternal, CodeUnexpectedError, message)
	}

	return result.
		WithSuggestion("this is likely a bug - please report it with the error details").
		WithContext("operation", operation)
}

// Utility functions

// IsExportError checks if an error is an ExportError
func IsExportError(err error) bool {
	_, ok := err.(*ExportError)
	return ok
}

// AsExportError extracts an ExportError from an error chain
func AsExportError(err error) (*ExportError, bool) {
	var exportErr *ExportError
	if errors.As(err, &exportErr) {
		return exportErr, true
	}
	return nil, false
}

// WrapIfNeeded wraps an error if it's not already an ExportError
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *ExportError {
	if err == nil {
		return nil
	}

	if exportErr, ok := AsExportError(err); ok {
		return exportErr
	}

	return Wrap(err, category, code, message)
}

// FormatContext renders the context fields for log output
func FormatContext(ctx Context) string {
	if len(ctx) == 0 {
		return ""
	}

	var parts []string
	for key, value := range ctx {
		parts = append(parts, fmt.Sprintf("%s=%v", key, value))
	}
	return strings.Join(parts, " ")
}
